package entities

import "encoding/json"

// AvatarStyle is a DiceBear style identifier.
type AvatarStyle string

const (
	AvatarStyleAdventurer AvatarStyle = "adventurer"
	AvatarStyleBottts     AvatarStyle = "bottts"
	AvatarStyleMicah      AvatarStyle = "micah"
	AvatarStyleLorelei    AvatarStyle = "lorelei"
	AvatarStylePixelArt   AvatarStyle = "pixel-art"
)

// AvatarStyles lists the selectable styles in display order.
var AvatarStyles = []AvatarStyle{
	AvatarStyleAdventurer,
	AvatarStyleBottts,
	AvatarStyleMicah,
	AvatarStyleLorelei,
	AvatarStylePixelArt,
}

// AvatarConfig selects an avatar style and seed name.
type AvatarConfig struct {
	Style AvatarStyle `json:"style"`
	Seed  string      `json:"seed"`
}

// Valid reports whether the style is a known DiceBear style and the seed is
// non-empty.
func (a AvatarConfig) Valid() bool {
	if a.Seed == "" {
		return false
	}
	for _, s := range AvatarStyles {
		if a.Style == s {
			return true
		}
	}
	return false
}

// Voice is a prebuilt voice name offered by the realtime model provider.
type Voice string

const (
	VoiceZephyr Voice = "Zephyr"
	VoicePuck   Voice = "Puck"
	VoiceCharon Voice = "Charon"
	VoiceKore   Voice = "Kore"
	VoiceFenrir Voice = "Fenrir"
)

// Voices lists the selectable voices in display order.
var Voices = []Voice{VoiceZephyr, VoicePuck, VoiceCharon, VoiceKore, VoiceFenrir}

// Valid reports whether v is one of the provider voices.
func (v Voice) Valid() bool {
	for _, known := range Voices {
		if v == known {
			return true
		}
	}
	return false
}

// Personality bundles a display name with the system prompt that shapes the
// companion's behavior.
type Personality struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	SystemInstruction string `json:"system_instruction"`
}

// Personalities are the built-in companion personalities.
var Personalities = []Personality{
	{
		ID:          "creative",
		Name:        "The Creative",
		Description: "Loves art, stories, and imaginative games.",
		SystemInstruction: "You are a friendly, imaginative, and curious AI friend for a child. " +
			"Your name is Sparky. You love telling silly jokes, making up stories, and coming up " +
			"with fun, creative activities to do. Always be positive, encouraging, and patient.",
	},
	{
		ID:          "explorer",
		Name:        "The Explorer",
		Description: "Curious about the world, science, and nature.",
		SystemInstruction: "You are a cheerful and knowledgeable AI friend for a child. " +
			"Your name is Pip. You are fascinated by science, animals, and how the world works. " +
			"You love to share amazing facts and ask thought-provoking questions. Encourage " +
			"curiosity and a love for learning.",
	},
	{
		ID:          "buddy",
		Name:        "The Buddy",
		Description: "A loyal friend who is a great listener.",
		SystemInstruction: "You are a calm, kind, and supportive AI friend for a child. " +
			"Your name is Leo. You are an excellent listener and always ready to talk about " +
			"their day. You offer gentle encouragement and help them think through their " +
			"feelings. Your goal is to be a comforting and reliable presence.",
	},
}

// PersonalityByID finds a built-in personality, falling back to the first
// one when the id is unknown.
func PersonalityByID(id string) Personality {
	for _, p := range Personalities {
		if p.ID == id {
			return p
		}
	}
	return Personalities[0]
}

// Preferences are the persisted customization choices, one entry per key so
// partial corruption of one entry never takes down the others.
type Preferences struct {
	Avatar      AvatarConfig `json:"avatar"`
	Voice       Voice        `json:"voice"`
	Personality Personality  `json:"personality"`
}

// DefaultPreferences returns the out-of-the-box customization.
func DefaultPreferences() Preferences {
	return Preferences{
		Avatar:      AvatarConfig{Style: AvatarStyleAdventurer, Seed: "Sparky"},
		Voice:       VoiceZephyr,
		Personality: Personalities[0],
	}
}

// DecodeAvatar parses a stored avatar entry, falling back to the default on
// missing or malformed data.
func DecodeAvatar(raw []byte) AvatarConfig {
	var cfg AvatarConfig
	if len(raw) == 0 || json.Unmarshal(raw, &cfg) != nil || !cfg.Valid() {
		return DefaultPreferences().Avatar
	}
	return cfg
}

// DecodeVoice parses a stored voice entry, falling back to the default on
// missing or malformed data.
func DecodeVoice(raw []byte) Voice {
	var v Voice
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil || !v.Valid() {
		return DefaultPreferences().Voice
	}
	return v
}

// DecodePersonality parses a stored personality entry, falling back to the
// default on missing or malformed data.
func DecodePersonality(raw []byte) Personality {
	var p Personality
	if len(raw) == 0 || json.Unmarshal(raw, &p) != nil || p.SystemInstruction == "" {
		return DefaultPreferences().Personality
	}
	return p
}
