package entities

import (
	"encoding/json"
	"testing"
)

func TestDecodeAvatarFallsBackOnBadData(t *testing.T) {
	def := DefaultPreferences().Avatar

	if got := DecodeAvatar(nil); got != def {
		t.Errorf("Expected default for missing entry, got %+v", got)
	}
	if got := DecodeAvatar([]byte("{not json")); got != def {
		t.Errorf("Expected default for malformed entry, got %+v", got)
	}
	if got := DecodeAvatar([]byte(`{"style":"mystery","seed":"A"}`)); got != def {
		t.Errorf("Expected default for unknown style, got %+v", got)
	}

	stored, _ := json.Marshal(AvatarConfig{Style: AvatarStyleBottts, Seed: "Robo"})
	got := DecodeAvatar(stored)
	if got.Style != AvatarStyleBottts || got.Seed != "Robo" {
		t.Errorf("Expected stored avatar back, got %+v", got)
	}
}

func TestDecodeVoiceFallsBackOnBadData(t *testing.T) {
	def := DefaultPreferences().Voice

	if got := DecodeVoice(nil); got != def {
		t.Errorf("Expected default for missing entry, got %s", got)
	}
	if got := DecodeVoice([]byte(`"Gandalf"`)); got != def {
		t.Errorf("Expected default for unknown voice, got %s", got)
	}
	if got := DecodeVoice([]byte(`"Puck"`)); got != VoicePuck {
		t.Errorf("Expected Puck back, got %s", got)
	}
}

func TestDecodePersonalityFallsBackOnBadData(t *testing.T) {
	def := DefaultPreferences().Personality

	if got := DecodePersonality(nil); got.ID != def.ID {
		t.Errorf("Expected default for missing entry, got %s", got.ID)
	}
	if got := DecodePersonality([]byte(`{"id":"x"}`)); got.ID != def.ID {
		t.Errorf("Expected default for entry without instruction, got %s", got.ID)
	}

	stored, _ := json.Marshal(PersonalityByID("explorer"))
	if got := DecodePersonality(stored); got.ID != "explorer" {
		t.Errorf("Expected explorer back, got %s", got.ID)
	}
}

func TestPersonalityByIDFallsBack(t *testing.T) {
	if got := PersonalityByID("nope"); got.ID != Personalities[0].ID {
		t.Errorf("Expected first personality for unknown id, got %s", got.ID)
	}
	if got := PersonalityByID("buddy"); got.Name != "The Buddy" {
		t.Errorf("Expected The Buddy, got %s", got.Name)
	}
}

func TestVoiceAndAvatarValidation(t *testing.T) {
	if !VoiceKore.Valid() {
		t.Error("Expected Kore to be valid")
	}
	if Voice("Whisper").Valid() {
		t.Error("Expected unknown voice to be invalid")
	}
	if (AvatarConfig{Style: AvatarStyleMicah, Seed: ""}).Valid() {
		t.Error("Expected empty seed to be invalid")
	}
	if !(AvatarConfig{Style: AvatarStylePixelArt, Seed: "Dot"}).Valid() {
		t.Error("Expected pixel-art avatar to be valid")
	}
}
