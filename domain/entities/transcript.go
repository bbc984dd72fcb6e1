package entities

import (
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerChild     Speaker = "child"
	SpeakerCompanion Speaker = "companion"
	SpeakerSystem    Speaker = "system"
)

// Turn is one finalized span of speech or text attributed to a single
// speaker between turn-complete boundaries.
type Turn struct {
	ID        string    `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Image     []byte    `json:"image,omitempty"`
	ImageMIME string    `json:"image_mime,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTurn creates a finalized turn.
func NewTurn(speaker Speaker, text string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// Transcript is the append-only ordered sequence of finalized turns for one
// chat session. Entries are never mutated in place once appended; the
// in-progress text for each direction lives in the Accumulator until the
// model signals turn completion.
type Transcript struct {
	turns []Turn
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{turns: make([]Turn, 0)}
}

// Append adds a finalized turn.
func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

// Turns returns a copy of the finalized turns in order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of finalized turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Accumulator holds the in-progress transcription of the current turn, one
// buffer per direction. At most one turn per speaker is open at a time; both
// buffers are flushed together when the model signals turn completion.
type Accumulator struct {
	input  string
	output string
}

// AppendInput appends a transcription delta for the child's speech.
func (a *Accumulator) AppendInput(delta string) {
	a.input += delta
}

// AppendOutput appends a transcription delta for the companion's speech.
func (a *Accumulator) AppendOutput(delta string) {
	a.output += delta
}

// Input returns the in-progress child text.
func (a *Accumulator) Input() string { return a.input }

// Output returns the in-progress companion text.
func (a *Accumulator) Output() string { return a.output }

// Empty reports whether both buffers are empty.
func (a *Accumulator) Empty() bool {
	return a.input == "" && a.output == ""
}

// Flush finalizes both buffers into the transcript, child turn first, and
// clears them. Empty buffers produce no turn.
func (a *Accumulator) Flush(t *Transcript) []Turn {
	var flushed []Turn
	if a.input != "" {
		turn := NewTurn(SpeakerChild, a.input)
		t.Append(turn)
		flushed = append(flushed, turn)
	}
	if a.output != "" {
		turn := NewTurn(SpeakerCompanion, a.output)
		t.Append(turn)
		flushed = append(flushed, turn)
	}
	a.input = ""
	a.output = ""
	return flushed
}
