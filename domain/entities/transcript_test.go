package entities

import (
	"testing"
)

func TestAccumulatorFlushOrdersChildFirst(t *testing.T) {
	transcript := NewTranscript()
	var acc Accumulator

	acc.AppendOutput("Hi ")
	acc.AppendOutput("there!")
	acc.AppendInput("Hello ")
	acc.AppendInput("Sparky")

	flushed := acc.Flush(transcript)

	if len(flushed) != 2 {
		t.Fatalf("Expected 2 flushed turns, got %d", len(flushed))
	}
	if flushed[0].Speaker != SpeakerChild || flushed[0].Text != "Hello Sparky" {
		t.Errorf("Unexpected child turn: %+v", flushed[0])
	}
	if flushed[1].Speaker != SpeakerCompanion || flushed[1].Text != "Hi there!" {
		t.Errorf("Unexpected companion turn: %+v", flushed[1])
	}
	if !acc.Empty() {
		t.Error("Expected accumulator to be empty after flush")
	}
	if transcript.Len() != 2 {
		t.Errorf("Expected 2 transcript turns, got %d", transcript.Len())
	}
}

func TestAccumulatorFlushSkipsEmptyDirections(t *testing.T) {
	transcript := NewTranscript()
	var acc Accumulator

	acc.AppendOutput("Just me talking.")
	flushed := acc.Flush(transcript)

	if len(flushed) != 1 {
		t.Fatalf("Expected 1 flushed turn, got %d", len(flushed))
	}
	if flushed[0].Speaker != SpeakerCompanion {
		t.Errorf("Expected companion turn, got %s", flushed[0].Speaker)
	}

	// Nothing buffered: flushing again is a no-op.
	if flushed := acc.Flush(transcript); len(flushed) != 0 {
		t.Errorf("Expected no turns from empty flush, got %d", len(flushed))
	}
	if transcript.Len() != 1 {
		t.Errorf("Expected 1 transcript turn, got %d", transcript.Len())
	}
}

func TestTranscriptTurnsReturnsCopy(t *testing.T) {
	transcript := NewTranscript()
	transcript.Append(NewTurn(SpeakerChild, "hello"))

	turns := transcript.Turns()
	turns[0].Text = "mutated"

	if transcript.Turns()[0].Text != "hello" {
		t.Error("Expected transcript to be unaffected by mutation of the returned slice")
	}
}

func TestNewTurnAssignsIdentity(t *testing.T) {
	a := NewTurn(SpeakerChild, "one")
	b := NewTurn(SpeakerChild, "two")
	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Errorf("Expected distinct non-empty turn IDs, got %q and %q", a.ID, b.ID)
	}
	if a.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}
