package repositories

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/danarifki/temani/domain/entities"
)

// Audio sample rates are fixed by the realtime model contract: 16kHz mono
// in, 24kHz mono out, 16-bit signed PCM both ways.
const (
	InputSampleRate  = 16000
	OutputSampleRate = 24000
)

// ToolDeclaration describes one callable tool in the session's manifest.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// ToolCall is a function-invocation request emitted by the model, correlated
// with its result by the opaque CallID the model supplied.
type ToolCall struct {
	CallID string
	Name   string
	Args   map[string]any
}

// ToolResult completes one pending tool call. Exactly one result is sent per
// call id.
type ToolResult struct {
	CallID  string
	Name    string
	Payload map[string]any
	IsError bool
}

// ConnectConfig configures one realtime session at open time.
type ConnectConfig struct {
	Voice             entities.Voice
	SystemInstruction string
	Tools             []ToolDeclaration
}

// ServerMessage is one decoded inbound event from the realtime model. Each
// variant is dispatched independently so every arm is testable without a
// live connection.
type ServerMessage interface {
	isServerMessage()
}

// TranscriptionDelta is a partial transcription fragment for one direction.
type TranscriptionDelta struct {
	Speaker entities.Speaker
	Text    string
}

// TurnComplete signals that the current exchange is finished and both
// transcription accumulators should be flushed.
type TurnComplete struct{}

// AudioDelta carries one inline chunk of 16-bit PCM at OutputSampleRate.
type AudioDelta struct {
	PCM []byte
}

// Interrupted signals that model playback was cut off and all scheduled
// output audio must be discarded.
type Interrupted struct{}

// ToolCallBatch carries one or more tool calls to resolve.
type ToolCallBatch struct {
	Calls []ToolCall
}

func (TranscriptionDelta) isServerMessage() {}
func (TurnComplete) isServerMessage()       {}
func (AudioDelta) isServerMessage()         {}
func (Interrupted) isServerMessage()        {}
func (ToolCallBatch) isServerMessage()      {}

// LiveStream is one open realtime connection to the model. Receive blocks
// until the next inbound message; all sends are safe to call from the
// session's send loop only.
type LiveStream interface {
	// SendAudio forwards one chunk of 16-bit PCM at InputSampleRate as a
	// realtime media event.
	SendAudio(pcm []byte) error

	// SendText injects a synthetic user-role text turn with no audio.
	SendText(text string) error

	// SendImage injects an inline image plus caption as a user turn.
	SendImage(data []byte, mimeType, caption string) error

	// SendToolResults completes a batch of pending tool calls.
	SendToolResults(results []ToolResult) error

	// Receive returns the next batch of decoded inbound messages, in
	// arrival order. It returns an error when the connection closes.
	Receive() ([]ServerMessage, error)

	// Close tears down the connection. Idempotent.
	Close() error
}

// LiveModel opens realtime bidirectional audio sessions.
type LiveModel interface {
	Connect(ctx context.Context, config ConnectConfig) (LiveStream, error)
}
