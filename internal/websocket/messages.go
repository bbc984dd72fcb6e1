package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Messages the browser sends. Microphone audio itself arrives as binary
// frames, not JSON.
const (
	MessageTypeStartChat MessageType = "start_chat"
	MessageTypeMicStatus MessageType = "mic_status"
	MessageTypeListening MessageType = "listening"
	MessageTypeBoardMove MessageType = "board_move"
	MessageTypeDrawing   MessageType = "drawing"
	MessageTypeText      MessageType = "text"
	MessageTypeEndChat   MessageType = "end_chat"
	MessageTypePing      MessageType = "ping"
)

// Messages the server sends.
const (
	MessageTypeStatus     MessageType = "status"
	MessageTypeTranscript MessageType = "transcript"
	MessageTypeSpeaking   MessageType = "speaking"
	MessageTypeAudio      MessageType = "audio"
	MessageTypeAudioStop  MessageType = "audio_stop"
	MessageTypeAudioIdle  MessageType = "audio_idle"
	MessageTypeGameState  MessageType = "game_state"
	MessageTypeGameEnded  MessageType = "game_ended"
	MessageTypeCanvas     MessageType = "canvas"
	MessageTypeImage      MessageType = "image"
	MessageTypeError      MessageType = "error"
	MessageTypePong       MessageType = "pong"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// AvatarPayload mirrors the avatar picker selection.
type AvatarPayload struct {
	Style string `json:"style"`
	Seed  string `json:"seed"`
}

// StartChatMessage opens a new conversation with the chosen companion setup.
type StartChatMessage struct {
	BaseMessage
	Voice         string        `json:"voice"`
	PersonalityID string        `json:"personality_id"`
	Avatar        AvatarPayload `json:"avatar"`
}

// MicStatusMessage reports the outcome of the browser's microphone request.
type MicStatusMessage struct {
	BaseMessage
	Status string `json:"status"`
}

// ListeningMessage toggles whether captured frames are forwarded.
type ListeningMessage struct {
	BaseMessage
	On bool `json:"on"`
}

// BoardMoveMessage is the child tapping a tic-tac-toe cell.
type BoardMoveMessage struct {
	BaseMessage
	Row int `json:"row"`
	Col int `json:"col"`
}

// DrawingMessage carries the finished drawing as base64 PNG.
type DrawingMessage struct {
	BaseMessage
	Data    string `json:"data"`
	Caption string `json:"caption,omitempty"`
}

// TextMessage injects a text-only line from the UI, such as game narration.
type TextMessage struct {
	BaseMessage
	Text string `json:"text"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// StatusMessage mirrors the session's single status line.
type StatusMessage struct {
	BaseMessage
	Phase string `json:"phase"`
	Text  string `json:"text,omitempty"`
}

// TurnPayload is one finalized transcript entry.
type TurnPayload struct {
	ID        string `json:"id"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Image     string `json:"image,omitempty"`
	ImageMIME string `json:"image_mime,omitempty"`
	CreatedAt string `json:"created_at"`
}

// TranscriptMessage carries the in-flight drafts plus newly finalized turns.
type TranscriptMessage struct {
	BaseMessage
	DraftInput  string        `json:"draft_input"`
	DraftOutput string        `json:"draft_output"`
	Turns       []TurnPayload `json:"turns,omitempty"`
}

// SpeakingMessage toggles the talking-avatar animation.
type SpeakingMessage struct {
	BaseMessage
	On bool `json:"on"`
}

// AudioMessage is one scheduled playback chunk of base64 16-bit PCM.
type AudioMessage struct {
	BaseMessage
	ID         string `json:"id"`
	Data       string `json:"data"`
	StartMs    int64  `json:"start_ms"`
	DurationMs int64  `json:"duration_ms"`
	SampleRate int    `json:"sample_rate"`
}

// GameStateMessage pushes the authoritative game state for rendering.
type GameStateMessage struct {
	BaseMessage
	Game  string `json:"game"`
	State any    `json:"state"`
}

// CanvasMessage toggles the drawing canvas.
type CanvasMessage struct {
	BaseMessage
	Visible bool `json:"visible"`
}

// ImageMessage delivers a generated picture as base64.
type ImageMessage struct {
	BaseMessage
	Prompt string `json:"prompt"`
	Data   string `json:"data"`
	MIME   string `json:"mime"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage parses an incoming message into its concrete type.
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeStartChat:
		var msg StartChatMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid start chat message: %w", err)
		}
		return &msg, nil

	case MessageTypeMicStatus:
		var msg MicStatusMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid mic status message: %w", err)
		}
		if msg.Status == "" {
			return nil, fmt.Errorf("status is required")
		}
		return &msg, nil

	case MessageTypeListening:
		var msg ListeningMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid listening message: %w", err)
		}
		return &msg, nil

	case MessageTypeBoardMove:
		var msg BoardMoveMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid board move message: %w", err)
		}
		return &msg, nil

	case MessageTypeDrawing:
		var msg DrawingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid drawing message: %w", err)
		}
		if msg.Data == "" {
			return nil, fmt.Errorf("data is required")
		}
		return &msg, nil

	case MessageTypeText:
		var msg TextMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid text message: %w", err)
		}
		if msg.Text == "" {
			return nil, fmt.Errorf("text is required")
		}
		return &msg, nil

	case MessageTypeEndChat:
		return &BaseMessage{Type: MessageTypeEndChat}, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage() *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().Format(time.RFC3339),
		},
	}
}
