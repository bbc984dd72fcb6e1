package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/danarifki/temani/domain/entities"
	"github.com/danarifki/temani/domain/repositories"
	"github.com/danarifki/temani/internal/audio"
	"github.com/danarifki/temani/internal/session"
	"github.com/danarifki/temani/internal/tools"
)

// Client is a middleman between one websocket connection and its companion
// session. It renders session events, scheduled audio, and tool effects back
// to the browser, so it implements session.Events, audio.Sink, and
// tools.Effects.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	clientID  string
	validator *MessageValidator
	logger    *zap.Logger

	// Guards send against pushes racing the unregister close.
	sendMu     sync.Mutex
	sendClosed bool

	// Session state for the current chat, nil before start_chat.
	mutex       sync.Mutex
	controller  *session.Controller
	dispatcher  *tools.Dispatcher
	chatStarted time.Time
}

// processMessage processes one incoming JSON control message.
func (c *Client) processMessage(message []byte) {
	parsed, err := c.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected message", zap.Error(err))
		c.push(CreateErrorMessage("bad_message", err.Error()))
		return
	}

	switch msg := parsed.(type) {
	case *StartChatMessage:
		c.handleStartChat(msg)
	case *MicStatusMessage:
		c.handleMicStatus(msg)
	case *ListeningMessage:
		c.handleListening(msg)
	case *BoardMoveMessage:
		c.handleBoardMove(msg)
	case *DrawingMessage:
		c.handleDrawing(msg)
	case *TextMessage:
		c.handleText(msg)
	case *PingMessage:
		c.push(CreatePongMessage())
	case *BaseMessage:
		if msg.Type == MessageTypeEndChat {
			c.handleEndChat()
		}
	}
}

// processAudioFrame forwards one binary microphone frame into the capture
// pipeline. Frames before start_chat are dropped silently.
func (c *Client) processAudioFrame(data []byte) {
	ctrl := c.currentController()
	if ctrl == nil {
		return
	}
	samples, err := audio.BytesToFloat32(data)
	if err != nil {
		c.logger.Warn("Discarding malformed audio frame", zap.Error(err))
		return
	}
	ctrl.Capture().ProcessFrame(samples)
}

// handleStartChat wires up a fresh session for the chosen voice, personality,
// and avatar, persisting the choices for the next visit.
func (c *Client) handleStartChat(msg *StartChatMessage) {
	c.mutex.Lock()
	if c.controller != nil {
		c.mutex.Unlock()
		c.push(CreateErrorMessage("chat_active", "a chat is already in progress"))
		return
	}

	avatar := entities.AvatarConfig{Style: entities.AvatarStyle(msg.Avatar.Style), Seed: msg.Avatar.Seed}
	if !avatar.Valid() {
		avatar = entities.DefaultPreferences().Avatar
	}
	voice := entities.Voice(msg.Voice)
	if !voice.Valid() {
		voice = entities.DefaultPreferences().Voice
	}
	personality := entities.PersonalityByID(msg.PersonalityID)

	dispatcher := tools.NewDispatcher(c.hub.images, c, c.logger)
	controller := session.NewController(session.Config{
		Model:      c.hub.live,
		Sink:       c,
		Dispatcher: dispatcher,
		Events:     c,
		Logger:     c.logger,
	})
	c.controller = controller
	c.dispatcher = dispatcher
	c.chatStarted = time.Now()
	c.mutex.Unlock()

	c.persistPreferences(avatar, voice, personality)

	if err := controller.Connect(context.Background(), voice, personality); err != nil {
		c.logger.Error("Failed to start session", zap.Error(err))
		c.push(CreateErrorMessage("connect_failed", err.Error()))
	}
}

// persistPreferences stores each choice under its own key. Storage errors are
// logged and otherwise ignored; the chat proceeds on the in-memory values.
func (c *Client) persistPreferences(avatar entities.AvatarConfig, voice entities.Voice, personality entities.Personality) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := map[string]any{
		repositories.PreferenceKeyAvatar:      avatar,
		repositories.PreferenceKeyVoice:       voice,
		repositories.PreferenceKeyPersonality: personality,
	}
	for key, value := range entries {
		raw, err := json.Marshal(value)
		if err != nil {
			c.logger.Error("Failed to encode preference", zap.String("key", key), zap.Error(err))
			continue
		}
		if err := c.hub.prefs.Set(ctx, key, raw); err != nil {
			c.logger.Error("Failed to persist preference", zap.String("key", key), zap.Error(err))
		}
	}
}

// handleMicStatus reacts to the browser's microphone permission outcome. A
// denied or missing microphone keeps the session alive with listening off so
// the companion can still talk.
func (c *Client) handleMicStatus(msg *MicStatusMessage) {
	err := audio.MicStatusError(msg.Status)
	if err == nil {
		return
	}
	c.logger.Warn("Microphone unavailable", zap.String("status", msg.Status))
	if ctrl := c.currentController(); ctrl != nil {
		ctrl.Capture().SetListening(false)
	}
	c.push(CreateErrorMessage("microphone", err.Error()))
}

func (c *Client) handleListening(msg *ListeningMessage) {
	if ctrl := c.currentController(); ctrl != nil {
		ctrl.Capture().SetListening(msg.On)
	}
}

// handleBoardMove applies the child's tic-tac-toe move and narrates it to the
// model so it can respond and take its own turn.
func (c *Client) handleBoardMove(msg *BoardMoveMessage) {
	ctrl, dispatcher := c.currentSession()
	if ctrl == nil {
		c.push(CreateErrorMessage("no_chat", "no chat in progress"))
		return
	}
	game, err := dispatcher.ChildMove(msg.Row, msg.Col)
	if err != nil {
		c.push(CreateErrorMessage("bad_move", err.Error()))
		return
	}
	narration := fmt.Sprintf("I placed my %s at row %d, column %d.", entities.PlayerChild, msg.Row+1, msg.Col+1)
	if game.Winner != "" {
		narration += fmt.Sprintf(" The game is over, the result is %q.", game.Winner)
	}
	ctrl.SendText(narration)
}

func (c *Client) handleDrawing(msg *DrawingMessage) {
	ctrl := c.currentController()
	if ctrl == nil {
		c.push(CreateErrorMessage("no_chat", "no chat in progress"))
		return
	}
	png, err := audio.DecodeBase64(msg.Data)
	if err != nil {
		c.push(CreateErrorMessage("bad_drawing", "drawing is not valid base64"))
		return
	}
	caption := msg.Caption
	if caption == "" {
		caption = "Look at what I drew! What do you think it is?"
	}
	ctrl.SubmitDrawing(png, caption)
}

func (c *Client) handleText(msg *TextMessage) {
	if ctrl := c.currentController(); ctrl != nil {
		ctrl.SendText(msg.Text)
	}
}

// handleEndChat tears the session down but keeps the connection so a new
// chat can start without reconnecting.
func (c *Client) handleEndChat() {
	c.mutex.Lock()
	ctrl := c.controller
	c.controller = nil
	c.dispatcher = nil
	c.mutex.Unlock()
	if ctrl != nil {
		ctrl.Close()
	}
}

// teardown releases the session when the connection goes away.
func (c *Client) teardown() {
	c.handleEndChat()
}

// closeSend closes the outbound channel exactly once.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

func (c *Client) currentController() *session.Controller {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.controller
}

func (c *Client) currentSession() (*session.Controller, *tools.Dispatcher) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.controller, c.dispatcher
}

// push marshals and queues one outbound message, dropping it when the client
// cannot keep up rather than blocking session goroutines.
func (c *Client) push(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to encode outbound message", zap.Error(err))
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Outbound buffer full, dropping message")
	}
}

// StatusChanged implements session.Events.
func (c *Client) StatusChanged(phase string, detail string) {
	c.push(&StatusMessage{
		BaseMessage: BaseMessage{Type: MessageTypeStatus, Timestamp: time.Now().Format(time.RFC3339)},
		Phase:       phase,
		Text:        detail,
	})
}

// TranscriptUpdated implements session.Events.
func (c *Client) TranscriptUpdated(draftInput, draftOutput string, finalized []entities.Turn) {
	msg := &TranscriptMessage{
		BaseMessage: BaseMessage{Type: MessageTypeTranscript},
		DraftInput:  draftInput,
		DraftOutput: draftOutput,
	}
	for _, turn := range finalized {
		payload := TurnPayload{
			ID:        turn.ID,
			Speaker:   string(turn.Speaker),
			Text:      turn.Text,
			CreatedAt: turn.CreatedAt.Format(time.RFC3339),
		}
		if len(turn.Image) > 0 {
			payload.Image = audio.EncodeBase64(turn.Image)
			payload.ImageMIME = turn.ImageMIME
		}
		msg.Turns = append(msg.Turns, payload)
	}
	c.push(msg)
}

// Speaking implements session.Events.
func (c *Client) Speaking(on bool) {
	c.push(&SpeakingMessage{BaseMessage: BaseMessage{Type: MessageTypeSpeaking}, On: on})
}

// Play implements audio.Sink: one scheduled chunk with its slot on the
// playback timeline, so the browser plays it gaplessly after its
// predecessor.
func (c *Client) Play(src audio.Source) {
	c.push(&AudioMessage{
		BaseMessage: BaseMessage{Type: MessageTypeAudio},
		ID:          src.ID,
		Data:        audio.EncodeBase64(src.PCM),
		StartMs:     src.Start.Milliseconds(),
		DurationMs:  src.Duration.Milliseconds(),
		SampleRate:  repositories.OutputSampleRate,
	})
}

// StopAll implements audio.Sink.
func (c *Client) StopAll() {
	c.push(&BaseMessage{Type: MessageTypeAudioStop})
}

// Idle implements audio.Sink.
func (c *Client) Idle() {
	c.push(&BaseMessage{Type: MessageTypeAudioIdle})
}

// GameUpdated implements tools.Effects.
func (c *Client) GameUpdated(game string, state any) {
	c.push(&GameStateMessage{BaseMessage: BaseMessage{Type: MessageTypeGameState}, Game: game, State: state})
}

// GameEnded implements tools.Effects.
func (c *Client) GameEnded() {
	c.push(&BaseMessage{Type: MessageTypeGameEnded})
}

// CanvasVisible implements tools.Effects.
func (c *Client) CanvasVisible(visible bool) {
	c.push(&CanvasMessage{BaseMessage: BaseMessage{Type: MessageTypeCanvas}, Visible: visible})
}

// ImageGenerated implements tools.Effects.
func (c *Client) ImageGenerated(prompt string, img repositories.GeneratedImage) {
	c.push(&ImageMessage{
		BaseMessage: BaseMessage{Type: MessageTypeImage},
		Prompt:      prompt,
		Data:        audio.EncodeBase64(img.Data),
		MIME:        img.MIMEType,
	})
}
