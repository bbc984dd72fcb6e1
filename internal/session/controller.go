// Package session owns the lifecycle of one realtime connection to the
// conversational model and routes every inbound message to the playback,
// transcript, or tool layer.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/danarifki/temani/domain"
	"github.com/danarifki/temani/domain/entities"
	"github.com/danarifki/temani/domain/repositories"
	"github.com/danarifki/temani/internal/audio"
	"github.com/danarifki/temani/internal/tools"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status phases surfaced on the UI's single status line.
const (
	StatusConnecting = "connecting"
	StatusListening  = "listening"
	StatusSpeaking   = "speaking"
	StatusClosed     = "closed"
	StatusError      = "error"
)

// Events is the notification surface toward the rendering layer. The
// controller keeps the single authoritative copy of all session state;
// implementations only render what they are handed.
type Events interface {
	StatusChanged(phase string, detail string)
	TranscriptUpdated(draftInput, draftOutput string, finalized []entities.Turn)
	Speaking(on bool)
}

// greetingPrompt elicits the companion's opening line right after the
// session opens. Text only, no audio.
const greetingPrompt = "Please greet me warmly, tell me your name, and ask what I would like to do today."

const sendQueueSize = 256

type outboundKind int

const (
	outAudio outboundKind = iota
	outText
	outImage
	outToolResults
)

type outbound struct {
	kind    outboundKind
	pcm     []byte
	text    string
	image   []byte
	mime    string
	caption string
	results []repositories.ToolResult
}

// Controller drives one realtime session:
// Idle → Connecting → Open → (Closing) → Closed, with Failed reachable from
// any non-terminal state. It does not auto-retry; the surrounding UI must
// open a fresh controller after a failure.
type Controller struct {
	model    repositories.LiveModel
	playback *audio.Scheduler
	capture  *audio.CapturePipeline
	tools    *tools.Dispatcher
	events   Events
	logger   *zap.Logger

	mu         sync.Mutex
	state      State
	failReason string
	stream     repositories.LiveStream
	speaking   bool

	transcript  *entities.Transcript
	accumulator entities.Accumulator

	sendq     chan outbound
	closed    chan struct{}
	closeOnce sync.Once
	// wg tracks the send and receive loops so Close can join them.
	wg sync.WaitGroup
}

// Config assembles a controller from its collaborators. Sink receives the
// scheduled output audio; the controller interposes on it to track the
// speaking flag and the half-duplex capture mute.
type Config struct {
	Model      repositories.LiveModel
	Sink       audio.Sink
	Clock      audio.Clock
	Dispatcher *tools.Dispatcher
	Events     Events
	Logger     *zap.Logger
}

// NewController creates an idle controller. The capture pipeline it owns
// forwards frames into this session's outbound queue.
func NewController(cfg Config) *Controller {
	c := &Controller{
		model:      cfg.Model,
		tools:      cfg.Dispatcher,
		events:     cfg.Events,
		logger:     cfg.Logger,
		state:      StateIdle,
		transcript: entities.NewTranscript(),
		sendq:      make(chan outbound, sendQueueSize),
		closed:     make(chan struct{}),
	}
	clock := cfg.Clock
	if clock == nil {
		clock = audio.NewSystemClock()
	}
	c.playback = audio.NewScheduler(clock, &playbackTap{controller: c, next: cfg.Sink}, repositories.OutputSampleRate, cfg.Logger)
	c.capture = audio.NewCapturePipeline(c.SendAudio, cfg.Logger)
	return c
}

// Capture exposes the session's capture pipeline to the transport layer.
func (c *Controller) Capture() *audio.CapturePipeline {
	return c.capture
}

// Playback exposes the session's playback scheduler.
func (c *Controller) Playback() *audio.Scheduler {
	return c.playback
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FailReason returns the human-readable reason after a Failed transition.
func (c *Controller) FailReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failReason
}

// Transcript returns the finalized turns so far.
func (c *Controller) Transcript() []entities.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Turns()
}

// Connect opens the realtime connection configured for bidirectional audio
// with both transcription directions and the tool manifest. It returns
// immediately; progress and failure surface through Events. Sends submitted
// while the connection is still opening are queued and flushed in order
// once it resolves.
func (c *Controller) Connect(ctx context.Context, voice entities.Voice, personality entities.Personality) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("connect from state %s: %w", c.state, domain.ErrSessionNotOpen)
	}
	c.state = StateConnecting
	c.mu.Unlock()

	c.events.StatusChanged(StatusConnecting, "Getting ready...")

	go func() {
		stream, err := c.model.Connect(ctx, repositories.ConnectConfig{
			Voice:             voice,
			SystemInstruction: personality.SystemInstruction,
			Tools:             tools.Manifest(),
		})
		if err != nil {
			c.fail(fmt.Sprintf("Could not reach the companion: %v", err))
			return
		}

		c.mu.Lock()
		if c.state != StateConnecting {
			// Closed while the dial was in flight.
			c.mu.Unlock()
			_ = stream.Close()
			return
		}
		c.stream = stream
		c.state = StateOpen
		c.wg.Add(2)
		c.mu.Unlock()

		c.capture.Start()
		c.events.StatusChanged(StatusListening, "Connected! Speak whenever you like.")

		c.SendText(greetingPrompt)

		go c.sendLoop(stream)
		go c.receiveLoop(ctx, stream)
	}()
	return nil
}

// SendAudio forwards one outbound chunk of 16-bit PCM at the input rate.
// Never blocks: the chunk is dropped when the session is past Open or the
// queue is saturated.
func (c *Controller) SendAudio(pcm []byte) {
	c.enqueue(outbound{kind: outAudio, pcm: pcm})
}

// SendText injects a synthetic user-role text turn without audio, used for
// the greeting prompt and game-state narration.
func (c *Controller) SendText(text string) {
	c.enqueue(outbound{kind: outText, text: text})
}

// SubmitDrawing sends the child's drawing as an inline image plus caption
// and records a system entry in the transcript.
func (c *Controller) SubmitDrawing(png []byte, caption string) {
	c.mu.Lock()
	turn := entities.NewTurn(entities.SpeakerSystem, "sent a drawing")
	turn.Image = png
	turn.ImageMIME = "image/png"
	c.transcript.Append(turn)
	draftIn, draftOut := c.accumulator.Input(), c.accumulator.Output()
	c.mu.Unlock()

	c.events.TranscriptUpdated(draftIn, draftOut, []entities.Turn{turn})
	c.enqueue(outbound{kind: outImage, image: png, mime: "image/png", caption: caption})
}

// sendToolResults relays resolved tool calls back over the session.
func (c *Controller) sendToolResults(results []repositories.ToolResult) {
	c.enqueue(outbound{kind: outToolResults, results: results})
}

func (c *Controller) enqueue(msg outbound) {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state != StateConnecting && state != StateOpen {
		return
	}
	select {
	case c.sendq <- msg:
	default:
		c.logger.Warn("Outbound queue saturated, dropping message")
	}
}

// sendLoop drains the outbound queue in submission order once the
// connection has resolved.
func (c *Controller) sendLoop(stream repositories.LiveStream) {
	defer c.wg.Done()
	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.sendq:
			var err error
			switch msg.kind {
			case outAudio:
				err = stream.SendAudio(msg.pcm)
			case outText:
				err = stream.SendText(msg.text)
			case outImage:
				err = stream.SendImage(msg.image, msg.mime, msg.caption)
			case outToolResults:
				err = stream.SendToolResults(msg.results)
			}
			if err != nil {
				c.logger.Error("Failed to send realtime message", zap.Error(err))
			}
		}
	}
}

// receiveLoop pulls inbound messages until the stream closes, routing each
// to exactly one handler.
func (c *Controller) receiveLoop(ctx context.Context, stream repositories.LiveStream) {
	defer c.wg.Done()
	for {
		msgs, err := stream.Receive()
		if err != nil {
			c.mu.Lock()
			closing := c.state == StateClosing || c.state == StateClosed
			c.mu.Unlock()
			if closing {
				return
			}
			c.fail(fmt.Sprintf("Connection lost: %v", err))
			return
		}
		for _, msg := range msgs {
			c.handleMessage(ctx, msg)
		}
	}
}

// handleMessage routes one inbound message. Each arm is independently
// testable without constructing a real connection.
func (c *Controller) handleMessage(ctx context.Context, msg repositories.ServerMessage) {
	switch m := msg.(type) {
	case repositories.TranscriptionDelta:
		c.applyDelta(m)
	case repositories.TurnComplete:
		c.completeTurn()
	case repositories.AudioDelta:
		c.playAudio(m.PCM)
	case repositories.Interrupted:
		c.playback.Interrupt()
	case repositories.ToolCallBatch:
		c.tools.Dispatch(ctx, m.Calls, func(res repositories.ToolResult) {
			c.sendToolResults([]repositories.ToolResult{res})
		})
	default:
		c.logger.Warn("Unhandled inbound message", zap.Any("message", msg))
	}
}

func (c *Controller) applyDelta(delta repositories.TranscriptionDelta) {
	c.mu.Lock()
	switch delta.Speaker {
	case entities.SpeakerChild:
		c.accumulator.AppendInput(delta.Text)
	case entities.SpeakerCompanion:
		c.accumulator.AppendOutput(delta.Text)
	}
	draftIn, draftOut := c.accumulator.Input(), c.accumulator.Output()
	c.mu.Unlock()

	c.events.TranscriptUpdated(draftIn, draftOut, nil)
}

// completeTurn flushes both accumulators into the transcript atomically.
func (c *Controller) completeTurn() {
	c.mu.Lock()
	flushed := c.accumulator.Flush(c.transcript)
	c.mu.Unlock()

	c.events.TranscriptUpdated("", "", flushed)
}

// playAudio schedules one inbound chunk and engages the half-duplex mute so
// the model never hears its own output. The mute is engaged only after the
// scheduler accepts the chunk: a rejected chunk creates no source, so nothing
// would ever drain to release it.
func (c *Controller) playAudio(pcm []byte) {
	if _, err := c.playback.Enqueue(pcm); err != nil {
		c.logger.Error("Failed to schedule inbound audio", zap.Error(err))
		return
	}
	c.setSpeaking(true)
}

func (c *Controller) setSpeaking(on bool) {
	c.mu.Lock()
	changed := c.speaking != on
	c.speaking = on
	c.mu.Unlock()
	if !changed {
		return
	}
	c.capture.SetMuted(on)
	c.events.Speaking(on)
	if on {
		c.events.StatusChanged(StatusSpeaking, "")
	} else if c.State() == StateOpen {
		c.events.StatusChanged(StatusListening, "")
	}
}

// fail moves the session to the terminal Failed state with a
// human-readable reason. No automatic reconnection is attempted.
func (c *Controller) fail(reason string) {
	c.mu.Lock()
	if c.state == StateClosed || c.state == StateFailed {
		c.mu.Unlock()
		return
	}
	c.state = StateFailed
	c.failReason = reason
	stream := c.stream
	c.mu.Unlock()

	c.logger.Error("Session failed", zap.String("reason", reason))
	c.capture.Stop()
	c.playback.Interrupt()
	if stream != nil {
		_ = stream.Close()
	}
	c.closeOnce.Do(func() { close(c.closed) })
	c.events.StatusChanged(StatusError, reason)
}

// Close tears the session down: stops capture, releases the playback
// timeline, and closes the connection. Idempotent and safe from Idle. Each
// release is attempted even if an earlier one fails.
func (c *Controller) Close() {
	c.mu.Lock()
	switch c.state {
	case StateClosed, StateFailed:
		c.mu.Unlock()
		return
	case StateOpen, StateConnecting:
		c.state = StateClosing
	}
	stream := c.stream
	c.mu.Unlock()

	c.capture.Stop()
	c.playback.Interrupt()
	if stream != nil {
		if err := stream.Close(); err != nil {
			c.logger.Warn("Error closing realtime stream", zap.Error(err))
		}
	}
	c.closeOnce.Do(func() { close(c.closed) })
	c.wg.Wait()

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()
	c.events.StatusChanged(StatusClosed, "Chat ended.")
}

// playbackTap forwards scheduling decisions to the transport sink while
// keeping the speaking flag and capture mute in sync with the active set.
type playbackTap struct {
	controller *Controller
	next       audio.Sink
}

func (t *playbackTap) Play(src audio.Source) {
	if t.next != nil {
		t.next.Play(src)
	}
}

func (t *playbackTap) StopAll() {
	if t.next != nil {
		t.next.StopAll()
	}
	t.controller.setSpeaking(false)
}

func (t *playbackTap) Idle() {
	if t.next != nil {
		t.next.Idle()
	}
	t.controller.setSpeaking(false)
}
