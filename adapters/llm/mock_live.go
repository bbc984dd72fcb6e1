package llm

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/danarifki/temani/domain/entities"
	"github.com/danarifki/temani/domain/repositories"
	"github.com/danarifki/temani/internal/audio"
)

// MockLive is a scripted realtime model for local development without
// provider credentials. Every text or image send elicits a canned spoken
// reply; raw audio sends are acknowledged but not transcribed.
type MockLive struct {
	logger *zap.Logger
}

// NewMockLive creates a mock realtime model.
func NewMockLive(logger *zap.Logger) *MockLive {
	return &MockLive{logger: logger}
}

// Connect implements repositories.LiveModel.
func (m *MockLive) Connect(ctx context.Context, config repositories.ConnectConfig) (repositories.LiveStream, error) {
	m.logger.Info("Opened mock realtime session", zap.String("voice", string(config.Voice)))
	return &mockLiveStream{
		recv:   make(chan []repositories.ServerMessage, 16),
		closed: make(chan struct{}),
	}, nil
}

type mockLiveStream struct {
	mu        sync.Mutex
	replies   int
	recv      chan []repositories.ServerMessage
	closed    chan struct{}
	closeOnce sync.Once
}

var mockReplies = []string{
	"Hi! I'm your pretend friend today. What would you like to do?",
	"That sounds like fun! Tell me more.",
	"Wow, great idea! What should we try next?",
}

func (s *mockLiveStream) reply(text string) {
	msgs := []repositories.ServerMessage{
		repositories.TranscriptionDelta{Speaker: entities.SpeakerCompanion, Text: text},
		repositories.AudioDelta{PCM: tonePCM(440, 300)},
		repositories.TurnComplete{},
	}
	select {
	case s.recv <- msgs:
	case <-s.closed:
	}
}

func (s *mockLiveStream) nextReply() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := mockReplies[s.replies%len(mockReplies)]
	s.replies++
	return text
}

func (s *mockLiveStream) SendAudio(pcm []byte) error {
	return nil
}

func (s *mockLiveStream) SendText(text string) error {
	go s.reply(s.nextReply())
	return nil
}

func (s *mockLiveStream) SendImage(data []byte, mimeType, caption string) error {
	go s.reply(fmt.Sprintf("What a wonderful drawing! I love it. (%d bytes of %s)", len(data), mimeType))
	return nil
}

func (s *mockLiveStream) SendToolResults(results []repositories.ToolResult) error {
	return nil
}

func (s *mockLiveStream) Receive() ([]repositories.ServerMessage, error) {
	select {
	case msgs := <-s.recv:
		return msgs, nil
	case <-s.closed:
		return nil, fmt.Errorf("mock stream closed")
	}
}

func (s *mockLiveStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// tonePCM synthesizes a sine tone as 16-bit mono PCM at the output rate, so
// the playback path carries real audio even against the mock.
func tonePCM(freqHz float64, durationMs int) []byte {
	samples := repositories.OutputSampleRate * durationMs / 1000
	buf := make([]float32, samples)
	for i := range buf {
		buf[i] = float32(0.2 * math.Sin(2*math.Pi*freqHz*float64(i)/float64(repositories.OutputSampleRate)))
	}
	return audio.FloatToPCM16(buf)
}
