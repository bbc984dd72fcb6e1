package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Clock is the monotonic playback timeline. Zero is the moment the output
// surface for this chat session was created.
type Clock interface {
	Now() time.Duration
}

type systemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock backed by wall time, starting at zero.
func NewSystemClock() Clock {
	return &systemClock{start: time.Now()}
}

func (c *systemClock) Now() time.Duration {
	return time.Since(c.start)
}

// Source is one scheduled, currently-active unit of output audio.
type Source struct {
	ID       string
	Start    time.Duration
	Duration time.Duration
	PCM      []byte
	Samples  []float32
}

// End returns the end of the source's time span.
func (s Source) End() time.Duration {
	return s.Start + s.Duration
}

// Sink receives scheduling decisions. Play delivers one scheduled source,
// StopAll cuts every active source immediately, Idle fires when the active
// set drains naturally.
type Sink interface {
	Play(src Source)
	StopAll()
	Idle()
}

// Scheduler owns the output audio timeline for one session. Chunks are
// scheduled strictly sequentially: each new source starts no earlier than
// max(previous scheduled end, current clock), so spans never overlap and
// playback is gapless. The cursor only ever advances, except on Interrupt.
type Scheduler struct {
	clock      Clock
	sink       Sink
	sampleRate int
	logger     *zap.Logger

	mu     sync.Mutex
	next   time.Duration
	active map[string]Source
	timers map[string]*time.Timer

	// afterFunc is swapped out by tests to control source completion.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// NewScheduler creates a playback scheduler for mono PCM at sampleRate.
func NewScheduler(clock Clock, sink Sink, sampleRate int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		clock:      clock,
		sink:       sink,
		sampleRate: sampleRate,
		logger:     logger,
		active:     make(map[string]Source),
		timers:     make(map[string]*time.Timer),
		afterFunc:  time.AfterFunc,
	}
}

// Enqueue decodes one chunk of 16-bit mono PCM, schedules it at
// max(nextStartTime, now), and advances the cursor by its duration.
func (s *Scheduler) Enqueue(pcm []byte) (Source, error) {
	channels, err := PCM16ToFloat(pcm, 1)
	if err != nil {
		return Source{}, fmt.Errorf("enqueue playback chunk: %w", err)
	}
	if len(channels[0]) == 0 {
		return Source{}, fmt.Errorf("enqueue playback chunk: empty buffer")
	}
	dur := Duration(pcm, s.sampleRate)

	s.mu.Lock()
	now := s.clock.Now()
	start := s.next
	if now > start {
		start = now
	}
	src := Source{
		ID:       uuid.NewString(),
		Start:    start,
		Duration: dur,
		PCM:      pcm,
		Samples:  channels[0],
	}
	s.next = src.End()
	s.active[src.ID] = src
	s.timers[src.ID] = s.afterFunc(src.End()-now, func() { s.complete(src.ID) })
	s.mu.Unlock()

	s.sink.Play(src)
	s.logger.Debug("Scheduled playback source",
		zap.String("sourceID", src.ID),
		zap.Duration("start", src.Start),
		zap.Duration("duration", src.Duration))
	return src, nil
}

// complete removes a naturally-finished source and signals idle when the
// active set drains.
func (s *Scheduler) complete(id string) {
	s.mu.Lock()
	if _, ok := s.active[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.active, id)
	delete(s.timers, id)
	idle := len(s.active) == 0
	s.mu.Unlock()

	if idle {
		s.sink.Idle()
	}
}

// Interrupt stops every active source, clears the set, and resets the
// cursor to zero so the next chunk starts at the current clock instead of a
// stale future time. Called on every model-interrupted signal and on
// session teardown.
func (s *Scheduler) Interrupt() {
	s.mu.Lock()
	stopped := len(s.active)
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.active = make(map[string]Source)
	s.next = 0
	s.mu.Unlock()

	s.sink.StopAll()
	if stopped > 0 {
		s.logger.Debug("Interrupted playback", zap.Int("stoppedSources", stopped))
	}
}

// ActiveCount returns the number of currently-active sources.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Cursor returns the current nextStartTime.
func (s *Scheduler) Cursor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
