package audio

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/danarifki/temani/domain"
)

// FrameSize is the number of samples per capture frame at the input rate.
const FrameSize = 4096

// CapturePipeline converts live microphone frames to the wire format and
// forwards them. Frames arriving while the pipeline is gated are discarded,
// never buffered, so no backlog accumulates.
type CapturePipeline struct {
	forward func(pcm []byte)
	logger  *zap.Logger

	mu        sync.Mutex
	started   bool
	listening bool
	muted     bool
	dropped   int
}

// NewCapturePipeline creates a pipeline that hands converted frames to
// forward in capture order.
func NewCapturePipeline(forward func(pcm []byte), logger *zap.Logger) *CapturePipeline {
	return &CapturePipeline{forward: forward, logger: logger}
}

// Start arms the pipeline once the client reports the microphone open.
// Frames flow as soon as listening is enabled.
func (p *CapturePipeline) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = true
	p.listening = true
}

// Stop disarms the pipeline and discards any in-flight gating state.
// Idempotent.
func (p *CapturePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.started = false
	p.listening = false
	p.muted = false
}

// SetListening toggles the push-to-talk gate.
func (p *CapturePipeline) SetListening(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listening = on
}

// SetMuted toggles the half-duplex mute applied while the companion is
// speaking, so the model never hears its own output.
func (p *CapturePipeline) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

// Listening reports whether frames currently pass the gate.
func (p *CapturePipeline) Listening() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started && p.listening && !p.muted
}

// ProcessFrame converts one frame of floating-point samples to 16-bit PCM
// and forwards it. Gated frames are counted and dropped.
func (p *CapturePipeline) ProcessFrame(samples []float32) {
	p.mu.Lock()
	if !p.started || !p.listening || p.muted {
		if p.started {
			p.dropped++
		}
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.forward(FloatToPCM16(samples))
}

// DroppedFrames reports how many frames the gate discarded.
func (p *CapturePipeline) DroppedFrames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Microphone status values reported by the client after its open attempt.
const (
	MicStatusGranted     = "granted"
	MicStatusDenied      = "denied"
	MicStatusUnavailable = "unavailable"
)

// MicStatusError maps a reported microphone status to the matching error,
// or nil when access was granted.
func MicStatusError(status string) error {
	switch status {
	case MicStatusGranted:
		return nil
	case MicStatusDenied:
		return domain.ErrPermissionDenied
	case MicStatusUnavailable:
		return domain.ErrDeviceUnavailable
	default:
		return fmt.Errorf("%w: unrecognized microphone status %q", domain.ErrDeviceUnavailable, status)
	}
}
