// Package audio implements the PCM plumbing for one chat session: the wire
// codec, the microphone capture pipeline, and the playback scheduler.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const bytesPerSample = 2 // 16-bit signed PCM throughout

// EncodeBase64 converts raw PCM bytes to the text-safe wire representation.
func EncodeBase64(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}

// DecodeBase64 converts the wire representation back to raw PCM bytes.
func DecodeBase64(data string) ([]byte, error) {
	pcm, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode audio payload: %w", err)
	}
	return pcm, nil
}

// FloatToPCM16 converts floating-point samples to little-endian 16-bit
// signed PCM. Samples are clamped symmetrically to [-1, 1] before scaling so
// clipped input distorts instead of wrapping around.
func FloatToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32767)))
	}
	return out
}

// PCM16ToFloat converts little-endian 16-bit signed PCM into per-channel
// floating-point samples, dividing each integer sample by 32768.
func PCM16ToFloat(pcm []byte, channels int) ([][]float32, error) {
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	if len(pcm)%(bytesPerSample*channels) != 0 {
		return nil, fmt.Errorf("pcm length %d is not a whole number of frames", len(pcm))
	}
	frames := len(pcm) / bytesPerSample / channels
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			sample := int16(binary.LittleEndian.Uint16(pcm[(i*channels+ch)*2:]))
			out[ch][i] = float32(sample) / 32768.0
		}
	}
	return out, nil
}

// BytesToFloat32 reinterprets little-endian IEEE 754 bytes as float32
// samples, the layout capture frames arrive in from the browser.
func BytesToFloat32(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("frame length %d is not a whole number of float32 samples", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

// PCMMIMEType tags realtime media with its sample rate.
func PCMMIMEType(rate int) string {
	return fmt.Sprintf("audio/pcm;rate=%d", rate)
}

// Duration computes the playback duration of a mono PCM buffer.
func Duration(pcm []byte, sampleRate int) time.Duration {
	samples := len(pcm) / bytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
