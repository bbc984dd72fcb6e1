package audio

import (
	"math"
	"testing"
	"time"
)

func TestFloatToPCM16RoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 0.25, -1, 1}
	pcm := FloatToPCM16(in)

	if len(pcm) != len(in)*2 {
		t.Fatalf("Expected %d bytes, got %d", len(in)*2, len(pcm))
	}

	channels, err := PCM16ToFloat(pcm, 1)
	if err != nil {
		t.Fatalf("PCM16ToFloat failed: %v", err)
	}
	out := channels[0]

	if len(out) != len(in) {
		t.Fatalf("Expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		if math.Abs(float64(out[i]-in[i])) > 1.0/32768.0 {
			t.Errorf("Sample %d: expected %v, got %v", i, in[i], out[i])
		}
	}
}

func TestFloatToPCM16Clamps(t *testing.T) {
	pcm := FloatToPCM16([]float32{2.5, -3.0})

	channels, err := PCM16ToFloat(pcm, 1)
	if err != nil {
		t.Fatalf("PCM16ToFloat failed: %v", err)
	}
	out := channels[0]

	if out[0] <= 0.99 || out[0] > 1 {
		t.Errorf("Expected positive overdrive to clamp near 1, got %v", out[0])
	}
	if out[1] >= -0.99 || out[1] < -1 {
		t.Errorf("Expected negative overdrive to clamp near -1, got %v", out[1])
	}
}

func TestPCM16ToFloatRejectsPartialFrames(t *testing.T) {
	if _, err := PCM16ToFloat([]byte{0x01}, 1); err == nil {
		t.Error("Expected error for odd byte count")
	}
	if _, err := PCM16ToFloat([]byte{0x01, 0x02}, 2); err == nil {
		t.Error("Expected error for incomplete stereo frame")
	}
	if _, err := PCM16ToFloat(nil, 0); err == nil {
		t.Error("Expected error for zero channels")
	}
}

func TestPCM16ToFloatDeinterleavesStereo(t *testing.T) {
	left := []float32{0.5, -0.5}
	right := []float32{0.25, -0.25}
	interleaved := make([]float32, 0, 4)
	for i := range left {
		interleaved = append(interleaved, left[i], right[i])
	}
	pcm := FloatToPCM16(interleaved)

	channels, err := PCM16ToFloat(pcm, 2)
	if err != nil {
		t.Fatalf("PCM16ToFloat failed: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("Expected 2 channels, got %d", len(channels))
	}
	for i := range left {
		if math.Abs(float64(channels[0][i]-left[i])) > 1.0/32768.0 {
			t.Errorf("Left sample %d: expected %v, got %v", i, left[i], channels[0][i])
		}
		if math.Abs(float64(channels[1][i]-right[i])) > 1.0/32768.0 {
			t.Errorf("Right sample %d: expected %v, got %v", i, right[i], channels[1][i])
		}
	}
}

func TestBase64RoundTrip(t *testing.T) {
	pcm := []byte{0x00, 0x10, 0xFF, 0x7F}
	decoded, err := DecodeBase64(EncodeBase64(pcm))
	if err != nil {
		t.Fatalf("DecodeBase64 failed: %v", err)
	}
	if len(decoded) != len(pcm) {
		t.Fatalf("Expected %d bytes, got %d", len(pcm), len(decoded))
	}
	for i := range pcm {
		if decoded[i] != pcm[i] {
			t.Errorf("Byte %d: expected %x, got %x", i, pcm[i], decoded[i])
		}
	}

	if _, err := DecodeBase64("not base64!!!"); err == nil {
		t.Error("Expected error for invalid base64")
	}
}

func TestBytesToFloat32(t *testing.T) {
	in := []float32{0.5, -0.25, 1}
	raw := make([]byte, 0, len(in)*4)
	for _, s := range in {
		bits := math.Float32bits(s)
		raw = append(raw, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}

	out, err := BytesToFloat32(raw)
	if err != nil {
		t.Fatalf("BytesToFloat32 failed: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("Sample %d: expected %v, got %v", i, in[i], out[i])
		}
	}

	if _, err := BytesToFloat32(raw[:5]); err == nil {
		t.Error("Expected error for truncated frame")
	}
}

func TestDuration(t *testing.T) {
	// One second of mono 16-bit PCM at 24kHz.
	pcm := make([]byte, 24000*2)
	if d := Duration(pcm, 24000); d != time.Second {
		t.Errorf("Expected 1s, got %v", d)
	}
	if d := Duration(pcm[:len(pcm)/2], 24000); d != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", d)
	}
}

func TestPCMMIMEType(t *testing.T) {
	if got := PCMMIMEType(16000); got != "audio/pcm;rate=16000" {
		t.Errorf("Unexpected MIME type %q", got)
	}
}
