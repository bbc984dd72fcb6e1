package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/danarifki/temani/domain/repositories"
)

// MockImages generates flat-color placeholder pictures for local development
// without provider credentials.
type MockImages struct{}

// NewMockImages creates a mock image generator.
func NewMockImages() *MockImages {
	return &MockImages{}
}

// Generate implements repositories.ImageGenerator.
func (m *MockImages) Generate(_ context.Context, prompt string, count int) ([]repositories.GeneratedImage, error) {
	if count < 1 {
		return nil, fmt.Errorf("invalid image count %d", count)
	}
	out := make([]repositories.GeneratedImage, 0, count)
	for i := 0; i < count; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 64, 64))
		shade := uint8(80 + (len(prompt)+i*40)%160)
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				img.Set(x, y, color.RGBA{R: shade, G: 120, B: 200, A: 255})
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode placeholder image: %w", err)
		}
		out = append(out, repositories.GeneratedImage{Data: buf.Bytes(), MIMEType: "image/png"})
	}
	return out, nil
}
