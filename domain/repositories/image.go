package repositories

import "context"

// GeneratedImage is one image returned by the generation provider.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// ImageGenerator is the single-shot image generation boundary. Generation
// may take multiple seconds; callers must not block other work on it.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, count int) ([]GeneratedImage, error)
}
