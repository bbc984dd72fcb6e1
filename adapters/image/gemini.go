// Package image adapts Google's Imagen models to the single-shot image
// generation boundary.
package image

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/danarifki/temani/domain"
	"github.com/danarifki/temani/domain/repositories"
)

const defaultImageModel = "imagen-3.0-generate-002"

// GeminiImages generates images from text prompts.
type GeminiImages struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

// NewGeminiImages creates the image-generation adapter.
func NewGeminiImages(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiImages, error) {
	if apiKey == "" {
		return nil, domain.ErrMissingCredential
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiImages{client: client, logger: logger, model: defaultImageModel}, nil
}

// Generate requests count images for the prompt and returns their bytes.
func (g *GeminiImages) Generate(ctx context.Context, prompt string, count int) ([]repositories.GeneratedImage, error) {
	if count < 1 {
		count = 1
	}
	resp, err := g.client.Models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, fmt.Errorf("generate images: %w", err)
	}
	if len(resp.GeneratedImages) == 0 {
		return nil, errors.New("image model returned no candidates")
	}

	out := make([]repositories.GeneratedImage, 0, len(resp.GeneratedImages))
	for _, img := range resp.GeneratedImages {
		if img.Image == nil || len(img.Image.ImageBytes) == 0 {
			continue
		}
		out = append(out, repositories.GeneratedImage{
			Data:     img.Image.ImageBytes,
			MIMEType: img.Image.MIMEType,
		})
	}
	g.logger.Info("Generated images",
		zap.String("model", g.model),
		zap.Int("count", len(out)))
	return out, nil
}
