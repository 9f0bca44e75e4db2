package generator

import (
	"context"
	"strings"
)

// placeholderPNG is a 1x1 grey pixel.
const placeholderPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAAAAAA6fptVAAAACklEQVR4nGNoAAAAggCBd81ytgAAAABJRU5ErkJggg=="

// MockClient is an offline Client for dry runs; it never calls an external model.
type MockClient struct{}

func (m MockClient) Complete(_ context.Context, prompt Prompt) (string, error) {
	if len(prompt.ImageURLs) > 0 {
		return "A lone brown bear stands upright at the edge of a misty pine forest at dusk, " +
			"rendered in muted greens and warm umber tones, in a realistic painterly style.", nil
	}
	var sb strings.Builder
	sb.WriteString("A gentler rendition of the scene: ")
	sb.WriteString(prompt.User)
	return sb.String(), nil
}

func (m MockClient) GenerateImage(_ context.Context, prompt string) (GeneratedImage, error) {
	return GeneratedImage{B64JSON: placeholderPNG, RevisedPrompt: prompt}, nil
}
