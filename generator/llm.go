package generator

import "context"

// LLMClient abstracts the chat completion endpoint so tests and dry runs can swap it out.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// ImageClient abstracts the image generation endpoint.
type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string) (GeneratedImage, error)
}

// Client is a backend serving both endpoints.
type Client interface {
	LLMClient
	ImageClient
}

// LLMSettings configures a concrete backend.
type LLMSettings struct {
	APIKey  string
	BaseURL string

	ChatModel    string
	ImageModel   string
	ImageSize    string
	ImageQuality string
}
