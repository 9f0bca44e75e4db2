package generator

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client on the official openai-go SDK (chat completions and images).
type OpenAIClient struct {
	ChatModel    string
	ImageModel   string
	ImageSize    string
	ImageQuality string
	Opts         []option.RequestOption
}

func NewOpenAIClientFromConfig(cfg *LLMSettings, extra ...option.RequestOption) (*OpenAIClient, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set API_KEY")
	}
	if cfg.ImageModel == "" {
		return nil, errors.New("image model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)
	return &OpenAIClient{
		ChatModel:    cfg.ChatModel,
		ImageModel:   cfg.ImageModel,
		ImageSize:    cfg.ImageSize,
		ImageQuality: cfg.ImageQuality,
		Opts:         opts,
	}, nil
}

func (o *OpenAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	client := openai.NewClient(o.Opts...)

	model := prompt.Model
	if model == "" {
		model = o.ChatModel
	}
	if model == "" {
		return "", errors.New("openai: chat model is required")
	}

	var msgs []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		msgs = append(msgs, openai.SystemMessage(prompt.System))
	}
	if len(prompt.ImageURLs) == 0 {
		msgs = append(msgs, openai.UserMessage(prompt.User))
	} else {
		parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(prompt.User)}
		for _, u := range prompt.ImageURLs {
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: u}))
		}
		msgs = append(msgs, openai.UserMessage(parts))
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    msgs,
		Temperature: openai.Float(prompt.Temperature),
	}
	if prompt.MaxTokens > 0 {
		params.MaxTokens = openai.Int(prompt.MaxTokens)
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage requests exactly one image for prompt.
func (o *OpenAIClient) GenerateImage(ctx context.Context, prompt string) (GeneratedImage, error) {
	client := openai.NewClient(o.Opts...)

	params := openai.ImageGenerateParams{
		Model:  openai.ImageModel(o.ImageModel),
		Prompt: prompt,
		N:      openai.Int(1),
	}
	if o.ImageSize != "" {
		params.Size = openai.ImageGenerateParamsSize(o.ImageSize)
	}
	if o.ImageQuality != "" {
		params.Quality = openai.ImageGenerateParamsQuality(o.ImageQuality)
	}

	resp, err := client.Images.Generate(ctx, params)
	if err != nil {
		return GeneratedImage{}, err
	}
	if len(resp.Data) == 0 {
		return GeneratedImage{}, errors.New("openai: no image returned")
	}
	img := resp.Data[0]
	if img.URL == "" && img.B64JSON == "" {
		return GeneratedImage{}, errors.New("openai: image has neither url nor b64_json")
	}
	return GeneratedImage{
		URL:           img.URL,
		B64JSON:       img.B64JSON,
		RevisedPrompt: img.RevisedPrompt,
	}, nil
}
