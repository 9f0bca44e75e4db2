package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"artengine/media"
)

// Agent turns the source photograph into a scene description and rewrites descriptions the
// image endpoint refuses.
type Agent struct {
	llm           LLMClient
	visionModel   string
	rephraseModel string
	forceBear     bool
	logger        *slog.Logger
}

// AgentOptions configures an Agent.
type AgentOptions struct {
	VisionModel   string
	RephraseModel string
	// ForceBear asks the describer to add a roaring bear when the photo has none.
	ForceBear bool
	Logger    *slog.Logger
}

func NewAgent(llm LLMClient, opts AgentOptions) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Agent{
		llm:           llm,
		visionModel:   opts.VisionModel,
		rephraseModel: opts.RephraseModel,
		forceBear:     opts.ForceBear,
		logger:        logger,
	}, nil
}

// Describe sends the image at imagePath to the vision model once and returns its description.
func (a *Agent) Describe(ctx context.Context, imagePath string) (Scene, error) {
	imageURL, err := media.DataURL(imagePath)
	if err != nil {
		return Scene{}, fmt.Errorf("encode image: %w", err)
	}

	a.logger.Debug("describing image", "path", imagePath, "model", a.visionModel, "force_bear", a.forceBear)
	raw, err := a.llm.Complete(ctx, BuildDescribePrompt(a.visionModel, imageURL, a.forceBear))
	if err != nil {
		return Scene{}, fmt.Errorf("describe image: %w", err)
	}
	text, err := PostProcess(raw)
	if err != nil {
		return Scene{}, fmt.Errorf("describe image: %w", err)
	}
	return Scene{Description: text}, nil
}

// Rephrase asks the text model for a version of the scene description the image endpoint
// will accept, given the error it returned, and replaces the scene with the answer.
func (a *Agent) Rephrase(ctx context.Context, scene *Scene, cause error) error {
	a.logger.Debug("rephrasing rejected description", "model", a.rephraseModel, "cause", cause)
	raw, err := a.llm.Complete(ctx, BuildRephrasePrompt(a.rephraseModel, scene.Description, cause))
	if err != nil {
		return fmt.Errorf("rephrase description: %w", err)
	}
	text, err := PostProcess(raw)
	if err != nil {
		return fmt.Errorf("rephrase description: %w", err)
	}
	scene.Replace(text)
	return nil
}
