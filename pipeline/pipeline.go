// Package pipeline drives image generation for every art stage and variation, rephrasing
// rejected scene descriptions against a retry budget shared by the whole run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"artengine/deck"
	"artengine/generator"
	"artengine/media"
	"artengine/stages"
)

// ConsolePrefix starts every progress line printed to the user.
const ConsolePrefix = "ArtEngine > "

// Rephraser rewrites a rejected scene description in place.
type Rephraser interface {
	Rephrase(ctx context.Context, scene *generator.Scene, cause error) error
}

// Downloader stores a remote image at dest.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Options wires a Pipeline.
type Options struct {
	Images     generator.ImageClient
	Rephraser  Rephraser
	Downloader Downloader
	Budget     *RetryBudget
	// Limiter paces generation requests; nil means unlimited.
	Limiter  *rate.Limiter
	Manifest *Manifest
	Logger   *slog.Logger
	// Progress receives the user-facing console lines.
	Progress io.Writer
}

// Pipeline runs the art stages sequentially.
type Pipeline struct {
	images     generator.ImageClient
	rephraser  Rephraser
	downloader Downloader
	budget     *RetryBudget
	limiter    *rate.Limiter
	manifest   *Manifest
	logger     *slog.Logger
	progress   io.Writer
}

// Request is the work of one run.
type Request struct {
	OutputDir  string
	Stages     []stages.ArtStage
	Variations int
	Scene      *generator.Scene
}

func New(opts Options) (*Pipeline, error) {
	switch {
	case opts.Images == nil:
		return nil, errors.New("image client is required")
	case opts.Rephraser == nil:
		return nil, errors.New("rephraser is required")
	case opts.Downloader == nil:
		return nil, errors.New("downloader is required")
	case opts.Budget == nil:
		return nil, errors.New("retry budget is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	return &Pipeline{
		images:     opts.Images,
		rephraser:  opts.Rephraser,
		downloader: opts.Downloader,
		budget:     opts.Budget,
		limiter:    opts.Limiter,
		manifest:   opts.Manifest,
		logger:     logger,
		progress:   progress,
	}, nil
}

// NewLimiter allows perMinute generation requests per minute; zero or less disables pacing.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Run generates req.Variations images for each stage in order. The returned stages are in
// request order. On *ExhaustedError the images already saved stay on disk and nothing is
// returned.
func (p *Pipeline) Run(ctx context.Context, req Request) ([]deck.Stage, error) {
	if req.Scene == nil {
		return nil, errors.New("scene description is required")
	}
	if req.Variations < 1 {
		return nil, fmt.Errorf("variations must be at least 1, got %d", req.Variations)
	}
	if err := media.EnsureDir(req.OutputDir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	results := make([]deck.Stage, 0, len(req.Stages))
	for _, stage := range req.Stages {
		result := deck.Stage{
			Title:       stage.Type,
			Description: stage.Definition,
		}
		for v := 1; v <= req.Variations; v++ {
			path, err := p.generate(ctx, req.OutputDir, stage, v, req.Scene)
			if err != nil {
				return nil, err
			}
			result.Images = append(result.Images, path)
			p.printf("%s image saved as %s\n", capitalize(stage.Type), path)
		}
		results = append(results, result)
	}
	return results, nil
}

// generate loops until one image for stage is saved or the shared budget runs out. Each
// attempt recomposes the prompt from the current scene description.
func (p *Pipeline) generate(ctx context.Context, dir string, stage stages.ArtStage, variation int, scene *generator.Scene) (string, error) {
	for {
		prompt := generator.StagePrompt(stage, scene.Description)

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		p.logger.Debug("generating image", "stage", stage.Type, "variation", variation, "retries_used", p.budget.Used())
		img, genErr := p.images.GenerateImage(ctx, prompt)
		if genErr == nil {
			path, err := p.save(ctx, dir, stage, img)
			if err != nil {
				return "", err
			}
			p.record(Attempt{
				Stage:         stage.Type,
				Variation:     variation,
				Prompt:        prompt,
				Outcome:       OutcomeSucceeded,
				ImageURL:      img.URL,
				ImagePath:     path,
				RevisedPrompt: img.RevisedPrompt,
			})
			return path, nil
		}

		p.record(Attempt{
			Stage:     stage.Type,
			Variation: variation,
			Prompt:    prompt,
			Outcome:   OutcomeRejected,
			Error:     genErr.Error(),
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		p.logger.Warn("image generation rejected", "stage", stage.Type, "variation", variation, "err", genErr)
		p.printf("ERROR! Generated prompt not accepted by the image model. Rephrasing...\n\n")

		if !p.budget.Spend() {
			return "", &ExhaustedError{Max: p.budget.Max(), Last: genErr}
		}
		if err := p.rephraser.Rephrase(ctx, scene, genErr); err != nil {
			return "", err
		}
		p.logger.Info("scene description rephrased", "revision", scene.Revisions, "retries_left", p.budget.Remaining())
		p.printf("New prompt: %s\n\n", scene.Description)
	}
}

func (p *Pipeline) save(ctx context.Context, dir string, stage stages.ArtStage, img generator.GeneratedImage) (string, error) {
	path, err := media.NextImagePath(dir, stage.Type)
	if err != nil {
		return "", err
	}
	if img.URL != "" {
		if err := p.downloader.Download(ctx, img.URL, path); err != nil {
			return "", err
		}
		return path, nil
	}
	if err := media.SaveBase64(img.B64JSON, path); err != nil {
		return "", err
	}
	return path, nil
}

func (p *Pipeline) record(a Attempt) {
	if p.manifest == nil {
		return
	}
	p.manifest.appendAttempt(a)
}

func (p *Pipeline) printf(format string, args ...any) {
	fmt.Fprintf(p.progress, ConsolePrefix+format, args...)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
