package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/openai/openai-go/option"
	"github.com/spf13/cobra"

	"artengine/config"
	"artengine/deck"
	"artengine/generator"
	"artengine/media"
	"artengine/pipeline"
	"artengine/stages"
	"artengine/wizard"
)

type runOptions struct {
	raw         config.RawInput
	noInput     bool
	stageNames  []string
	stagesFile  string
	maxRetries  int
	bear        bool
	dryRun      bool
	verbose     bool
	subtitle    string
	titleLogo   string
	closingLogo string
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "artengine",
		Short: "Turn a photograph into an AI generated artbook",
		Long: `ArtEngine describes a photograph with a vision model, reinterprets the description through
one or more art stages with an image model, and assembles the results into a slide deck.

Values not given as flags are asked for interactively unless --no-input is set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtEngine(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.raw.TrackName, "track", "t", "", "Track name the artwork is made for")
	f.StringVarP(&opts.raw.ImagePath, "image", "i", "", "Input photograph (default from DEFAULT_IMAGE_PATH or input.jpg)")
	f.StringVarP(&opts.raw.OutputDir, "output", "o", "", "Output directory (default <track_name>_output)")
	f.StringVarP(&opts.raw.Variations, "variations", "n", "", "Number of image variations per stage, 1 to 5")
	f.BoolVar(&opts.noInput, "no-input", false, "Never prompt; fail when the track name is missing")
	f.StringSliceVarP(&opts.stageNames, "stages", "s", nil, "Art stages to generate, in catalog order (default masterpiece, 'all' for every stage)")
	f.StringVar(&opts.stagesFile, "stages-file", "", "YAML stage catalog replacing the built-in one")
	f.IntVar(&opts.maxRetries, "max-retries", -1, "Retry budget for the whole run (default MAX_IMAGE_GENERATION_RETRIES or 3)")
	f.BoolVar(&opts.bear, "bear", false, "Always add an angry, ferocious bear to the description (default ALWAYS_GENERATE_BEAR)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Use an offline model stub instead of the API")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Print detailed debug information")
	f.StringVar(&opts.subtitle, "subtitle", deck.DefaultSubtitle, "Subtitle of the deck title slide")
	f.StringVar(&opts.titleLogo, "title-logo", "logo_white.png", "Logo on the title slide (skipped when missing)")
	f.StringVar(&opts.closingLogo, "closing-logo", "logo_black.png", "Logo on the closing slide (skipped when missing)")

	return cmd
}

func runArtEngine(cmd *cobra.Command, opts *runOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

	fmt.Fprint(out, banner)

	var settings config.Settings
	var err error
	if opts.dryRun {
		settings, err = config.LoadOfflineSettings()
	} else {
		settings, err = config.LoadSettings()
	}
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-retries") {
		if opts.maxRetries < 0 {
			return fmt.Errorf("--max-retries must not be negative")
		}
		settings.MaxImageGenerationRetries = opts.maxRetries
	}
	if cmd.Flags().Changed("bear") {
		settings.AlwaysGenerateBear = opts.bear
	}

	raw := opts.raw
	if config.NormalizeTrackName(raw.TrackName) == "" && !opts.noInput {
		raw, err = wizard.Collect(cmd.InOrStdin(), out, raw, settings.DefaultImagePath)
		if err != nil {
			return err
		}
	}
	runCfg, err := config.NewRunConfig(raw, settings.DefaultImagePath)
	if err != nil {
		return err
	}
	logger.Info("run configured", "track", runCfg.TrackName, "image", runCfg.ImagePath, "output", runCfg.OutputDir, "variations", runCfg.Variations)

	selected, err := selectStages(opts)
	if err != nil {
		return err
	}

	client, err := newClient(settings, opts.dryRun)
	if err != nil {
		return err
	}
	agent, err := generator.NewAgent(client, generator.AgentOptions{
		VisionModel:   settings.VisionModel,
		RephraseModel: settings.RephraseModel,
		ForceBear:     settings.AlwaysGenerateBear,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%sAnalyzing image and generating prompt...\n\n", pipeline.ConsolePrefix)
	scene, err := agent.Describe(ctx, runCfg.ImagePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Resulting prompt: \n%s\n\n", scene.Description)

	manifest := pipeline.NewManifest(runCfg)
	budget := pipeline.NewRetryBudget(settings.MaxImageGenerationRetries)
	p, err := pipeline.New(pipeline.Options{
		Images:     client,
		Rephraser:  agent,
		Downloader: media.NewDownloader(media.NewHTTPClient(settings.HTTPTimeout)),
		Budget:     budget,
		Limiter:    pipeline.NewLimiter(settings.ImageRequestsPerMinute),
		Manifest:   manifest,
		Logger:     logger,
		Progress:   out,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%sGenerating artbook imagery...\n", pipeline.ConsolePrefix)
	results, err := p.Run(ctx, pipeline.Request{
		OutputDir:  runCfg.OutputDir,
		Stages:     selected,
		Variations: runCfg.Variations,
		Scene:      &scene,
	})
	if err != nil {
		return err
	}

	builder := deck.New(deck.Options{
		Subtitle:    opts.subtitle,
		TitleLogo:   opts.titleLogo,
		ClosingLogo: opts.closingLogo,
		Logger:      logger,
	})
	built, err := builder.Build(deck.Presentation{Title: runCfg.TrackName, Stages: results}, runCfg.OutputDir, config.Slug(runCfg.TrackName))
	if err != nil {
		return fmt.Errorf("build deck: %w", err)
	}

	manifest.FinishedAt = time.Now()
	manifest.Stages = stages.Catalog{Stages: selected}.Types()
	manifest.SceneDescription = scene.Description
	manifest.SceneRevisions = scene.Revisions
	manifest.RetriesUsed = budget.Used()
	manifest.MaxRetries = budget.Max()
	manifest.DeckPath = built.HTMLPath
	if err := manifest.Save(filepath.Join(runCfg.OutputDir, "run.json")); err != nil {
		return fmt.Errorf("save run manifest: %w", err)
	}

	fmt.Fprintf(out, "%sArtbook saved as %s (%d slides)\n", pipeline.ConsolePrefix, built.HTMLPath, built.Slides)
	fmt.Fprintf(out, "%sArtbook generation complete!\n\n", pipeline.ConsolePrefix)
	return nil
}

func selectStages(opts *runOptions) ([]stages.ArtStage, error) {
	var (
		catalog stages.Catalog
		err     error
	)
	if opts.stagesFile != "" {
		catalog, err = stages.Load(opts.stagesFile)
	} else {
		catalog, err = stages.Builtin()
	}
	if err != nil {
		return nil, err
	}
	return catalog.Select(opts.stageNames)
}

// newClient picks the model backend for a run; tests replace it.
var newClient = buildClient

func buildClient(settings config.Settings, dryRun bool) (generator.Client, error) {
	if dryRun {
		return generator.MockClient{}, nil
	}
	return generator.NewOpenAIClientFromConfig(&generator.LLMSettings{
		APIKey:       settings.APIKey,
		BaseURL:      settings.BaseURL,
		ChatModel:    settings.RephraseModel,
		ImageModel:   settings.ImageModel,
		ImageSize:    settings.ImageSize,
		ImageQuality: settings.ImageQuality,
	}, option.WithHTTPClient(media.NewHTTPClient(settings.HTTPTimeout)))
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
