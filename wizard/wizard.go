// Package wizard collects the run settings interactively.
package wizard

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"artengine/config"
)

// Collect asks for the track name, source image, output directory and variation count.
// Fields already set in initial are pre-filled. defaultImage is shown as the image fallback.
// A blank track name is not asked again; config.NewRunConfig rejects it.
func Collect(in io.Reader, out io.Writer, initial config.RawInput, defaultImage string) (config.RawInput, error) {
	raw := initial

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Track name").
				Value(&raw.TrackName),
			huh.NewInput().
				Title("Input path filename (jpg)").
				Description(fmt.Sprintf("Leave empty for default (%s)", defaultImage)).
				Placeholder(defaultImage).
				Value(&raw.ImagePath),
			huh.NewInput().
				Title("Output directory").
				Description("Leave empty to use the track name").
				Value(&raw.OutputDir),
			huh.NewInput().
				Title("Number of image variations to generate").
				Description(fmt.Sprintf("Leave empty for 1, at most %d", config.MaxVariations)).
				Placeholder("1").
				Value(&raw.Variations).
				Validate(func(s string) error {
					_, err := config.ParseVariations(s)
					return err
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return config.RawInput{}, fmt.Errorf("collect input: %w", err)
	}
	return raw, nil
}
