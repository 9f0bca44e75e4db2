package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultImagePath is used when no source photograph is given.
	DefaultImagePath = "input.jpg"
	// MaxVariations is the largest accepted variation count; larger values fall back to 1.
	MaxVariations = 5

	outputDirSuffix = "_output"
)

// ErrMissingTrackName is returned when the track name is empty after whitespace normalization.
var ErrMissingTrackName = errors.New("user did not specify a track name for the artwork")

// RawInput is what the user typed, before defaulting.
type RawInput struct {
	TrackName  string
	ImagePath  string
	OutputDir  string
	Variations string
}

// RunConfig is the effective, immutable configuration for one run.
type RunConfig struct {
	TrackName  string `json:"track_name"`
	ImagePath  string `json:"image_path"`
	OutputDir  string `json:"output_dir"`
	Variations int    `json:"variations"`
}

// NewRunConfig normalizes raw input. defaultImage replaces an empty image path; when it is
// empty DefaultImagePath is used.
func NewRunConfig(in RawInput, defaultImage string) (RunConfig, error) {
	track := NormalizeTrackName(in.TrackName)
	if track == "" {
		return RunConfig{}, ErrMissingTrackName
	}

	image := strings.TrimSpace(in.ImagePath)
	if image == "" {
		image = defaultImage
	}
	if image == "" {
		image = DefaultImagePath
	}

	out := strings.TrimSpace(in.OutputDir)
	if out == "" {
		out = Slug(track) + outputDirSuffix
	}

	variations, err := ParseVariations(in.Variations)
	if err != nil {
		return RunConfig{}, err
	}

	return RunConfig{
		TrackName:  track,
		ImagePath:  image,
		OutputDir:  out,
		Variations: variations,
	}, nil
}

// NormalizeTrackName collapses runs of whitespace to single spaces and trims the ends.
func NormalizeTrackName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Slug lower-cases a normalized track name and joins its words with underscores.
func Slug(track string) string {
	return strings.ToLower(strings.ReplaceAll(NormalizeTrackName(track), " ", "_"))
}

// ParseVariations applies the variation rules: empty means 1, negative values take their
// absolute value, anything above MaxVariations resets to 1. Zero is raised to 1.
func ParseVariations(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("number of variations must be an integer, got %q", raw)
	}
	if n < 0 {
		n = -n
	}
	if n > MaxVariations || n == 0 {
		n = 1
	}
	return n, nil
}
