// Package stages holds the art stage catalog: named style definitions applied to the scene
// description, listed in presentation order.
package stages

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultSelection is the stage list generated when none is requested.
var DefaultSelection = []string{"masterpiece"}

//go:embed catalog.yaml
var builtinCatalog []byte

// ArtStage is a named visual-style transformation.
type ArtStage struct {
	Type       string `yaml:"type" json:"type" validate:"required"`
	Definition string `yaml:"definition" json:"definition" validate:"required"`
}

// Catalog is an ordered list of stages.
type Catalog struct {
	Stages []ArtStage `yaml:"stages" validate:"required,min=1,dive"`
}

// Builtin returns the embedded catalog.
func Builtin() (Catalog, error) {
	return Parse(builtinCatalog)
}

// Load reads a catalog from a YAML file.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	c, err := Parse(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse stage catalog: %w", err)
	}
	for i := range c.Stages {
		c.Stages[i].Type = strings.TrimSpace(c.Stages[i].Type)
		c.Stages[i].Definition = strings.TrimSpace(c.Stages[i].Definition)
	}
	if err := validator.New().Struct(c); err != nil {
		return Catalog{}, fmt.Errorf("invalid stage catalog: %w", err)
	}
	seen := make(map[string]bool, len(c.Stages))
	for _, s := range c.Stages {
		if strings.ContainsAny(s.Type, " \t/\\") {
			return Catalog{}, fmt.Errorf("stage type %q must be a single word usable as a file name", s.Type)
		}
		if seen[s.Type] {
			return Catalog{}, fmt.Errorf("duplicate stage type %q", s.Type)
		}
		seen[s.Type] = true
	}
	return c, nil
}

// Select returns the named stages in catalog order. An empty selection yields DefaultSelection.
func (c Catalog) Select(names []string) ([]ArtStage, error) {
	if len(names) == 0 {
		names = DefaultSelection
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if n == "all" {
			return append([]ArtStage(nil), c.Stages...), nil
		}
		want[n] = true
	}
	if len(want) == 0 {
		return nil, errors.New("no art stages selected")
	}

	var out []ArtStage
	for _, s := range c.Stages {
		if want[strings.ToLower(s.Type)] {
			out = append(out, s)
			delete(want, strings.ToLower(s.Type))
		}
	}
	if len(want) > 0 {
		var unknown []string
		for n := range want {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown art stage(s): %s (available: %s)", strings.Join(unknown, ", "), strings.Join(c.Types(), ", "))
	}
	return out, nil
}

// Types lists the stage identifiers in catalog order.
func (c Catalog) Types() []string {
	types := make([]string, 0, len(c.Stages))
	for _, s := range c.Stages {
		types = append(types, s.Type)
	}
	return types
}
