// Package deck assembles the generated artwork into a slide deck: one Markdown source file
// and a self-contained HTML rendering of it.
package deck

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	DefaultSubtitle = "The Last Bear Ender Artbook"

	DefaultDisclaimer = "Disclaimer: All images presented herein were created using DALL·E technology. " +
		"Wilrik De Loose, also known as The Last Bear Ender, holds and retains all copyright ownership of these images. " +
		"Unauthorized use, reproduction, or generation of images based on the works of The Last Bear Ender, " +
		"including the images generated and displayed here, is strictly prohibited. " +
		"All rights are reserved by Wilrik De Loose, and any infringement of these rights will be fully pursued of the law."

	slideSeparator = "\n\n---\n\n"
)

// Stage is the artwork generated for one art stage.
type Stage struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// Presentation is the ordered input of the deck.
type Presentation struct {
	Title  string
	Stages []Stage
}

// Options controls the fixed slides.
type Options struct {
	Subtitle   string
	Disclaimer string
	// TitleLogo and ClosingLogo are optional image paths; missing files are skipped.
	TitleLogo   string
	ClosingLogo string
	Logger      *slog.Logger
}

// Builder writes decks.
type Builder struct {
	opts   Options
	md     goldmark.Markdown
	logger *slog.Logger
}

// Result names the files a build produced.
type Result struct {
	MarkdownPath string
	HTMLPath     string
	Slides       int
}

type slide struct {
	Class    string
	Markdown string
}

func New(opts Options) *Builder {
	if opts.Subtitle == "" {
		opts.Subtitle = DefaultSubtitle
	}
	if opts.Disclaimer == "" {
		opts.Disclaimer = DefaultDisclaimer
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{
		opts:   opts,
		md:     goldmark.New(goldmark.WithExtensions(extension.Typographer)),
		logger: logger,
	}
}

// Build writes <dir>/<base>.md and <dir>/<base>.html. Image paths in p are made relative to dir.
func (b *Builder) Build(p Presentation, dir, base string) (Result, error) {
	if strings.TrimSpace(p.Title) == "" {
		return Result{}, errors.New("presentation title is required")
	}
	if base == "" {
		return Result{}, errors.New("deck file name is required")
	}

	slides := b.slides(p, dir)

	sources := make([]string, 0, len(slides))
	for _, s := range slides {
		sources = append(sources, s.Markdown)
	}
	mdPath := filepath.Join(dir, base+".md")
	if err := os.WriteFile(mdPath, []byte(strings.Join(sources, slideSeparator)+"\n"), 0o644); err != nil {
		return Result{}, err
	}

	page, err := b.renderHTML(p.Title, slides)
	if err != nil {
		return Result{}, err
	}
	htmlPath := filepath.Join(dir, base+".html")
	if err := os.WriteFile(htmlPath, page, 0o644); err != nil {
		return Result{}, err
	}
	b.logger.Debug("deck written", "markdown", mdPath, "html", htmlPath, "slides", len(slides))

	return Result{MarkdownPath: mdPath, HTMLPath: htmlPath, Slides: len(slides)}, nil
}

func (b *Builder) slides(p Presentation, dir string) []slide {
	var out []slide

	var title strings.Builder
	if ref, ok := b.assetRef(b.opts.TitleLogo, dir); ok {
		title.WriteString(fmt.Sprintf("![logo](<%s>)\n\n", ref))
	}
	title.WriteString("# " + escapeMarkdown(strings.ToUpper(p.Title)) + "\n\n")
	title.WriteString(escapeMarkdown(b.opts.Subtitle))
	out = append(out, slide{Class: "title", Markdown: title.String()})

	out = append(out, slide{Class: "blank", Markdown: ""})

	for _, st := range p.Stages {
		out = append(out, slide{Class: "stage", Markdown: "## " + escapeMarkdown(st.Title)})
		for i, img := range st.Images {
			out = append(out, slide{
				Class:    "image",
				Markdown: fmt.Sprintf("![%s %d](<%s>)", escapeMarkdown(st.Title), i+1, relativeRef(img, dir)),
			})
		}
	}

	var closing strings.Builder
	if ref, ok := b.assetRef(b.opts.ClosingLogo, dir); ok {
		closing.WriteString(fmt.Sprintf("![logo](<%s>)\n\n", ref))
	}
	closing.WriteString(escapeMarkdown(b.opts.Disclaimer))
	out = append(out, slide{Class: "closing", Markdown: closing.String()})

	return out
}

func (b *Builder) assetRef(path, dir string) (string, bool) {
	if path == "" {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		b.logger.Warn("deck asset skipped", "path", path, "err", err)
		return "", false
	}
	return relativeRef(path, dir), true
}

func relativeRef(path, dir string) string {
	if abs, err := filepath.Abs(path); err == nil {
		if absDir, err := filepath.Abs(dir); err == nil {
			if rel, err := filepath.Rel(absDir, abs); err == nil {
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.ToSlash(path)
}

func (b *Builder) mdToHTML(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := b.md.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

type renderedSlide struct {
	Class string
	Body  template.HTML
}

func (b *Builder) renderHTML(title string, slides []slide) ([]byte, error) {
	rendered := make([]renderedSlide, 0, len(slides))
	for _, s := range slides {
		body, err := b.mdToHTML(s.Markdown)
		if err != nil {
			return nil, fmt.Errorf("render slide: %w", err)
		}
		rendered = append(rendered, renderedSlide{Class: s.Class, Body: body})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, struct {
		Title  string
		Slides []renderedSlide
	}{Title: title, Slides: rendered}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "#", `\#`, "<", "&lt;", ">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var pageTemplate = template.Must(template.New("deck").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; background: #111; font-family: Helvetica, Arial, sans-serif; }
.slide { box-sizing: border-box; width: 960px; height: 720px; margin: 24px auto; padding: 72px 96px;
  background: #000; color: #fff; display: flex; flex-direction: column; justify-content: center; overflow: hidden; }
.slide img { max-height: 240px; align-self: flex-start; }
.slide-title h1 { font-size: 56px; margin: 24px 0 8px; }
.slide-title p { color: #646464; font-size: 20px; }
.slide-blank { background: #fff; }
.slide-stage { justify-content: flex-end; }
.slide-stage h2 { font-size: 44px; font-weight: bold; }
.slide-image { background: #fff; }
.slide-closing { background: #fff; color: #808080; }
.slide-closing p { font-size: 10px; }
@media print { body { background: none; } .slide { margin: 0; page-break-after: always; } }
</style>
</head>
<body>
{{range .Slides}}<section class="slide slide-{{.Class}}">
{{.Body}}</section>
{{end}}</body>
</html>
`))
