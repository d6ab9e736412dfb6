package renderer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
)

//go:embed assets
var assetFS embed.FS

// Assets returns the embedded static files served under /assets/.
func Assets() http.FileSystem {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(fmt.Sprintf("renderer assets missing: %v", err))
	}
	return http.FS(sub)
}

// TemplateRenderer implements the Renderer interface using Go templates
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer creates a new template-based renderer
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl := template.New("deck")

	tmpl = tmpl.Funcs(template.FuncMap{
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s) // #nosec G203 - slide HTML is produced by our own markdown pipeline
		},
	})

	_, err := tmpl.Parse(deckTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing deck template: %w", err)
	}

	_, err = tmpl.New("slide").Parse(slideTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing slide template: %w", err)
	}

	return &TemplateRenderer{
		templates: tmpl,
	}, nil
}

// RenderDeck renders the complete viewer page for a deck
func (r *TemplateRenderer) RenderDeck(ctx context.Context, d *entities.Deck) ([]byte, error) {
	data := struct {
		Title        string
		Author       string
		Date         string
		Theme        string
		SpeakerImage string
		Logo         string
		Slides       []entities.Slide
		TotalSlides  int
	}{
		Title:        d.Title,
		Author:       d.Author,
		Date:         d.Date.Format("2006-01-02"),
		Theme:        d.Theme,
		SpeakerImage: d.SpeakerImage,
		Logo:         d.Logo,
		Slides:       d.Slides,
		TotalSlides:  len(d.Slides),
	}

	var buf bytes.Buffer
	if err := r.templates.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing deck template: %w", err)
	}

	return buf.Bytes(), nil
}

// RenderSlide renders a single slide to HTML
func (r *TemplateRenderer) RenderSlide(ctx context.Context, s *entities.Slide) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "slide", s); err != nil {
		return nil, fmt.Errorf("executing slide template: %w", err)
	}

	return buf.Bytes(), nil
}

// deckTemplate is the viewer page. Exactly one slide carries the "active"
// class at any time; script.js moves it as the shared state changes.
const deckTemplate = `<!DOCTYPE html>
<html lang="en" data-theme="{{.Theme}}">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="/assets/style.css">
</head>
<body>
    <div class="deck" data-total="{{.TotalSlides}}">
        {{if .Logo}}<img class="deck-logo" src="{{.Logo}}" alt="logo">{{end}}
        {{if .SpeakerImage}}<img class="speaker-image" src="{{.SpeakerImage}}" alt="{{.Author}}">{{end}}

        {{range $index, $slide := .Slides}}
        <section class="slide{{if eq $index 0}} active{{end}}" data-index="{{$index}}">
            {{$slide.HTML | safeHTML}}
            {{if $slide.Notes}}
            <aside class="speaker-notes" hidden>{{$slide.Notes}}</aside>
            {{end}}
        </section>
        {{end}}

        <nav class="controls">
            <button id="prev" aria-label="Previous slide">&#8249;</button>
            <div class="indicators">
                {{range $index, $slide := .Slides}}
                <span class="dot{{if eq $index 0}} active{{end}}" data-index="{{$index}}"></span>
                {{end}}
            </div>
            <button id="next" aria-label="Next slide">&#8250;</button>
        </nav>

        <div class="progress-bar"><div id="progress" class="progress-fill"></div></div>

        <div class="counter">
            <span id="counter">1 / {{.TotalSlides}}</span>
        </div>

        <div class="deck-meta">
            {{if .Author}}<span>{{.Author}}</span>{{end}}
            {{if .Date}}<span>{{.Date}}</span>{{end}}
        </div>
    </div>

    <script src="/assets/script.js"></script>
</body>
</html>`

const slideTemplate = `{{.HTML | safeHTML}}
{{if .Notes}}
<aside class="speaker-notes" hidden>{{.Notes}}</aside>
{{end}}`
