package parser

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

// DeckParserAdapter converts parsed markdown into a deck entity, rendering
// each slide body to HTML with syntax-highlighted code blocks.
type DeckParserAdapter struct {
	markdownParser ports.MarkdownParser
	goldmark       goldmark.Markdown
	sourceName     string
}

// NewDeckParserAdapter creates a new deck parser adapter
func NewDeckParserAdapter(markdownParser ports.MarkdownParser) *DeckParserAdapter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
			),
		),
		goldmark.WithParserOptions(
			gmparser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(), // Raw HTML allowed, sanitized at the API boundary
		),
	)

	return &DeckParserAdapter{
		markdownParser: markdownParser,
		goldmark:       md,
	}
}

// SetSourceName records the talk file name, used to derive a deck title
// when the frontmatter does not provide one.
func (p *DeckParserAdapter) SetSourceName(name string) {
	p.sourceName = name
}

// Parse implements the DeckParser interface
func (p *DeckParserAdapter) Parse(content []byte) (*entities.Deck, error) {
	parsed, err := p.markdownParser.Parse(context.Background(), content)
	if err != nil {
		return nil, fmt.Errorf("parsing markdown: %w", err)
	}

	deck := &entities.Deck{
		Metadata: parsed.Frontmatter,
		Slides:   make([]entities.Slide, 0, len(parsed.Slides)),
	}

	if title, ok := getStringFromMap(parsed.Frontmatter, "title"); ok {
		deck.Title = title
	}
	if author, ok := getStringFromMap(parsed.Frontmatter, "author"); ok {
		deck.Author = author
	}
	if theme, ok := getStringFromMap(parsed.Frontmatter, "theme"); ok {
		deck.Theme = theme
	}
	if image, ok := getStringFromMap(parsed.Frontmatter, "speaker_image"); ok {
		deck.SpeakerImage = image
	}
	if logo, ok := getStringFromMap(parsed.Frontmatter, "logo"); ok {
		deck.Logo = logo
	}
	if dateStr, ok := getStringFromMap(parsed.Frontmatter, "date"); ok {
		if date, err := time.Parse("2006-01-02", dateStr); err == nil {
			deck.Date = date
		}
	}

	if deck.Title == "" {
		deck.Title = p.titleFromSource()
	}
	if deck.Date.IsZero() {
		deck.Date = time.Now()
	}

	for _, rawSlide := range parsed.Slides {
		slide := entities.Slide{
			Index:   rawSlide.Index,
			Content: rawSlide.Content,
			Notes:   rawSlide.Notes,
		}
		slide.Title = slide.ExtractTitle()

		htmlContent, err := p.renderMarkdown(rawSlide.Content)
		if err != nil {
			return nil, fmt.Errorf("rendering slide %d: %w", rawSlide.Index, err)
		}
		slide.HTML = htmlContent

		deck.Slides = append(deck.Slides, slide)
	}

	if err := deck.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deck: %w", err)
	}

	return deck, nil
}

// titleFromSource derives a human title from the talk file name, so
// "prompt-injection.md" becomes "Prompt Injection".
func (p *DeckParserAdapter) titleFromSource() string {
	if p.sourceName == "" {
		return ""
	}

	base := filepath.Base(p.sourceName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)

	return cases.Title(language.English).String(base)
}

// renderMarkdown renders markdown content to HTML
func (p *DeckParserAdapter) renderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := p.goldmark.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// getStringFromMap safely extracts a string value from a map
func getStringFromMap(m map[string]interface{}, key string) (string, bool) {
	if m == nil {
		return "", false
	}

	val, exists := m[key]
	if !exists {
		return "", false
	}

	str, ok := val.(string)
	return str, ok
}
