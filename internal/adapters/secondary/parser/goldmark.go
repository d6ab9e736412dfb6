package parser

import (
	"bytes"
	"context"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

// GoldmarkParser splits markdown into frontmatter and raw slides. HTML
// rendering happens later, in the deck parser's goldmark pipeline.
type GoldmarkParser struct{}

// NewGoldmarkParser creates a new markdown splitter
func NewGoldmarkParser() *GoldmarkParser {
	return &GoldmarkParser{}
}

// Parse parses markdown content into frontmatter and raw slides
func (p *GoldmarkParser) Parse(ctx context.Context, content []byte) (*ports.ParsedContent, error) {
	frontmatter, remaining := extractFrontmatter(content)

	sections := splitSlides(remaining)

	slides := make([]ports.RawSlide, 0, len(sections))
	for i, section := range sections {
		slides = append(slides, parseSlide(section, i))
	}

	return &ports.ParsedContent{
		Frontmatter: frontmatter,
		Slides:      slides,
	}, nil
}

// parseSlide splits a slide section into content and speaker notes. Notes
// are lines prefixed with "Note:".
func parseSlide(content []byte, index int) ports.RawSlide {
	var mainContent []string
	var notes []string

	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Note:") {
			noteContent := strings.TrimPrefix(trimmed, "Note:")
			notes = append(notes, strings.TrimSpace(noteContent))
		} else {
			mainContent = append(mainContent, line)
		}
	}

	return ports.RawSlide{
		Content: strings.TrimSpace(strings.Join(mainContent, "\n")),
		Notes:   strings.Join(notes, "\n"),
		Index:   index,
	}
}

// extractFrontmatter extracts YAML frontmatter from markdown content
func extractFrontmatter(content []byte) (map[string]interface{}, []byte) {
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, content
	}

	lines := bytes.Split(content, []byte("\n"))
	endIndex := -1

	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			endIndex = i
			break
		}
	}

	if endIndex == -1 {
		// No closing delimiter
		return nil, content
	}

	frontmatterBytes := bytes.Join(lines[1:endIndex], []byte("\n"))

	var frontmatter map[string]interface{}
	if len(frontmatterBytes) == 0 {
		frontmatter = make(map[string]interface{})
	} else if err := yaml.Unmarshal(frontmatterBytes, &frontmatter); err != nil {
		// Malformed frontmatter is treated as content
		return nil, content
	}

	remaining := bytes.Join(lines[endIndex+1:], []byte("\n"))
	return frontmatter, remaining
}

// splitSlides splits content into individual slides on "---" rules
func splitSlides(content []byte) [][]byte {
	contentStr := strings.ReplaceAll(string(content), "\r\n", "\n")

	sections := strings.Split(contentStr, "\n---\n")

	slides := make([][]byte, 0, len(sections))
	for _, section := range sections {
		trimmed := strings.TrimSpace(section)
		if trimmed != "" {
			slides = append(slides, []byte(trimmed))
		}
	}

	if len(slides) == 0 {
		return [][]byte{content}
	}

	return slides
}
