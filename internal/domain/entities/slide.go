package entities

import (
	"errors"
	"strconv"
	"strings"
)

// Slide is one static content unit in the deck's fixed ordered sequence.
type Slide struct {
	// ID is a unique identifier for the slide
	ID string `json:"id,omitempty"`

	// Index is the slide position in the deck (0-based)
	Index int `json:"index"`

	// Title is extracted from the first H1 heading or generated
	Title string `json:"title"`

	// Content is the raw markdown content of the slide
	Content string `json:"content"`

	// HTML is the rendered HTML content (populated during parsing)
	HTML string `json:"html,omitempty"`

	// Notes contains speaker notes for this slide
	Notes string `json:"notes,omitempty"`
}

// Validate ensures the slide has usable content.
func (s *Slide) Validate() error {
	if strings.TrimSpace(s.Content) == "" {
		return errors.New("slide content cannot be empty")
	}

	if s.Index < 0 {
		return errors.New("slide index must be non-negative")
	}

	return nil
}

// ExtractTitle returns the slide title from the first H1 heading,
// or a generated fallback.
func (s *Slide) ExtractTitle() string {
	for _, line := range strings.Split(s.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimPrefix(trimmed, "# ")
		}
	}

	return "Slide " + strconv.Itoa(s.Index+1)
}

// HasNotes returns true if the slide carries speaker notes.
func (s *Slide) HasNotes() bool {
	return strings.TrimSpace(s.Notes) != ""
}
