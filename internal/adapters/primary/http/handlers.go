package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// SlidesResponse represents the slides API response
type SlidesResponse struct {
	Title  string          `json:"title"`
	Author string          `json:"author,omitempty"`
	Date   string          `json:"date,omitempty"`
	Theme  string          `json:"theme"`
	Slides []SlideResponse `json:"slides"`
}

// SlideResponse represents a single slide in the API response
type SlideResponse struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	HTML  string `json:"html"`
	Notes string `json:"notes,omitempty"`
}

// ConfigResponse represents the configuration API response
type ConfigResponse struct {
	Version      string `json:"version"`
	Theme        string `json:"theme"`
	WebSocketURL string `json:"websocket_url"`
	LiveReload   bool   `json:"live_reload"`
	LabEnabled   bool   `json:"lab_enabled"`
}

// NavigateRequest is the body accepted by POST /api/navigate. Either a
// navigation action or a raw key event may be given; key events are mapped
// through the binding table below.
type NavigateRequest struct {
	Action string `json:"action,omitempty"`
	Event  string `json:"event,omitempty"`
	Slide  *int   `json:"slide,omitempty"`
}

// keyBindings maps viewer key events onto navigation actions. Unknown keys
// are rejected rather than guessed at.
var keyBindings = map[string]string{
	"ArrowRight": "next",
	"Space":      "next",
	"ArrowLeft":  "prev",
	"Home":       "first",
	"End":        "last",
	"next":       "next",
	"prev":       "prev",
}

// handleViewer serves the main viewer HTML
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	deck := s.GetDeck()
	if deck == nil {
		deck = placeholderDeck()
	}

	html, err := s.renderer.RenderDeck(r.Context(), deck)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		s.logger.Error("Failed to write viewer response: %v", err)
	}
}

// handleSlides returns the slides data as JSON
func (s *Server) handleSlides(w http.ResponseWriter, r *http.Request) {
	deck := s.GetDeck()
	if deck == nil {
		deck = placeholderDeck()
	}

	s.writeJSON(w, s.deckToResponse(deck))
}

// handleConfig returns the server configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	theme := "default"
	if deck := s.GetDeck(); deck != nil && deck.Theme != "" {
		theme = deck.Theme
	}

	s.mu.RLock()
	labEnabled := s.labHandler != nil
	s.mu.RUnlock()

	s.writeJSON(w, ConfigResponse{
		Version:      "1.0.0",
		Theme:        theme,
		WebSocketURL: "/ws",
		LiveReload:   true,
		LabEnabled:   labEnabled,
	})
}

// handleState returns the shared navigation state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	syncService := s.syncService
	s.mu.RUnlock()

	if syncService == nil {
		http.Error(w, "Navigation not available", http.StatusServiceUnavailable)
		return
	}

	s.writeJSON(w, syncService.GetState())
}

// handleNavigate applies a navigation command and returns the updated state
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	action := req.Action
	if action == "" && req.Event != "" {
		bound, ok := keyBindings[req.Event]
		if !ok {
			http.Error(w, "Unknown input event", http.StatusBadRequest)
			return
		}
		action = bound
	}
	if action == "" {
		http.Error(w, "action or event is required", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	syncService := s.syncService
	s.mu.RUnlock()

	if syncService == nil {
		http.Error(w, "Navigation not available", http.StatusServiceUnavailable)
		return
	}

	eventData := map[string]interface{}{"action": action}
	if req.Slide != nil {
		eventData["slide"] = float64(*req.Slide)
	}

	event := entities.NewSyncEvent("navigation", eventData)
	if err := syncService.Broadcast(event); err != nil {
		var rangeErr *entities.OutOfRangeError
		if errors.As(err, &rangeErr) {
			s.writeOutOfRange(w, rangeErr)
			return
		}
		s.handleError(w, err, http.StatusBadRequest)
		return
	}

	s.writeJSON(w, syncService.GetState())
}

// handleTimer applies a talk timer command and returns the updated state
func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	validActions := map[string]bool{
		"pause":  true,
		"resume": true,
		"reset":  true,
	}

	if !validActions[req.Action] {
		http.Error(w, "Invalid timer action", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	syncService := s.syncService
	s.mu.RUnlock()

	if syncService == nil {
		http.Error(w, "Navigation not available", http.StatusServiceUnavailable)
		return
	}

	event := entities.NewSyncEvent("timer", map[string]interface{}{
		"action": req.Action,
	})

	if err := syncService.Broadcast(event); err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, syncService.GetState())
}

// handleError handles error responses with sanitized messages
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusMethodNotAllowed:
		message = "Method not allowed"
	case http.StatusTooManyRequests:
		message = "Too many requests"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	// Log the actual error server-side; clients get the sanitized message
	s.logger.Error("HTTP error (status %d): %v", status, err)

	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		s.logger.Error("Failed to encode error response: %v", encodeErr)
	}
}

// writeOutOfRange reports a rejected slide index back to the caller. The
// index is client input, so the detail is safe to echo.
func (s *Server) writeOutOfRange(w http.ResponseWriter, rangeErr *entities.OutOfRangeError) {
	response := ErrorResponse{
		Error:   http.StatusText(http.StatusBadRequest),
		Message: rangeErr.Error(),
		Time:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to encode error response: %v", err)
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response: %v", err)
	}
}

// createHTMLSanitizer creates a restrictive HTML sanitizer for slide content
func createHTMLSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "br", "hr")
	p.AllowElements("strong", "b", "em", "i", "u", "s", "mark")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("blockquote", "pre", "code")
	p.AllowElements("a").AllowAttrs("href").OnElements("a")
	p.AllowElements("img").AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowElements("div", "span").AllowAttrs("class").OnElements("div", "span")
	p.AllowAttrs("class", "id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "p", "div", "span")

	return p
}

var htmlSanitizer = createHTMLSanitizer()

// deckToResponse converts a deck to an API response with sanitized HTML
func (s *Server) deckToResponse(d *entities.Deck) SlidesResponse {
	slides := make([]SlideResponse, len(d.Slides))
	for i, slide := range d.Slides {
		slides[i] = SlideResponse{
			Index: slide.Index,
			Title: htmlSanitizer.Sanitize(slide.Title),
			HTML:  htmlSanitizer.Sanitize(slide.HTML),
			Notes: htmlSanitizer.Sanitize(slide.Notes),
		}
	}

	dateStr := ""
	if !d.Date.IsZero() {
		dateStr = d.Date.Format("2006-01-02")
	}

	return SlidesResponse{
		Title:  htmlSanitizer.Sanitize(d.Title),
		Author: htmlSanitizer.Sanitize(d.Author),
		Date:   dateStr,
		Theme:  d.Theme,
		Slides: slides,
	}
}

func placeholderDeck() *entities.Deck {
	return &entities.Deck{
		Title: "No Deck Loaded",
		Theme: "default",
		Slides: []entities.Slide{
			{Index: 0, Title: "No deck loaded", HTML: "<h1>No deck loaded</h1><p>Please specify a talk file.</p>"},
		},
	}
}
