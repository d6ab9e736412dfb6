package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

// LabHandler serves the prompt-injection lab that accompanies the talk.
// Each level hides a prompt behind a progressively stronger defense.
type LabHandler struct {
	lab    ports.LabService
	logger *HTTPLogger
}

// NewLabHandler creates a new lab handler
func NewLabHandler(lab ports.LabService) *LabHandler {
	return &LabHandler{
		lab:    lab,
		logger: NewHTTPLogger("lab", false),
	}
}

// NewLabHandlerWithLogging creates a new lab handler with logging configuration
func NewLabHandlerWithLogging(lab ports.LabService, loggingConfig *entities.LoggingConfig) *LabHandler {
	level := entities.LogLevelInfo
	verbose := false

	if loggingConfig != nil {
		level = loggingConfig.GetLevel()
		verbose = loggingConfig.Verbose
	}

	return &LabHandler{
		lab:    lab,
		logger: NewHTTPLoggerWithLevel("lab", verbose, level),
	}
}

// RegisterRoutes registers the lab routes
func (h *LabHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/lab", h.HandleIndex).Methods(http.MethodGet)
	router.HandleFunc("/lab/check", h.HandleCheck).Methods(http.MethodGet)
	router.HandleFunc("/lab/{level:[0-9]+}", h.HandleLevel).Methods(http.MethodGet)
}

// levelInfo describes one challenge level in the lab index.
type levelInfo struct {
	Level int    `json:"level"`
	Mode  string `json:"mode"`
	URL   string `json:"url"`
}

// HandleIndex lists the available levels
func (h *LabHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	challenges := h.lab.Levels()
	levels := make([]levelInfo, len(challenges))
	for i, c := range challenges {
		levels[i] = levelInfo{
			Level: c.Level,
			Mode:  string(c.Mode),
			URL:   "/lab/" + strconv.Itoa(c.Level) + "?text=",
		}
	}

	response := map[string]interface{}{
		"levels": levels,
		"check":  "/lab/check?level=N&prompt=...",
		"hint":   "Extract the hidden prompt at each level, then submit it to /lab/check.",
	}

	h.writeJSON(w, response)
}

// HandleLevel evaluates a submission against one level
func (h *LabHandler) HandleLevel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	level, err := strconv.Atoi(vars["level"])
	if err != nil {
		http.Error(w, "Invalid level", http.StatusBadRequest)
		return
	}

	text := r.URL.Query().Get("text")
	if text == "" {
		http.Error(w, "text parameter required", http.StatusBadRequest)
		return
	}

	result, err := h.lab.Submit(r.Context(), level, text)
	if err != nil {
		if errors.Is(err, entities.ErrUnknownLevel) {
			http.Error(w, "Unknown level", http.StatusNotFound)
			return
		}
		h.logger.Error("Lab submission failed (level %d): %v", level, err)
		http.Error(w, "Submission failed", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, result)
}

// HandleCheck validates a reconstructed prompt and reveals the flag
func (h *LabHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(r.URL.Query().Get("level"))
	if err != nil {
		http.Error(w, "level parameter required", http.StatusBadRequest)
		return
	}

	prompt := r.URL.Query().Get("prompt")
	if prompt == "" {
		http.Error(w, "prompt parameter required", http.StatusBadRequest)
		return
	}

	result, err := h.lab.CheckFlag(level, prompt)
	if err != nil {
		http.Error(w, "Unknown level", http.StatusNotFound)
		return
	}

	h.writeJSON(w, result)
}

func (h *LabHandler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode lab response: %v", err)
	}
}
