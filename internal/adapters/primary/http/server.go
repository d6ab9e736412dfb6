package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

// HTTPLogger provides structured logging for the HTTP server
type HTTPLogger struct {
	component string
	verbose   bool
	level     entities.LogLevel
}

// NewHTTPLogger creates a new HTTP logger instance
func NewHTTPLogger(component string, verbose bool) *HTTPLogger {
	return &HTTPLogger{
		component: component,
		verbose:   verbose,
		level:     entities.LogLevelInfo,
	}
}

// NewHTTPLoggerWithLevel creates a new HTTP logger instance with specific level
func NewHTTPLoggerWithLevel(component string, verbose bool, level entities.LogLevel) *HTTPLogger {
	return &HTTPLogger{
		component: component,
		verbose:   verbose,
		level:     level,
	}
}

// shouldLog checks if the message should be logged based on level
func (l *HTTPLogger) shouldLog(msgLevel entities.LogLevel) bool {
	levelMap := map[entities.LogLevel]int{
		entities.LogLevelDebug: 0,
		entities.LogLevelInfo:  1,
		entities.LogLevelWarn:  2,
		entities.LogLevelError: 3,
	}

	return levelMap[msgLevel] >= levelMap[l.level]
}

// Debug logs debug messages (only if debug level is enabled)
func (l *HTTPLogger) Debug(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelDebug) {
		log.Printf("[DEBUG] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// Info logs informational messages
func (l *HTTPLogger) Info(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelInfo) {
		log.Printf("[INFO] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// Warn logs warning messages
func (l *HTTPLogger) Warn(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelWarn) {
		log.Printf("[WARN] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// Error logs error messages (always logged)
func (l *HTTPLogger) Error(msg string, args ...interface{}) {
	if l.shouldLog(entities.LogLevelError) {
		log.Printf("[ERROR] [%s] "+msg, append([]interface{}{l.component}, args...)...)
	}
}

// SetLevel updates the logging level
func (l *HTTPLogger) SetLevel(level entities.LogLevel) {
	l.level = level
}

// Server implements the HTTPServer interface
type Server struct {
	server      *http.Server
	connMgr     *ConnectionManager
	renderer    ports.Renderer
	deck        *entities.Deck
	syncService ports.ViewerSync
	labHandler  *LabHandler
	assets      http.FileSystem
	config      *entities.ServerConfig
	logger      *HTTPLogger
	mu          sync.RWMutex
	running     bool
}

// NewServer creates a new HTTP server.
// config must not be nil - use config.GetDefaultConfig().Server if needed.
func NewServer(renderer ports.Renderer, config *entities.ServerConfig) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}
	return &Server{
		renderer: renderer,
		connMgr:  NewConnectionManager(),
		config:   config,
		logger:   NewHTTPLogger("server", false),
	}
}

// NewServerWithLogging creates a new HTTP server with logging configuration
func NewServerWithLogging(renderer ports.Renderer, config *entities.ServerConfig, loggingConfig *entities.LoggingConfig) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}

	level := entities.LogLevelInfo
	verbose := false

	if loggingConfig != nil {
		level = loggingConfig.GetLevel()
		verbose = loggingConfig.Verbose
	}

	return &Server{
		renderer: renderer,
		connMgr:  NewConnectionManager(),
		config:   config,
		logger:   NewHTTPLoggerWithLevel("server", verbose, level),
	}
}

// SetSyncService sets the viewer sync service
func (s *Server) SetSyncService(syncService ports.ViewerSync) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncService = syncService
}

// SetLabHandler mounts the injection lab routes
func (s *Server) SetLabHandler(h *LabHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labHandler = h
}

// SetAssets sets the filesystem served under /assets/
func (s *Server) SetAssets(assets http.FileSystem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = assets
}

// SetDeck sets the current deck
func (s *Server) SetDeck(d *entities.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deck = d
}

// GetDeck returns the current deck
func (s *Server) GetDeck() *entities.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}

	go s.connMgr.Run(ctx)

	router := s.setupRoutes()

	corsOrigins := s.config.GetCORSOrigins()
	c := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	handler := c.Handler(router)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		s.logger.Info("HTTP server starting on %s:%d", host, port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.running = false
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Broadcast(event)
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	// WebSocket endpoint
	router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	// API endpoints
	router.HandleFunc("/api/slides", s.handleSlides).Methods(http.MethodGet)
	router.HandleFunc("/api/config", s.handleConfig).Methods(http.MethodGet)
	router.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	router.HandleFunc("/api/navigate", s.handleNavigate).Methods(http.MethodPost)
	router.HandleFunc("/api/timer", s.handleTimer).Methods(http.MethodPost)

	// Injection lab, when enabled
	if s.labHandler != nil {
		s.labHandler.RegisterRoutes(router)
	}

	// Static assets embedded in the renderer
	if s.assets != nil {
		router.PathPrefix("/assets/").Handler(
			http.StripPrefix("/assets/", http.FileServer(s.assets)))
	}

	// Viewer page
	router.HandleFunc("/", s.handleViewer).Methods(http.MethodGet)

	// Apply middleware in order: security -> rate limiting -> logging -> recovery
	handler := securityHeadersMiddleware(router)
	handler = rateLimitMiddleware(handler)
	handler = createLoggingMiddleware(handler, s.logger)
	handler = createRecoveryMiddleware(handler, s.logger)

	return handler
}
