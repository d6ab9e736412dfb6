package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	httpserver "github.com/fredcamaral/promptdeck/internal/adapters/primary/http"
	"github.com/fredcamaral/promptdeck/internal/adapters/secondary/browser"
	"github.com/fredcamaral/promptdeck/internal/adapters/secondary/config"
	"github.com/fredcamaral/promptdeck/internal/adapters/secondary/llm"
	"github.com/fredcamaral/promptdeck/internal/adapters/secondary/parser"
	"github.com/fredcamaral/promptdeck/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/promptdeck/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/promptdeck/internal/domain/entities"
	"github.com/fredcamaral/promptdeck/internal/domain/services"
)

var (
	// Serve command flags
	servePort      int
	serveHost      string
	serveNoBrowser bool
	serveTheme     string
	serveWatch     bool
	serveLab       bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve a talk from a markdown file",
	Long: `Start a local HTTP server to present your markdown talk.
Slides are separated by "---" lines; lines starting with "Note:" become
speaker notes. The deck reloads in the browser when the file changes,
and every connected viewer follows the presenter's navigation.

Example:
  promptdeck serve talk.md
  promptdeck serve talk.md --port 8080 --no-browser
  promptdeck serve talk.md --lab`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Don't open browser automatically (overrides config)")
	serveCmd.Flags().StringVarP(&serveTheme, "theme", "t", "", "Theme to use (overrides config)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", true, "Reload the deck when the file changes")
	serveCmd.Flags().BoolVar(&serveLab, "lab", false, "Enable the prompt-injection lab endpoints")
}

func runServe(cmd *cobra.Command, args []string) error {
	talkPath := args[0]

	cfg, err := loadServeConfig(cmd, talkPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("verbose") {
		verbose, _ := cmd.Flags().GetBool("verbose")
		cfg.Logging.Verbose = verbose
	}

	logger, closeLog, err := buildLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	defer closeLog()

	ctx := cmd.Context()

	// Parsing pipeline
	deckParser := parser.NewDeckParserAdapter(parser.NewGoldmarkParser())
	deckParser.SetSourceName(filepath.Base(talkPath))

	pollWatcher := watcher.NewPollingWatcher(
		cfg.Watcher.GetInterval(),
		cfg.Watcher.GetDebounce(),
		logger,
	)
	defer func() { _ = pollWatcher.Stop() }()

	deckService := services.NewDeckService(deckParser, pollWatcher)

	deck, err := deckService.LoadDeck(ctx, talkPath)
	if err != nil {
		return fmt.Errorf("loading talk: %w", err)
	}
	if deck.Theme == "" {
		deck.Theme = cfg.Theme.Name
	}

	viewRenderer, err := renderer.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	syncService, err := services.NewViewerSyncService(deck, logger)
	if err != nil {
		return fmt.Errorf("creating sync service: %w", err)
	}
	defer syncService.Stop()

	server := httpserver.NewServerWithLogging(viewRenderer, &cfg.Server, &cfg.Logging)
	server.SetDeck(deck)
	server.SetSyncService(syncService)
	server.SetAssets(renderer.Assets())

	if cfg.Lab.Enabled {
		if err := attachLab(server, cfg, logger); err != nil {
			logger.Warn("injection lab disabled", "error", err)
		}
	}

	// Fail fast on an occupied port before handing off to the server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	probe, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cannot bind %s: %w", addr, err)
	}
	if err := probe.Close(); err != nil {
		return fmt.Errorf("releasing probe listener: %w", err)
	}

	if err := server.Start(ctx, cfg.Server.Port, cfg.Server.Host); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	url := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Serving %s at %s\n", filepath.Base(talkPath), url)
	logger.Info("talk served",
		"path", talkPath,
		"url", url,
		"slides", deck.SlideCount(),
		"theme", deck.Theme,
		"lab", cfg.Lab.Enabled,
	)

	var liveReload *services.LiveReloadService
	if serveWatch {
		liveReload = services.NewLiveReloadService(pollWatcher, server, deckService, syncService, logger)
		if err := liveReload.Start(ctx, talkPath); err != nil {
			logger.Warn("live reload unavailable", "error", err)
			liveReload = nil
		}
	}

	if cfg.Browser.AutoOpen {
		launcher := browser.NewLauncher(cfg.Browser.Browser)
		if err := launcher.Launch(url, false); err != nil {
			logger.Warn("could not open browser", "error", err)
		}
	}

	// Block until interrupted
	<-ctx.Done()

	if liveReload != nil {
		if err := liveReload.Stop(); err != nil {
			logger.Warn("stopping live reload", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout())
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}

	return nil
}

// loadServeConfig builds the effective configuration. Precedence, lowest
// to highest: defaults, global config, local config, environment, flags.
func loadServeConfig(cmd *cobra.Command, talkPath string) (*entities.Config, error) {
	loader := config.NewTOMLLoader()
	merger := config.NewConfigMerger()
	ctx := cmd.Context()

	globalConfig, err := loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	localConfig, err := loader.LoadLocal(ctx, filepath.Dir(talkPath))
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}

	cfg := merger.Merge(config.GetDefaultConfig(), globalConfig, localConfig)
	cfg = merger.ApplyEnvVars(cfg)
	cfg = merger.ApplyFlags(cfg, changedFlags(cmd))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := validateServeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// changedFlags collects only the flags the user actually set
func changedFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})

	if cmd.Flags().Changed("port") {
		flags["port"] = servePort
	}
	if cmd.Flags().Changed("host") {
		flags["host"] = serveHost
	}
	if cmd.Flags().Changed("theme") {
		flags["theme"] = serveTheme
	}
	if cmd.Flags().Changed("no-browser") {
		flags["no-browser"] = serveNoBrowser
	}
	if cmd.Flags().Changed("watch") {
		flags["watch"] = serveWatch
	}
	if cmd.Flags().Changed("lab") {
		flags["lab"] = serveLab
	}

	return flags
}

// validateServeConfig validates configuration after it's loaded
func validateServeConfig(cfg *entities.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", cfg.Server.Port)
	}

	if strings.Contains(cfg.Server.Host, " ") || strings.Contains(cfg.Server.Host, "!") {
		return fmt.Errorf("invalid host: %s", cfg.Server.Host)
	}

	return nil
}

// attachLab wires the injection lab endpoints onto the server. The model
// API key comes exclusively from PROMPTDECK_LAB_API_KEY.
func attachLab(server *httpserver.Server, cfg *entities.Config, logger *slog.Logger) error {
	client, err := llm.NewClient(&cfg.Lab)
	if err != nil {
		return err
	}

	labService := services.NewInjectionLabService(client, client, &cfg.Lab, logger)
	server.SetLabHandler(httpserver.NewLabHandlerWithLogging(labService, &cfg.Logging))

	logger.Info("injection lab enabled",
		"levels", len(labService.Levels()),
		"model", cfg.Lab.Model,
	)
	return nil
}

// buildLogger creates the process logger from the logging configuration
func buildLogger(cfg *entities.LoggingConfig) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closeLog := func() {}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 - path validated by config
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		closeLog = func() { _ = f.Close() }
	}

	var level slog.Level
	switch cfg.GetLevel() {
	case entities.LogLevelDebug:
		level = slog.LevelDebug
	case entities.LogLevelWarn:
		level = slog.LevelWarn
	case entities.LogLevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closeLog, nil
}
