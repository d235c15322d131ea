package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evotyindia/chatbot-project-intel-hpe/internal/chat"
	"github.com/evotyindia/chatbot-project-intel-hpe/internal/config"
	"github.com/evotyindia/chatbot-project-intel-hpe/internal/ingest"
	"github.com/evotyindia/chatbot-project-intel-hpe/internal/llm"
	"github.com/evotyindia/chatbot-project-intel-hpe/internal/scaledown"
	"github.com/evotyindia/chatbot-project-intel-hpe/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chatbot HTTP server",
	Long:  `Loads the knowledge context, connects to the compression and generation APIs, and serves the chat API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logger := newLogger(cfg.LogLevel)

		keyVar := config.APIKeyEnvVar(cfg.Generation.Provider)
		if os.Getenv(keyVar) == "" {
			return fmt.Errorf("%s is not set; the %s provider cannot answer questions", keyVar, cfg.Generation.Provider)
		}

		loader := buildLoader(cfg, logger)

		compressor := scaledown.NewClient(scaledown.Config{
			APIKey:  os.Getenv(config.ScaleDownAPIKeyEnvVar),
			APIURL:  cfg.ScaleDown.URL,
			Rate:    cfg.ScaleDown.Rate,
			Model:   cfg.ScaleDown.Model,
			Timeout: time.Duration(cfg.ScaleDown.TimeoutSeconds) * time.Second,
		}, logger)

		provider, err := llm.NewProvider(string(cfg.Generation.Provider), cfg.Generation.Model,
			time.Duration(cfg.Generation.TimeoutSeconds)*time.Second)
		if err != nil {
			return fmt.Errorf("creating provider: %w", err)
		}
		provider = llm.NewRetryProvider(provider, 2*time.Second)
		if cfg.Generation.RPM > 0 {
			provider = llm.NewRateLimitedProvider(provider, cfg.Generation.RPM)
		}

		svc := chat.NewService(loader, compressor, provider, chat.Options{
			SystemInstruction: cfg.Generation.SystemInstruction,
			Model:             cfg.Generation.Model,
			Temperature:       cfg.Generation.Temperature,
			TopP:              cfg.Generation.TopP,
			MaxTokens:         cfg.Generation.MaxTokens,
		}, logger)

		// Load the context up front so the first request does not pay for it.
		// A failure here is not fatal; the service retries lazily.
		if err := svc.EnsureContext(cmd.Context()); err != nil {
			logger.Warn("initial context load failed, will retry on first request", "error", err)
		}

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}
		srv := server.New(server.Config{
			Host:     cfg.Server.Host,
			Port:     port,
			AllowAll: cfg.Server.AllowAll,
		}, logger)
		chat.RegisterRoutes(srv.Router(), svc)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "chatbot v%s starting on %s\n", Version, srv.Addr())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// buildLoader assembles the context loader, with the scraper and its cache
// only when scraping is enabled.
func buildLoader(cfg *config.Config, logger *slog.Logger) *ingest.Loader {
	var scraper *ingest.Scraper
	if cfg.Scraping.Enabled {
		var cache *ingest.Cache
		if cfg.Data.CacheDir != "" {
			cache = ingest.NewCache(cfg.Data.CacheDir,
				time.Duration(cfg.Scraping.CacheTTLSeconds)*time.Second)
		}
		targets := make([]ingest.ScrapeTarget, 0, len(cfg.Scraping.Targets))
		for _, t := range cfg.Scraping.Targets {
			targets = append(targets, ingest.ScrapeTarget{Path: t.Path, Selectors: t.Selectors})
		}
		scraper = ingest.NewScraper(ingest.ScraperConfig{
			BaseURL:   cfg.Scraping.BaseURL,
			Targets:   targets,
			UserAgent: cfg.Scraping.UserAgent,
			Timeout:   time.Duration(cfg.Scraping.TimeoutSeconds) * time.Second,
		}, cache, logger)
	}
	return ingest.NewLoader(ingest.Config{
		Dir:     cfg.Data.Dir,
		Include: cfg.Data.Include,
		Exclude: cfg.Data.Exclude,
	}, scraper, logger)
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "override the configured port")
	rootCmd.AddCommand(serveCmd)
}
