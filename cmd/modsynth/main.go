// Command modsynth runs the modular synthesizer: it loads a patch, plays
// the graph on the default audio device and serves the HTTP control
// surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/cwbudde/algo-modsynth/dsp/graph"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/modules"
	"github.com/cwbudde/algo-modsynth/dsp/patch"
	"github.com/cwbudde/algo-modsynth/internal/assistant"
	"github.com/cwbudde/algo-modsynth/internal/assistant/gemini"
	"github.com/cwbudde/algo-modsynth/internal/assistant/openai"
	"github.com/cwbudde/algo-modsynth/internal/audio"
	"github.com/cwbudde/algo-modsynth/internal/config"
	"github.com/cwbudde/algo-modsynth/internal/logger"
	"github.com/cwbudde/algo-modsynth/internal/server"
)

const (
	sentryFlushTimeout = 2 * time.Second
	shutdownTimeout    = 5 * time.Second
)

// releaseVersion is set via ldflags during build.
var releaseVersion = ""

func main() {
	if err := run(); err != nil {
		sentry.CaptureException(err)
		sentry.Flush(sentryFlushTimeout)
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	version := cfg.ReleaseVersion
	if releaseVersion != "" {
		version = releaseVersion
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "modsynth@" + version,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            !cfg.IsProduction(),
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	g := graph.New()
	reg := modules.DefaultRegistry()
	if err := loadPatch(cfg, g, reg); err != nil {
		return err
	}
	if err := g.PrepareToPlay(cfg.SampleRate, cfg.BlockSize); err != nil {
		return fmt.Errorf("prepare graph: %w", err)
	}
	defer g.ReleaseResources()

	if cfg.Audio {
		player, err := audio.NewPlayer(int(cfg.SampleRate), audio.NewRenderer(g, cfg.BlockSize))
		if err != nil {
			return err
		}
		defer player.Close()
		player.Start()
		logger.Info("audio started", logger.Fields{"sample_rate": cfg.SampleRate, "block_size": cfg.BlockSize})
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	svc := assistant.NewService(provider, g, reg, assistant.Options{
		Model:     cfg.AIModel,
		Timeout:   cfg.AITimeout,
		AutoApply: true,
	})
	defer svc.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(g, reg, svc, version).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", logger.Fields{"addr": cfg.Addr, "version": version})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadPatch imports the configured patch file, or the default patch.
func loadPatch(cfg *config.Config, g *graph.Graph, reg *module.Registry) error {
	var (
		res    *patch.Result
		err    error
		source = "default"
	)
	if cfg.PatchFile != "" {
		source = cfg.PatchFile
		raw, readErr := os.ReadFile(cfg.PatchFile)
		if readErr != nil {
			return fmt.Errorf("read patch: %w", readErr)
		}
		res, err = patch.Import(raw, g, reg, true)
	} else {
		res, err = patch.ImportDocument(patch.DefaultDocument(), g, reg, true)
	}
	if err != nil {
		return fmt.Errorf("load patch %s: %w", source, err)
	}

	logger.Info("patch loaded", logger.Fields{
		"source":      source,
		"nodes":       res.NodesCreated,
		"connections": res.ConnectionsApplied,
	})
	for _, d := range res.Diagnostics {
		logger.Warn("patch load", logger.Fields{"diagnostic": d})
	}
	return nil
}

// newProvider returns the configured assistant backend, or nil when no
// provider is selected.
func newProvider(cfg *config.Config) (assistant.Provider, error) {
	if !cfg.AssistantEnabled() {
		logger.Info("assistant disabled", logger.Fields{"provider": cfg.AIProvider})
		return nil, nil
	}
	if cfg.AIAPIKey == "" {
		logger.Info("assistant running without an API key", logger.Fields{
			"provider": cfg.AIProvider,
			"base_url": cfg.AIBaseURL,
		})
	}
	switch cfg.AIProvider {
	case config.ProviderGemini:
		p, err := gemini.New(context.Background(), cfg.AIAPIKey, cfg.AIBaseURL)
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		return p, nil
	default:
		return openai.New(cfg.AIAPIKey, cfg.AIBaseURL), nil
	}
}
