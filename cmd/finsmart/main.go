package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finsmart/internal/assist"
	"finsmart/internal/backend"
	"finsmart/internal/config"
	"finsmart/internal/core"
	apphttp "finsmart/internal/http"
	applog "finsmart/internal/log"
	"finsmart/internal/services"
	"finsmart/internal/speech"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger backend", "error", err, "backend", cfg.LedgerBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	expenses := services.NewExpenseService(result.Store, result.AMQP)
	defer func() {
		if err := expenses.Close(); err != nil {
			logger.Error("Failed to close expense service", "error", err)
		}
	}()

	var (
		capture *services.CaptureWorkflow
		insight *services.InsightWorkflow
	)
	if cfg.AssistEnabled() {
		gemini, err := assist.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		capture = services.NewCaptureWorkflow(expenses, gemini)
		insight = services.NewInsightWorkflow(expenses, gemini)
		logger.Info("Initialized LLM collaborator", "model", cfg.GeminiModel)
	} else {
		logger.Warn("GEMINI_API_KEY not set, capture and insights disabled")
	}

	var transcriber speech.Transcriber
	if cfg.SpeechEnabled() {
		transcriber = speech.NewWhisperClient(cfg.SpeechAPIURL, cfg.SpeechModel, cfg.SpeechAPIKey)
		logger.Info("Initialized speech transcriber", "model", cfg.SpeechModel)
	}
	speechSession := services.NewSpeechSession(transcriber)

	if cfg.SeedDemo {
		if err := expenses.SeedDemo(ctx, core.Today()); err != nil {
			logger.Warn("Demo seeding failed", "error", err)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, expenses, capture, insight, speechSession)
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 90 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting finsmart server", "port", cfg.Port, "backend", cfg.LedgerBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
