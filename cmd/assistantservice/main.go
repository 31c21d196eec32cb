package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"partselect-chat/internal/assistant"
	"partselect-chat/internal/config"
	"partselect-chat/internal/logging"
	"partselect-chat/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// main is the entry point for the assistant service answering the chat widgets.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadAssistant()
	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	shutdownTelemetry, err := telemetry.Init(ctx, "assistantservice", cfg.TelemetryDir, logger)
	if err != nil {
		logger.WithError(err).Fatal("could not start telemetry")
	}
	defer shutdownTelemetry()

	// Context retrieval runs on Postgres when configured.
	retriever := assistant.NewNoopRetriever()
	if cfg.DatabaseURL != "" {
		pool, err := assistant.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("could not connect to database")
		}
		defer pool.Close()
		retriever = assistant.NewPostgresRetriever(pool)
	}

	// Replies are cached in redis when configured.
	cache := assistant.NewNoopReplyCache()
	if cfg.RedisURL != "" {
		rdb, err := assistant.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("could not connect to redis")
		}
		defer rdb.Close()
		cache = assistant.NewRedisReplyCache(rdb, cfg.CacheTTL)
	}

	llmClient, closeLLM, err := newLLMClient(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("could not create language model client")
	}
	defer closeLLM()

	// Inject clients into the service
	assistantService := assistant.NewService(llmClient, retriever, cache, logger)

	// Inject service into the handler
	assistantHandler := assistant.NewHandler(assistantService, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("AssistantService OK"))
	})

	// Register all the API routes from the handler ( /get-message, /clear-memory, /documents )
	assistantHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithFields(logrus.Fields{
		"llm_provider": cfg.LLMProvider,
		"database":     cfg.DatabaseURL != "",
		"cache":        cfg.RedisURL != "",
	}).Infof("AssistantService starting on port %s", cfg.Port)
	if err := runServer(ctx, srv); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}

// newLLMClient picks the language model by provider name.
func newLLMClient(ctx context.Context, cfg *config.AssistantConfig) (assistant.LLMClient, func(), error) {
	temperature := float32(cfg.LLMTemperature)

	switch cfg.LLMProvider {
	case "gemini":
		client, err := assistant.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, temperature)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	case "openai":
		return assistant.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, temperature), func() {}, nil
	case "stub":
		return assistant.NewStubLLMClient(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		return err
	}
}
