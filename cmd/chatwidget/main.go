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

	"partselect-chat/internal/config"
	"partselect-chat/internal/conversation"
	"partselect-chat/internal/logging"
	"partselect-chat/internal/render"
	"partselect-chat/internal/telemetry"
	"partselect-chat/internal/widget"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// main is the entry point for the web chat widget.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadWidget()
	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	shutdownTelemetry, err := telemetry.Init(ctx, "chatwidget", cfg.TelemetryDir, logger)
	if err != nil {
		logger.WithError(err).Fatal("could not start telemetry")
	}
	defer shutdownTelemetry()

	// "stub" runs the widget without an assistant service.
	var client conversation.MessageClient
	if cfg.AssistantURL == "stub" {
		client = conversation.NewStubMessageClient()
	} else {
		client = conversation.NewHTTPMessageClient(cfg.AssistantURL, logger)
	}

	registry := conversation.NewRegistry(client)
	defer registry.Close()
	go registry.RunJanitor(ctx, cfg.SweepInterval, cfg.IdleTimeout, func(n int) {
		logger.WithField("evicted", n).Info("dropped idle conversations")
	})

	widgetHandler := widget.NewHandler(registry, render.NewHTMLRenderer(), logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ChatWidget OK"))
	})

	widgetHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("assistant_url", cfg.AssistantURL).Infof("ChatWidget starting on port %s", cfg.Port)
	if err := runServer(ctx, srv); err != nil {
		logger.WithError(err).Fatal("server error")
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
