package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"partselect-chat/internal/assistant"
	"partselect-chat/internal/config"
	"partselect-chat/internal/logging"
	"partselect-chat/internal/scraper"
)

// main crawls the category pages and fills the assistant's document store.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadPopulator()
	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	categories := cfg.Categories
	if len(categories) == 0 {
		categories = scraper.DefaultCategories
	}

	var store scraper.DocumentStore
	if cfg.DatabaseURL != "" {
		pool, err := assistant.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("could not connect to database")
		}
		defer pool.Close()
		store = assistant.NewPostgresRetriever(pool)
	} else {
		store = scraper.NewHTTPDocumentStore(cfg.DocumentsURL)
		logger.WithField("documents_url", cfg.DocumentsURL).Info("posting documents to the assistant service")
	}

	s := scraper.New(cfg.CrawlDepth, cfg.CrawlDelay, logger)
	stats, err := s.Populate(ctx, store, categories)
	log := logger.WithField("products", stats.Products).WithField("stored", stats.Stored).WithField("failed", stats.Failed)
	if err != nil {
		log.WithError(err).Fatal("populate stopped")
	}
	log.Info("populate finished")
}
