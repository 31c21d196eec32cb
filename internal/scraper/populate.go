package scraper

//go:generate mockgen -destination=./populate_mock_test.go -package=scraper -source=populate.go DocumentStore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"partselect-chat/internal/assistant"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultCategories are the category pages the assistant answers about.
var DefaultCategories = []string{
	"https://www.partselect.com/Refrigerator-Parts.htm",
	"https://www.partselect.com/Dishwasher-Parts.htm",
}

// DocumentStore is where scraped documents end up. assistant.ContextRetriever satisfies it.
type DocumentStore interface {
	AddDocument(ctx context.Context, doc assistant.Document) error
}

// Stats counts what a populate run did.
type Stats struct {
	Products int
	Stored   int
	Failed   int
}

// Populate crawls every category and stores each product page it finds. Individual pages
// that cannot be scraped or stored are logged and counted, not fatal.
func (s *Scraper) Populate(ctx context.Context, store DocumentStore, categories []string) (Stats, error) {
	var stats Stats
	for _, category := range categories {
		links, err := s.ProductLinks(ctx, category)
		if err != nil {
			return stats, fmt.Errorf("could not crawl %s: %w", category, err)
		}
		stats.Products += len(links)
		s.logger.WithFields(logrus.Fields{"category": category, "products": len(links)}).Info("collected product links")

		for _, link := range links {
			log := s.logger.WithField("url", link)

			doc, err := s.ScrapeProduct(ctx, link)
			if err == nil {
				err = store.AddDocument(ctx, doc)
			}
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			if err != nil {
				stats.Failed++
				log.WithError(err).Warn("could not populate product")
			} else {
				stats.Stored++
				log.WithField("part_number", doc.PartNumber).Debug("stored product")
			}

			if err := wait(ctx, s.Delay); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

// httpDocumentStore posts documents to the assistant service's /documents endpoint.
type httpDocumentStore struct {
	httpClient *http.Client
	url        string
}

// NewHTTPDocumentStore creates a store for a running assistant service.
func NewHTTPDocumentStore(url string) DocumentStore {
	return &httpDocumentStore{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        url,
	}
}

func (c *httpDocumentStore) AddDocument(ctx context.Context, doc assistant.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("could not marshal document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create document request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("document request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("assistant service rejected document %s: status %d", doc.PartNumber, resp.StatusCode)
	}
	return nil
}
