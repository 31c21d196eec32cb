// Package scraper crawls PartSelect category pages for product pages and turns them into
// documents for context retrieval.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"partselect-chat/internal/assistant"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// productMarker is carried by every product link on a category page.
const productMarker = "SourceCode=18"

// contentSelectors pick the description blocks and the answered questions of a product page.
var contentSelectors = []string{".mb-4", ".qna__question.js-qnaResponse"}

var partNumberPattern = regexp.MustCompile(`PS\d+`)

// Scraper fetches pages one at a time, pausing Delay after each.
type Scraper struct {
	httpClient *http.Client
	// MaxDepth is how many category levels below the start page are followed.
	MaxDepth int
	Delay    time.Duration
	logger   logrus.FieldLogger
}

// New creates a scraper.
func New(maxDepth int, delay time.Duration, logger logrus.FieldLogger) *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		MaxDepth:   maxDepth,
		Delay:      delay,
		logger:     logger,
	}
}

// ProductLinks crawls from a category page such as .../Refrigerator-Parts.htm and returns
// the product pages it links to, sorted. Sub-category links are followed when they name the
// same category ("Refrigerator-") and stay on the same host. Pages that fail to load are
// logged and skipped.
func (s *Scraper) ProductLinks(ctx context.Context, categoryURL string) ([]string, error) {
	start, err := url.Parse(categoryURL)
	if err != nil || start.Scheme == "" || start.Host == "" {
		return nil, fmt.Errorf("invalid category url %q", categoryURL)
	}
	root := &url.URL{Scheme: start.Scheme, Host: start.Host, Path: "/"}
	keyword := strings.TrimSuffix(path.Base(start.Path), "-Parts.htm") + "-"

	c := &crawl{
		scraper:  s,
		root:     root,
		keyword:  keyword,
		visited:  make(map[string]bool),
		products: make(map[string]bool),
	}
	if err := c.visit(ctx, start.String(), 0); err != nil {
		return nil, err
	}

	links := make([]string, 0, len(c.products))
	for link := range c.products {
		links = append(links, link)
	}
	sort.Strings(links)
	return links, nil
}

type crawl struct {
	scraper  *Scraper
	root     *url.URL
	keyword  string
	visited  map[string]bool
	products map[string]bool
}

func (c *crawl) visit(ctx context.Context, pageURL string, depth int) error {
	if depth > c.scraper.MaxDepth || c.visited[pageURL] {
		return nil
	}
	c.visited[pageURL] = true

	log := c.scraper.logger.WithFields(logrus.Fields{"url": pageURL, "depth": depth})
	doc, err := c.scraper.fetch(ctx, pageURL)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("could not fetch category page")
		return nil
	}

	var next []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := c.root.ResolveReference(ref)
		if abs.Scheme == "" || abs.Host == "" {
			return
		}

		switch {
		case strings.Contains(href, productMarker):
			c.products[abs.String()] = true
		case strings.Contains(href, c.keyword) && abs.Host == c.root.Host:
			next = append(next, abs.String())
		}
	})

	for _, link := range next {
		if err := c.visit(ctx, link, depth+1); err != nil {
			return err
		}
	}

	log.WithField("products", len(c.products)).Info("crawled category page")
	return wait(ctx, c.scraper.Delay)
}

// ScrapeProduct turns one product page into a document. The part number comes from the
// url, the title from the page heading.
func (s *Scraper) ScrapeProduct(ctx context.Context, productURL string) (assistant.Document, error) {
	doc, err := s.fetch(ctx, productURL)
	if err != nil {
		return assistant.Document{}, err
	}

	var parts []string
	for _, sel := range contentSelectors {
		doc.Find(sel).Each(func(_ int, el *goquery.Selection) {
			if text := collapseSpace(el.Text()); text != "" {
				parts = append(parts, text)
			}
		})
	}
	if len(parts) == 0 {
		return assistant.Document{}, fmt.Errorf("no product text on %s", productURL)
	}

	title := collapseSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = collapseSpace(doc.Find("title").First().Text())
	}

	return assistant.Document{
		PartNumber: partNumber(productURL),
		Title:      title,
		Content:    strings.Join(parts, " "),
		URL:        productURL,
	}, nil
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request for %s: %w", pageURL, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// partNumber is the PS number in the url, or the page name when there is none.
func partNumber(productURL string) string {
	u, err := url.Parse(productURL)
	if err != nil {
		return productURL
	}
	if ps := partNumberPattern.FindString(u.Path); ps != "" {
		return ps
	}
	return strings.TrimSuffix(path.Base(u.Path), ".htm")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
