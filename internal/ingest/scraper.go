package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ScrapeTarget is one page to fetch: a path under the base URL plus the CSS
// selectors to extract text from.
type ScrapeTarget struct {
	Path      string
	Selectors []string
}

// ScraperConfig holds the website scraper settings.
type ScraperConfig struct {
	BaseURL   string
	Targets   []ScrapeTarget
	UserAgent string
	Timeout   time.Duration
}

// Page is the text content scraped from one URL.
type Page struct {
	Path    string
	URL     string
	Content string
}

// Scraper fetches configured university web pages and extracts their text.
// Every failure is a warning: the scraper supplements the local files, it
// never blocks context loading.
type Scraper struct {
	cfg    ScraperConfig
	client *http.Client
	cache  *Cache // nil disables caching
	logger *slog.Logger
}

// NewScraper creates a Scraper. The cache may be nil.
func NewScraper(cfg ScraperConfig, cache *Cache, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Scraper{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		logger: logger,
	}
}

// Scrape fetches all configured targets, reusing fresh cache entries. It
// returns the successfully scraped pages and a warning per failed target.
func (s *Scraper) Scrape(ctx context.Context) ([]Page, []string) {
	var pages []Page
	var warnings []string

	for _, target := range s.cfg.Targets {
		url := strings.TrimRight(s.cfg.BaseURL, "/") + target.Path

		if s.cache != nil {
			if content, ok := s.cache.Get(url); ok {
				pages = append(pages, Page{Path: target.Path, URL: url, Content: content})
				s.logger.Debug("using cached page", "url", url)
				continue
			}
		}

		content, err := s.scrapePage(ctx, url, target.Selectors)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("scraping %s: %v", url, err))
			s.logger.Warn("failed to scrape page", "url", url, "error", err)
			continue
		}
		if content == "" {
			warnings = append(warnings, fmt.Sprintf("scraping %s: no content matched selectors", url))
			continue
		}

		if s.cache != nil {
			if err := s.cache.Put(url, content); err != nil {
				s.logger.Warn("failed to cache page", "url", url, "error", err)
			}
		}

		pages = append(pages, Page{Path: target.Path, URL: url, Content: content})
		s.logger.Info("scraped page", "url", url, "chars", len(content))
	}

	return pages, warnings
}

func (s *Scraper) scrapePage(ctx context.Context, url string, selectors []string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var parts []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				parts = append(parts, text)
			}
		})
	}

	return sanitizeText(strings.Join(parts, " ")), nil
}
