package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const admissionsHTML = `<html><body>
<nav>Home | About</nav>
<main><h1>Admissions</h1><p>Apply before  March 15.</p></main>
<footer>Contact us</footer>
</body></html>`

func TestScraperExtractsSelectors(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(admissionsHTML))
	}))
	defer ts.Close()

	s := NewScraper(ScraperConfig{
		BaseURL:   ts.URL,
		Targets:   []ScrapeTarget{{Path: "/admissions", Selectors: []string{"main"}}},
		UserAgent: "chatbot-test/1.0",
	}, nil, nil)

	pages, warnings := s.Scrape(context.Background())
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if gotUA != "chatbot-test/1.0" {
		t.Errorf("expected custom user agent, got %q", gotUA)
	}
	if !strings.Contains(pages[0].Content, "Apply before March 15.") {
		t.Errorf("expected sanitized main text, got: %s", pages[0].Content)
	}
	if strings.Contains(pages[0].Content, "Contact us") {
		t.Error("footer text should not be extracted")
	}
	if pages[0].URL != ts.URL+"/admissions" {
		t.Errorf("unexpected page URL: %s", pages[0].URL)
	}
}

func TestScraperFailureIsWarning(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	s := NewScraper(ScraperConfig{
		BaseURL: ts.URL,
		Targets: []ScrapeTarget{{Path: "/fees", Selectors: []string{"main"}}},
	}, nil, nil)

	pages, warnings := s.Scrape(context.Background())
	if len(pages) != 0 {
		t.Errorf("expected no pages, got %d", len(pages))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "HTTP 503") {
		t.Errorf("expected a 503 warning, got %v", warnings)
	}
}

func TestScraperUsesCache(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(admissionsHTML))
	}))
	defer ts.Close()

	cache := NewCache(t.TempDir(), time.Hour)
	s := NewScraper(ScraperConfig{
		BaseURL: ts.URL,
		Targets: []ScrapeTarget{{Path: "/admissions", Selectors: []string{"main"}}},
	}, cache, nil)

	for i := 0; i < 2; i++ {
		pages, warnings := s.Scrape(context.Background())
		if len(warnings) != 0 || len(pages) != 1 {
			t.Fatalf("pass %d: pages=%d warnings=%v", i, len(pages), warnings)
		}
	}
	if hits != 1 {
		t.Errorf("expected 1 upstream hit, got %d", hits)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(t.TempDir(), 10*time.Millisecond)
	if err := cache.Put("https://example.edu/fees", "tuition data"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got, ok := cache.Get("https://example.edu/fees"); !ok || got != "tuition data" {
		t.Fatalf("expected fresh hit, got %q %v", got, ok)
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := cache.Get("https://example.edu/fees"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestCacheMissingEntry(t *testing.T) {
	cache := NewCache(t.TempDir(), time.Hour)
	if _, ok := cache.Get("https://example.edu/unknown"); ok {
		t.Error("expected miss for unknown URL")
	}
}
