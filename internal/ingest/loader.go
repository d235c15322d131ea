// Package ingest builds the chatbot's knowledge context: it reads the
// configured data files (with encoding fallback), optionally scrapes the
// university website, and merges everything into a single context string.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	localFilesBanner = "=== UNIVERSITY DATA FROM LOCAL FILES ==="
	websiteBanner    = "=== LIVE DATA FROM UNIVERSITY WEBSITE ==="
)

// Config describes where knowledge files live and which ones to read.
type Config struct {
	Dir     string
	Include []string // doublestar globs, relative to Dir
	Exclude []string
}

// Report summarizes one load pass.
type Report struct {
	TotalFiles   int
	Loaded       int
	Failed       int
	ScrapedPages int
	Warnings     []string
}

// Loader produces the merged context string from local files and the
// optional website scraper.
type Loader struct {
	cfg     Config
	scraper *Scraper // nil when scraping is disabled
	logger  *slog.Logger
}

// NewLoader creates a Loader. The scraper may be nil.
func NewLoader(cfg Config, scraper *Scraper, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Include) == 0 {
		cfg.Include = []string{"*.txt", "*.md"}
	}
	return &Loader{cfg: cfg, scraper: scraper, logger: logger}
}

// Load reads all configured sources and returns the merged context string.
// Individual source failures become warnings in the report; only a malformed
// include pattern is an error. An empty context with zero loaded sources is a
// legitimate (degraded) outcome the caller must tolerate.
func (l *Loader) Load(ctx context.Context) (string, Report, error) {
	var report Report

	paths, err := l.discover(&report)
	if err != nil {
		return "", report, err
	}
	report.TotalFiles = len(paths)

	var parts []string
	parts = append(parts, localFilesBanner+"\n")

	for _, rel := range paths {
		full := filepath.Join(l.cfg.Dir, rel)
		content, encoding, err := readTextFile(full)
		if err != nil {
			report.Failed++
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", rel, err))
			l.logger.Warn("skipping unreadable source", "file", rel, "error", err)
			continue
		}
		if strings.EqualFold(filepath.Ext(rel), ".md") {
			content = markdownToText([]byte(content))
		}
		content = sanitizeText(content)
		if content == "" {
			report.Failed++
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: empty after sanitization", rel))
			continue
		}

		report.Loaded++
		parts = append(parts, fmt.Sprintf("\n--- %s ---\n%s", filepath.Base(rel), content))
		l.logger.Info("loaded source", "file", rel, "chars", len(content), "encoding", encoding)
	}

	if l.scraper != nil {
		pages, warnings := l.scraper.Scrape(ctx)
		report.ScrapedPages = len(pages)
		report.Warnings = append(report.Warnings, warnings...)
		if len(pages) > 0 {
			parts = append(parts, "\n\n"+websiteBanner+"\n")
			for _, p := range pages {
				parts = append(parts, fmt.Sprintf("\n--- From %s ---\n%s", p.URL, p.Content))
			}
		}
	}

	if report.Loaded == 0 && report.ScrapedPages == 0 {
		l.logger.Warn("no knowledge sources loaded, context is empty", "warnings", len(report.Warnings))
		return "", report, nil
	}

	merged := strings.Join(parts, "\n")
	l.logger.Info("context assembled",
		"files", report.Loaded, "scraped_pages", report.ScrapedPages, "chars", len(merged))
	return merged, report, nil
}

// discover resolves the include globs against the data directory, applies
// excludes, and returns a deterministic, duplicate-free path list.
func (l *Loader) discover(report *Report) ([]string, error) {
	if _, err := os.Stat(l.cfg.Dir); err != nil {
		if os.IsNotExist(err) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("data directory not found: %s", l.cfg.Dir))
			return nil, nil
		}
		return nil, fmt.Errorf("accessing data directory %s: %w", l.cfg.Dir, err)
	}

	fsys := os.DirFS(l.cfg.Dir)
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range l.cfg.Include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || l.excluded(m) {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}

	// Fixed order keeps the context string stable across reloads.
	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) excluded(path string) bool {
	for _, pattern := range l.cfg.Exclude {
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}

// sanitizeText collapses all whitespace runs to single spaces and strips NUL
// bytes, mirroring how the data files are normalized before concatenation.
func sanitizeText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.Join(strings.Fields(text), " ")
}
