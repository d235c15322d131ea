package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestLoaderMergesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "admissions.txt", []byte("Applications open in January.\nDeadline is March 15."))
	writeFile(t, dir, "fees.txt", []byte("Tuition is 10,000 per year."))

	loader := NewLoader(Config{Dir: dir}, nil, nil)
	content, report, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Loaded != 2 || report.Failed != 0 {
		t.Errorf("expected 2 loaded 0 failed, got %d/%d", report.Loaded, report.Failed)
	}
	if !strings.Contains(content, localFilesBanner) {
		t.Error("expected local files banner in context")
	}
	if !strings.Contains(content, "--- admissions.txt ---") || !strings.Contains(content, "--- fees.txt ---") {
		t.Errorf("expected per-file sections, got: %s", content)
	}
	if !strings.Contains(content, "Tuition is 10,000 per year.") {
		t.Error("expected file content in context")
	}
	// Whitespace runs collapse to single spaces.
	if !strings.Contains(content, "Applications open in January. Deadline is March 15.") {
		t.Errorf("expected sanitized content, got: %s", content)
	}
}

func TestLoaderDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zebra.txt", []byte("last"))
	writeFile(t, dir, "alpha.txt", []byte("first"))

	loader := NewLoader(Config{Dir: dir}, nil, nil)
	content, _, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Index(content, "alpha.txt") > strings.Index(content, "zebra.txt") {
		t.Error("expected files in sorted order")
	}
}

func TestLoaderLatin1Fallback(t *testing.T) {
	dir := t.TempDir()
	// 0xE9 is é in latin-1 and invalid as a standalone UTF-8 byte.
	writeFile(t, dir, "accents.txt", []byte{'r', 0xE9, 's', 'u', 'm', 0xE9})

	loader := NewLoader(Config{Dir: dir}, nil, nil)
	content, report, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Loaded != 1 {
		t.Fatalf("expected 1 loaded, got %d (warnings: %v)", report.Loaded, report.Warnings)
	}
	if !strings.Contains(content, "résumé") {
		t.Errorf("expected decoded latin-1 content, got: %s", content)
	}
}

func TestLoaderMarkdownExtraction(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "guide.md", []byte("# Hostel Guide\n\nRooms are **shared** between two students."))

	loader := NewLoader(Config{Dir: dir}, nil, nil)
	content, _, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(content, "Hostel Guide") {
		t.Error("expected heading text")
	}
	if !strings.Contains(content, "shared") {
		t.Error("expected emphasized text")
	}
	if strings.Contains(content, "#") || strings.Contains(content, "**") {
		t.Errorf("expected markdown syntax stripped, got: %s", content)
	}
}

func TestLoaderExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", []byte("keep me"))
	writeFile(t, dir, "notes_draft.txt", []byte("drop me"))

	loader := NewLoader(Config{Dir: dir, Exclude: []string{"*_draft.txt"}}, nil, nil)
	content, report, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Loaded != 1 {
		t.Errorf("expected 1 loaded, got %d", report.Loaded)
	}
	if strings.Contains(content, "drop me") {
		t.Error("excluded file leaked into context")
	}
}

func TestLoaderMissingDir(t *testing.T) {
	loader := NewLoader(Config{Dir: filepath.Join(t.TempDir(), "nope")}, nil, nil)
	content, report, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("missing dir should not be an error, got: %v", err)
	}
	if content != "" {
		t.Errorf("expected empty context, got %q", content)
	}
	if len(report.Warnings) == 0 {
		t.Error("expected a warning about the missing directory")
	}
}

func TestLoaderEmptyDir(t *testing.T) {
	loader := NewLoader(Config{Dir: t.TempDir()}, nil, nil)
	content, report, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "" || report.Loaded != 0 {
		t.Errorf("expected empty context, got %q (loaded %d)", content, report.Loaded)
	}
}

func TestSanitizeText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"hello   world", "hello world"},
		{"line\none\n\nline two", "line one line two"},
		{"nul\x00byte", "nulbyte"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, c := range cases {
		if got := sanitizeText(c.in); got != c.want {
			t.Errorf("sanitizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
