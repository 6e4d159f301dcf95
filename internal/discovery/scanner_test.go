package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestScanner_Scan(t *testing.T) {
	// Create a temporary directory structure for testing
	tmpDir, err := os.MkdirTemp("", "trxr-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	files := []string{
		"screenshots/login.spec.js/Login fails (failed).png",
		"screenshots/cart/nested/Cart adds item (failed).png",
		"screenshots/cart/notes.txt",
		"screenshots-old/Login fails (failed).png",
		"elsewhere/Other (failed).png",
	}
	for _, file := range files {
		fullPath := filepath.Join(tmpDir, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("png"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}
	// a directory named like an artifact is not returned
	if err := os.MkdirAll(filepath.Join(tmpDir, "screenshots", "dir.png"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	scanner := NewScanner(logger)
	base := filepath.ToSlash(tmpDir)

	t.Run("trailing slash searches inside the folder", func(t *testing.T) {
		results, err := scanner.Scan(base + "/screenshots/**/*.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 2 {
			t.Errorf("expected 2 screenshots, got %d: %v", len(results), results)
		}
	})

	t.Run("missing separator also matches sibling folders", func(t *testing.T) {
		results, err := scanner.Scan(base + "/screenshots**/*.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) == 0 {
			t.Error("expected matches in folders starting with screenshots")
		}
		for _, r := range results {
			if filepath.Base(filepath.Dir(r)) == "elsewhere" {
				t.Errorf("unexpected match %s", r)
			}
		}
	})

	t.Run("non-existent directory yields nothing", func(t *testing.T) {
		results, err := scanner.Scan(base + "/missing/**/*.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %d", len(results))
		}
	})

	t.Run("invalid pattern", func(t *testing.T) {
		if _, err := scanner.Scan(base + "/[unclosed/**/*.png"); err == nil {
			t.Error("expected error for invalid pattern")
		}
	})
}
