package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docqa/internal/domain"
)

func TestExtractText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text body"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := New().Extract(path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "plain text body" {
		t.Errorf("got %q", got)
	}
}

func TestExtractMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.MD")
	if err := os.WriteFile(path, []byte("# heading"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := New().Extract(path)
	if err != nil {
		t.Fatalf("extension matching must be case-insensitive: %v", err)
	}
	if got != "# heading" {
		t.Errorf("got %q", got)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	for _, name := range []string{"slides.pptx", "report.docx", "legacy.doc", "deck.ppt"} {
		if _, err := New().Extract(name); !errors.Is(err, domain.ErrUnsupportedFormat) {
			t.Errorf("%s: got %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := New().Extract(filepath.Join(t.TempDir(), "gone.txt"))
	if !errors.Is(err, domain.ErrExtraction) {
		t.Errorf("got %v, want ErrExtraction", err)
	}
}

func TestExtractBrokenPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New().Extract(path)
	if !errors.Is(err, domain.ErrExtraction) {
		t.Errorf("got %v, want ErrExtraction", err)
	}
}
