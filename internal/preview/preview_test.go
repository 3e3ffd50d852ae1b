package preview

import (
	"errors"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	r := NewRenderer("")

	tests := []struct {
		name    string
		content string
		kind    Kind
		title   string
		snippet string
	}{
		{"docs/README.md", "# Intro\n\ntext", KindMarkdown, "Intro", "<h1"},
		{"empty.md", "no headings", KindMarkdown, "empty.md", "no headings"},
		{"main.py", "def f():\n    return 1\n", KindCode, "main.py", "class="},
		{"notes.txt", "a < b", KindText, "notes.txt", "a &lt; b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Render(tt.name, []byte(tt.content))
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if res.Kind != tt.kind || res.Title != tt.title {
				t.Errorf("got kind=%s title=%q", res.Kind, res.Title)
			}
			if !strings.Contains(res.HTML, tt.snippet) {
				t.Errorf("expected %q in %q", tt.snippet, res.HTML)
			}
		})
	}
}

func TestRenderBinary(t *testing.T) {
	_, err := NewRenderer("").Render("image.png", []byte{0x89, 'P', 'N', 'G', 0, 0})
	if !errors.Is(err, ErrBinary) {
		t.Errorf("expected ErrBinary, got %v", err)
	}
}
