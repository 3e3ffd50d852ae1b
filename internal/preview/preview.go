// Package preview renders file contents for the open/preview view:
// markdown through goldmark, source code through chroma, other text as-is.
package preview

import (
	"bytes"
	"errors"
	"html"
	"path/filepath"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"

	"github.com/CageChen/filehub/internal/filekind"
	"github.com/CageChen/filehub/internal/snapshot"
)

// ErrBinary is returned for content that cannot be shown as text.
var ErrBinary = errors.New("binary content has no text preview")

// DefaultStyle is the chroma style used for highlighting.
const DefaultStyle = "monokai"

// Kind describes how a preview was rendered.
type Kind string

// Preview kinds.
const (
	KindMarkdown Kind = "markdown"
	KindCode     Kind = "code"
	KindText     Kind = "text"
)

// Result is a rendered preview.
type Result struct {
	Kind  Kind      `json:"kind"`
	Title string    `json:"title"`
	HTML  string    `json:"html"`
	TOC   []Heading `json:"toc,omitempty"`
}

// Renderer renders previews. It is safe for concurrent use.
type Renderer struct {
	md    goldmark.Markdown
	style *chroma.Style
}

// NewRenderer creates a renderer using the named chroma style.
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = DefaultStyle
	}
	return &Renderer{
		md:    newMarkdown(style),
		style: styles.Get(style),
	}
}

// Render renders content of the file called name.
func (r *Renderer) Render(name string, content []byte) (*Result, error) {
	if !isText(content) {
		return nil, ErrBinary
	}
	ext := snapshot.Extension(filepath.Base(name))

	switch {
	case ext == "md" || ext == "markdown":
		body, toc, err := renderMarkdown(r.md, content)
		if err != nil {
			return nil, err
		}
		title := filepath.Base(name)
		if len(toc) > 0 {
			title = toc[0].Title
		}
		return &Result{Kind: KindMarkdown, Title: title, HTML: body, TOC: toc}, nil

	case filekind.ForExtension(ext) == filekind.Code:
		if body, err := r.highlight(name, content); err == nil {
			return &Result{Kind: KindCode, Title: filepath.Base(name), HTML: body}, nil
		}
	}

	return &Result{
		Kind:  KindText,
		Title: filepath.Base(name),
		HTML:  "<pre>" + html.EscapeString(string(content)) + "</pre>",
	}, nil
}

func (r *Renderer) highlight(name string, content []byte) (string, error) {
	lexer := lexers.Match(filepath.Base(name))
	if lexer == nil {
		lexer = lexers.Analyse(string(content))
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.Format(&buf, r.style, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// isText reports whether content looks like UTF-8 text without NUL bytes.
func isText(content []byte) bool {
	head := content
	if len(head) > 8192 {
		head = head[:8192]
		// do not reject a multi-byte rune cut at the boundary
		for i := 0; i < utf8.UTFMax && !utf8.Valid(head); i++ {
			head = head[:len(head)-1]
		}
	}
	return bytes.IndexByte(head, 0) < 0 && utf8.Valid(head)
}
