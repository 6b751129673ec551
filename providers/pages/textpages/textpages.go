// Package textpages reads plain text documents. Pages are separated by form
// feeds, the convention pdftotext and most print pipelines follow; text
// without form feeds is one page.
package textpages

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leofalp/docextract/providers/pages"
)

// Provider reads pages from a file or a reader.
type Provider struct {
	source string
	open   func() (io.ReadCloser, error)
}

// FromFile reads the document at path.
func FromFile(path string) *Provider {
	return &Provider{
		source: path,
		open:   func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// FromReader reads the document from r. The reader is consumed by the first
// call to Pages.
func FromReader(source string, r io.Reader) *Provider {
	return &Provider{
		source: source,
		open:   func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

// Source implements pages.Provider.
func (p *Provider) Source() string { return p.source }

// Pages implements pages.Provider.
func (p *Provider) Pages(ctx context.Context) ([]pages.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := p.open()
	if err != nil {
		return nil, fmt.Errorf("textpages: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("textpages: read %s: %w", p.source, err)
	}
	return Split(string(data))
}

// Split cuts text at form feeds into numbered, cleaned pages.
func Split(text string) ([]pages.Page, error) {
	parts := strings.Split(text, "\f")
	raw := make([]pages.Page, len(parts))
	for i, part := range parts {
		raw[i] = pages.Page{Number: i + 1, Text: part}
	}
	return pages.Finalize(raw)
}
