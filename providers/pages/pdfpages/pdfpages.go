// Package pdfpages extracts the plain text of each PDF page.
//
// Only the text layer is read; scanned pages without one come back empty and
// are dropped. Text runs are joined with single spaces, so table cells on a
// line end up space separated.
package pdfpages

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/leofalp/docextract/providers/pages"
)

// Provider reads one PDF file.
type Provider struct {
	path string
}

// FromFile returns a provider for the PDF at path.
func FromFile(path string) *Provider {
	return &Provider{path: path}
}

// Source implements pages.Provider.
func (p *Provider) Source() string { return p.path }

// Pages implements pages.Provider. Cancellation is checked between pages.
func (p *Provider) Pages(ctx context.Context) (out []pages.Page, err error) {
	// The PDF reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("pdfpages: %s: malformed PDF: %v", p.path, r)
		}
	}()

	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("pdfpages: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("pdfpages: %w", err)
	}
	return read(ctx, f, info.Size())
}

func read(ctx context.Context, r io.ReaderAt, size int64) ([]pages.Page, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("pdfpages: open: %w", err)
	}

	total := reader.NumPage()
	raw := make([]pages.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return nil, fmt.Errorf("pdfpages: page %d: %w", i, err)
		}
		raw = append(raw, pages.Page{Number: i, Text: text})
	}
	return pages.Finalize(raw)
}

// gapRatio is the horizontal gap, relative to the font size, above which two
// glyphs belong to different fragments.
const gapRatio = 0.2

// pageText rebuilds the page line by line. The reader yields single glyphs;
// glyphs closer than the gap threshold are merged into one fragment and the
// fragments of a line are joined with spaces.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, pages.JoinFragments(rowFragments(row.Content)))
	}
	return strings.Join(lines, "\n"), nil
}

func rowFragments(glyphs []pdf.Text) []string {
	var (
		fragments []string
		current   strings.Builder
	)
	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			if g.X-(prev.X+prev.W) > gapRatio*max(g.FontSize, 1) {
				fragments = append(fragments, current.String())
				current.Reset()
			}
		}
		current.WriteString(g.S)
	}
	if current.Len() > 0 {
		fragments = append(fragments, current.String())
	}
	return fragments
}
