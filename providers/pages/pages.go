package pages

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrNoPages is returned when a document yields no page with text.
var ErrNoPages = errors.New("pages: document has no text")

// Page is the text of one document page. Number is 1-based and refers to the
// page's position in the source, so skipped pages leave gaps.
type Page struct {
	Number int
	Text   string
}

// Provider yields the pages of one document.
type Provider interface {
	// Source names the document, for logs and reports.
	Source() string
	Pages(ctx context.Context) ([]Page, error)
}

// Format is a document format recognised by [DetectFormat].
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// DetectFormat picks a format from a file extension or URL scheme. Anything
// unrecognised is treated as text.
func DetectFormat(source string) Format {
	if IsURL(source) {
		return FormatHTML
	}
	switch filepath.Ext(strings.ToLower(source)) {
	case ".pdf":
		return FormatPDF
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	default:
		return FormatText
	}
}

// IsURL reports whether source is an http or https URL.
func IsURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Clean normalizes page text: NFC composition, LF line endings, trailing
// spaces and no-break spaces removed, blank line runs collapsed to one and
// outer space trimmed.
func Clean(text string) string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := lines[:0]
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\u00a0")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// JoinFragments joins positioned text runs, such as those a PDF content
// stream yields, with single spaces. Empty runs are skipped.
func JoinFragments(fragments []string) string {
	var b strings.Builder
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f)
	}
	return b.String()
}

// Finalize cleans every page, drops the empty ones and returns [ErrNoPages]
// when nothing is left.
func Finalize(raw []Page) ([]Page, error) {
	out := make([]Page, 0, len(raw))
	for _, p := range raw {
		p.Text = Clean(p.Text)
		if p.Text == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, ErrNoPages
	}
	return out, nil
}
