// Package htmlpages turns HTML documents, local or fetched over HTTP, into a
// single Markdown page. Markdown keeps table rows on one line each, which is
// what a table-extraction prompt wants to see.
package htmlpages

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/docextract/providers/pages"
)

const (
	// DefaultTimeout bounds a whole fetch.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent with every fetch.
	DefaultUserAgent = "docextract/1.0"
	// MaxBodySize is the largest document accepted (10MB).
	MaxBodySize = 10 * 1024 * 1024
)

// Provider reads one HTML document.
type Provider struct {
	source string
	load   func(ctx context.Context) ([]byte, error)
}

// FromFile reads the HTML document at path.
func FromFile(path string) *Provider {
	return &Provider{
		source: path,
		load: func(context.Context) ([]byte, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return readLimited(f)
		},
	}
}

// FromURL fetches the document at url with client, or with a client using
// [DefaultTimeout] when client is nil.
func FromURL(url string, client *http.Client) *Provider {
	if client == nil {
		client = newHTTPClient(DefaultTimeout)
	}
	return &Provider{
		source: url,
		load: func(ctx context.Context) ([]byte, error) {
			return fetch(ctx, client, url)
		},
	}
}

// Source implements pages.Provider.
func (p *Provider) Source() string { return p.source }

// Pages implements pages.Provider.
func (p *Provider) Pages(ctx context.Context) ([]pages.Page, error) {
	html, err := p.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("htmlpages: %s: %w", p.source, err)
	}
	return Convert(string(html))
}

// Convert renders html as Markdown and returns it as page 1.
func Convert(html string) ([]pages.Page, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("htmlpages: convert to markdown: %w", err)
	}
	return pages.Finalize([]pages.Page{{Number: 1, Text: markdown}})
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          10,
			ForceAttemptHTTP2:     true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects (>10)")
			}
			return nil
		},
	}
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return readLimited(resp.Body)
}

// readLimited reads at most MaxBodySize bytes and fails on anything larger.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > MaxBodySize {
		return nil, fmt.Errorf("document exceeds maximum size of %d bytes", MaxBodySize)
	}
	return data, nil
}
