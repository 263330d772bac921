package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// DefaultMaxPageSize limits how much of a web page body is read.
const DefaultMaxPageSize = 10 << 20 // 10MB

// DefaultFetchTimeout bounds a single page fetch.
const DefaultFetchTimeout = 30 * time.Second

// FetchError reports a failed page fetch. It is distinguishable from an
// empty-content success (ErrEmptyContent): a FetchError means the page was
// never read, not that it had nothing to say.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request itself failed
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WebAdapter fetches a web page and extracts its main textual content,
// excluding scripts, styles and navigation chrome.
type WebAdapter struct {
	client  *http.Client
	maxBody int64
}

// WebOption configures a WebAdapter.
type WebOption func(*WebAdapter)

// WithHTTPClient replaces the HTTP client (tests use httptest servers).
func WithHTTPClient(c *http.Client) WebOption {
	return func(a *WebAdapter) {
		if c != nil {
			a.client = c
		}
	}
}

// WithMaxPageSize caps the number of body bytes read per page.
func WithMaxPageSize(n int64) WebOption {
	return func(a *WebAdapter) {
		if n > 0 {
			a.maxBody = n
		}
	}
}

// NewWebAdapter creates a web page adapter.
func NewWebAdapter(opts ...WebOption) *WebAdapter {
	a := &WebAdapter{
		client:  &http.Client{Timeout: DefaultFetchTimeout},
		maxBody: DefaultMaxPageSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Kind returns KindWeb.
func (*WebAdapter) Kind() Kind { return KindWeb }

// Normalize fetches src.URL and extracts readable text as a single segment.
// The page title, when present, is reported as the display name.
func (a *WebAdapter) Normalize(ctx context.Context, src Source) (*Normalized, error) {
	pageURL, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing url %q: %w", src.URL, err)
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", pageURL.Scheme)
	}

	body, err := a.fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	title, text := extractReadable(body, pageURL)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyContent, src.URL)
	}

	return &Normalized{
		Title:    title,
		Segments: []Segment{{Text: normalizeNewlines(text)}},
	}, nil
}

func (a *WebAdapter) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", "corpus/1.0 (+document ingestion)")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBody))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	return body, nil
}

// extractReadable runs readability extraction with a goquery fallback for
// pages readability cannot parse (bare fragments, sparse markup).
func extractReadable(body []byte, pageURL *url.URL) (title, text string) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return article.Title, article.TextContent
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", ""
	}
	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()
	title = strings.TrimSpace(doc.Find("title").First().Text())
	return title, collapseWhitespace(doc.Find("body").Text())
}

// collapseWhitespace squeezes runs of blank space left behind by removed
// nodes while keeping paragraph structure for the chunker.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, strings.Join(strings.Fields(line), " "))
	}
	return strings.Join(out, "\n")
}
