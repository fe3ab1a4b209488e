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

	"github.com/go-shiori/go-readability"

	"github.com/japaniel/readlex/pkg/tokenize"
)

// DefaultMaxBodySize caps how much HTML Fetch will read.
const DefaultMaxBodySize = 10 * 1024 * 1024

// Article is the readable content extracted from a web page.
type Article struct {
	URL      string
	Title    string
	Byline   string
	SiteName string
	Text     string
}

// Fetcher downloads web pages and extracts their main text.
type Fetcher struct {
	Client      *http.Client
	MaxBodySize int64
}

// Fetch downloads rawURL with a default Fetcher.
func Fetch(ctx context.Context, rawURL string) (Article, error) {
	return (&Fetcher{}).Fetch(ctx, rawURL)
}

// Fetch downloads rawURL and extracts its article text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Article, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return Article{}, fmt.Errorf("invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Article{}, fmt.Errorf("create request: %w", err)
	}
	// Mimic a real browser; many sites block default Go clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")
	req.Header.Set("Referer", "https://www.google.com/")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Article{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Article{}, fmt.Errorf("fetch %s: got status code %d", rawURL, resp.StatusCode)
	}

	maxBodySize := f.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	if resp.ContentLength > maxBodySize {
		return Article{}, fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, maxBodySize)
	}
	// Read one byte past the limit to tell a full-size page from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return Article{}, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > maxBodySize {
		return Article{}, fmt.Errorf("response body exceeded maximum size limit of %d bytes", maxBodySize)
	}

	return Extract(body, parsedURL)
}

// Extract pulls the article out of an HTML page. Furigana is removed first so
// ruby text is not duplicated into the body.
func Extract(html []byte, pageURL *url.URL) (Article, error) {
	html = tokenize.SanitizeRuby(html)
	article, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		return Article{}, fmt.Errorf("extract article: %w", err)
	}
	a := Article{
		Title:    strings.TrimSpace(article.Title),
		Byline:   strings.TrimSpace(article.Byline),
		SiteName: strings.TrimSpace(article.SiteName),
		Text:     strings.TrimSpace(article.TextContent),
	}
	if pageURL != nil {
		a.URL = pageURL.String()
	}
	return a, nil
}
