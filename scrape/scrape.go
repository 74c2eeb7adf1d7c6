// Package scrape fetches web pages and reduces them to model-sized plain text.
// It backs the researcher agent's web tools.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	defaultMaxLength = 5000
	defaultUserAgent = "Mozilla/5.0 (compatible; cordon/1.0)"
	truncationMarker = "... [Content truncated]"
)

// Page is the cleaned result of scraping a URL.
type Page struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	ContentLength int    `json:"content_length"`
}

// Options configure a Scraper.
type Options struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxLength caps the extracted text; longer content is truncated with a marker.
	MaxLength int
}

// Scraper downloads pages and extracts readable text, dropping script and
// style content. Safe for concurrent use.
type Scraper struct {
	client    *http.Client
	userAgent string
	maxLength int
}

// New creates a Scraper with sane defaults (10s request timeout, 5000 char cap).
func New(optFns ...func(o *Options)) *Scraper {
	opts := Options{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		UserAgent:  defaultUserAgent,
		MaxLength:  defaultMaxLength,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Scraper{
		client:    opts.HTTPClient,
		userAgent: opts.UserAgent,
		maxLength: opts.MaxLength,
	}
}

// Fetch downloads the URL and returns its title and readable text.
func (s *Scraper) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	title, content := extract(doc)
	if len(content) > s.maxLength {
		cut := s.maxLength
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut] + truncationMarker
	}

	return &Page{
		URL:           url,
		Title:         title,
		Content:       content,
		ContentLength: len(content),
	}, nil
}

// extract walks the DOM collecting the document title and visible text.
func extract(doc *html.Node) (title, content string) {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title, sb.String()
}

// ReadText is a helper for non-HTML responses; it reads at most maxLength bytes.
func ReadText(r io.Reader, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = defaultMaxLength
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(maxLength)+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxLength {
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(data[cut]) {
			cut--
		}
		return string(data[:cut]) + truncationMarker, nil
	}
	return string(data), nil
}
