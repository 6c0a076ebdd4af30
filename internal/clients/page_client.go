package clients

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/net/html"
)

const maxPageChars = 4000

// PageFetcher fetches a result page and reduces it to plain text with
// navigation and boilerplate stripped.
type PageFetcher interface {
	FetchText(ctx context.Context, pageURL string) (string, error)
}

// CachingPageFetcher caches extracted page text with a TTL so repeated
// runs do not re-fetch the same sources.
type CachingPageFetcher struct {
	http  *http.Client
	cache *gocache.Cache
}

func NewCachingPageFetcher(timeout, ttl time.Duration) *CachingPageFetcher {
	return &CachingPageFetcher{
		http:  &http.Client{Timeout: timeout},
		cache: gocache.New(ttl, ttl),
	}
}

func (f *CachingPageFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	if cached, ok := f.cache.Get(pageURL); ok {
		return cached.(string), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; wayfarer)")

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("page http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("page bad status: %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("page parse: %w", err)
	}

	text := ExtractText(doc)
	f.cache.SetDefault(pageURL, text)
	return text, nil
}

var skippedTags = map[string]bool{
	"script": true, "style": true, "nav": true,
	"footer": true, "header": true, "aside": true, "noscript": true,
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// ExtractText flattens a parsed page into whitespace-collapsed text,
// skipping non-content elements, capped at maxPageChars.
func ExtractText(doc *html.Node) string {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(sb.String(), " "))
	if len(text) > maxPageChars {
		// Back up to a rune boundary so the cut never leaves invalid UTF-8.
		cut := maxPageChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
