// Package images resolves a representative image URL for a feed entry.
// Feeds expose imagery in wildly different places, so the resolver walks a
// cascade of strategies from structured metadata down to a bounded fetch of
// the article page itself. Every strategy failure just means "try the next
// one"; the resolver never returns an error.
package images

import (
	"context"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/thestreamic/streamic/internal/logger"
	"github.com/thestreamic/streamic/internal/metrics"
	"github.com/thestreamic/streamic/internal/ratelimit"
	"github.com/thestreamic/streamic/internal/rss"
)

const (
	userAgent = "Mozilla/5.0 (compatible; StreamicBot/1.0; +https://thestreamic.com)"

	// Only the head of the article page matters for og:image tags.
	maxPageBytes = 64 * 1024
)

// Substrings that mark tracking pixels, placeholders and avatars.
var rejectedSubstrings = []string{
	"1x1", "pixel", "spacer", "blank", "placeholder", "tracker",
	"default", "avatar", "gravatar", "data:image", "base64",
}

// Path and host fragments that usually carry real article imagery even when
// the URL lacks an extension.
var hostHints = []string{
	"wp-content/uploads", "/images/", "/img/", "/media/",
	"cloudinary", "unsplash", "cdn.", "amazonaws",
}

var (
	imageExtRe     = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|svg)([?#]|$)`)
	backgroundRe   = regexp.MustCompile(`(?i)background-image\s*:\s*url\(["']?([^"')\s]+)`)
	bareImageURLRe = regexp.MustCompile(`(?i)https?://[^\s<>"']+\.(?:jpg|jpeg|png|gif|webp|svg)[^\s<>"']*`)
)

// Resolver extracts image URLs from entries, spending at most one budget
// slot per remote article-page lookup.
type Resolver struct {
	client *http.Client
	budget *ratelimit.Budget
}

// NewResolver builds a resolver. A nil budget disables the article-page
// fallback entirely.
func NewResolver(pageTimeout time.Duration, budget *ratelimit.Budget) *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: pageTimeout},
		budget: budget,
	}
}

// Resolve returns the best image URL for the entry, or "" when nothing
// survives validation.
func (r *Resolver) Resolve(ctx context.Context, e rss.Entry) string {
	if u := fromStructured(e); u != "" {
		return u
	}
	if u := fromMarkup(e.Content); u != "" {
		return u
	}
	if u := fromMarkup(e.Description); u != "" {
		return u
	}
	if u := fromBareURLs(e); u != "" {
		return u
	}
	return r.fromArticlePage(ctx, e.Link)
}

// fromStructured tries media:content / media:thumbnail URLs, then
// image-typed enclosures.
func fromStructured(e rss.Entry) string {
	for _, u := range e.MediaURLs {
		if c := clean(u); isValid(c) {
			return c
		}
	}
	for _, enc := range e.Enclosures {
		if !strings.HasPrefix(strings.ToLower(enc.Type), "image/") {
			continue
		}
		if c := clean(enc.URL); isValid(c) {
			return c
		}
	}
	return ""
}

// fromMarkup digs an image out of an HTML-bearing field. Feeds frequently
// double-encode markup, so unescape before parsing.
func fromMarkup(markup string) string {
	if markup == "" {
		return ""
	}
	decoded := html.UnescapeString(markup)

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(decoded)); err == nil {
		found := ""
		doc.Find("img").EachWithBreak(func(i int, s *goquery.Selection) bool {
			src, _ := s.Attr("src")
			if c := clean(src); isValid(c) {
				found = c
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	if m := backgroundRe.FindStringSubmatch(decoded); m != nil {
		if c := clean(m[1]); isValid(c) {
			return c
		}
	}
	return ""
}

// fromBareURLs scans every text fragment of the entry for a direct image
// URL. Last structural attempt before going to the network.
func fromBareURLs(e rss.Entry) string {
	fields := make([]string, 0, len(e.Extra)+3)
	fields = append(fields, e.Title, e.Description, e.Content)
	fields = append(fields, e.Extra...)

	for _, field := range fields {
		for _, u := range bareImageURLRe.FindAllString(html.UnescapeString(field), -1) {
			if c := clean(u); isValid(c) {
				return c
			}
		}
	}
	return ""
}

// fromArticlePage fetches the article itself and reads its social preview
// meta tags. Each attempt consumes the shared per-run budget so a run full
// of imageless feeds cannot stall on page fetches.
func (r *Resolver) fromArticlePage(ctx context.Context, link string) string {
	if link == "" || r.budget == nil || !r.budget.Take() {
		return ""
	}
	metrics.Global.IncrementArticleFetches()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,*/*")

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Debug("article page fetch failed", "url", link, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return ""
	}

	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[name="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
	} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if c := clean(content); isValid(c) {
				return c
			}
		}
	}
	return ""
}

// isValid applies the acceptance rules: nothing placeholder-like, and either
// a real image extension or a known image-hosting hint.
func isValid(u string) bool {
	if len(u) < 8 {
		return false
	}
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	for _, bad := range rejectedSubstrings {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	if imageExtRe.MatchString(lower) {
		return true
	}
	for _, hint := range hostHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// clean normalizes a candidate: entity-decode, trim, and promote
// scheme-relative URLs to https.
func clean(u string) string {
	u = strings.TrimSpace(html.UnescapeString(u))
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return u
}
