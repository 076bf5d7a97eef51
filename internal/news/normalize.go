package news

import (
	"context"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/thestreamic/streamic/internal/images"
	"github.com/thestreamic/streamic/internal/metrics"
	"github.com/thestreamic/streamic/internal/rss"
)

const (
	summarySentences = 2
	summaryMaxRunes  = 200
)

var (
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	sentenceRe = regexp.MustCompile(`[.!?]+\s+`)
)

// Normalize converts a raw entry into a canonical Item. The second return is
// false when the entry is unusable (no title, no http link) and must be
// dropped without affecting its siblings.
func Normalize(ctx context.Context, e rss.Entry, category, source string, r *images.Resolver) (Item, bool) {
	metrics.Global.IncrementEntriesProcessed()

	title := strings.TrimSpace(html.UnescapeString(e.Title))
	link := strings.TrimSpace(e.Link)

	if title == "" || link == "" || !isHTTPLink(link) {
		metrics.Global.IncrementEntriesRejected()
		return Item{}, false
	}

	guid := strings.TrimSpace(e.GUID)
	if guid == "" {
		guid = link
	}

	image := r.Resolve(ctx, e)
	if image != "" {
		metrics.Global.IncrementImagesResolved()
	}

	return Item{
		GUID:     guid,
		Title:    title,
		Link:     link,
		Category: category,
		Source:   source,
		Image:    image,
		PubDate:  publishedAt(e),
		Summary:  summarize(e),
	}, true
}

func isHTTPLink(link string) bool {
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}

// publishedAt prefers the feed's published stamp, then updated, then the
// ingestion time so the field is never empty.
func publishedAt(e rss.Entry) time.Time {
	if e.Published != nil {
		return e.Published.UTC()
	}
	if e.Updated != nil {
		return e.Updated.UTC()
	}
	return time.Now().UTC()
}

// summarize derives a short plain-text summary from the entry's own
// description. The linked article is never fetched for this: headline and
// feed-provided text only keeps the dataset copyright-safe.
func summarize(e rss.Entry) string {
	text := e.Description
	if text == "" {
		text = e.Content
	}
	if text == "" {
		return ""
	}

	text = tagRe.ReplaceAllString(html.UnescapeString(text), " ")
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}

	sentences := sentenceRe.Split(text, summarySentences+1)
	if len(sentences) > summarySentences {
		sentences = sentences[:summarySentences]
	}
	summary := strings.TrimSpace(strings.Join(sentences, ". "))
	if summary == "" {
		return ""
	}
	if !strings.HasSuffix(summary, ".") && !strings.HasSuffix(summary, "!") && !strings.HasSuffix(summary, "?") {
		summary += "."
	}

	runes := []rune(summary)
	if len(runes) > summaryMaxRunes {
		summary = string(runes[:summaryMaxRunes])
	}
	return summary
}
