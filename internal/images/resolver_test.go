package images

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thestreamic/streamic/internal/ratelimit"
	"github.com/thestreamic/streamic/internal/rss"
)

// offline returns a resolver with no remote-fetch budget, so tests that only
// exercise the structural cascade can never hit the network.
func offline() *Resolver {
	return NewResolver(time.Second, nil)
}

func TestResolvePrefersStructuredMedia(t *testing.T) {
	e := rss.Entry{
		MediaURLs:   []string{"https://cdn.example.com/hero.jpg"},
		Description: `<img src="https://example.com/img/other.png">`,
	}
	require.Equal(t, "https://cdn.example.com/hero.jpg", offline().Resolve(context.Background(), e))
}

func TestResolveImageEnclosure(t *testing.T) {
	e := rss.Entry{
		Enclosures: []rss.Enclosure{
			{URL: "https://example.com/episode.mp3", Type: "audio/mpeg"},
			{URL: "https://example.com/cover.png", Type: "image/png"},
		},
	}
	require.Equal(t, "https://example.com/cover.png", offline().Resolve(context.Background(), e))
}

func TestResolveImgTagInDoubleEncodedDescription(t *testing.T) {
	// Markup arrives entity-encoded; the resolver must unescape first.
	e := rss.Entry{
		Description: "&lt;p&gt;Story&lt;/p&gt;&lt;img src=&quot;https://example.com/wp-content/uploads/2024/03/studio&quot;/&gt;",
	}
	require.Equal(t, "https://example.com/wp-content/uploads/2024/03/studio", offline().Resolve(context.Background(), e))
}

func TestResolveBackgroundImage(t *testing.T) {
	e := rss.Entry{
		Content: `<div style="background-image: url('https://example.com/banner.webp')">text</div>`,
	}
	require.Equal(t, "https://example.com/banner.webp", offline().Resolve(context.Background(), e))
}

func TestResolveBareURLInExtensionAttrs(t *testing.T) {
	e := rss.Entry{
		Extra: []string{"poster=https://media.example.com/frame.jpeg?w=1200"},
	}
	require.Equal(t, "https://media.example.com/frame.jpeg?w=1200", offline().Resolve(context.Background(), e))
}

func TestResolveRejectsPlaceholders(t *testing.T) {
	for _, bad := range []string{
		"https://example.com/spacer.gif",
		"https://example.com/1x1.png",
		"https://stats.example.com/pixel.gif",
		"https://secure.gravatar.com/avatar/abc123.jpg",
		"data:image/png;base64,iVBORw0KGgo=",
	} {
		e := rss.Entry{MediaURLs: []string{bad}}
		require.Empty(t, offline().Resolve(context.Background(), e), "should reject %s", bad)
	}
}

func TestResolveSkipsPlaceholderThenTakesNextCandidate(t *testing.T) {
	e := rss.Entry{
		MediaURLs: []string{
			"https://example.com/blank.png",
			"https://example.com/real-photo.jpg",
		},
	}
	require.Equal(t, "https://example.com/real-photo.jpg", offline().Resolve(context.Background(), e))
}

func TestResolvePromotesSchemeRelativeURLs(t *testing.T) {
	e := rss.Entry{MediaURLs: []string{"//cdn.example.com/lead.jpg"}}
	require.Equal(t, "https://cdn.example.com/lead.jpg", offline().Resolve(context.Background(), e))
}

func TestResolveAcceptsHostHintWithoutExtension(t *testing.T) {
	e := rss.Entry{MediaURLs: []string{"https://res.cloudinary.com/demo/image/upload/v1/sample"}}
	require.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/sample", offline().Resolve(context.Background(), e))
}

func TestResolveRejectsExtensionlessUnknownHost(t *testing.T) {
	e := rss.Entry{MediaURLs: []string{"https://example.com/some/page"}}
	require.Empty(t, offline().Resolve(context.Background(), e))
}

func TestResolveFetchesOpenGraphImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta property="og:image" content="https://x.com/a.jpg">
		</head><body></body></html>`)
	}))
	defer srv.Close()

	r := NewResolver(time.Second, ratelimit.NewBudget(2))
	e := rss.Entry{Link: srv.URL}
	require.Equal(t, "https://x.com/a.jpg", r.Resolve(context.Background(), e))
}

func TestResolveFallsBackToTwitterImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta name="twitter:image" content="https://x.com/card.png">
		</head></html>`)
	}))
	defer srv.Close()

	r := NewResolver(time.Second, ratelimit.NewBudget(2))
	require.Equal(t, "https://x.com/card.png", r.Resolve(context.Background(), rss.Entry{Link: srv.URL}))
}

func TestResolveExhaustedBudgetSkipsPageFetch(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `<html><head><meta property="og:image" content="https://x.com/a.jpg"></head></html>`)
	}))
	defer srv.Close()

	budget := ratelimit.NewBudget(1)
	r := NewResolver(time.Second, budget)

	require.Equal(t, "https://x.com/a.jpg", r.Resolve(context.Background(), rss.Entry{Link: srv.URL}))
	// Budget spent: second entry resolves to no image without a request.
	require.Empty(t, r.Resolve(context.Background(), rss.Entry{Link: srv.URL}))
	require.Equal(t, 1, hits)
}

func TestResolvePageFetchFailureIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolver(time.Second, ratelimit.NewBudget(1))
	require.Empty(t, r.Resolve(context.Background(), rss.Entry{Link: srv.URL}))
}

func TestIsValidRequiresAbsoluteHTTPURL(t *testing.T) {
	require.False(t, isValid("/images/relative.jpg"))
	require.False(t, isValid("ftp://example.com/a.jpg"))
	require.True(t, isValid("http://example.com/a.jpg"))
}
