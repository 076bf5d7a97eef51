package rss

import (
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// Enclosure is a media attachment declared by the feed.
type Enclosure struct {
	URL  string
	Type string
}

// Entry is a feed entry flattened to a fixed schema. Downstream code
// (normalizer, image resolver) works on this record instead of poking at
// format-specific fields, so RSS and Atom origins look the same.
type Entry struct {
	Title       string
	Link        string
	GUID        string
	Description string
	Content     string

	// MediaURLs holds media:content and media:thumbnail URLs in feed order,
	// thumbnails last.
	MediaURLs  []string
	Enclosures []Enclosure

	Published *time.Time
	Updated   *time.Time

	// Extra collects remaining extension attribute and text values so the
	// resolver can scan them for bare image URLs as a last structural step.
	Extra []string
}

// FromFeedItem flattens a parsed gofeed item into an Entry.
func FromFeedItem(it *gofeed.Item) Entry {
	e := Entry{
		Title:       it.Title,
		Link:        it.Link,
		GUID:        it.GUID,
		Description: it.Description,
		Content:     it.Content,
		Published:   it.PublishedParsed,
		Updated:     it.UpdatedParsed,
	}

	if media, ok := it.Extensions["media"]; ok {
		for _, c := range media["content"] {
			collectMedia(c, &e)
		}
		for _, t := range media["thumbnail"] {
			collectMedia(t, &e)
		}
		for _, g := range media["group"] {
			for _, c := range g.Children["content"] {
				collectMedia(c, &e)
			}
			for _, t := range g.Children["thumbnail"] {
				collectMedia(t, &e)
			}
		}
	}
	if it.Image != nil && it.Image.URL != "" {
		e.MediaURLs = append(e.MediaURLs, it.Image.URL)
	}

	for _, enc := range it.Enclosures {
		if enc == nil {
			continue
		}
		e.Enclosures = append(e.Enclosures, Enclosure{URL: enc.URL, Type: enc.Type})
	}

	for _, exts := range it.Extensions {
		for _, list := range exts {
			for _, x := range list {
				collectExtra(x, &e)
			}
		}
	}

	return e
}

func collectMedia(x ext.Extension, e *Entry) {
	if u := x.Attrs["url"]; u != "" {
		e.MediaURLs = append(e.MediaURLs, u)
	}
}

func collectExtra(x ext.Extension, e *Entry) {
	if x.Value != "" {
		e.Extra = append(e.Extra, x.Value)
	}
	for _, v := range x.Attrs {
		if v != "" {
			e.Extra = append(e.Extra, v)
		}
	}
	for _, children := range x.Children {
		for _, c := range children {
			collectExtra(c, e)
		}
	}
}
