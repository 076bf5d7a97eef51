// Package news holds the canonical article record and the aggregation engine
// that merges, deduplicates and balances items across categories.
package news

import (
	"encoding/json"
	"time"
)

// Item is one normalized article in the published dataset. Field names are
// frozen: the static site reads them.
type Item struct {
	GUID     string    `json:"guid"`
	Title    string    `json:"title"`
	Link     string    `json:"link"`
	Category string    `json:"category"`
	Source   string    `json:"source"`
	Image    string    `json:"image"`
	PubDate  time.Time `json:"pubDate"`
	Summary  string    `json:"summary,omitempty"`
}

type itemOut struct {
	GUID     string  `json:"guid"`
	Title    string  `json:"title"`
	Link     string  `json:"link"`
	Category string  `json:"category"`
	Source   string  `json:"source"`
	Image    *string `json:"image"`
	PubDate  string  `json:"pubDate"`
	Summary  string  `json:"summary,omitempty"`
}

// itemIn additionally accepts the older "timestamp" field (ISO string or
// unix seconds), which earlier generations of the dataset used instead of
// pubDate.
type itemIn struct {
	GUID      string          `json:"guid"`
	Title     string          `json:"title"`
	Link      string          `json:"link"`
	Category  string          `json:"category"`
	Source    string          `json:"source"`
	Image     *string         `json:"image"`
	PubDate   json.RawMessage `json:"pubDate"`
	Timestamp json.RawMessage `json:"timestamp"`
	Summary   string          `json:"summary,omitempty"`
}

func (it Item) MarshalJSON() ([]byte, error) {
	out := itemOut{
		GUID:     it.GUID,
		Title:    it.Title,
		Link:     it.Link,
		Category: it.Category,
		Source:   it.Source,
		PubDate:  it.PubDate.UTC().Format(time.RFC3339),
		Summary:  it.Summary,
	}
	if it.Image != "" {
		out.Image = &it.Image
	}
	return json.Marshal(out)
}

func (it *Item) UnmarshalJSON(data []byte) error {
	var in itemIn
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*it = Item{
		GUID:     in.GUID,
		Title:    in.Title,
		Link:     in.Link,
		Category: in.Category,
		Source:   in.Source,
		Summary:  in.Summary,
	}
	if in.Image != nil {
		it.Image = *in.Image
	}
	if t, ok := parseStamp(in.PubDate); ok {
		it.PubDate = t
	} else if t, ok := parseStamp(in.Timestamp); ok {
		it.PubDate = t
	}
	return nil
}

// Timestamp layouts seen across dataset generations; the oldest writer
// emitted naive local ISO stamps without a zone.
var stampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseStamp(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range stampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	var unix float64
	if err := json.Unmarshal(raw, &unix); err == nil && unix > 0 {
		return time.Unix(int64(unix), 0).UTC(), true
	}
	return time.Time{}, false
}
