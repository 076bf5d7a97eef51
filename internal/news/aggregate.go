package news

import (
	"sort"

	"github.com/thestreamic/streamic/internal/metrics"
)

// Config tunes the balancing pass.
type Config struct {
	// Categories is the closed category set. Items outside it are dropped
	// before balancing; empty means no filtering. This is what retires a
	// category: once removed from the feeds config, its items stop being
	// carried over from the previous dataset.
	Categories []string

	MaxPerCategory    int // ceiling of items kept per category
	MaxItemsPerSource int // per-source cap within a category
	MaxNewsItems      int // global cap on the published list
	Orderer           Orderer
}

// Result carries the balanced list plus the per-category view the featured
// rotation is built from.
type Result struct {
	Items             []Item
	ByCategory        map[string][]Item
	DuplicatesRemoved int
}

// Aggregate merges freshly fetched items with the previous run's items and
// produces the next published set. Fresh items come first so they win GUID
// ties against stale copies of the same article.
func Aggregate(fresh, previous []Item, cfg Config) Result {
	orderer := cfg.Orderer
	if orderer == nil {
		orderer = SourceInterleave{}
	}

	merged := make([]Item, 0, len(fresh)+len(previous))
	merged = append(merged, fresh...)
	merged = append(merged, previous...)
	merged = keepConfigured(merged, cfg.Categories)

	unique, removed := Deduplicate(merged)
	metrics.Global.AddDuplicatesRemoved(removed)

	byCategory := map[string][]Item{}
	var categories []string
	for _, it := range unique {
		if _, ok := byCategory[it.Category]; !ok {
			categories = append(categories, it.Category)
		}
		byCategory[it.Category] = append(byCategory[it.Category], it)
	}

	var balanced []Item
	for _, cat := range categories {
		items := byCategory[cat]
		sortByRecency(items)
		items = capPerSource(items, cfg.MaxItemsPerSource)
		if cfg.MaxPerCategory > 0 && len(items) > cfg.MaxPerCategory {
			items = items[:cfg.MaxPerCategory]
		}
		items = orderer.Order(items)

		byCategory[cat] = items
		balanced = append(balanced, items...)
	}

	// Category pages sort by recency globally; the interleaved order only
	// survives inside the featured rotation.
	sortByRecency(balanced)
	if cfg.MaxNewsItems > 0 && len(balanced) > cfg.MaxNewsItems {
		balanced = balanced[:cfg.MaxNewsItems]
	}

	return Result{
		Items:             balanced,
		ByCategory:        byCategory,
		DuplicatesRemoved: removed,
	}
}

// Deduplicate removes items sharing a GUID, keeping the first occurrence.
// Running it on an already-unique list is a no-op.
func Deduplicate(items []Item) ([]Item, int) {
	seen := make(map[string]struct{}, len(items))
	unique := make([]Item, 0, len(items))
	for _, it := range items {
		if it.GUID == "" {
			continue
		}
		if _, dup := seen[it.GUID]; dup {
			continue
		}
		seen[it.GUID] = struct{}{}
		unique = append(unique, it)
	}
	return unique, len(items) - len(unique)
}

// keepConfigured drops items whose category is no longer configured, so a
// retired category cannot ride along from dataset to dataset forever.
func keepConfigured(items []Item, categories []string) []Item {
	if len(categories) == 0 {
		return items
	}
	allowed := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		allowed[cat] = struct{}{}
	}

	kept := make([]Item, 0, len(items))
	for _, it := range items {
		if _, ok := allowed[it.Category]; ok {
			kept = append(kept, it)
		}
	}
	return kept
}

// sortByRecency orders newest-first. The sort is stable so equal or missing
// timestamps keep their merge order and repeated runs stay idempotent.
func sortByRecency(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PubDate.After(items[j].PubDate)
	})
}

// capPerSource truncates any single publisher's contribution so one chatty
// vendor blog cannot crowd out the rest of a category.
func capPerSource(items []Item, limit int) []Item {
	if limit <= 0 {
		return items
	}
	counts := map[string]int{}
	capped := make([]Item, 0, len(items))
	for _, it := range items {
		if counts[it.Source] >= limit {
			continue
		}
		counts[it.Source]++
		capped = append(capped, it)
	}
	return capped
}
