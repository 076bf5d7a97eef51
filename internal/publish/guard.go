// Package publish decides whether a freshly aggregated dataset is safe to
// make durable. A thin run must never replace a healthy published site.
package publish

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thestreamic/streamic/internal/logger"
	"github.com/thestreamic/streamic/internal/news"
	"github.com/thestreamic/streamic/internal/storage"
)

// Report summarizes coverage validation for the run log.
type Report struct {
	Counts    map[string]int // items per category
	Shortfall []string       // categories below the minimum
	Published bool
}

func (r Report) String() string {
	cats := make([]string, 0, len(r.Counts))
	for cat := range r.Counts {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	parts := make([]string, 0, len(cats))
	for _, cat := range cats {
		parts = append(parts, fmt.Sprintf("%s=%d", cat, r.Counts[cat]))
	}
	return strings.Join(parts, " ")
}

// Guard validates candidate datasets against per-category coverage and
// commits them through the store.
type Guard struct {
	store *storage.Store

	// MinRequiredEach is the per-category floor a candidate must meet when a
	// prior dataset exists.
	minRequiredEach int

	// publishIncomplete keeps the first-run behavior: with no prior dataset,
	// an under-covered result is still published, because some data beats an
	// empty site. Flipping it off makes under-coverage always abort.
	publishIncomplete bool

	categories []string
}

func NewGuard(store *storage.Store, categories []string, minRequiredEach int, publishIncomplete bool) *Guard {
	return &Guard{
		store:             store,
		minRequiredEach:   minRequiredEach,
		publishIncomplete: publishIncomplete,
		categories:        categories,
	}
}

// Validate counts the candidate's items per configured category and reports
// any category under the floor.
func (g *Guard) Validate(items []news.Item) Report {
	counts := make(map[string]int, len(g.categories))
	for _, cat := range g.categories {
		counts[cat] = 0
	}
	for _, it := range items {
		counts[it.Category]++
	}

	var shortfall []string
	for _, cat := range g.categories {
		if counts[cat] < g.minRequiredEach {
			shortfall = append(shortfall, cat)
		}
	}
	return Report{Counts: counts, Shortfall: shortfall}
}

// Publish applies the safe-publish policy and returns the final report.
// Only a write failure is an error; an aborted publish is a valid outcome.
func (g *Guard) Publish(ds storage.Dataset) (Report, error) {
	report := g.Validate(ds.Items)

	if len(report.Shortfall) > 0 {
		if g.store.Exists() {
			logger.Warn("validation failed, keeping existing dataset",
				"shortfall", strings.Join(report.Shortfall, ","),
				"minimum", g.minRequiredEach)
			return report, nil
		}
		if !g.publishIncomplete {
			logger.Warn("validation failed on first run, publish disabled",
				"shortfall", strings.Join(report.Shortfall, ","))
			return report, nil
		}
		logger.Warn("validation failed but no existing dataset, publishing anyway",
			"shortfall", strings.Join(report.Shortfall, ","))
	}

	if err := g.store.Backup(); err != nil {
		return report, err
	}

	// The consumer treats null and [] differently in old front-end builds;
	// always emit arrays.
	if ds.Items == nil {
		ds.Items = []news.Item{}
	}
	if ds.FeaturedPriority == nil {
		ds.FeaturedPriority = []news.Item{}
	}

	if err := g.store.Save(ds); err != nil {
		return report, err
	}
	report.Published = true
	return report, nil
}
