package metrics

import (
	"sync"
	"time"
)

// Metrics collects per-run counters for the aggregation pipeline. Counters
// are mutex-protected so a concurrent fetch reimplementation keeps working.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched      int64
	FeedsFailed       int64
	EntriesProcessed  int64
	EntriesRejected   int64
	DuplicatesRemoved int64
	ImagesResolved    int64
	ArticleFetches    int64
	ItemsPublished    int64

	// Timings
	LastRunDuration time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFeedsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFailed++
}

func (m *Metrics) IncrementEntriesProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesProcessed++
}

func (m *Metrics) IncrementEntriesRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesRejected++
}

func (m *Metrics) AddDuplicatesRemoved(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesRemoved += int64(n)
}

func (m *Metrics) IncrementImagesResolved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImagesResolved++
}

func (m *Metrics) IncrementArticleFetches() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticleFetches++
}

func (m *Metrics) SetItemsPublished(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsPublished = int64(n)
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunDuration = duration
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":        m.FeedsFetched,
		"feeds_failed":         m.FeedsFailed,
		"entries_processed":    m.EntriesProcessed,
		"entries_rejected":     m.EntriesRejected,
		"duplicates_removed":   m.DuplicatesRemoved,
		"images_resolved":      m.ImagesResolved,
		"article_fetches":      m.ArticleFetches,
		"items_published":      m.ItemsPublished,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
