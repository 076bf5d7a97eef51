// Package app wires the pipeline: fetch feeds, normalize entries, balance
// categories, publish. Feeds are processed one at a time on purpose — every
// feed fails independently and often, and the feed count is small enough
// that sequential latency is fine for a periodic batch job.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/thestreamic/streamic/internal/config"
	"github.com/thestreamic/streamic/internal/images"
	"github.com/thestreamic/streamic/internal/logger"
	"github.com/thestreamic/streamic/internal/metrics"
	"github.com/thestreamic/streamic/internal/news"
	"github.com/thestreamic/streamic/internal/publish"
	"github.com/thestreamic/streamic/internal/ratelimit"
	"github.com/thestreamic/streamic/internal/rss"
	"github.com/thestreamic/streamic/internal/storage"
)

// Run executes one aggregation pass. The returned error is non-nil only for
// failures that must fail the whole run: bad configuration or a dataset
// write error. A run that aborts publishing to protect existing data still
// returns nil.
func Run() error {
	start := time.Now()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sources, err := rss.LoadSources(cfg.FeedsConfigPath)
	if err != nil {
		return fmt.Errorf("load feed sources: %w", err)
	}

	fetcher := rss.NewFetcher(cfg.WorkerURL, sources.Direct, cfg.FeedFetchTimeout, cfg.FetchDelay)
	budget := ratelimit.NewBudget(cfg.MaxArticleFetches)
	resolver := images.NewResolver(cfg.ArticleFetchTimeout, budget)
	store := storage.NewStore(cfg.NewsFile(), cfg.ArchiveFile())

	fresh := collect(ctx, cfg, sources, fetcher, resolver)
	logger.Info("collection finished", "items", len(fresh), "article_fetches", budget.Used())

	if len(fresh) == 0 {
		// An all-feeds-down run has nothing to say; leave the published
		// dataset exactly as it is.
		logger.Error("no items collected, skipping publish")
		metrics.Global.SetError("no items collected")
		return nil
	}

	previous := store.Load()
	prevItems := append(previous.Items, previous.FeaturedPriority...)

	result := news.Aggregate(fresh, prevItems, news.Config{
		Categories:        sources.Categories(),
		MaxPerCategory:    cfg.MinPerCategory,
		MaxItemsPerSource: cfg.MaxItemsPerSource,
		MaxNewsItems:      cfg.MaxNewsItems,
		Orderer:           news.SourceInterleave{},
	})

	rotation := sources.Rotation
	if len(rotation) == 0 {
		rotation = sources.Categories()
	}
	featured := news.Featured(result.ByCategory, rotation, cfg.FeaturedCount)

	guard := publish.NewGuard(store, sources.Categories(), cfg.MinRequiredEach, cfg.PublishIncomplete)
	report, err := guard.Publish(storage.Dataset{
		FeaturedPriority: featured,
		Items:            result.Items,
	})
	if err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("publish dataset: %w", err)
	}

	summarize(result, featured, report, fresh)
	metrics.Global.SetItemsPublished(len(result.Items))
	metrics.Global.RecordRun(time.Since(start))
	return nil
}

func collect(ctx context.Context, cfg *config.Config, sources *rss.SourcesConfig,
	fetcher *rss.Fetcher, resolver *images.Resolver) []news.Item {

	var fresh []news.Item
	for _, src := range sources.Feeds {
		feed := fetcher.Fetch(ctx, src.URL)
		if feed == nil {
			metrics.Global.IncrementFeedsFailed()
			continue
		}
		metrics.Global.IncrementFeedsFetched()

		entries := feed.Items
		if len(entries) > cfg.MaxItemsPerFeed {
			entries = entries[:cfg.MaxItemsPerFeed]
		}

		kept, withImage := 0, 0
		for _, raw := range entries {
			if raw == nil {
				continue
			}
			item, ok := news.Normalize(ctx, rss.FromFeedItem(raw), src.Category, src.Name(), resolver)
			if !ok {
				continue
			}
			fresh = append(fresh, item)
			kept++
			if item.Image != "" {
				withImage++
			}
		}
		logger.Info("feed processed",
			"source", src.Name(), "category", src.Category,
			"items", kept, "images", withImage)
	}
	return fresh
}

// summarize prints the human-readable run report: category coverage, image
// ratio, dedup volume and the publish decision.
func summarize(result news.Result, featured []news.Item, report publish.Report, fresh []news.Item) {
	withImage := 0
	for _, it := range result.Items {
		if it.Image != "" {
			withImage++
		}
	}
	imagePct := 0
	if len(result.Items) > 0 {
		imagePct = withImage * 100 / len(result.Items)
	}

	logger.Info("run summary",
		"fresh", len(fresh),
		"published", len(result.Items),
		"featured", len(featured),
		"duplicates_removed", result.DuplicatesRemoved,
		"image_pct", imagePct,
		"categories", report.String(),
		"committed", report.Published)
}
