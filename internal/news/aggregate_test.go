package news

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func at(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func item(guid, category, source string, t time.Time) Item {
	return Item{
		GUID:     guid,
		Title:    "title " + guid,
		Link:     "https://example.com/" + guid,
		Category: category,
		Source:   source,
		PubDate:  t,
	}
}

func TestAggregateBasicMerge(t *testing.T) {
	fresh := []Item{
		item("1", "streaming", "Mux", at(2)),
		item("2", "streaming", "Wowza", at(1)),
	}

	result := Aggregate(fresh, nil, Config{Orderer: ByRecency{}})
	require.Len(t, result.Items, 2)
	require.Equal(t, "1", result.Items[0].GUID, "newest first")
	require.Equal(t, "2", result.Items[1].GUID)
	require.Zero(t, result.DuplicatesRemoved)
}

func TestAggregateDedupAcrossRuns(t *testing.T) {
	previous := []Item{item("1", "streaming", "Mux", at(1))}
	fresh := []Item{item("1", "streaming", "Mux", at(1))}
	fresh[0].Title = "updated headline"

	result := Aggregate(fresh, previous, Config{})
	require.Len(t, result.Items, 1)
	require.Equal(t, "updated headline", result.Items[0].Title, "fresh copy wins the GUID tie")
	require.Equal(t, 1, result.DuplicatesRemoved)
}

func TestAggregateIsIdempotent(t *testing.T) {
	fresh := []Item{
		item("a", "cloud", "AWS Media", at(3)),
		item("b", "cloud", "Frame.io", at(2)),
		item("c", "streaming", "Mux", at(1)),
	}

	first := Aggregate(fresh, nil, Config{})
	second := Aggregate(first.Items, nil, Config{})
	require.Equal(t, first.Items, second.Items)
	require.Zero(t, second.DuplicatesRemoved)
}

func TestAggregateGUIDsUnique(t *testing.T) {
	var fresh []Item
	for i := 0; i < 40; i++ {
		fresh = append(fresh, item(fmt.Sprintf("g%d", i%10), "cloud", "AWS Media", at(1)))
	}

	result := Aggregate(fresh, fresh, Config{})
	seen := map[string]bool{}
	for _, it := range result.Items {
		require.False(t, seen[it.GUID], "duplicate GUID %s", it.GUID)
		seen[it.GUID] = true
	}
}

func TestAggregatePerSourceCap(t *testing.T) {
	var fresh []Item
	for i := 0; i < 12; i++ {
		fresh = append(fresh, item(fmt.Sprintf("mux-%d", i), "streaming", "Mux", at(12-i)))
	}
	fresh = append(fresh, item("w-1", "streaming", "Wowza", at(1)))

	result := Aggregate(fresh, nil, Config{MaxItemsPerSource: 8})
	bySource := map[string]int{}
	for _, it := range result.Items {
		bySource[it.Source]++
	}
	require.Equal(t, 8, bySource["Mux"], "chatty source capped")
	require.Equal(t, 1, bySource["Wowza"], "quiet source untouched")
}

func TestAggregatePerCategoryCeiling(t *testing.T) {
	var fresh []Item
	for i := 0; i < 30; i++ {
		fresh = append(fresh, item(fmt.Sprintf("s%d", i), "streaming", fmt.Sprintf("Src%d", i), at(1)))
	}

	result := Aggregate(fresh, nil, Config{MaxPerCategory: 18})
	require.Len(t, result.Items, 18)
}

func TestAggregateGlobalCap(t *testing.T) {
	var fresh []Item
	for c := 0; c < 4; c++ {
		for i := 0; i < 20; i++ {
			fresh = append(fresh, item(fmt.Sprintf("c%d-%d", c, i), fmt.Sprintf("cat%d", c), fmt.Sprintf("Src%d", i), at(1)))
		}
	}

	result := Aggregate(fresh, nil, Config{MaxNewsItems: 50})
	require.Len(t, result.Items, 50)
}

func TestAggregateTieBreakPreservesMergeOrder(t *testing.T) {
	// Equal timestamps: fresh items stay ahead of previous ones, in input
	// order, run after run.
	fresh := []Item{
		item("n1", "cloud", "AWS Media", at(1)),
		item("n2", "cloud", "Frame.io", at(1)),
	}
	previous := []Item{
		item("o1", "cloud", "Avid", at(1)),
		item("o2", "cloud", "Studio Daily", at(1)),
	}

	result := Aggregate(fresh, previous, Config{Orderer: ByRecency{}})
	var guids []string
	for _, it := range result.Items {
		guids = append(guids, it.GUID)
	}
	require.Equal(t, []string{"n1", "n2", "o1", "o2"}, guids)
}

func TestAggregateDropsRetiredCategories(t *testing.T) {
	// "audio-ai" was removed from the feeds config; items published under it
	// must not be carried over from the previous dataset.
	fresh := []Item{item("p1", "playout", "Ross Video", at(2))}
	previous := []Item{
		item("a1", "audio-ai", "Audio Blog", at(1)),
		item("p0", "playout", "Pebble", at(1)),
	}

	result := Aggregate(fresh, previous, Config{Categories: []string{"playout"}})
	for _, it := range result.Items {
		require.Equal(t, "playout", it.Category)
	}
	require.Len(t, result.Items, 2)
	require.NotContains(t, result.ByCategory, "audio-ai")
	require.Zero(t, result.DuplicatesRemoved, "filtered items are not duplicates")
}

func TestAggregateEmptyCategorySetKeepsEverything(t *testing.T) {
	fresh := []Item{
		item("a", "cloud", "AWS Media", at(2)),
		item("b", "streaming", "Mux", at(1)),
	}

	result := Aggregate(fresh, nil, Config{})
	require.Len(t, result.Items, 2)
}

func TestAggregateByCategoryView(t *testing.T) {
	fresh := []Item{
		item("a", "cloud", "AWS Media", at(2)),
		item("b", "streaming", "Mux", at(1)),
	}

	result := Aggregate(fresh, nil, Config{})
	require.Len(t, result.ByCategory["cloud"], 1)
	require.Len(t, result.ByCategory["streaming"], 1)
}

func TestDeduplicateDropsEmptyGUIDs(t *testing.T) {
	items := []Item{
		{GUID: "", Title: "broken"},
		item("a", "cloud", "AWS Media", at(1)),
	}
	unique, removed := Deduplicate(items)
	require.Len(t, unique, 1)
	require.Equal(t, 1, removed)
}
