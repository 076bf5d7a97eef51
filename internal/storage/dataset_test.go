package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thestreamic/streamic/internal/news"
)

func testStore(t *testing.T) (*Store, string, string) {
	t.Helper()
	dir := t.TempDir()
	newsPath := filepath.Join(dir, "news.json")
	archivePath := filepath.Join(dir, "archive.json")
	return NewStore(newsPath, archivePath), newsPath, archivePath
}

func testItem(guid string) news.Item {
	return news.Item{
		GUID:     guid,
		Title:    "title " + guid,
		Link:     "https://example.com/" + guid,
		Category: "streaming",
		Source:   "Mux",
		PubDate:  time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store, _, _ := testStore(t)

	ds := Dataset{
		FeaturedPriority: []news.Item{testItem("f1")},
		Items:            []news.Item{testItem("a"), testItem("b")},
	}
	require.NoError(t, store.Save(ds))
	require.True(t, store.Exists())

	loaded := store.Load()
	require.Len(t, loaded.Items, 2)
	require.Len(t, loaded.FeaturedPriority, 1)
	require.Equal(t, "a", loaded.Items[0].GUID)
}

func TestStoreLoadFlatArrayShape(t *testing.T) {
	store, newsPath, _ := testStore(t)

	// The original dataset format was a bare array of items.
	flat, err := json.Marshal([]news.Item{testItem("a"), testItem("b")})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(newsPath, flat, 0o644))

	loaded := store.Load()
	require.Len(t, loaded.Items, 2)
	require.Empty(t, loaded.FeaturedPriority)
}

func TestStoreLoadMissingOrCorruptFile(t *testing.T) {
	store, newsPath, _ := testStore(t)
	require.Empty(t, store.Load().Items)

	require.NoError(t, os.WriteFile(newsPath, []byte("{not json"), 0o644))
	require.Empty(t, store.Load().Items)
}

func TestStoreBackupRotatesSingleGeneration(t *testing.T) {
	store, newsPath, archivePath := testStore(t)

	require.NoError(t, store.Save(Dataset{Items: []news.Item{testItem("gen1")}}))
	require.NoError(t, store.Backup())

	_, err := os.Stat(newsPath)
	require.True(t, os.IsNotExist(err), "news file moved to archive")

	archived, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	require.Contains(t, string(archived), "gen1")

	// Second generation overwrites the archive slot.
	require.NoError(t, store.Save(Dataset{Items: []news.Item{testItem("gen2")}}))
	require.NoError(t, store.Backup())
	archived, err = os.ReadFile(archivePath)
	require.NoError(t, err)
	require.Contains(t, string(archived), "gen2")
	require.NotContains(t, string(archived), "gen1")
}

func TestStoreBackupNoopWithoutDataset(t *testing.T) {
	store, _, _ := testStore(t)
	require.NoError(t, store.Backup())
}

func TestStoreSaveLeavesNoTempFiles(t *testing.T) {
	store, newsPath, _ := testStore(t)
	require.NoError(t, store.Save(Dataset{Items: []news.Item{testItem("a")}}))

	entries, err := os.ReadDir(filepath.Dir(newsPath))
	require.NoError(t, err)
	require.Len(t, entries, 1, "only news.json after an atomic save")
}

func TestStoreSaveCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	store := NewStore(filepath.Join(dir, "news.json"), filepath.Join(dir, "archive.json"))
	require.NoError(t, store.Save(Dataset{Items: []news.Item{testItem("a")}}))
	require.True(t, store.Exists())
}
