// Package storage persists the published dataset. Writes are atomic (temp
// file in the target directory, then rename) so the static site never sees a
// half-written document, and the previous generation is kept as a single
// archive file.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thestreamic/streamic/internal/news"
)

// Dataset is the durable artifact: the balanced item list plus the featured
// rotation strip.
type Dataset struct {
	FeaturedPriority []news.Item `json:"featured_priority"`
	Items            []news.Item `json:"items"`
}

// UnmarshalJSON accepts both shapes the format has gone through: the current
// object with featured_priority and items, and the original bare array.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	type current Dataset
	var cur current
	if err := json.Unmarshal(data, &cur); err == nil {
		*d = Dataset(cur)
		return nil
	}

	var flat []news.Item
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*d = Dataset{Items: flat}
	return nil
}

// Store reads and writes datasets under a fixed pair of paths.
type Store struct {
	newsPath    string
	archivePath string
}

func NewStore(newsPath, archivePath string) *Store {
	return &Store{newsPath: newsPath, archivePath: archivePath}
}

// Exists reports whether a published dataset is already on disk.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.newsPath)
	return err == nil
}

// Load returns the current dataset, or an empty one when none has been
// published yet. A corrupt file is treated as absent: the aggregator can
// always rebuild from the feeds.
func (s *Store) Load() Dataset {
	data, err := os.ReadFile(s.newsPath)
	if err != nil {
		return Dataset{}
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return Dataset{}
	}
	return ds
}

// Backup moves the current dataset to the archive slot, replacing whatever
// generation was there. No-op when nothing has been published.
func (s *Store) Backup() error {
	if !s.Exists() {
		return nil
	}
	if err := os.Remove(s.archivePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove old archive: %w", err)
	}
	if err := os.Rename(s.newsPath, s.archivePath); err != nil {
		return fmt.Errorf("archive dataset: %w", err)
	}
	return nil
}

// Save writes the dataset atomically. This is the one step of the run whose
// failure must propagate: a partial write must never look like success.
func (s *Store) Save(ds Dataset) error {
	if err := os.MkdirAll(filepath.Dir(s.newsPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.newsPath), ".news-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.newsPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace dataset: %w", err)
	}
	return nil
}
