package rss

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is one configured feed: where to fetch, how to label it, and which
// category its items land in.
type Source struct {
	URL      string `yaml:"url"`
	Label    string `yaml:"label"`
	Category string `yaml:"category"`
}

// SourcesConfig is the configs/feeds.yaml structure.
//
// feeds:
//   - url: https://www.tvtechnology.com/rss.xml
//     label: TV Technology
//     category: newsroom
// direct:
//   - https://mux.com/blog/feed/
// rotation: [playout, infrastructure, streaming, cloud]
type SourcesConfig struct {
	Feeds    []Source `yaml:"feeds"`
	Direct   []string `yaml:"direct"`
	Rotation []string `yaml:"rotation"`
}

// LoadSources reads the feed list from a YAML file.
func LoadSources(path string) (*SourcesConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for i, s := range cfg.Feeds {
		if s.URL == "" || s.Category == "" {
			return nil, fmt.Errorf("feed %d in %s: url and category are required", i, path)
		}
	}
	return &cfg, nil
}

// Categories returns the closed category set in first-seen order.
func (c *SourcesConfig) Categories() []string {
	seen := map[string]bool{}
	var cats []string
	for _, s := range c.Feeds {
		if !seen[s.Category] {
			seen[s.Category] = true
			cats = append(cats, s.Category)
		}
	}
	return cats
}

// Name returns the source label, falling back to the URL lookup table.
func (s Source) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return SourceName(s.URL)
}
