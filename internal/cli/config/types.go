// Package config provides configuration management for the iwslt CLI.
package config

import (
	"strconv"

	"github.com/nmtkit/iwslt/pkg/corpus"
	"github.com/nmtkit/iwslt/pkg/fetch"
)

// Config holds all CLI configuration options.
type Config struct {
	DataDir      string          `koanf:"data_dir"`
	StatePath    string          `koanf:"state_path"`
	BaseURL      string          `koanf:"base_url"`
	EOS          string          `koanf:"eos"`
	Verbose      bool            `koanf:"verbose"`
	OutputFormat string          `koanf:"output"`
	Datasets     []DatasetConfig `koanf:"datasets"`
}

// DatasetConfig describes an extra dataset added through the config file.
// It is merged into the built-in registry at startup, so new year/pair
// combinations need no code change.
type DatasetConfig struct {
	Year  int    `koanf:"year"`
	Pair  string `koanf:"pair"`
	Train string `koanf:"train"`
	Dev   string `koanf:"dev"`
	Test  string `koanf:"test"`
}

// Default configuration values.
const (
	DefaultDataDir   = "."
	DefaultStateFile = ".iwslt/state.db"
	DefaultBaseURL   = fetch.DefaultBaseURL
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// BuildRegistry returns the dataset registry with config-file extras merged in.
func (c *Config) BuildRegistry() corpus.Registry {
	if len(c.Datasets) == 0 {
		return corpus.DefaultRegistry()
	}

	extras := make([]corpus.Dataset, 0, len(c.Datasets))
	for _, d := range c.Datasets {
		extras = append(extras, corpus.Dataset{
			Year:        strconv.Itoa(d.Year),
			Pair:        d.Pair,
			TrainPrefix: d.Train,
			DevPrefix:   d.Dev,
			TestPrefix:  d.Test,
		})
	}
	return corpus.NewRegistry(extras...)
}
