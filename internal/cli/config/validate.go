package config

import (
	"fmt"
	"strings"

	"github.com/nmtkit/iwslt/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.OutputFormat != "" && !output.IsValidMode(c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (valid: %s)",
			c.OutputFormat, strings.Join(output.ValidModes(), ", "))
	}

	for i, d := range c.Datasets {
		if err := validateDataset(d); err != nil {
			return fmt.Errorf("datasets[%d]: %w", i, err)
		}
	}

	return nil
}

func validateDataset(d DatasetConfig) error {
	if d.Year == 0 {
		return fmt.Errorf("year is required")
	}
	if d.Pair == "" {
		return fmt.Errorf("pair is required")
	}
	if !strings.Contains(d.Pair, "-") {
		return fmt.Errorf("pair %q must be of the form src-tgt", d.Pair)
	}
	if d.Train == "" || d.Dev == "" || d.Test == "" {
		return fmt.Errorf("train, dev and test file prefixes are all required")
	}
	return nil
}
