package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nmtkit/iwslt/internal/cli/config"
	"github.com/nmtkit/iwslt/internal/cli/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// starterConfig is the config written by iwslt init. Field order here is
// the order in the generated file.
type starterConfig struct {
	DataDir   string `yaml:"data_dir"`
	StatePath string `yaml:"state_path"`
	BaseURL   string `yaml:"base_url"`
	EOS       string `yaml:"eos"`
	Output    string `yaml:"output"`
}

// starterDatasetsBlock documents the registry extension syntax without
// enabling it.
const starterDatasetsBlock = `
# Extra datasets merged into the built-in registry:
# datasets:
#   - year: 2017
#     pair: nl-en
#     train: train.tags.nl-en
#     dev: IWSLT17.TED.dev2010.nl-en
#     test: IWSLT17.TED.tst2017.nl-en
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a corpus workspace",
		Long: `Initialize a corpus workspace with a starter configuration file and a
data directory.

This creates:
  - iwslt.yaml configuration file
  - data/ directory for archives and unpacked datasets`,
		Example: `  # Initialize in the current directory
  iwslt init

  # Initialize in a new directory
  iwslt init my-corpus

  # Overwrite an existing configuration
  iwslt init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "iwslt.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("iwslt.yaml already exists. Use --force to overwrite")
	}

	starter := starterConfig{
		DataDir:   "data",
		StatePath: config.DefaultStateFile,
		BaseURL:   config.DefaultBaseURL,
		EOS:       "",
		Output:    config.DefaultOutput,
	}
	body, err := yaml.Marshal(starter)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	content := append([]byte("# iwslt corpus toolkit configuration\n"), body...)
	content = append(content, []byte(starterDatasetsBlock)...)

	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	r.StatusLine("iwslt.yaml", "success", "")
	r.StatusLine("data/", "success", "")

	r.Println("")
	r.Success("Corpus workspace initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Run 'iwslt list' to see the supported datasets")
	r.Println("  2. Run 'iwslt fetch 2016.de-en' to download one")
	r.Println("  3. Run 'iwslt load 2016.de-en' to read it")

	return nil
}
