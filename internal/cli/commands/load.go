package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/nmtkit/iwslt/internal/cli/output"
	"github.com/nmtkit/iwslt/internal/state"
	"github.com/nmtkit/iwslt/pkg/corpus"
	"github.com/spf13/cobra"
)

// LoadOptions holds options for the load command.
type LoadOptions struct {
	Show     int
	NoRecord bool
}

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load <dataset>",
		Short: "Load a dataset and report per-split statistics",
		Long: `Load all three splits of an unpacked dataset into memory, applying the
standard filtering: joint metadata lines are dropped from train, and
only <seg> elements are kept from dev and test.

The dataset must have been fetched first. Pass --eos to append an
end-of-sentence token to every sentence on both sides.`,
		Example: `  # Load and summarize
  iwslt load 2016.de-en

  # Append an end-of-sentence marker and show the first three pairs
  iwslt load 2016.de-en --eos "</s>" --show 3

  # Machine-readable statistics
  iwslt load 2016.de-en --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.Show, "show", 0, "Print the first N train pairs")
	cmd.Flags().BoolVar(&opts.NoRecord, "no-record", false, "Do not record the load in the state database")

	return cmd
}

func runLoad(cmd *cobra.Command, key string, opts *LoadOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ds, err := cmdCtx.Registry.LookupKey(key)
	if err != nil {
		return err
	}

	var readOpts []corpus.ReadOption
	if cmdCtx.Cfg.EOS != "" {
		readOpts = append(readOpts, corpus.WithEOS(cmdCtx.Cfg.EOS))
	}

	start := time.Now()
	c, err := cmdCtx.Registry.Load(cmdCtx.Cfg.DataDir, ds.Year, ds.Pair, readOpts...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	loadOutput := buildLoadOutput(c, cmdCtx.Cfg.EOS, elapsed, opts.Show)

	if !opts.NoRecord {
		run := &state.LoadRun{
			Dataset:    ds.Key(),
			EOS:        cmdCtx.Cfg.EOS,
			TrainPairs: c.Train.Len(),
			DevPairs:   c.Dev.Len(),
			TestPairs:  c.Test.Len(),
			DurationMS: elapsed.Milliseconds(),
		}
		if err := cmdCtx.Store.RecordLoadRun(run); err != nil {
			cmdCtx.Logger.Warn("failed to record load run", "dataset", ds.Key(), "error", err)
		}
	}

	return renderLoad(cmdCtx.Renderer, loadOutput)
}

func buildLoadOutput(c *corpus.Corpus, eos string, elapsed time.Duration, show int) output.LoadOutput {
	out := output.LoadOutput{
		Dataset:    c.Dataset.Key(),
		EOS:        eos,
		TotalPairs: c.Pairs(),
		DurationMS: elapsed.Milliseconds(),
	}

	for _, split := range corpus.Splits() {
		data := c.Split(split)
		srcTok, tgtTok := data.TokenCounts()
		out.Splits = append(out.Splits, output.SplitStats{
			Split:        string(split),
			Pairs:        data.Len(),
			SourceTokens: srcTok,
			TargetTokens: tgtTok,
		})
	}

	if show > c.Train.Len() {
		show = c.Train.Len()
	}
	for i := 0; i < show; i++ {
		out.Samples = append(out.Samples, output.SamplePair{
			Source: c.Train.Source[i],
			Target: c.Train.Target[i],
		})
	}
	return out
}

func renderLoad(r *output.Renderer, out output.LoadOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(1, "Load: "+out.Dataset)

	rows := make([][]string, 0, len(out.Splits))
	for _, s := range out.Splits {
		rows = append(rows, []string{
			s.Split,
			fmt.Sprintf("%d", s.Pairs),
			fmt.Sprintf("%d", s.SourceTokens),
			fmt.Sprintf("%d", s.TargetTokens),
		})
	}
	r.Table([]string{"Split", "Pairs", "Source Tokens", "Target Tokens"}, rows)

	r.Println("")
	summary := fmt.Sprintf("%d pairs loaded in %dms", out.TotalPairs, out.DurationMS)
	if out.EOS != "" {
		summary += fmt.Sprintf(" (eos: %s)", out.EOS)
	}
	r.Success(summary)

	if len(out.Samples) > 0 {
		r.Println("")
		r.Header(2, "Sample Pairs")
		for i, s := range out.Samples {
			r.Printf("%d. %s\n", i+1, strings.Join(s.Source, " "))
			r.Muted("   " + strings.Join(s.Target, " "))
		}
	}
	return nil
}
