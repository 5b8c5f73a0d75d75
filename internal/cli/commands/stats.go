package commands

import (
	"fmt"

	"github.com/nmtkit/iwslt/internal/cli/output"
	"github.com/nmtkit/iwslt/pkg/corpus"
	"github.com/spf13/cobra"
)

// StatsOptions holds options for the stats command.
type StatsOptions struct {
	Split string
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	opts := &StatsOptions{}

	cmd := &cobra.Command{
		Use:   "stats <dataset>",
		Short: "Report sentence and token statistics for a dataset",
		Long: `Stream a dataset split by split and report pair counts, skipped line
counts, token totals and source sentence length statistics.

Unlike load, stats never materializes a split in memory; it streams
each file pair once.`,
		Example: `  # All splits
  iwslt stats 2016.de-en

  # One split only
  iwslt stats 2016.de-en --split train

  # Machine-readable statistics
  iwslt stats 2016.de-en --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Split, "split", "", "Restrict to one split (train, dev, test)")
	_ = cmd.RegisterFlagCompletionFunc("split", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, 3)
		for _, s := range corpus.Splits() {
			names = append(names, string(s))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runStats(cmd *cobra.Command, key string, opts *StatsOptions) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	ds, err := cmdCtx.Registry.LookupKey(key)
	if err != nil {
		return err
	}

	splits := corpus.Splits()
	if opts.Split != "" {
		split, err := corpus.ParseSplit(opts.Split)
		if err != nil {
			return err
		}
		splits = []corpus.Split{split}
	}

	var readOpts []corpus.ReadOption
	if cmdCtx.Cfg.EOS != "" {
		readOpts = append(readOpts, corpus.WithEOS(cmdCtx.Cfg.EOS))
	}

	statsOutput := output.StatsOutput{Dataset: ds.Key()}
	for _, split := range splits {
		report, err := scanSplit(cmdCtx.Cfg.DataDir, ds, split, readOpts)
		if err != nil {
			return fmt.Errorf("scanning %s split: %w", split, err)
		}
		statsOutput.Splits = append(statsOutput.Splits, report)
	}

	return renderStats(cmdCtx.Renderer, statsOutput)
}

// scanSplit streams one split and accumulates its statistics.
func scanSplit(root string, ds corpus.Dataset, split corpus.Split, readOpts []corpus.ReadOption) (output.SplitReport, error) {
	sc, err := corpus.NewPairScanner(root, ds, split, readOpts...)
	if err != nil {
		return output.SplitReport{}, err
	}
	defer sc.Close()

	report := output.SplitReport{Split: string(split)}
	for sc.Scan() {
		p := sc.Pair()
		srcLen := len(p.Source)

		report.Pairs++
		report.SourceTokens += srcLen
		report.TargetTokens += len(p.Target)
		if report.Pairs == 1 || srcLen < report.MinSourceLen {
			report.MinSourceLen = srcLen
		}
		if srcLen > report.MaxSourceLen {
			report.MaxSourceLen = srcLen
		}
	}
	if err := sc.Err(); err != nil {
		return output.SplitReport{}, err
	}

	report.Skipped = sc.Skipped()
	if report.Pairs > 0 {
		report.MeanSourceLen = float64(report.SourceTokens) / float64(report.Pairs)
	}
	return report, nil
}

func renderStats(r *output.Renderer, out output.StatsOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(1, "Stats: "+out.Dataset)

	rows := make([][]string, 0, len(out.Splits))
	var totalPairs int
	for _, s := range out.Splits {
		totalPairs += s.Pairs
		rows = append(rows, []string{
			s.Split,
			fmt.Sprintf("%d", s.Pairs),
			fmt.Sprintf("%d", s.Skipped),
			fmt.Sprintf("%d", s.SourceTokens),
			fmt.Sprintf("%d", s.TargetTokens),
			fmt.Sprintf("%d / %.1f / %d", s.MinSourceLen, s.MeanSourceLen, s.MaxSourceLen),
		})
	}
	r.Table([]string{"Split", "Pairs", "Skipped", "Source Tokens", "Target Tokens", "Src Len (min/mean/max)"}, rows)

	r.Println("")
	r.Success(fmt.Sprintf("%d pairs across %d splits", totalPairs, len(out.Splits)))
	return nil
}
