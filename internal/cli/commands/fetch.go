package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nmtkit/iwslt/internal/cli/output"
	"github.com/nmtkit/iwslt/internal/state"
	"github.com/nmtkit/iwslt/pkg/corpus"
	"github.com/nmtkit/iwslt/pkg/fetch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// FetchOptions holds options for the fetch command.
type FetchOptions struct {
	All     bool
	Force   bool
	Jobs    int
	BaseURL string
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand() *cobra.Command {
	opts := &FetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch [dataset...]",
		Short: "Download and unpack dataset archives",
		Long: `Download dataset archives from the WIT3 mirror and unpack them into
the data directory.

Datasets are named by key, e.g. 2016.de-en. An archive that is already
present locally is not downloaded again and not re-extracted; use
--force to re-download and overwrite the unpacked files.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Fetch one dataset
  iwslt fetch 2016.de-en

  # Fetch everything in the registry, two downloads at a time
  iwslt fetch --all --jobs 2

  # Re-download even if the archive is already on disk
  iwslt fetch 2016.de-en --force

  # Machine-readable results
  iwslt fetch --all --output json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Fetch every dataset in the registry")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Re-download even when the archive exists")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 1, "Number of concurrent downloads")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "Override the archive mirror URL")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string, opts *FetchOptions) error {
	if len(args) == 0 && !opts.All {
		return fmt.Errorf("no datasets requested: name dataset keys or pass --all")
	}
	if opts.Jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	datasets, err := resolveDatasets(cmdCtx.Registry, args, opts.All)
	if err != nil {
		return err
	}

	baseURL := cmdCtx.Cfg.BaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	fetcher := fetch.New(fetch.Config{
		BaseURL: baseURL,
		Client:  http.DefaultClient,
		Logger:  cmdCtx.Logger,
	})

	// Workers write disjoint slice slots, so no mutex is needed.
	results := make([]fetch.Result, len(datasets))
	errs := make([]error, len(datasets))

	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(opts.Jobs)
	for i, ds := range datasets {
		eg.Go(func() error {
			results[i], errs[i] = fetcher.Fetch(ctx, cmdCtx.Cfg.DataDir, ds, opts.Force)
			return nil
		})
	}
	_ = eg.Wait()

	// Bookkeeping happens after the workers so the sqlite writes stay
	// serialized.
	for i, ds := range datasets {
		if errs[i] != nil || !results[i].Downloaded {
			continue
		}
		if err := recordFetch(cmdCtx.Store, ds, results[i]); err != nil {
			cmdCtx.Logger.Warn("failed to record archive", "dataset", ds.Key(), "error", err)
		}
	}

	fetchOutput := buildFetchOutput(datasets, results, errs)
	if err := renderFetch(cmdCtx.Renderer, fetchOutput); err != nil {
		return err
	}

	if fetchOutput.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d datasets failed", fetchOutput.Summary.Failed, fetchOutput.Summary.Requested)
	}
	return nil
}

// recordFetch upserts the archive row for a freshly downloaded dataset.
func recordFetch(store *state.SQLiteStore, ds corpus.Dataset, res fetch.Result) error {
	now := time.Now().UTC()
	a := &state.Archive{
		Dataset:     ds.Key(),
		ArchivePath: res.ArchivePath,
		SHA256:      res.SHA256,
		SizeBytes:   res.SizeBytes,
		FetchedAt:   now,
	}
	if res.Extracted {
		a.ExtractedAt = &now
	}
	return store.RecordArchive(a)
}

func buildFetchOutput(datasets []corpus.Dataset, results []fetch.Result, errs []error) output.FetchOutput {
	out := output.FetchOutput{
		Results: make([]output.FetchResult, 0, len(datasets)),
		Summary: output.FetchSummary{Requested: len(datasets)},
	}
	for i, ds := range datasets {
		fr := output.FetchResult{
			Dataset:    ds.Key(),
			Archive:    results[i].ArchivePath,
			Downloaded: results[i].Downloaded,
			Extracted:  results[i].Extracted,
			SHA256:     results[i].SHA256,
			SizeBytes:  results[i].SizeBytes,
		}
		switch {
		case errs[i] != nil:
			msg := errs[i].Error()
			fr.Error = &msg
			out.Summary.Failed++
		case results[i].Downloaded:
			out.Summary.Downloaded++
		default:
			out.Summary.Skipped++
		}
		out.Results = append(out.Results, fr)
	}
	return out
}

func renderFetch(r *output.Renderer, out output.FetchOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(1, "Fetch Results")

	rows := make([][]string, 0, len(out.Results))
	for _, res := range out.Results {
		status := "skipped (present)"
		detail := ""
		switch {
		case res.Error != nil:
			status = "failed"
			detail = *res.Error
		case res.Downloaded:
			status = "downloaded"
			detail = formatBytes(res.SizeBytes)
		}
		rows = append(rows, []string{res.Dataset, status, detail, shortDigest(res.SHA256)})
	}
	r.Table([]string{"Dataset", "Status", "Detail", "SHA256"}, rows)

	r.Println("")
	summary := fmt.Sprintf("%d requested, %d downloaded, %d skipped, %d failed",
		out.Summary.Requested, out.Summary.Downloaded, out.Summary.Skipped, out.Summary.Failed)
	if out.Summary.Failed > 0 {
		r.Warning(summary)
	} else {
		r.Success(summary)
	}
	return nil
}

// shortDigest abbreviates a hex digest for table display.
func shortDigest(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
