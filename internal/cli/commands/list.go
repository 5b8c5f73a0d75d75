package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nmtkit/iwslt/internal/cli/output"
	"github.com/nmtkit/iwslt/pkg/corpus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List supported datasets and their local state",
		Long: `List every dataset in the registry together with its local state:
whether the archive has been fetched, whether it has been unpacked,
and when it was last loaded.

Datasets added through the config file appear alongside the built-in
ones.`,
		Example: `  # Human-readable listing
  iwslt list

  # Machine-readable listing
  iwslt list --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd)
		},
	}
}

func runList(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	listOutput := output.ListOutput{}
	for _, ds := range cmdCtx.Registry.Datasets() {
		info := datasetInfo(cmdCtx, ds)
		listOutput.Datasets = append(listOutput.Datasets, info)

		listOutput.Summary.Total++
		if info.Fetched {
			listOutput.Summary.Fetched++
		}
		if info.LastLoaded != "" {
			listOutput.Summary.Loaded++
		}
	}

	return renderList(cmdCtx.Renderer, listOutput)
}

// datasetInfo assembles one registry entry with its on-disk and recorded
// state. State lookups are best effort; a missing row leaves the fields
// empty.
func datasetInfo(cmdCtx *CommandContext, ds corpus.Dataset) output.DatasetInfo {
	info := output.DatasetInfo{
		Key:        ds.Key(),
		Year:       ds.Year,
		Pair:       ds.Pair,
		SourceLang: ds.SourceLang(),
		TargetLang: ds.TargetLang(),
		SourceName: languageName(ds.SourceLang()),
		TargetName: languageName(ds.TargetLang()),
	}

	archivePath := filepath.Join(cmdCtx.Cfg.DataDir, ds.ArchiveName())
	if _, err := os.Stat(archivePath); err == nil {
		info.Archive = archivePath
		info.Fetched = true
	}
	extractDir := filepath.Join(cmdCtx.Cfg.DataDir, ds.LocalDir(), ds.Pair)
	if fi, err := os.Stat(extractDir); err == nil && fi.IsDir() {
		info.Extracted = true
	}

	if a, err := cmdCtx.Store.GetArchive(ds.Key()); err == nil && a != nil {
		info.FetchedAt = a.FetchedAt.Local().Format("2006-01-02 15:04")
	}
	if run, err := cmdCtx.Store.LatestLoadRun(ds.Key()); err == nil && run != nil {
		info.LastLoaded = run.LoadedAt.Local().Format("2006-01-02 15:04")
	}
	return info
}

// languageName resolves an ISO 639 code to its English display name,
// falling back to the code itself.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

func renderList(r *output.Renderer, out output.ListOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(1, "Datasets")

	rows := make([][]string, 0, len(out.Datasets))
	for _, d := range out.Datasets {
		rows = append(rows, []string{
			d.Key,
			fmt.Sprintf("%s → %s", d.SourceName, d.TargetName),
			yesNo(d.Fetched),
			yesNo(d.Extracted),
			orDash(d.LastLoaded),
		})
	}
	r.Table([]string{"Dataset", "Languages", "Fetched", "Extracted", "Last Loaded"}, rows)

	r.Println("")
	r.Muted(fmt.Sprintf("%d datasets, %d fetched, %d loaded",
		out.Summary.Total, out.Summary.Fetched, out.Summary.Loaded))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
