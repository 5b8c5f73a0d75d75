package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nmtkit/iwslt/internal/cli/output"
	"github.com/nmtkit/iwslt/pkg/corpus"
	"github.com/nmtkit/iwslt/pkg/fetch"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Check statuses used by verify.
const (
	checkPass = "pass"
	checkWarn = "warn"
	checkFail = "fail"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <dataset>",
		Short: "Check the integrity of a fetched dataset",
		Long: `Run integrity checks against a fetched dataset: the archive and its
recorded digest, the unpacked directory and split files, and a full
alignment scan of every split.

The command exits non-zero when any check fails, so it can serve as a
preflight in scripts and pipelines.`,
		Example: `  # Verify a dataset
  iwslt verify 2016.de-en

  # Machine-readable report
  iwslt verify 2016.de-en --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args[0])
		},
	}
}

func runVerify(cmd *cobra.Command, key string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ds, err := cmdCtx.Registry.LookupKey(key)
	if err != nil {
		return err
	}

	verifyOutput := output.VerifyOutput{
		Dataset: ds.Key(),
		Checks:  verifyDataset(cmdCtx, ds),
	}
	for _, c := range verifyOutput.Checks {
		switch c.Status {
		case checkPass:
			verifyOutput.Summary.Passed++
		case checkWarn:
			verifyOutput.Summary.Warned++
		case checkFail:
			verifyOutput.Summary.Failed++
		}
	}
	verifyOutput.Summary.OK = verifyOutput.Summary.Failed == 0

	if err := renderVerify(cmdCtx.Renderer, verifyOutput); err != nil {
		return err
	}
	if !verifyOutput.Summary.OK {
		return fmt.Errorf("%d of %d checks failed", verifyOutput.Summary.Failed, len(verifyOutput.Checks))
	}
	return nil
}

// verifyDataset runs every check group against one dataset. Checks keep
// going past failures so the report is complete.
func verifyDataset(cmdCtx *CommandContext, ds corpus.Dataset) []output.CheckResult {
	var checks []output.CheckResult
	add := func(group, name, status, detail string) {
		checks = append(checks, output.CheckResult{Group: group, Name: name, Status: status, Detail: detail})
	}

	// Archive checks.
	archivePath := filepath.Join(cmdCtx.Cfg.DataDir, ds.ArchiveName())
	if _, err := os.Stat(archivePath); err != nil {
		add("archive", "archive present", checkFail, archivePath+" not found")
	} else {
		add("archive", "archive present", checkPass, archivePath)

		if a, err := cmdCtx.Store.GetArchive(ds.Key()); err == nil && a != nil && a.SHA256 != "" {
			sum, err := fetch.FileSHA256(archivePath)
			switch {
			case err != nil:
				add("archive", "digest matches record", checkFail, err.Error())
			case sum != a.SHA256:
				add("archive", "digest matches record", checkFail,
					fmt.Sprintf("have %s, recorded %s", shortDigest(sum), shortDigest(a.SHA256)))
			default:
				add("archive", "digest matches record", checkPass, shortDigest(sum))
			}
		} else {
			add("archive", "digest matches record", checkWarn, "no recorded digest; run fetch to record one")
		}
	}

	// Extraction checks.
	extractDir := filepath.Join(cmdCtx.Cfg.DataDir, ds.LocalDir(), ds.Pair)
	if fi, err := os.Stat(extractDir); err != nil || !fi.IsDir() {
		add("extraction", "unpacked directory", checkFail, extractDir+" not found")
	} else {
		add("extraction", "unpacked directory", checkPass, extractDir)
	}

	splitReady := make(map[corpus.Split]bool, 3)
	for _, split := range corpus.Splits() {
		src, tgt, err := ds.SplitFiles(cmdCtx.Cfg.DataDir, split)
		if err != nil {
			add("extraction", string(split)+" files", checkFail, err.Error())
			continue
		}
		var missing []string
		for _, f := range []string{src, tgt} {
			if _, err := os.Stat(f); err != nil {
				missing = append(missing, filepath.Base(f))
			}
		}
		if len(missing) > 0 {
			add("extraction", string(split)+" files", checkFail, "missing "+strings.Join(missing, ", "))
			continue
		}
		add("extraction", string(split)+" files", checkPass, "")
		splitReady[split] = true
	}

	// Alignment checks stream each split to the end.
	for _, split := range corpus.Splits() {
		name := string(split) + " alignment"
		if !splitReady[split] {
			add("alignment", name, checkWarn, "skipped, files missing")
			continue
		}
		pairs, err := countPairs(cmdCtx.Cfg.DataDir, ds, split)
		if err != nil {
			add("alignment", name, checkFail, err.Error())
			continue
		}
		add("alignment", name, checkPass, fmt.Sprintf("%d pairs", pairs))
	}

	return checks
}

// countPairs drains one split, returning the pair count or the first
// read error. Misaligned files surface here.
func countPairs(root string, ds corpus.Dataset, split corpus.Split) (int, error) {
	sc, err := corpus.NewPairScanner(root, ds, split)
	if err != nil {
		return 0, err
	}
	defer sc.Close()

	pairs := 0
	for sc.Scan() {
		pairs++
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return pairs, nil
}

func renderVerify(r *output.Renderer, out output.VerifyOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(1, "Verify: "+out.Dataset)

	titleCaser := cases.Title(language.English)
	lastGroup := ""
	for _, c := range out.Checks {
		if c.Group != lastGroup {
			if lastGroup != "" {
				r.Println("")
			}
			r.Header(2, titleCaser.String(c.Group))
			lastGroup = c.Group
		}
		r.StatusLine(c.Name, checkLineStatus(c.Status), c.Detail)
	}

	r.Println("")
	summary := fmt.Sprintf("%d passed, %d warnings, %d failed",
		out.Summary.Passed, out.Summary.Warned, out.Summary.Failed)
	if out.Summary.OK {
		r.Success(summary)
	} else {
		r.Warning(summary)
	}
	return nil
}

// checkLineStatus maps a check status to a renderer status line kind.
func checkLineStatus(status string) string {
	switch status {
	case checkPass:
		return "success"
	case checkWarn:
		return "warning"
	default:
		return "error"
	}
}
