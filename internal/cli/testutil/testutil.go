// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/nmtkit/iwslt/internal/cli/output"
	"github.com/nmtkit/iwslt/pkg/corpus"
)

// TestDataset returns the registry entry the CLI fixtures are built for.
func TestDataset(t *testing.T) corpus.Dataset {
	t.Helper()
	ds, err := corpus.DefaultRegistry().LookupKey("2016.de-en")
	if err != nil {
		t.Fatalf("fixture dataset missing from registry: %v", err)
	}
	return ds
}

// fixtureFiles returns the standard fixture for one dataset: six split
// files keyed by path relative to the extraction directory. The train
// files carry two metadata lines and three sentences; dev has two
// segments and test one.
func fixtureFiles(ds corpus.Dataset) map[string]string {
	join := func(lines ...string) string {
		return strings.Join(lines, "\n") + "\n"
	}
	dir := ds.Pair + "/"
	return map[string]string{
		dir + ds.TrainPrefix + "." + ds.SourceLang(): join(
			"<url>http://www.ted.com/talks/talk_1.html</url>",
			"<talkid>1</talkid>",
			"Danke schön.",
			"Guten Morgen allerseits.",
			"Das ist ein Test.",
		),
		dir + ds.TrainPrefix + "." + ds.TargetLang(): join(
			"<url>http://www.ted.com/talks/talk_1.html</url>",
			"<talkid>1</talkid>",
			"Thank you.",
			"Good morning everyone.",
			"This is a test.",
		),
		dir + ds.DevPrefix + "." + ds.SourceLang() + ".xml": join(
			`<srcset setid="iwslt2016">`,
			`<seg id="1"> Eins zwei drei </seg>`,
			`<seg id="2"> Vier fünf </seg>`,
			`</srcset>`,
		),
		dir + ds.DevPrefix + "." + ds.TargetLang() + ".xml": join(
			`<refset setid="iwslt2016">`,
			`<seg id="1"> One two three </seg>`,
			`<seg id="2"> Four five </seg>`,
			`</refset>`,
		),
		dir + ds.TestPrefix + "." + ds.SourceLang() + ".xml": join(
			`<srcset setid="iwslt2016">`,
			`<seg id="1"> Auf Wiedersehen </seg>`,
			`</srcset>`,
		),
		dir + ds.TestPrefix + "." + ds.TargetLang() + ".xml": join(
			`<refset setid="iwslt2016">`,
			`<seg id="1"> Goodbye </seg>`,
			`</refset>`,
		),
	}
}

// SetupTestCorpus creates a temporary data directory holding the
// unpacked fixture dataset (3 train, 2 dev, 1 test pairs) and returns
// its path.
func SetupTestCorpus(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	WriteCorpus(t, dataDir, TestDataset(t))
	return dataDir
}

// WriteCorpus writes the unpacked fixture tree for ds under dataDir,
// as if its archive had been fetched and extracted there.
func WriteCorpus(t *testing.T, dataDir string, ds corpus.Dataset) {
	t.Helper()
	base := filepath.Join(dataDir, ds.LocalDir())
	for rel, content := range fixtureFiles(ds) {
		path := filepath.Join(base, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// CorpusArchive builds an in-memory .tgz of the fixture tree in the
// layout of a real WIT3 archive: a {pair}/ directory holding the split
// files. Serve it from an httptest server to exercise fetch end to end.
func CorpusArchive(t *testing.T, ds corpus.Dataset) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	if err := tw.WriteHeader(&tar.Header{
		Name:     ds.Pair + "/",
		Typeflag: tar.TypeDir,
		Mode:     0o755,
	}); err != nil {
		t.Fatalf("failed to write archive directory header: %v", err)
	}
	for rel, content := range fixtureFiles(ds) {
		if err := tw.WriteHeader(&tar.Header{
			Name:     rel,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}); err != nil {
			t.Fatalf("failed to write archive header for %s: %v", rel, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write archive member %s: %v", rel, err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	return buf.Bytes()
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererAuto creates a new test renderer with auto mode detection.
// In tests, non-TTY defaults to markdown output.
func NewTestRendererAuto() *TestRenderer {
	return NewTestRenderer(output.ModeAuto, false)
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertContains checks that the string contains the expected substring.
func AssertContains(t *testing.T, s, expected string) {
	t.Helper()
	if !strings.Contains(s, expected) {
		t.Errorf("string %q does not contain expected %q", s, expected)
	}
}

// AssertNotContains checks that the string does not contain the substring.
func AssertNotContains(t *testing.T, s, unexpected string) {
	t.Helper()
	if strings.Contains(s, unexpected) {
		t.Errorf("string %q unexpectedly contains %q", s, unexpected)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}

// AssertOutputMode checks that the renderer output matches expected mode characteristics.
func AssertOutputMode(t *testing.T, tr *TestRenderer, expectedMode output.Mode) {
	t.Helper()

	combinedOutput := tr.Output() + tr.ErrorOutput()

	switch expectedMode {
	case output.ModeMarkdown:
		AssertNoANSI(t, combinedOutput)
		// Markdown mode should not contain ANSI codes
	case output.ModeText:
		// Text mode may contain ANSI codes if TTY
		// No specific assertion needed
	case output.ModeJSON:
		AssertNoANSI(t, combinedOutput)
		// JSON mode should not contain ANSI codes
	}
}
