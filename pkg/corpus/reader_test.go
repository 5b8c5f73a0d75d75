package corpus

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSplit materializes a split's two files under root with the given
// raw lines.
func writeSplit(t *testing.T, root string, ds Dataset, split Split, srcLines, tgtLines []string) {
	t.Helper()
	src, tgt, err := ds.SplitFiles(root, split)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte(strings.Join(srcLines, "\n")+"\n"), 0o644))
	require.NoError(t, os.WriteFile(tgt, []byte(strings.Join(tgtLines, "\n")+"\n"), 0o644))
}

func testDataset(t *testing.T) Dataset {
	t.Helper()
	ds, err := DefaultRegistry().Lookup("2016", "de-en")
	require.NoError(t, err)
	return ds
}

func collect(t *testing.T, sc *PairScanner) []Pair {
	t.Helper()
	defer sc.Close()
	var pairs []Pair
	for sc.Scan() {
		pairs = append(pairs, sc.Pair())
	}
	require.NoError(t, sc.Err())
	return pairs
}

func TestReadTrainSkipsJointMetadata(t *testing.T) {
	root := t.TempDir()
	ds := testDataset(t)
	writeSplit(t, root, ds, SplitTrain,
		[]string{
			"<url>http://www.ted.com/talks/talk_1.html</url>",
			"<keywords>talks, science, global issues</keywords>",
			"<speaker>Jane Doe</speaker>",
			"<talkid>1</talkid>",
			"Danke schön.",
			"Das  ist\tein Test.",
		},
		[]string{
			"<url>http://www.ted.com/talks/talk_1.html</url>",
			"<keywords>talks, science, global issues</keywords>",
			"<speaker>Jane Doe</speaker>",
			"<talkid>1</talkid>",
			"Thank you.",
			"This is a test.",
		},
	)

	sc, err := ReadSplit(root, "2016", "de-en", SplitTrain)
	require.NoError(t, err)
	pairs := collect(t, sc)

	require.Len(t, pairs, 2)
	assert.Equal(t, []string{"Danke", "schön."}, pairs[0].Source)
	assert.Equal(t, []string{"Thank", "you."}, pairs[0].Target)
	assert.Equal(t, []string{"Das", "ist", "ein", "Test."}, pairs[1].Source)
	assert.Equal(t, []string{"This", "is", "a", "test."}, pairs[1].Target)
}

func TestReadTrainKeepsOneSidedMetadata(t *testing.T) {
	root := t.TempDir()
	ds := testDataset(t)
	// Only the source line looks like a tag; the pair must survive.
	writeSplit(t, root, ds, SplitTrain,
		[]string{"<bedanken> sagte sie"},
		[]string{"thanks she said"},
	)

	sc, err := ReadSplit(root, "2016", "de-en", SplitTrain)
	require.NoError(t, err)
	pairs := collect(t, sc)

	require.Len(t, pairs, 1)
	assert.Equal(t, []string{"<bedanken>", "sagte", "sie"}, pairs[0].Source)
	assert.Equal(t, []string{"thanks", "she", "said"}, pairs[0].Target)
}

func TestReadTrainEmptyLinePair(t *testing.T) {
	root := t.TempDir()
	ds := testDataset(t)
	writeSplit(t, root, ds, SplitTrain,
		[]string{"", "Hallo Welt"},
		[]string{"", "Hello world"},
	)

	sc, err := ReadSplit(root, "2016", "de-en", SplitTrain)
	require.NoError(t, err)
	pairs := collect(t, sc)

	// Empty lines are content, not metadata: they yield empty token lists.
	require.Len(t, pairs, 2)
	assert.Empty(t, pairs[0].Source)
	assert.Empty(t, pairs[0].Target)
	assert.Equal(t, []string{"Hallo", "Welt"}, pairs[1].Source)
}

func TestReadDevExtractsSegments(t *testing.T) {
	root := t.TempDir()
	ds := testDataset(t)
	writeSplit(t, root, ds, SplitDev,
		[]string{
			`<?xml version="1.0" encoding="UTF-8"?>`,
			`<mteval>`,
			`<srcset setid="iwslt2016" srclang="german">`,
			`<doc docid="talk1" genre="lectures">`,
			`<seg id="1"> Danke schön. </seg>`,
			`<seg id="2"> Guten Morgen. </seg>`,
			`</doc>`,
			`</srcset>`,
			`</mteval>`,
		},
		[]string{
			`<?xml version="1.0" encoding="UTF-8"?>`,
			`<mteval>`,
			`<refset setid="iwslt2016" srclang="german" trglang="english">`,
			`<doc docid="talk1" genre="lectures">`,
			`<seg id="1"> Thank you. </seg>`,
			`<seg id="2"> Good morning. </seg>`,
			`</doc>`,
			`</refset>`,
			`</mteval>`,
		},
	)

	sc, err := ReadSplit(root, "2016", "de-en", SplitDev)
	require.NoError(t, err)
	pairs := collect(t, sc)

	require.Len(t, pairs, 2)
	assert.Equal(t, []string{"Danke", "schön."}, pairs[0].Source)
	assert.Equal(t, []string{"Thank", "you."}, pairs[0].Target)
	assert.Equal(t, []string{"Guten", "Morgen."}, pairs[1].Source)
	assert.Equal(t, []string{"Good", "morning."}, pairs[1].Target)
}

func TestReadDevSkipsOneSidedSegment(t *testing.T) {
	root := t.TempDir()
	ds := testDataset(t)
	// Line 2 is a segment on the source side only; the pair is dropped
	// jointly so alignment is preserved.
	writeSplit(t, root, ds, SplitDev,
		[]string{
			`<seg id="1"> Eins </seg>`,
			`<seg id="2"> Zwei </seg>`,
			`<seg id="3"> Drei </seg>`,
		},
		[]string{
			`<seg id="1"> One </seg>`,
			`<p>`,
			`<seg id="3"> Three </seg>`,
		},
	)

	sc, err := ReadSplit(root, "2016", "de-en", SplitDev)
	require.NoError(t, err)

	var pairs []Pair
	for sc.Scan() {
		pairs = append(pairs, sc.Pair())
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, 1, sc.Skipped())
	require.NoError(t, sc.Close())

	require.Len(t, pairs, 2)
	assert.Equal(t, []string{"Eins"}, pairs[0].Source)
	assert.Equal(t, []string{"Drei"}, pairs[1].Source)
	assert.Equal(t, []string{"Three"}, pairs[1].Target)
}

func TestReadDevSegmentAttributes(t *testing.T) {
	root := t.TempDir()
	ds := testDataset(t)
	writeSplit(t, root, ds, SplitDev,
		[]string{`<seg id="7" docid="x">Kein Leerzeichen</seg>`},
		[]string{`<seg>no attributes at all</seg> trailing`},
	)

	sc, err := ReadSplit(root, "2016", "de-en", SplitDev)
	require.NoError(t, err)
	pairs := collect(t, sc)

	require.Len(t, pairs, 1)
	assert.Equal(t, []string{"Kein", "Leerzeichen"}, pairs[0].Source)
	assert.Equal(t, []string{"no", "attributes", "at", "all"}, pairs[0].Target)
}

func TestReadWithEOS(t *testing.T) {
	root := t.TempDir()
	ds := testDataset(t)
	writeSplit(t, root, ds, SplitTrain,
		[]string{"Hallo Welt"},
		[]string{"Hello world"},
	)

	sc, err := ReadSplit(root, "2016", "de-en", SplitTrain, WithEOS("</s>"))
	require.NoError(t, err)
	pairs := collect(t, sc)

	require.Len(t, pairs, 1)
	assert.Equal(t, []string{"Hallo", "Welt", "</s>"}, pairs[0].Source)
	assert.Equal(t, []string{"Hello", "world", "</s>"}, pairs[0].Target)
}

func TestReadValidatesSplitBeforeOpening(t *testing.T) {
	// The root does not exist; an invalid split must still win over the
	// missing files.
	_, err := ReadSplit(filepath.Join(t.TempDir(), "nope"), "2016", "de-en", Split("validation"))
	var invalid *InvalidSplitError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "validation", invalid.Split)
}

func TestReadValidatesDatasetBeforeOpening(t *testing.T) {
	_, err := ReadSplit(filepath.Join(t.TempDir(), "nope"), "1999", "de-en", SplitTrain)
	var unsupported *UnsupportedDatasetError
	require.True(t, errors.As(err, &unsupported))
}

func TestReadMissingFiles(t *testing.T) {
	_, err := ReadSplit(t.TempDir(), "2016", "de-en", SplitTrain)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestReadMisalignedFiles(t *testing.T) {
	root := t.TempDir()
	ds := testDataset(t)
	writeSplit(t, root, ds, SplitTrain,
		[]string{"eins", "zwei"},
		[]string{"one", "two", "three", "four"},
	)

	sc, err := ReadSplit(root, "2016", "de-en", SplitTrain)
	require.NoError(t, err)
	defer sc.Close()

	var n int
	for sc.Scan() {
		n++
	}
	assert.Equal(t, 2, n)

	var misaligned *MisalignedCorpusError
	require.True(t, errors.As(sc.Err(), &misaligned))
	assert.Equal(t, SplitTrain, misaligned.Split)
	assert.Equal(t, 2, misaligned.SourceLines)
	assert.Equal(t, 3, misaligned.TargetLines)
	assert.Contains(t, misaligned.Error(), "ended after 2 lines")
}

func TestScannerCloseIdempotent(t *testing.T) {
	root := t.TempDir()
	ds := testDataset(t)
	writeSplit(t, root, ds, SplitTrain,
		[]string{"eins", "zwei", "drei"},
		[]string{"one", "two", "three"},
	)

	sc, err := ReadSplit(root, "2016", "de-en", SplitTrain)
	require.NoError(t, err)

	// Abandon after the first pair; Close must release both files.
	require.True(t, sc.Scan())
	require.NoError(t, sc.Close())
	require.NoError(t, sc.Close())
	assert.False(t, sc.Scan())
	assert.NoError(t, sc.Err())
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		eos  string
		want []string
	}{
		{name: "plain", line: "a b c", want: []string{"a", "b", "c"}},
		{name: "surrounding space", line: "  hallo  welt  ", want: []string{"hallo", "welt"}},
		{name: "tabs and runs", line: "a\t\tb   c", want: []string{"a", "b", "c"}},
		{name: "empty", line: "", want: nil},
		{name: "only space", line: "   \t ", want: nil},
		{name: "eos appended", line: "hallo", eos: "</s>", want: []string{"hallo", "</s>"}},
		{name: "eos on empty", line: "", eos: "</s>", want: []string{"</s>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.line, tt.eos)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
