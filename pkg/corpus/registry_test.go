package corpus

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryContents(t *testing.T) {
	reg := DefaultRegistry()

	assert.Equal(t, []string{"2016.de-en", "2016.fr-en"}, reg.Keys())
	assert.Equal(t, 2, reg.Len())

	ds, err := reg.Lookup("2016", "de-en")
	require.NoError(t, err)
	assert.Equal(t, "train.tags.de-en", ds.TrainPrefix)
	assert.Equal(t, "IWSLT16.TED.tst2013.de-en", ds.DevPrefix)
	assert.Equal(t, "IWSLT16.TED.tst2014.de-en", ds.TestPrefix)

	ds, err = reg.Lookup("2016", "fr-en")
	require.NoError(t, err)
	assert.Equal(t, "train.tags.fr-en", ds.TrainPrefix)
	assert.Equal(t, "IWSLT16.TED.tst2013.fr-en", ds.DevPrefix)
	assert.Equal(t, "IWSLT16.TED.tst2014.fr-en", ds.TestPrefix)
}

func TestLookupUnsupported(t *testing.T) {
	reg := DefaultRegistry()

	_, err := reg.Lookup("2017", "de-en")
	require.Error(t, err)

	var unsupported *UnsupportedDatasetError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "2017", unsupported.Year)
	assert.Equal(t, "de-en", unsupported.Pair)
	assert.Equal(t, []string{"2016.de-en", "2016.fr-en"}, unsupported.Supported)
	assert.Contains(t, err.Error(), "2016.de-en, 2016.fr-en")
}

func TestLookupKey(t *testing.T) {
	reg := DefaultRegistry()

	ds, err := reg.LookupKey("2016.fr-en")
	require.NoError(t, err)
	assert.Equal(t, "fr-en", ds.Pair)

	_, err = reg.LookupKey("not-a-key")
	var unsupported *UnsupportedDatasetError
	require.True(t, errors.As(err, &unsupported))
}

func TestNewRegistryExtras(t *testing.T) {
	extra := Dataset{
		Year:        "2017",
		Pair:        "de-en",
		TrainPrefix: "train.tags.de-en",
		DevPrefix:   "IWSLT17.TED.tst2016.de-en",
		TestPrefix:  "IWSLT17.TED.tst2017.de-en",
	}
	reg := NewRegistry(extra)

	assert.Equal(t, []string{"2016.de-en", "2016.fr-en", "2017.de-en"}, reg.Keys())

	ds, err := reg.Lookup("2017", "de-en")
	require.NoError(t, err)
	assert.Equal(t, "IWSLT17.TED.tst2016.de-en", ds.DevPrefix)

	// An extra with a built-in key overrides it without touching the
	// default registry.
	override := Dataset{Year: "2016", Pair: "de-en", TrainPrefix: "other"}
	reg2 := NewRegistry(override)
	ds, err = reg2.Lookup("2016", "de-en")
	require.NoError(t, err)
	assert.Equal(t, "other", ds.TrainPrefix)

	ds, err = DefaultRegistry().Lookup("2016", "de-en")
	require.NoError(t, err)
	assert.Equal(t, "train.tags.de-en", ds.TrainPrefix)
}

func TestDatasetNaming(t *testing.T) {
	ds, err := DefaultRegistry().Lookup("2016", "de-en")
	require.NoError(t, err)

	assert.Equal(t, "2016.de-en", ds.Key())
	assert.Equal(t, "de", ds.SourceLang())
	assert.Equal(t, "en", ds.TargetLang())
	assert.Equal(t, "iwslt2016.de-en.tgz", ds.ArchiveName())
	assert.Equal(t, "iwslt2016.de-en", ds.LocalDir())
}

func TestSplitFiles(t *testing.T) {
	ds, err := DefaultRegistry().Lookup("2016", "de-en")
	require.NoError(t, err)

	src, tgt, err := ds.SplitFiles("/data", SplitTrain)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "iwslt2016.de-en", "de-en", "train.tags.de-en.de"), src)
	assert.Equal(t, filepath.Join("/data", "iwslt2016.de-en", "de-en", "train.tags.de-en.en"), tgt)

	src, tgt, err = ds.SplitFiles("/data", SplitDev)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "iwslt2016.de-en", "de-en", "IWSLT16.TED.tst2013.de-en.de.xml"), src)
	assert.Equal(t, filepath.Join("/data", "iwslt2016.de-en", "de-en", "IWSLT16.TED.tst2013.de-en.en.xml"), tgt)

	src, tgt, err = ds.SplitFiles("/data", SplitTest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "iwslt2016.de-en", "de-en", "IWSLT16.TED.tst2014.de-en.de.xml"), src)
	assert.Equal(t, filepath.Join("/data", "iwslt2016.de-en", "de-en", "IWSLT16.TED.tst2014.de-en.en.xml"), tgt)

	_, _, err = ds.SplitFiles("/data", Split("validation"))
	var invalid *InvalidSplitError
	require.True(t, errors.As(err, &invalid))
}

func TestParseSplit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Split
		wantErr bool
	}{
		{name: "train", input: "train", want: SplitTrain},
		{name: "dev", input: "dev", want: SplitDev},
		{name: "test", input: "test", want: SplitTest},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "validation", wantErr: true},
		{name: "case sensitive", input: "Train", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSplit(tt.input)
			if tt.wantErr {
				var invalid *InvalidSplitError
				require.True(t, errors.As(err, &invalid))
				assert.Equal(t, tt.input, invalid.Split)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitsOrder(t *testing.T) {
	assert.Equal(t, []Split{SplitTrain, SplitDev, SplitTest}, Splits())
}
