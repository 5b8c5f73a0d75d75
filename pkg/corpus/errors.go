package corpus

import (
	"fmt"
	"strings"
)

// InvalidSplitError is returned when a split name is not one of
// train, dev or test.
type InvalidSplitError struct {
	Split string
}

func (e *InvalidSplitError) Error() string {
	return fmt.Sprintf("invalid split %q (must be %q, %q or %q)",
		e.Split, SplitTrain, SplitDev, SplitTest)
}

// UnsupportedDatasetError is returned when a year/language-pair combination
// has no registry entry. The message enumerates the supported datasets.
type UnsupportedDatasetError struct {
	Year      string
	Pair      string
	Supported []string
}

func (e *UnsupportedDatasetError) Error() string {
	key := e.Year
	if e.Pair != "" {
		key += "." + e.Pair
	}
	return fmt.Sprintf("dataset %s is not supported (supported datasets: %s)",
		key, strings.Join(e.Supported, ", "))
}

// MisalignedCorpusError is returned when the source and target files of a
// split run out of lines at different points. The line counts are the
// lines observed before the shorter side ended.
type MisalignedCorpusError struct {
	Split       Split
	SourceFile  string
	TargetFile  string
	SourceLines int
	TargetLines int
}

func (e *MisalignedCorpusError) Error() string {
	short, shortLines := e.SourceFile, e.SourceLines
	long := e.TargetFile
	if e.TargetLines < e.SourceLines {
		short, shortLines = e.TargetFile, e.TargetLines
		long = e.SourceFile
	}
	return fmt.Sprintf("misaligned %s split: %s ended after %d lines while %s has more",
		e.Split, short, shortLines, long)
}
