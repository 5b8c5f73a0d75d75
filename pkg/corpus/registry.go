// Package corpus reads the IWSLT TED-talk bilingual corpus.
//
// This package contains:
//   - Dataset descriptors and the registry of supported year/pair releases
//   - A streaming aligned-pair reader with the IWSLT line filtering rules
//   - A one-call loader that materializes the train, dev and test splits
//
// Acquisition of the archives lives in pkg/fetch; this package only reads
// files that are already unpacked on disk.
package corpus

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Dataset describes one year/language-pair release of the corpus.
// The zero value is not usable; obtain descriptors from a Registry.
type Dataset struct {
	// Year is the IWSLT campaign year, e.g. "2016".
	Year string
	// Pair is the hyphenated language pair, e.g. "de-en". The first half
	// is the source language, the second the target.
	Pair string

	// File prefixes inside the unpacked archive, one per split.
	TrainPrefix string
	DevPrefix   string
	TestPrefix  string
}

// Key returns the registry key for the dataset, "{year}.{pair}".
func (d Dataset) Key() string {
	return d.Year + "." + d.Pair
}

// SourceLang returns the source half of the language pair.
func (d Dataset) SourceLang() string {
	src, _, _ := strings.Cut(d.Pair, "-")
	return src
}

// TargetLang returns the target half of the language pair.
func (d Dataset) TargetLang() string {
	_, tgt, _ := strings.Cut(d.Pair, "-")
	return tgt
}

// ArchiveName returns the local archive filename, "iwslt{year}.{pair}.tgz".
func (d Dataset) ArchiveName() string {
	return fmt.Sprintf("iwslt%s.%s.tgz", d.Year, d.Pair)
}

// LocalDir returns the extraction directory name, "iwslt{year}.{pair}".
func (d Dataset) LocalDir() string {
	return fmt.Sprintf("iwslt%s.%s", d.Year, d.Pair)
}

// SplitPrefix returns the data file prefix for the given split.
func (d Dataset) SplitPrefix(split Split) (string, error) {
	switch split {
	case SplitTrain:
		return d.TrainPrefix, nil
	case SplitDev:
		return d.DevPrefix, nil
	case SplitTest:
		return d.TestPrefix, nil
	}
	return "", &InvalidSplitError{Split: string(split)}
}

// SplitFiles returns the source and target file paths for a split under
// root. Train files carry a bare language suffix; dev and test files are
// SGML and carry a trailing .xml:
//
//	{root}/iwslt{year}.{pair}/{pair}/{prefix}.{lang}       train
//	{root}/iwslt{year}.{pair}/{pair}/{prefix}.{lang}.xml   dev, test
func (d Dataset) SplitFiles(root string, split Split) (src, tgt string, err error) {
	prefix, err := d.SplitPrefix(split)
	if err != nil {
		return "", "", err
	}
	dir := filepath.Join(root, d.LocalDir(), d.Pair)
	src = filepath.Join(dir, prefix+"."+d.SourceLang())
	tgt = filepath.Join(dir, prefix+"."+d.TargetLang())
	if split != SplitTrain {
		src += ".xml"
		tgt += ".xml"
	}
	return src, tgt, nil
}

// builtin is the compiled-in dataset table. Extend by adding entries here
// or by passing extras to NewRegistry; the table itself is never mutated
// at runtime.
var builtin = []Dataset{
	{
		Year:        "2016",
		Pair:        "de-en",
		TrainPrefix: "train.tags.de-en",
		DevPrefix:   "IWSLT16.TED.tst2013.de-en",
		TestPrefix:  "IWSLT16.TED.tst2014.de-en",
	},
	{
		Year:        "2016",
		Pair:        "fr-en",
		TrainPrefix: "train.tags.fr-en",
		DevPrefix:   "IWSLT16.TED.tst2013.fr-en",
		TestPrefix:  "IWSLT16.TED.tst2014.fr-en",
	},
}

// Registry is an immutable table of supported datasets keyed by
// "{year}.{pair}". Construct one with DefaultRegistry or NewRegistry.
type Registry struct {
	byKey map[string]Dataset
}

// DefaultRegistry returns the registry of compiled-in datasets.
func DefaultRegistry() Registry {
	return NewRegistry()
}

// NewRegistry returns a registry containing the compiled-in datasets plus
// any extras. Extras with the same key as a built-in override it; later
// extras override earlier ones.
func NewRegistry(extra ...Dataset) Registry {
	byKey := make(map[string]Dataset, len(builtin)+len(extra))
	for _, d := range builtin {
		byKey[d.Key()] = d
	}
	for _, d := range extra {
		byKey[d.Key()] = d
	}
	return Registry{byKey: byKey}
}

// Lookup returns the dataset for a year and language pair. Misses return
// an UnsupportedDatasetError listing the supported keys.
func (r Registry) Lookup(year, pair string) (Dataset, error) {
	d, ok := r.byKey[year+"."+pair]
	if !ok {
		return Dataset{}, &UnsupportedDatasetError{
			Year:      year,
			Pair:      pair,
			Supported: r.Keys(),
		}
	}
	return d, nil
}

// LookupKey is Lookup for a combined "{year}.{pair}" key.
func (r Registry) LookupKey(key string) (Dataset, error) {
	year, pair, ok := strings.Cut(key, ".")
	if !ok {
		return Dataset{}, &UnsupportedDatasetError{
			Year:      key,
			Pair:      "",
			Supported: r.Keys(),
		}
	}
	return r.Lookup(year, pair)
}

// Keys returns the supported dataset keys in sorted order.
func (r Registry) Keys() []string {
	keys := make([]string, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Datasets returns the registered datasets ordered by key.
func (r Registry) Datasets() []Dataset {
	keys := r.Keys()
	out := make([]Dataset, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.byKey[k])
	}
	return out
}

// Len returns the number of registered datasets.
func (r Registry) Len() int {
	return len(r.byKey)
}
