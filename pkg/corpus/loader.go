package corpus

import "fmt"

// SplitData holds one materialized split as parallel token slices.
// Source[i] is aligned with Target[i]; the two slices always have equal
// length.
type SplitData struct {
	Source [][]string
	Target [][]string
}

// Len returns the number of aligned pairs in the split.
func (s SplitData) Len() int {
	return len(s.Source)
}

// TokenCounts returns the total source and target token counts.
func (s SplitData) TokenCounts() (src, tgt int) {
	for _, sent := range s.Source {
		src += len(sent)
	}
	for _, sent := range s.Target {
		tgt += len(sent)
	}
	return src, tgt
}

// Corpus is a fully materialized dataset: all three splits in memory.
type Corpus struct {
	Dataset Dataset
	Train   SplitData
	Dev     SplitData
	Test    SplitData
}

// Split returns the materialized data for one split. Unknown splits
// return the zero value.
func (c *Corpus) Split(split Split) SplitData {
	switch split {
	case SplitTrain:
		return c.Train
	case SplitDev:
		return c.Dev
	case SplitTest:
		return c.Test
	}
	return SplitData{}
}

// Pairs returns the total number of aligned pairs across all splits.
func (c *Corpus) Pairs() int {
	return c.Train.Len() + c.Dev.Len() + c.Test.Len()
}

// Load materializes the train, dev and test splits of a dataset from the
// default registry. The dataset is validated against the registry before
// any file is touched.
func Load(root, year, pair string, opts ...ReadOption) (*Corpus, error) {
	return DefaultRegistry().Load(root, year, pair, opts...)
}

// Load materializes the train, dev and test splits of a dataset from
// this registry.
func (r Registry) Load(root, year, pair string, opts ...ReadOption) (*Corpus, error) {
	ds, err := r.Lookup(year, pair)
	if err != nil {
		return nil, err
	}

	c := &Corpus{Dataset: ds}
	for _, split := range Splits() {
		data, err := readAll(root, ds, split, opts)
		if err != nil {
			return nil, fmt.Errorf("loading %s split: %w", split, err)
		}
		switch split {
		case SplitTrain:
			c.Train = data
		case SplitDev:
			c.Dev = data
		case SplitTest:
			c.Test = data
		}
	}
	return c, nil
}

// readAll drains one split through a PairScanner.
func readAll(root string, ds Dataset, split Split, opts []ReadOption) (SplitData, error) {
	sc, err := NewPairScanner(root, ds, split, opts...)
	if err != nil {
		return SplitData{}, err
	}
	defer sc.Close()

	var data SplitData
	for sc.Scan() {
		p := sc.Pair()
		data.Source = append(data.Source, p.Source)
		data.Target = append(data.Target, p.Target)
	}
	if err := sc.Err(); err != nil {
		return SplitData{}, err
	}
	return data, nil
}
