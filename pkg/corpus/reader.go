package corpus

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// segPattern matches the <seg> elements carrying text in dev and test
// files. Capture group 1 is the segment body. The match is anchored at
// the start only, so trailing content after </seg> is tolerated.
var segPattern = regexp.MustCompile(`^<seg[^>]*>(.*)</seg>`)

// isMeta reports whether a train line is tag metadata (url, keywords,
// speaker, talkid and friends). Both sides of a pair must match for the
// pair to be skipped.
func isMeta(line string) bool {
	return strings.HasPrefix(line, "<")
}

// maxLineSize bounds a single corpus line. Transcript lines are a few
// kilobytes at most; anything past this is treated as a read error
// rather than growing the buffer without limit.
const maxLineSize = 1 << 20

type readOptions struct {
	eos string
}

// ReadOption configures a reader or loader.
type ReadOption func(*readOptions)

// WithEOS appends tok to both sides of every yielded pair. The empty
// string is the default and appends nothing.
func WithEOS(tok string) ReadOption {
	return func(o *readOptions) { o.eos = tok }
}

// Pair is one aligned sentence pair, tokenized on whitespace runs.
type Pair struct {
	Source []string
	Target []string
}

// PairScanner streams aligned pairs from one split of an unpacked
// dataset. It follows the bufio.Scanner protocol: Scan advances to the
// next pair, Pair returns it, Err reports the first error encountered,
// and Close releases the underlying files. A PairScanner is lazy, finite
// and not restartable.
type PairScanner struct {
	split   Split
	srcFile string
	tgtFile string

	srcF *os.File
	tgtF *os.File
	src  *bufio.Scanner
	tgt  *bufio.Scanner

	eos     string
	isTrain bool

	pair     Pair
	srcLines int
	tgtLines int
	skipped  int
	err      error
	closed   bool
}

// ReadSplit opens a streaming reader over one split of a dataset from the
// default registry. The split name and dataset key are validated before
// any file is opened. The caller must Close the returned scanner.
func ReadSplit(root, year, pair string, split Split, opts ...ReadOption) (*PairScanner, error) {
	return DefaultRegistry().ReadSplit(root, year, pair, split, opts...)
}

// ReadSplit opens a streaming reader over one split of a dataset from
// this registry.
func (r Registry) ReadSplit(root, year, pair string, split Split, opts ...ReadOption) (*PairScanner, error) {
	if _, err := ParseSplit(string(split)); err != nil {
		return nil, err
	}
	ds, err := r.Lookup(year, pair)
	if err != nil {
		return nil, err
	}
	return NewPairScanner(root, ds, split, opts...)
}

// NewPairScanner opens a streaming reader over one split of an already
// resolved dataset descriptor.
func NewPairScanner(root string, ds Dataset, split Split, opts ...ReadOption) (*PairScanner, error) {
	if _, err := ParseSplit(string(split)); err != nil {
		return nil, err
	}
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	srcFile, tgtFile, err := ds.SplitFiles(root, split)
	if err != nil {
		return nil, err
	}
	srcF, err := os.Open(srcFile)
	if err != nil {
		return nil, fmt.Errorf("opening source file: %w", err)
	}
	tgtF, err := os.Open(tgtFile)
	if err != nil {
		srcF.Close()
		return nil, fmt.Errorf("opening target file: %w", err)
	}

	s := &PairScanner{
		split:   split,
		srcFile: srcFile,
		tgtFile: tgtFile,
		srcF:    srcF,
		tgtF:    tgtF,
		src:     bufio.NewScanner(srcF),
		tgt:     bufio.NewScanner(tgtF),
		eos:     o.eos,
		isTrain: split == SplitTrain,
	}
	s.src.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	s.tgt.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return s, nil
}

// Scan advances to the next aligned pair, consuming both files in
// lockstep. It returns false at the end of the split or on error; Err
// tells the two apart.
func (s *PairScanner) Scan() bool {
	if s.err != nil || s.closed {
		return false
	}
	for {
		srcOK := s.src.Scan()
		tgtOK := s.tgt.Scan()
		if srcOK {
			s.srcLines++
		}
		if tgtOK {
			s.tgtLines++
		}
		if !srcOK || !tgtOK {
			if err := s.src.Err(); err != nil {
				s.err = fmt.Errorf("reading %s: %w", s.srcFile, err)
				return false
			}
			if err := s.tgt.Err(); err != nil {
				s.err = fmt.Errorf("reading %s: %w", s.tgtFile, err)
				return false
			}
			if srcOK != tgtOK {
				s.err = &MisalignedCorpusError{
					Split:       s.split,
					SourceFile:  s.srcFile,
					TargetFile:  s.tgtFile,
					SourceLines: s.srcLines,
					TargetLines: s.tgtLines,
				}
			}
			return false
		}

		srcLine := s.src.Text()
		tgtLine := s.tgt.Text()
		if s.isTrain {
			if isMeta(srcLine) && isMeta(tgtLine) {
				s.skipped++
				continue
			}
		} else {
			srcSeg := segPattern.FindStringSubmatch(srcLine)
			tgtSeg := segPattern.FindStringSubmatch(tgtLine)
			if srcSeg == nil || tgtSeg == nil {
				s.skipped++
				continue
			}
			srcLine = srcSeg[1]
			tgtLine = tgtSeg[1]
		}

		s.pair = Pair{
			Source: tokenize(srcLine, s.eos),
			Target: tokenize(tgtLine, s.eos),
		}
		return true
	}
}

// Pair returns the pair produced by the last successful Scan. The slices
// are freshly allocated per pair and safe to retain.
func (s *PairScanner) Pair() Pair {
	return s.pair
}

// Err returns the first error encountered during scanning, or nil if the
// split was consumed cleanly.
func (s *PairScanner) Err() error {
	return s.err
}

// Skipped returns the number of line pairs consumed but not yielded:
// joint metadata lines for train, non-segment lines for dev and test.
func (s *PairScanner) Skipped() int {
	return s.skipped
}

// Files returns the source and target file paths the scanner reads.
func (s *PairScanner) Files() (src, tgt string) {
	return s.srcFile, s.tgtFile
}

// Close releases both underlying files. It is safe to call more than
// once and after partial iteration.
func (s *PairScanner) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	srcErr := s.srcF.Close()
	tgtErr := s.tgtF.Close()
	if srcErr != nil {
		return srcErr
	}
	return tgtErr
}

// tokenize trims the line and splits it on whitespace runs, optionally
// appending an end-of-sentence token.
func tokenize(line, eos string) []string {
	tokens := strings.Fields(line)
	if eos != "" {
		tokens = append(tokens, eos)
	}
	return tokens
}
