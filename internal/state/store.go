// Package state records fetch and load bookkeeping in an embedded
// SQLite database. It tracks which archives are on disk, their digests,
// and the history of materializing loads.
package state

import "time"

// Archive records a fetched dataset archive.
type Archive struct {
	Dataset     string
	ArchivePath string
	SHA256      string
	SizeBytes   int64
	FetchedAt   time.Time
	ExtractedAt *time.Time
}

// LoadRun records one materializing load of a dataset.
type LoadRun struct {
	ID         string
	Dataset    string
	EOS        string
	TrainPairs int
	DevPairs   int
	TestPairs  int
	DurationMS int64
	LoadedAt   time.Time
}

// Store is the bookkeeping interface used by the CLI commands. Lookups
// for rows that do not exist return (nil, nil).
type Store interface {
	RecordArchive(a *Archive) error
	GetArchive(dataset string) (*Archive, error)
	ListArchives() ([]*Archive, error)
	MarkExtracted(dataset string, extractedAt time.Time) error

	RecordLoadRun(run *LoadRun) error
	LatestLoadRun(dataset string) (*LoadRun, error)

	Close() error
}
