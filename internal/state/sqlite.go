package state

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens (creating if needed) a store at path, applies the schema
// and returns it ready for use. Use ":memory:" for an in-memory store.
func Open(path string) (*SQLiteStore, error) {
	s := NewSQLiteStore()
	if err := s.Open(path); err != nil {
		return nil, err
	}
	if err := s.InitSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Open opens a connection to the SQLite database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema applies the embedded schema. Idempotent.
func (s *SQLiteStore) InitSchema() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// --- Archive operations ---

// RecordArchive inserts or replaces the archive row for a dataset.
// FetchedAt defaults to now when unset.
func (s *SQLiteStore) RecordArchive(a *Archive) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if a.FetchedAt.IsZero() {
		a.FetchedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO archives (dataset, archive_path, sha256, size_bytes, fetched_at, extracted_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(dataset) DO UPDATE SET
		     archive_path = excluded.archive_path,
		     sha256 = excluded.sha256,
		     size_bytes = excluded.size_bytes,
		     fetched_at = excluded.fetched_at,
		     extracted_at = excluded.extracted_at`,
		a.Dataset, a.ArchivePath, a.SHA256, a.SizeBytes, a.FetchedAt, a.ExtractedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record archive: %w", err)
	}
	return nil
}

// GetArchive retrieves the archive row for a dataset, or (nil, nil) when
// none is recorded.
func (s *SQLiteStore) GetArchive(dataset string) (*Archive, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	a := &Archive{}
	var extractedAt sql.NullTime

	err := s.db.QueryRow(
		`SELECT dataset, archive_path, sha256, size_bytes, fetched_at, extracted_at
		 FROM archives WHERE dataset = ?`,
		dataset,
	).Scan(&a.Dataset, &a.ArchivePath, &a.SHA256, &a.SizeBytes, &a.FetchedAt, &extractedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get archive: %w", err)
	}

	if extractedAt.Valid {
		a.ExtractedAt = &extractedAt.Time
	}
	return a, nil
}

// ListArchives returns all recorded archives ordered by dataset key.
func (s *SQLiteStore) ListArchives() ([]*Archive, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT dataset, archive_path, sha256, size_bytes, fetched_at, extracted_at
		 FROM archives ORDER BY dataset`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	defer rows.Close()

	var archives []*Archive
	for rows.Next() {
		a := &Archive{}
		var extractedAt sql.NullTime
		if err := rows.Scan(&a.Dataset, &a.ArchivePath, &a.SHA256, &a.SizeBytes, &a.FetchedAt, &extractedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archive: %w", err)
		}
		if extractedAt.Valid {
			a.ExtractedAt = &extractedAt.Time
		}
		archives = append(archives, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate archives: %w", err)
	}
	return archives, nil
}

// MarkExtracted stamps the extraction time on a recorded archive.
func (s *SQLiteStore) MarkExtracted(dataset string, extractedAt time.Time) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.Exec(
		`UPDATE archives SET extracted_at = ? WHERE dataset = ?`,
		extractedAt.UTC(), dataset,
	)
	if err != nil {
		return fmt.Errorf("failed to mark extracted: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("archive not recorded: %s", dataset)
	}
	return nil
}

// --- Load run operations ---

// RecordLoadRun inserts a load run row. The ID and LoadedAt fields are
// filled in when unset.
func (s *SQLiteStore) RecordLoadRun(run *LoadRun) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if run.ID == "" {
		run.ID = generateID()
	}
	if run.LoadedAt.IsZero() {
		run.LoadedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO load_runs (id, dataset, eos, train_pairs, dev_pairs, test_pairs, duration_ms, loaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Dataset, run.EOS, run.TrainPairs, run.DevPairs, run.TestPairs, run.DurationMS, run.LoadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record load run: %w", err)
	}
	return nil
}

// LatestLoadRun retrieves the most recent load run for a dataset, or
// (nil, nil) when the dataset has never been loaded.
func (s *SQLiteStore) LatestLoadRun(dataset string) (*LoadRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &LoadRun{}
	err := s.db.QueryRow(
		`SELECT id, dataset, eos, train_pairs, dev_pairs, test_pairs, duration_ms, loaded_at
		 FROM load_runs WHERE dataset = ? ORDER BY loaded_at DESC LIMIT 1`,
		dataset,
	).Scan(&run.ID, &run.Dataset, &run.EOS, &run.TrainPairs, &run.DevPairs, &run.TestPairs, &run.DurationMS, &run.LoadedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest load run: %w", err)
	}
	return run, nil
}
