// Package index implements C11: a queryable local record of every dive
// logbook the tool has decoded, persisted with modernc.org/sqlite (pure Go,
// no cgo, consistent with the rest of this module shipping cgo-free
// binaries).
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/deploymenttheory/go-apfs/internal/types"
)

// Index wraps a SQLite-backed dives table keyed by (file_digest, dive_index).
type Index struct {
	db *sql.DB
}

// Open opens (creating if necessary) the dive index at path and runs the
// one-time migration.
func Open(path string) (*Index, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("index: create dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("index: open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	idx := &Index{db: db}
	if err := idx.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

// Close releases the underlying database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

func (idx *Index) migrate() error {
	_, err := idx.db.Exec(`
		CREATE TABLE IF NOT EXISTS dives (
			file_digest    TEXT NOT NULL,
			dive_index     INTEGER NOT NULL,
			family         INTEGER NOT NULL,
			dive_number    INTEGER NOT NULL,
			start_epoch    INTEGER NOT NULL,
			max_depth_ft   REAL NOT NULL,
			bottom_time_s  INTEGER NOT NULL,
			PRIMARY KEY (file_digest, dive_index)
		);
		CREATE INDEX IF NOT EXISTS idx_dives_family ON dives(family);
		CREATE INDEX IF NOT EXISTS idx_dives_start_epoch ON dives(start_epoch);
	`)
	return err
}

// Record upserts one dive's logbook into the index under the given file
// digest. Called by the CLI as a side effect of DecodeService.ForEachDive
// when the caller opts into indexing.
func (idx *Index) Record(fileDigest string, diveIndex int, family types.Family, log *types.Logbook) error {
	_, err := idx.db.Exec(`
		INSERT INTO dives (file_digest, dive_index, family, dive_number, start_epoch, max_depth_ft, bottom_time_s)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_digest, dive_index) DO UPDATE SET
			family=excluded.family,
			dive_number=excluded.dive_number,
			start_epoch=excluded.start_epoch,
			max_depth_ft=excluded.max_depth_ft,
			bottom_time_s=excluded.bottom_time_s
	`, fileDigest, diveIndex, int(family), log.DiveNumber, log.StartEpoch, log.MaxDepthFt, log.BottomTimeSec)
	if err != nil {
		return fmt.Errorf("index: record dive: %w", err)
	}
	return nil
}

// Entry is one row returned by the index's list queries.
type Entry struct {
	FileDigest  string
	DiveIndex   int
	Family      types.Family
	DiveNumber  int
	StartEpoch  int64
	MaxDepthFt  float64
	BottomTimeS int
}

// ListByFamily returns every indexed dive recorded under the given family,
// ordered by start time.
func (idx *Index) ListByFamily(family types.Family) ([]Entry, error) {
	rows, err := idx.db.Query(`
		SELECT file_digest, dive_index, family, dive_number, start_epoch, max_depth_ft, bottom_time_s
		FROM dives WHERE family = ? ORDER BY start_epoch
	`, int(family))
	if err != nil {
		return nil, fmt.Errorf("index: list by family: %w", err)
	}
	return scanEntries(rows)
}

// ListByDateRange returns every indexed dive whose start_epoch falls within
// [fromEpoch, toEpoch], ordered by start time.
func (idx *Index) ListByDateRange(fromEpoch, toEpoch int64) ([]Entry, error) {
	rows, err := idx.db.Query(`
		SELECT file_digest, dive_index, family, dive_number, start_epoch, max_depth_ft, bottom_time_s
		FROM dives WHERE start_epoch BETWEEN ? AND ? ORDER BY start_epoch
	`, fromEpoch, toEpoch)
	if err != nil {
		return nil, fmt.Errorf("index: list by date range: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var family int
		if err := rows.Scan(&e.FileDigest, &e.DiveIndex, &family, &e.DiveNumber, &e.StartEpoch, &e.MaxDepthFt, &e.BottomTimeS); err != nil {
			return nil, fmt.Errorf("index: scan row: %w", err)
		}
		e.Family = types.Family(family)
		out = append(out, e)
	}
	return out, rows.Err()
}
