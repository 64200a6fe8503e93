package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Entry is one successful upload.
type Entry struct {
	RunID        string    `json:"run_id"`
	Path         string    `json:"path"`
	Checksum     string    `json:"checksum"`
	NoteGUID     string    `json:"note_guid"`
	Title        string    `json:"title"`
	NotebookGUID string    `json:"notebook_guid,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Record appends an upload entry. A zero UploadedAt is stamped with the
// current time.
func (db *DB) Record(e Entry) error {
	if e.UploadedAt.IsZero() {
		e.UploadedAt = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO uploads (run_id, path, checksum, note_guid, title, notebook_guid, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.RunID, e.Path, e.Checksum, e.NoteGUID, e.Title, e.NotebookGUID, e.UploadedAt.UTC())
	if err != nil {
		return fmt.Errorf("ledger: record %s: %w", e.Path, err)
	}
	return nil
}

// Lookup returns the most recent upload with the given content checksum,
// or nil when the content was never uploaded.
func (db *DB) Lookup(checksum string) (*Entry, error) {
	row := db.conn.QueryRow(`
		SELECT run_id, path, checksum, note_guid, title, notebook_guid, uploaded_at
		FROM uploads WHERE checksum = ?
		ORDER BY uploaded_at DESC, id DESC LIMIT 1
	`, checksum)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: lookup: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (db *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT run_id, path, checksum, note_guid, title, notebook_guid, uploaded_at
		FROM uploads ORDER BY uploaded_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Count returns the number of recorded uploads.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM uploads`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ledger: count: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	if err := s.Scan(&e.RunID, &e.Path, &e.Checksum, &e.NoteGUID, &e.Title, &e.NotebookGUID, &e.UploadedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
