package audit

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Archive is a sqlite-backed index over persisted ledger entries. The JSONL
// sink stays the tamper-evident source of truth; the archive exists for
// fast time-range and kind queries over long histories.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (or creates) an archive database at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open archive: %w", err)
	}
	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS entries (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		kind      TEXT NOT NULL,
		ts        TEXT NOT NULL,
		trace_id  TEXT NOT NULL DEFAULT '',
		payload   JSON,
		prev_hash TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_entries_ts ON entries (ts);
	CREATE INDEX IF NOT EXISTS idx_entries_kind ON entries (kind);`
	_, err := a.db.ExecContext(context.Background(), query)
	if err != nil {
		return fmt.Errorf("audit: migrate archive: %w", err)
	}
	return nil
}

// Insert stores one entry.
func (a *Archive) Insert(ctx context.Context, e Entry) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO entries (kind, ts, trace_id, payload, prev_hash) VALUES (?, ?, ?, ?, ?)`,
		string(e.Kind), e.Timestamp, e.TraceID, []byte(e.Payload), e.PrevHash)
	if err != nil {
		return fmt.Errorf("audit: insert entry: %w", err)
	}
	return nil
}

// ImportFile replays a JSONL sink file into the archive, skipping corrupt
// lines. Returns the number of entries imported.
func (a *Archive) ImportFile(ctx context.Context, path string) (int, error) {
	result, err := Replay(path, ReplayFilter{})
	if err != nil {
		return 0, err
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("audit: begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (kind, ts, trace_id, payload, prev_hash) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("audit: prepare import: %w", err)
	}
	defer stmt.Close()

	for _, e := range result.Entries {
		if _, err := stmt.ExecContext(ctx, string(e.Kind), e.Timestamp, e.TraceID, []byte(e.Payload), e.PrevHash); err != nil {
			return 0, fmt.Errorf("audit: import entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("audit: commit import: %w", err)
	}
	return len(result.Entries), nil
}

// Query returns archived entries matching the filter, ordered by timestamp
// then insertion order.
func (a *Archive) Query(ctx context.Context, f QueryFilter) ([]Entry, error) {
	query := `SELECT kind, ts, trace_id, payload, prev_hash FROM entries WHERE 1=1`
	var args []any
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	if f.Start != "" {
		query += ` AND ts >= ?`
		args = append(args, f.Start)
	}
	if f.End != "" {
		query += ` AND ts <= ?`
		args = append(args, f.End)
	}
	query += ` ORDER BY ts, id`

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query archive: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var kind string
		var payload []byte
		if err := rows.Scan(&kind, &e.Timestamp, &e.TraceID, &payload, &e.PrevHash); err != nil {
			return nil, fmt.Errorf("audit: scan entry: %w", err)
		}
		e.Kind = Kind(kind)
		e.Payload = payload
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
