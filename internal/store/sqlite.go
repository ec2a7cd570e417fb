package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	vendor     TEXT NOT NULL DEFAULT '',
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_records_kind ON records(kind);
CREATE INDEX IF NOT EXISTS idx_records_vendor ON records(vendor);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRecord(ctx context.Context, record Record) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (id, kind, vendor, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.Kind, record.Vendor, string(record.Payload), createdAt,
	)
	return eris.Wrapf(err, "sqlite: insert record %s", record.ID)
}

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, vendor, payload, created_at FROM records WHERE id = ?`,
		id,
	)

	var r Record
	var payload string
	err := row.Scan(&r.ID, &r.Kind, &r.Vendor, &payload, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get record %s", id)
	}
	r.Payload = []byte(payload)
	return &r, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]Record, error) {
	query := `SELECT id, kind, vendor, payload, created_at FROM records WHERE 1=1`
	var args []any

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filter.Kind)
	}
	if filter.Vendor != "" {
		query += ` AND vendor = ?`
		args = append(args, filter.Vendor)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var payload string
		if err := rows.Scan(&r.ID, &r.Kind, &r.Vendor, &payload, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		r.Payload = []byte(payload)
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}
