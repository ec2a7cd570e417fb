package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock
// satisfies it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	vendor     TEXT NOT NULL DEFAULT '',
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_records_kind ON records(kind);
CREATE INDEX IF NOT EXISTS idx_records_vendor ON records(vendor);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRecord(ctx context.Context, record Record) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO records (id, kind, vendor, payload, created_at) VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.Kind, record.Vendor, []byte(record.Payload), createdAt,
	)
	return eris.Wrapf(err, "postgres: insert record %s", record.ID)
}

func (s *PostgresStore) GetRecord(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, kind, vendor, payload, created_at FROM records WHERE id = $1`,
		id,
	)

	var r Record
	var payload []byte
	err := row.Scan(&r.ID, &r.Kind, &r.Vendor, &payload, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get record %s", id)
	}
	r.Payload = payload
	return &r, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]Record, error) {
	query := `SELECT id, kind, vendor, payload, created_at FROM records WHERE 1=1`
	var args []any

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		query += ` AND kind = $` + strconv.Itoa(len(args))
	}
	if filter.Vendor != "" {
		args = append(args, filter.Vendor)
		query += ` AND vendor = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var payload []byte
		if err := rows.Scan(&r.ID, &r.Kind, &r.Vendor, &payload, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		r.Payload = payload
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list records iterate")
}
