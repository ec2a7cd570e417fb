package store

import (
	"context"
	"encoding/json"
	"time"
)

// Record kinds persisted by the store.
const (
	KindAudit = "audit"
	KindRFQ   = "rfq"
)

// Record is one persisted analysis result. Payload is the full result
// document as produced by the analysis, stored opaquely; Kind and Vendor
// are lifted out for filtering.
type Record struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Vendor    string          `json:"vendor,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// RecordFilter specifies criteria for listing records.
type RecordFilter struct {
	Kind   string `json:"kind,omitempty"`
	Vendor string `json:"vendor,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the append-only persistence interface for analysis
// results. Records are never updated or deleted; GetRecord returns
// (nil, nil) when the ID is unknown.
type Store interface {
	CreateRecord(ctx context.Context, record Record) error
	GetRecord(ctx context.Context, id string) (*Record, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]Record, error)

	Migrate(ctx context.Context) error
	Close() error
}
