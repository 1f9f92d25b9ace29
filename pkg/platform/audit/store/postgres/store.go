package postgres

import (
	"context"
	"database/sql"
	"fmt"

	audit "navbat/pkg/platform/audit"
)

var (
	_ audit.Sink   = (*Store)(nil)
	_ audit.Reader = (*Store)(nil)
)

// Schema creates the append-only audit table. The application role should be
// granted INSERT and SELECT only; there is no UPDATE or DELETE path.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	seq        BIGSERIAL PRIMARY KEY,
	id         UUID        NOT NULL UNIQUE,
	ts         BIGINT      NOT NULL,
	action     TEXT        NOT NULL,
	actor      TEXT        NOT NULL,
	target     TEXT        NOT NULL,
	status     TEXT        NOT NULL CHECK (status IN ('SUCCESS', 'FAILED', 'CRITICAL')),
	reason     TEXT        NOT NULL DEFAULT '',
	request_id TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_records_ts_idx ON audit_records (ts DESC, seq DESC);
`

// Store is a PostgreSQL audit sink. Appends are single-row INSERTs, so each
// record is atomic and concurrent appends never interleave.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store on an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the audit table if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Append inserts a record. Re-delivery of the same record ID is ignored, which
// keeps the Kafka materializer idempotent.
func (s *Store) Append(ctx context.Context, record audit.Record) error {
	query := `
		INSERT INTO audit_records (id, ts, action, actor, target, status, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Timestamp,
		string(record.Action),
		record.Actor,
		record.Target,
		string(record.Status),
		record.Reason,
		record.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListRecent returns the N most recent records.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Record, error) {
	query := `
		SELECT id, ts, action, actor, target, status, reason, request_id
		FROM audit_records
		ORDER BY ts DESC, seq DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]audit.Record, error) {
	records := []audit.Record{}
	for rows.Next() {
		var (
			record audit.Record
			action string
			status string
		)
		if err := rows.Scan(
			&record.ID,
			&record.Timestamp,
			&action,
			&record.Actor,
			&record.Target,
			&status,
			&record.Reason,
			&record.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		parsed, err := audit.ParseAction(action)
		if err != nil {
			return nil, fmt.Errorf("scan audit record %s: %w", record.ID, err)
		}
		record.Action = parsed
		record.Status = audit.Status(status)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

// Close is a no-op; the database handle is owned by the caller.
func (s *Store) Close() error { return nil }

func (s *Store) Name() string { return "postgres" }
