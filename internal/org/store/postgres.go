package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"navbat/internal/org/models"
	"navbat/pkg/platform/sentinel"
)

// Schema creates the organizations table. Name uniqueness is case-insensitive.
const Schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id         UUID         PRIMARY KEY,
	name       VARCHAR(128) NOT NULL,
	category   VARCHAR(64)  NOT NULL DEFAULT '',
	address    VARCHAR(256) NOT NULL DEFAULT '',
	phone      VARCHAR(32)  NOT NULL DEFAULT '',
	created_by TEXT         NOT NULL,
	created_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS organizations_name_key ON organizations (lower(name));
`

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create organizations schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, org models.Organization) (string, error) {
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	query := `
		INSERT INTO organizations (id, name, category, address, phone, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		org.ID, org.Name, org.Category, org.Address, org.Phone, org.CreatedBy, org.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", fmt.Errorf("organization %q: %w", org.Name, sentinel.ErrConflict)
		}
		return "", fmt.Errorf("insert organization: %w", err)
	}
	return org.ID, nil
}
