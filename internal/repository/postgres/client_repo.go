package postgres

import (
	"context"
	"errors"

	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// ClientRepo implements ClientRepository using PostgreSQL.
type ClientRepo struct{ db *DB }

// NewClientRepo constructs a client repository.
func NewClientRepo(db *DB) *ClientRepo { return &ClientRepo{db: db} }

// List returns all clients ordered by creation time, newest first.
func (r *ClientRepo) List(ctx context.Context) ([]model.Client, error) {
	const q = `
SELECT id, name, share_token, created_at
FROM clients
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Client{}
	for rows.Next() {
		var c model.Client
		if err = rows.Scan(&c.ID, &c.Name, &c.ShareToken, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID selects a client by ID.
func (r *ClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	const q = `
SELECT id, name, share_token, created_at
FROM clients WHERE id=$1`
	return r.one(ctx, q, id)
}

// GetByShareTokenDigest selects a client by the digest of its share token.
func (r *ClientRepo) GetByShareTokenDigest(ctx context.Context, digest []byte) (*model.Client, error) {
	const q = `
SELECT id, name, share_token, created_at
FROM clients WHERE share_token_hash=$1`
	return r.one(ctx, q, digest)
}

func (r *ClientRepo) one(ctx context.Context, q string, arg any) (*model.Client, error) {
	var c model.Client
	if err := r.db.Pool.QueryRow(ctx, q, arg).Scan(&c.ID, &c.Name, &c.ShareToken, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new client row.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client, tokenDigest []byte) error {
	const q = `
INSERT INTO clients (id, name, share_token, share_token_hash, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, c.ID, c.Name, c.ShareToken, tokenDigest, c.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Delete removes a client; onboarding_forms rows go with it via ON DELETE CASCADE.
func (r *ClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM clients WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id)
	return err
}
