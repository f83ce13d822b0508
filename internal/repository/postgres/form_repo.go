package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// FormRepo implements FormRepository using PostgreSQL (form_data is JSONB).
type FormRepo struct{ db *DB }

// NewFormRepo constructs a form repository.
func NewFormRepo(db *DB) *FormRepo { return &FormRepo{db: db} }

// Get loads the form of a client.
func (r *FormRepo) Get(ctx context.Context, clientID uuid.UUID) (*model.OnboardingForm, error) {
	const q = `
SELECT id, client_id, form_data, created_at, updated_at
FROM onboarding_forms WHERE client_id=$1`
	var (
		f   model.OnboardingForm
		raw []byte
	)
	err := r.db.Pool.QueryRow(ctx, q, clientID).Scan(&f.ID, &f.ClientID, &raw, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	f.Data = model.FormData{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.Data); err != nil {
			return nil, fmt.Errorf("decode form_data: %w", err)
		}
	}
	return &f, nil
}

// Upsert inserts or overwrites the form keyed on client_id.
func (r *FormRepo) Upsert(ctx context.Context, clientID uuid.UUID, data model.FormData) (time.Time, error) {
	const q = `
INSERT INTO onboarding_forms (id, client_id, form_data)
VALUES ($1, $2, $3)
ON CONFLICT (client_id)
DO UPDATE SET form_data=EXCLUDED.form_data, updated_at=now()
RETURNING updated_at`
	raw, err := json.Marshal(data.Clone())
	if err != nil {
		return time.Time{}, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return time.Time{}, err
	}
	var updated time.Time
	if err := r.db.Pool.QueryRow(ctx, q, id, clientID, raw).Scan(&updated); err != nil {
		if isForeignKeyViolation(err) {
			return time.Time{}, errs.ErrNotFound
		}
		return time.Time{}, err
	}
	return updated, nil
}
