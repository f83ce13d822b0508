package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/model"
	"github.com/gofrs/uuid/v5"
)

// FormRepo implements FormRepository using SQLite (form_data is JSON text).
type FormRepo struct {
	db  *DB
	now func() time.Time
}

// NewFormRepo constructs a form repository.
func NewFormRepo(db *DB) *FormRepo { return &FormRepo{db: db, now: time.Now} }

// Get loads the form of a client.
func (r *FormRepo) Get(ctx context.Context, clientID uuid.UUID) (*model.OnboardingForm, error) {
	const q = `
SELECT id, client_id, form_data, created_at, updated_at
FROM onboarding_forms WHERE client_id=?`
	var (
		f   model.OnboardingForm
		raw string
	)
	err := r.db.SQL.QueryRowContext(ctx, q, clientID).Scan(&f.ID, &f.ClientID, &raw, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	f.Data = model.FormData{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &f.Data); err != nil {
			return nil, fmt.Errorf("decode form_data: %w", err)
		}
	}
	return &f, nil
}

// Upsert inserts or overwrites the form keyed on client_id.
func (r *FormRepo) Upsert(ctx context.Context, clientID uuid.UUID, data model.FormData) (time.Time, error) {
	const q = `
INSERT INTO onboarding_forms (id, client_id, form_data, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (client_id)
DO UPDATE SET form_data=excluded.form_data, updated_at=excluded.updated_at`
	raw, err := json.Marshal(data.Clone())
	if err != nil {
		return time.Time{}, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return time.Time{}, err
	}
	now := r.now().UTC()
	if _, err := r.db.SQL.ExecContext(ctx, q, id, clientID, string(raw), now, now); err != nil {
		if isForeignKeyViolation(err) {
			return time.Time{}, errs.ErrNotFound
		}
		return time.Time{}, err
	}
	return now, nil
}
