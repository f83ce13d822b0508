// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/onboarding/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ClientRepository provides access to client records.
type ClientRepository interface {
	// List returns all clients, newest created first.
	List(ctx context.Context) ([]model.Client, error)
	// GetByID loads a client by ID; errs.ErrNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	// GetByShareTokenDigest loads a client by the digest of its share token; errs.ErrNotFound when absent.
	GetByShareTokenDigest(ctx context.Context, digest []byte) (*model.Client, error)
	// Create inserts a new client; errs.ErrAlreadyExists on a token collision.
	Create(ctx context.Context, c *model.Client, tokenDigest []byte) error
	// Delete removes a client and, by cascade, its form. Missing rows are not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

// FormRepository provides access to onboarding forms, one per client.
type FormRepository interface {
	// Get loads the form of a client; errs.ErrNotFound when none was saved yet.
	Get(ctx context.Context, clientID uuid.UUID) (*model.OnboardingForm, error)
	// Upsert stores data keyed on client_id and returns the new updated_at.
	// errs.ErrNotFound when the client does not exist.
	Upsert(ctx context.Context, clientID uuid.UUID, data model.FormData) (time.Time, error)
}
