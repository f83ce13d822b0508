package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/export"
	"github.com/and161185/onboarding/internal/model"
	"github.com/and161185/onboarding/internal/repository"
	"github.com/and161185/onboarding/internal/schema"
)

// FormService defines operations over onboarding forms.
type FormService interface {
	// GetFormData returns the stored form or nil when nothing was saved yet.
	GetFormData(ctx context.Context, clientID uuid.UUID) (*model.OnboardingForm, error)
	// SaveFormData upserts the form of a client.
	SaveFormData(ctx context.Context, clientID uuid.UUID, data model.FormData) error
	// ClearFormData persists an empty form.
	ClearFormData(ctx context.Context, clientID uuid.UUID) error
	// ExportFormData renders the meeting document of a client.
	ExportFormData(ctx context.Context, clientID uuid.UUID, generatedAt time.Time) (string, error)
}

type FormServiceImpl struct {
	forms   repository.FormRepository
	clients repository.ClientRepository
}

// NewFormService constructs FormService.
func NewFormService(forms repository.FormRepository, clients repository.ClientRepository) *FormServiceImpl {
	return &FormServiceImpl{forms: forms, clients: clients}
}

// GetFormData normalizes a missing form to nil. A cleared form comes back with empty, non-nil Data.
func (s *FormServiceImpl) GetFormData(ctx context.Context, clientID uuid.UUID) (*model.OnboardingForm, error) {
	if clientID == uuid.Nil {
		return nil, nil
	}
	f, err := s.forms.Get(ctx, clientID)
	switch {
	case err == nil:
		if f.Data == nil {
			f.Data = model.FormData{}
		}
		return f, nil
	case errors.Is(err, errs.ErrNotFound):
		return nil, nil
	default:
		return nil, storeErr("get form", err)
	}
}

// SaveFormData validates field names and upserts keyed on client_id.
// Saving for a missing client fails with errs.ErrNotFound.
func (s *FormServiceImpl) SaveFormData(ctx context.Context, clientID uuid.UUID, data model.FormData) error {
	if clientID == uuid.Nil {
		return fmt.Errorf("%w: empty client id", errs.ErrInvalidArgument)
	}
	if err := schema.Validate(data); err != nil {
		return err
	}
	_, err := s.forms.Upsert(ctx, clientID, data.Clone())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errs.ErrNotFound):
		return fmt.Errorf("save form: client %s: %w", clientID, errs.ErrNotFound)
	default:
		return storeErr("save form", err)
	}
}

// ClearFormData overwrites the form with an empty mapping.
func (s *FormServiceImpl) ClearFormData(ctx context.Context, clientID uuid.UUID) error {
	return s.SaveFormData(ctx, clientID, model.FormData{})
}

// ExportFormData loads client and form and renders the text export.
// A client without a saved form exports as all placeholders.
func (s *FormServiceImpl) ExportFormData(ctx context.Context, clientID uuid.UUID, generatedAt time.Time) (string, error) {
	c, err := s.clients.GetByID(ctx, clientID)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrNotFound):
		return "", fmt.Errorf("export: client %s: %w", clientID, errs.ErrNotFound)
	default:
		return "", storeErr("export", err)
	}

	f, err := s.GetFormData(ctx, clientID)
	if err != nil {
		return "", err
	}
	var data model.FormData
	if f != nil {
		data = f.Data
	}
	return export.Format(data, c.Name, generatedAt)
}
