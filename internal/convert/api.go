// Package convert maps domain models to and from API wire messages.
package convert

import (
	"fmt"
	"time"

	u "github.com/gofrs/uuid/v5"

	"github.com/and161185/onboarding/internal/api"
	"github.com/and161185/onboarding/internal/errs"
	model "github.com/and161185/onboarding/internal/model"
)

// ToAPIClient converts a domain client. publicURL may be empty to omit the share link.
func ToAPIClient(c model.Client, publicURL string) api.Client {
	out := api.Client{
		ID:         c.ID.String(),
		Name:       c.Name,
		ShareToken: c.ShareToken,
		CreatedAt:  c.CreatedAt,
	}
	if publicURL != "" {
		out.ShareURL = c.ShareURL(publicURL)
	}
	return out
}

// ToAPIClients converts a list, keeping order. Never returns nil.
func ToAPIClients(cs []model.Client, publicURL string) []api.Client {
	out := make([]api.Client, 0, len(cs))
	for _, c := range cs {
		out = append(out, ToAPIClient(c, publicURL))
	}
	return out
}

// FromAPIClient converts a wire client back to the domain model.
func FromAPIClient(in api.Client) (model.Client, error) {
	id, err := ParseID(in.ID)
	if err != nil {
		return model.Client{}, err
	}
	return model.Client{
		ID:         id,
		Name:       in.Name,
		ShareToken: in.ShareToken,
		CreatedAt:  in.CreatedAt,
	}, nil
}

// ToAPIForm converts a domain form. Data is never nil on the wire.
func ToAPIForm(f model.OnboardingForm) api.Form {
	return api.Form{
		ID:        f.ID.String(),
		ClientID:  f.ClientID.String(),
		Data:      f.Data.Clone(),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// FromAPIForm converts a wire form back to the domain model.
func FromAPIForm(in api.Form) (model.OnboardingForm, error) {
	clientID, err := ParseID(in.ClientID)
	if err != nil {
		return model.OnboardingForm{}, err
	}
	var id u.UUID
	if in.ID != "" {
		if id, err = ParseID(in.ID); err != nil {
			return model.OnboardingForm{}, err
		}
	}
	return model.OnboardingForm{
		ID:        id,
		ClientID:  clientID,
		Data:      model.FormData(in.Data).Clone(),
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
	}, nil
}

// ParseID parses a client or form id, wrapping failures as errs.ErrInvalidArgument.
func ParseID(s string) (u.UUID, error) {
	id, err := u.FromString(s)
	if err != nil {
		return u.Nil, fmt.Errorf("%w: bad id %q", errs.ErrInvalidArgument, s)
	}
	return id, nil
}

// GeneratedAt picks the export timestamp: the requested one, or now.
func GeneratedAt(requested time.Time, now time.Time) time.Time {
	if requested.IsZero() {
		return now
	}
	return requested
}
