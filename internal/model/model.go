// Package model defines domain entities used by services and repositories.
package model

import (
	"maps"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Client is an agency customer being onboarded.
type Client struct {
	ID         uuid.UUID // PK
	Name       string
	ShareToken string // 32 chars [A-Za-z0-9], set once at creation
	CreatedAt  time.Time
}

// ShareURL builds the public link for the client's share token.
func (c Client) ShareURL(base string) string {
	return strings.TrimRight(base, "/") + "/kundeskjema/" + c.ShareToken
}

// FormData is the flat set of onboarding answers keyed by schema field name.
// Every value is free text, including yes/no answers and amounts.
type FormData map[string]string

// Clone returns an independent copy; a nil receiver yields an empty, non-nil map.
func (d FormData) Clone() FormData {
	out := make(FormData, len(d))
	maps.Copy(out, d)
	return out
}

// OnboardingForm is the single stored questionnaire of a client.
type OnboardingForm struct {
	ID        uuid.UUID
	ClientID  uuid.UUID // unique, FK -> clients.id (cascade)
	Data      FormData  // never nil for a loaded form
	CreatedAt time.Time
	UpdatedAt time.Time
}
