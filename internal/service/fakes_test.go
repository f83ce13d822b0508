package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/model"
	"github.com/and161185/onboarding/internal/repository"
)

// memStore is an in-memory implementation of both repositories.
type memStore struct {
	mu       sync.Mutex
	clients  map[uuid.UUID]model.Client
	digests  map[string]uuid.UUID
	forms    map[uuid.UUID]*model.OnboardingForm
	upserts  int
	failWith error
}

var (
	_ repository.ClientRepository = (*memClients)(nil)
	_ repository.FormRepository   = (*memForms)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		clients: map[uuid.UUID]model.Client{},
		digests: map[string]uuid.UUID{},
		forms:   map[uuid.UUID]*model.OnboardingForm{},
	}
}

type memClients struct{ *memStore }
type memForms struct{ *memStore }

func (m memClients) List(context.Context) ([]model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]model.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memClients) GetByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	c, ok := m.clients[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &c, nil
}

func (m memClients) GetByShareTokenDigest(_ context.Context, digest []byte) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	id, ok := m.digests[string(digest)]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := m.clients[id]
	return &c, nil
}

func (m memClients) Create(_ context.Context, c *model.Client, digest []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, taken := m.digests[string(digest)]; taken {
		return errs.ErrAlreadyExists
	}
	m.clients[c.ID] = *c
	m.digests[string(digest)] = c.ID
	return nil
}

func (m memClients) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if c, ok := m.clients[id]; ok {
		for d, cid := range m.digests {
			if cid == c.ID {
				delete(m.digests, d)
			}
		}
	}
	delete(m.clients, id)
	delete(m.forms, id)
	return nil
}

func (m memForms) Get(_ context.Context, clientID uuid.UUID) (*model.OnboardingForm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	f, ok := m.forms[clientID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *f
	cp.Data = f.Data.Clone()
	return &cp, nil
}

func (m memForms) Upsert(_ context.Context, clientID uuid.UUID, data model.FormData) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return time.Time{}, m.failWith
	}
	if _, ok := m.clients[clientID]; !ok {
		return time.Time{}, errs.ErrNotFound
	}
	m.upserts++
	now := time.Now()
	if f, ok := m.forms[clientID]; ok {
		f.Data = data.Clone()
		f.UpdatedAt = now
		return now, nil
	}
	m.forms[clientID] = &model.OnboardingForm{
		ID:        uuid.Must(uuid.NewV4()),
		ClientID:  clientID,
		Data:      data.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return now, nil
}

// fakeLimiter blocks after maxFails failures.
type fakeLimiter struct {
	maxFails  int
	fails     int
	blocked   bool
	successes int
	allowErr  error
	failErr   error
	resetErr  error
}

func (f *fakeLimiter) Allow(context.Context, []byte) (bool, time.Duration, error) {
	if f.allowErr != nil {
		return false, 0, f.allowErr
	}
	if f.blocked {
		return false, time.Minute, nil
	}
	return true, 0, nil
}

func (f *fakeLimiter) Success(context.Context, []byte) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	f.fails = 0
	f.successes++
	return nil
}

func (f *fakeLimiter) Failure(context.Context, []byte) (bool, time.Duration, error) {
	if f.failErr != nil {
		return false, 0, f.failErr
	}
	f.fails++
	if f.fails >= f.maxFails {
		f.blocked = true
		return true, time.Minute, nil
	}
	return false, 0, nil
}
