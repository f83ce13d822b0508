package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/onboarding/internal/clipboard"
	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/export"
	"github.com/and161185/onboarding/internal/model"
	"github.com/and161185/onboarding/internal/schema"
	"github.com/and161185/onboarding/internal/token"
)

// fakeBackend is an in-memory backend with the same not-found conventions as the gRPC client.
type fakeBackend struct {
	mu      sync.Mutex
	clients map[uuid.UUID]model.Client
	forms   map[uuid.UUID]model.FormData
	saves   int
	closed  bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{clients: map[uuid.UUID]model.Client{}, forms: map[uuid.UUID]model.FormData{}}
}

func (f *fakeBackend) add(name string) model.Client {
	tok, _ := token.New()
	c := model.Client{ID: uuid.Must(uuid.NewV4()), Name: name, ShareToken: tok, CreatedAt: time.Now().UTC()}
	f.mu.Lock()
	f.clients[c.ID] = c
	f.mu.Unlock()
	return c
}

func (f *fakeBackend) form(id uuid.UUID) (model.FormData, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.forms[id]
	return d.Clone(), ok
}

func (f *fakeBackend) ListClients(context.Context) ([]model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Client, 0, len(f.clients))
	for _, c := range f.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeBackend) GetClient(_ context.Context, id uuid.UUID) (*model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeBackend) GetClientByShareToken(_ context.Context, tok string) (*model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clients {
		if c.ShareToken == tok {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) CreateClient(_ context.Context, name string) (*model.Client, error) {
	if name == "" {
		return nil, errs.ErrInvalidArgument
	}
	c := f.add(name)
	return &c, nil
}

func (f *fakeBackend) DeleteClient(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, id)
	delete(f.forms, id)
	return nil
}

func (f *fakeBackend) GetFormData(_ context.Context, id uuid.UUID) (*model.OnboardingForm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.forms[id]
	if !ok {
		return nil, nil
	}
	return &model.OnboardingForm{ClientID: id, Data: d.Clone()}, nil
}

func (f *fakeBackend) SaveFormData(_ context.Context, id uuid.UUID, data model.FormData) error {
	if err := schema.Validate(data); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[id]; !ok {
		return errs.ErrNotFound
	}
	f.forms[id] = data.Clone()
	f.saves++
	return nil
}

func (f *fakeBackend) ClearFormData(ctx context.Context, id uuid.UUID) error {
	return f.SaveFormData(ctx, id, model.FormData{})
}

func (f *fakeBackend) ExportFormData(_ context.Context, id uuid.UUID, at time.Time) (string, error) {
	f.mu.Lock()
	c, ok := f.clients[id]
	d := f.forms[id]
	f.mu.Unlock()
	if !ok {
		return "", errs.ErrNotFound
	}
	return export.Format(d, c.Name, at)
}

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

type fakeCopier struct {
	method clipboard.Method
	err    error
	got    []string
}

func (c *fakeCopier) Copy(text string) (clipboard.Method, error) {
	c.got = append(c.got, text)
	return c.method, c.err
}
