// Package service contains the data access layer over client and form repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/limiter"
	"github.com/and161185/onboarding/internal/model"
	"github.com/and161185/onboarding/internal/repository"
	"github.com/and161185/onboarding/internal/token"
)

// ClientService defines operations over client records.
type ClientService interface {
	// ListClients returns all clients, newest created first.
	ListClients(ctx context.Context) ([]model.Client, error)
	// GetClient returns the client or nil when it does not exist.
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	// GetClientByShareToken returns the client owning token or nil.
	GetClientByShareToken(ctx context.Context, tok string) (*model.Client, error)
	// CreateClient stores a new client with a fresh share token.
	CreateClient(ctx context.Context, name string) (*model.Client, error)
	// DeleteClient removes the client and its form; missing ids are not an error.
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

// createAttempts bounds retries on share token collisions.
const createAttempts = 3

type ClientServiceImpl struct {
	repo     repository.ClientRepository
	lim      limiter.Limiter
	newToken func() (string, error)
	now      func() time.Time
	log      *zap.Logger
}

// NewClientService constructs ClientService. lim may be nil to disable share lookup limiting.
func NewClientService(repo repository.ClientRepository, lim limiter.Limiter) *ClientServiceImpl {
	return &ClientServiceImpl{repo: repo, lim: lim, newToken: token.New, now: time.Now, log: zap.NewNop()}
}

// WithLogger sets the logger used for limiter bookkeeping failures.
func (s *ClientServiceImpl) WithLogger(log *zap.Logger) *ClientServiceImpl {
	if log != nil {
		s.log = log
	}
	return s
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, errs.ErrStore, err)
}

// ListClients returns all clients, newest first.
func (s *ClientServiceImpl) ListClients(ctx context.Context) ([]model.Client, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list clients", err)
	}
	return out, nil
}

// GetClient normalizes a missing row to a nil client.
func (s *ClientServiceImpl) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	c, err := s.repo.GetByID(ctx, id)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, errs.ErrNotFound):
		return nil, nil
	default:
		return nil, storeErr("get client", err)
	}
}

// GetClientByShareToken looks the token up by digest. Malformed tokens take the same
// path as unknown ones so the response does not tell them apart.
func (s *ClientServiceImpl) GetClientByShareToken(ctx context.Context, tok string) (*model.Client, error) {
	c, err := s.repo.GetByShareTokenDigest(ctx, token.Digest(tok))
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, errs.ErrNotFound):
		return nil, nil
	default:
		return nil, storeErr("get client by token", err)
	}
}

// CreateClient trims name, rejects empty names and retries token collisions.
func (s *ClientServiceImpl) CreateClient(ctx context.Context, name string) (*model.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty client name", errs.ErrInvalidArgument)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		tok, err := s.newToken()
		if err != nil {
			return nil, fmt.Errorf("generate share token: %w", err)
		}
		if !token.Valid(tok) {
			return nil, fmt.Errorf("generate share token: malformed token of length %d", len(tok))
		}
		c := &model.Client{
			ID:         id,
			Name:       name,
			ShareToken: tok,
			CreatedAt:  s.now().UTC(),
		}
		err = s.repo.Create(ctx, c, token.Digest(tok))
		switch {
		case err == nil:
			return c, nil
		case errors.Is(err, errs.ErrAlreadyExists) && attempt < createAttempts:
			continue
		default:
			return nil, storeErr("create client", err)
		}
	}
}

// DeleteClient removes the client; its form goes with it by cascade.
func (s *ClientServiceImpl) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr("delete client", err)
	}
	return nil
}

// ResolveShareLink serves the public link: lookups from an address that keeps
// presenting unknown tokens are locked out for a while.
func (s *ClientServiceImpl) ResolveShareLink(ctx context.Context, tok, remoteIP string) (*model.Client, error) {
	if s.lim == nil {
		return s.GetClientByShareToken(ctx, tok)
	}
	ipHash := limiter.HashIP(remoteIP)

	allowed, _, err := s.lim.Allow(ctx, ipHash)
	if err != nil {
		return nil, storeErr("share limiter", err)
	}
	if !allowed {
		return nil, errs.ErrRateLimited
	}

	c, err := s.GetClientByShareToken(ctx, tok)
	if err != nil {
		return nil, err
	}
	if c == nil {
		blocked, _, err := s.lim.Failure(ctx, ipHash)
		if err != nil {
			return nil, storeErr("share limiter", err)
		}
		if blocked {
			return nil, errs.ErrRateLimited
		}
		return nil, nil
	}

	// a failed reset only delays unblocking; the lookup itself succeeded
	if err := s.lim.Success(ctx, ipHash); err != nil {
		s.log.Warn("share limiter reset failed", zap.Error(err))
	}
	return c, nil
}
