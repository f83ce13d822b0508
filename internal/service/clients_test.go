package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/token"
)

func TestClientService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	s := NewClientService(memClients{st}, nil)

	c, err := s.CreateClient(ctx, "  Acme AS ")
	require.NoError(t, err)
	require.Equal(t, "Acme AS", c.Name)
	require.NotEqual(t, uuid.Nil, c.ID)
	require.Len(t, c.ShareToken, token.Length)
	require.True(t, token.Valid(c.ShareToken))
	require.Equal(t, time.UTC, c.CreatedAt.Location())

	got, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c, got)

	byTok, err := s.GetClientByShareToken(ctx, c.ShareToken)
	require.NoError(t, err)
	require.Equal(t, c.ID, byTok.ID)
}

func TestClientService_CreateRejectsEmptyName(t *testing.T) {
	s := NewClientService(memClients{newMemStore()}, nil)
	_, err := s.CreateClient(context.Background(), " \t ")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestClientService_CreateRetriesTokenCollision(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	s := NewClientService(memClients{st}, nil)

	toks := []string{strings.Repeat("A", 32), strings.Repeat("A", 32), strings.Repeat("B", 32)}
	s.newToken = func() (string, error) {
		tok := toks[0]
		toks = toks[1:]
		return tok, nil
	}

	first, err := s.CreateClient(ctx, "first")
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("A", 32), first.ShareToken)

	second, err := s.CreateClient(ctx, "second")
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("B", 32), second.ShareToken)
}

func TestClientService_CreateGivesUpAfterAttempts(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	s := NewClientService(memClients{st}, nil)
	s.newToken = func() (string, error) { return strings.Repeat("A", 32), nil }

	_, err := s.CreateClient(ctx, "first")
	require.NoError(t, err)
	_, err = s.CreateClient(ctx, "second")
	require.ErrorIs(t, err, errs.ErrStore)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestClientService_NotFoundIsNil(t *testing.T) {
	ctx := context.Background()
	s := NewClientService(memClients{newMemStore()}, nil)

	c, err := s.GetClient(ctx, uuid.Must(uuid.NewV4()))
	require.NoError(t, err)
	require.Nil(t, c)

	c, err = s.GetClient(ctx, uuid.Nil)
	require.NoError(t, err)
	require.Nil(t, c)

	// unknown and malformed tokens look the same
	c, err = s.GetClientByShareToken(ctx, strings.Repeat("z", 32))
	require.NoError(t, err)
	require.Nil(t, c)
	c, err = s.GetClientByShareToken(ctx, "not a token")
	require.NoError(t, err)
	require.Nil(t, c)
}

func TestClientService_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	s := NewClientService(memClients{st}, nil)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	for _, n := range []string{"a", "b", "c"} {
		_, err := s.CreateClient(ctx, n)
		require.NoError(t, err)
	}
	list, err := s.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, []string{"c", "b", "a"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestClientService_StoreErrorsWrapped(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	st.failWith = errors.New("connection refused")
	s := NewClientService(memClients{st}, nil)

	_, err := s.ListClients(ctx)
	require.ErrorIs(t, err, errs.ErrStore)
	_, err = s.GetClient(ctx, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrStore)
	_, err = s.GetClientByShareToken(ctx, "x")
	require.ErrorIs(t, err, errs.ErrStore)
	require.ErrorIs(t, s.DeleteClient(ctx, uuid.Must(uuid.NewV4())), errs.ErrStore)
}

func TestClientService_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	s := NewClientService(memClients{st}, nil)

	c, err := s.CreateClient(ctx, "Acme AS")
	require.NoError(t, err)
	require.NoError(t, s.DeleteClient(ctx, c.ID))
	require.NoError(t, s.DeleteClient(ctx, c.ID))

	got, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestResolveShareLink_LocksOutAfterFailures(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	lim := &fakeLimiter{maxFails: 3}
	s := NewClientService(memClients{st}, lim)

	c, err := s.CreateClient(ctx, "Acme AS")
	require.NoError(t, err)

	got, err := s.ResolveShareLink(ctx, c.ShareToken, "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)
	require.Equal(t, 1, lim.successes)

	for i := 0; i < 2; i++ {
		got, err = s.ResolveShareLink(ctx, "unknown", "10.0.0.1")
		require.NoError(t, err)
		require.Nil(t, got)
	}
	_, err = s.ResolveShareLink(ctx, "unknown", "10.0.0.1")
	require.ErrorIs(t, err, errs.ErrRateLimited)

	// even a valid token is refused while locked out
	_, err = s.ResolveShareLink(ctx, c.ShareToken, "10.0.0.1")
	require.ErrorIs(t, err, errs.ErrRateLimited)
}

func TestResolveShareLink_LimiterError(t *testing.T) {
	s := NewClientService(memClients{newMemStore()}, &fakeLimiter{allowErr: errors.New("db down")})
	_, err := s.ResolveShareLink(context.Background(), "x", "10.0.0.1")
	require.ErrorIs(t, err, errs.ErrStore)
}

func TestResolveShareLink_FailureRecordError(t *testing.T) {
	s := NewClientService(memClients{newMemStore()}, &fakeLimiter{maxFails: 3, failErr: errors.New("table missing")})
	got, err := s.ResolveShareLink(context.Background(), "unknown", "10.0.0.1")
	require.ErrorIs(t, err, errs.ErrStore)
	require.ErrorContains(t, err, "table missing")
	require.Nil(t, got)
}

func TestResolveShareLink_ResetErrorIsLogged(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	lim := &fakeLimiter{maxFails: 3, resetErr: errors.New("table missing")}
	s := NewClientService(memClients{newMemStore()}, lim).WithLogger(zap.New(core))

	c, err := s.CreateClient(ctx, "Acme AS")
	require.NoError(t, err)

	got, err := s.ResolveShareLink(ctx, c.ShareToken, "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)

	entries := logs.FilterMessage("share limiter reset failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, "table missing", entries[0].ContextMap()["error"])
}

func TestClientService_CreateRejectsMalformedToken(t *testing.T) {
	st := newMemStore()
	s := NewClientService(memClients{st}, nil)
	s.newToken = func() (string, error) { return "short", nil }

	_, err := s.CreateClient(context.Background(), "Acme AS")
	require.ErrorContains(t, err, "malformed token")

	cs, err := s.ListClients(context.Background())
	require.NoError(t, err)
	require.Empty(t, cs)
}
