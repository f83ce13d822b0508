package limiter

import (
	"context"
	"sync"
	"time"
)

type attemptState struct {
	fails        []time.Time
	blockedUntil time.Time
}

// Memory is an in-process limiter for single-node deployments (SQLite store, tests).
type Memory struct {
	mu       sync.Mutex
	state    map[string]*attemptState
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

// NewMemory constructs an in-memory limiter.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	return &Memory{
		state:    make(map[string]*attemptState),
		window:   window,
		maxFails: maxFails,
		blockFor: blockFor,
		now:      time.Now,
	}
}

// Allow reports whether lookups are allowed and a retry-after duration.
func (m *Memory) Allow(_ context.Context, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.state[string(ipHash)]
	if !ok {
		return true, 0, nil
	}
	if now := m.now(); st.blockedUntil.After(now) {
		return false, st.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success forgets the caller.
func (m *Memory) Success(_ context.Context, ipHash []byte) error {
	m.mu.Lock()
	delete(m.state, string(ipHash))
	m.mu.Unlock()
	return nil
}

// Failure records an unknown token inside the sliding window.
func (m *Memory) Failure(_ context.Context, ipHash []byte) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	st, ok := m.state[string(ipHash)]
	if !ok {
		st = &attemptState{}
		m.state[string(ipHash)] = st
	}
	cutoff := now.Add(-m.window)
	kept := st.fails[:0]
	for _, ts := range st.fails {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	st.fails = append(kept, now)

	if len(st.fails) < m.maxFails {
		return false, 0, nil
	}
	st.fails = st.fails[:0]
	st.blockedUntil = now.Add(m.blockFor)
	return true, m.blockFor, nil
}

// Prune drops callers with no recent failures and no active block.
func (m *Memory) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-m.window)
	for k, st := range m.state {
		if st.blockedUntil.After(now) {
			continue
		}
		if len(st.fails) == 0 || !st.fails[len(st.fails)-1].After(cutoff) {
			delete(m.state, k)
		}
	}
}
