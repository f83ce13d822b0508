// Package autosave holds the in-memory state of one open onboarding form and
// persists it with a trailing-edge debounce.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/model"
	"github.com/and161185/onboarding/internal/schema"
)

// Default timings.
const (
	DefaultQuiet    = time.Second
	DefaultSavedFor = 2 * time.Second
)

var (
	// ErrLoading is returned for edits made before the stored form was loaded.
	ErrLoading = errors.New("autosave: form is still loading")
	// ErrNotConfirmed is returned when a clear was not confirmed.
	ErrNotConfirmed = errors.New("autosave: clear not confirmed")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("autosave: session closed")
)

// Store is the part of the data access layer a session needs.
type Store interface {
	GetFormData(ctx context.Context, clientID uuid.UUID) (*model.OnboardingForm, error)
	SaveFormData(ctx context.Context, clientID uuid.UUID, data model.FormData) error
}

// State is the persistence state of a session.
type State int

const (
	Loading State = iota
	Idle
	Dirty
	Saving
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Idle:
		return "idle"
	case Dirty:
		return "dirty"
	case Saving:
		return "saving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is a point-in-time view of a session.
type Status struct {
	State State
	// Saved is the transient indicator shown after a successful save.
	Saved bool
	// LastErr is the error of the most recent failed save, cleared by the next success.
	LastErr error
}

// Options tune a session. Zero values pick the defaults.
type Options struct {
	Quiet    time.Duration
	SavedFor time.Duration
	Logger   *zap.Logger
	// OnStatus is called after every status change, outside the session lock.
	OnStatus func(Status)
}

// Session is the form state of one client plus its autosave timer.
// It is safe for concurrent use.
type Session struct {
	store    Store
	clientID uuid.UUID
	opts     Options
	log      *zap.Logger

	mu         sync.Mutex
	state      State
	saved      bool
	lastErr    error
	fields     model.FormData
	gen        uint64 // bumped on every edit
	savedGen   uint64 // generation of the last persisted snapshot
	timer      *time.Timer
	savedTimer *time.Timer
	closed     bool
	inflight   sync.WaitGroup

	// saveMu keeps a single store call in flight.
	saveMu sync.Mutex
}

// New returns a session in the Loading state. Call Start to load the stored form.
func New(store Store, clientID uuid.UUID, opts Options) *Session {
	if opts.Quiet <= 0 {
		opts.Quiet = DefaultQuiet
	}
	if opts.SavedFor <= 0 {
		opts.SavedFor = DefaultSavedFor
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		store:    store,
		clientID: clientID,
		opts:     opts,
		log:      log.With(zap.String("client_id", clientID.String())),
		state:    Loading,
		fields:   model.FormData{},
	}
}

// Start loads the stored form. A missing form leaves every field empty.
// A load failure is logged and returned, and the session still becomes editable.
func (s *Session) Start(ctx context.Context) error {
	f, err := s.store.GetFormData(ctx, s.clientID)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		s.log.Warn("load form failed", zap.Error(err))
	} else if f != nil {
		s.fields = f.Data.Clone()
	}
	s.state = Idle
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
	return err
}

// Set updates one field and (re)schedules a save after the quiet period.
func (s *Session) Set(field, value string) error {
	if !schema.Known(field) {
		return fmt.Errorf("%w: %s", errs.ErrUnknownField, field)
	}

	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.fields[field] = value
	s.gen++
	s.markDirtyLocked()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.opts.Quiet, s.fire)
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
	return nil
}

// Get returns the current value of field.
func (s *Session) Get(field string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields[field]
}

// Snapshot returns a copy of all fields.
func (s *Session) Snapshot() model.FormData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.Clone()
}

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// Clear empties every field and persists the empty form right away, bypassing
// the debounce. confirm must return true; otherwise nothing changes.
func (s *Session) Clear(ctx context.Context, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.fields = model.FormData{}
	s.gen++
	s.markDirtyLocked()
	s.mu.Unlock()

	return s.persist(ctx)
}

// Flush saves a pending edit immediately. It is a no-op when nothing changed
// since the last successful save.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	return s.persist(ctx)
}

// Close cancels the pending save and waits for a running one. Unsaved edits are
// dropped; call Flush first to keep them.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.savedTimer != nil {
		s.savedTimer.Stop()
	}
	s.mu.Unlock()

	s.inflight.Wait()
}

func (s *Session) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	// failures are logged inside persist; the next edit schedules another attempt
	_ = s.persist(context.Background())
}

// persist saves the latest snapshot. Store calls are serialized and every call
// takes its snapshot only once it holds saveMu, so the last edit wins.
func (s *Session) persist(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.gen == s.savedGen {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.fields.Clone()
	gen := s.gen
	s.state = Saving
	st := s.statusLocked()
	s.mu.Unlock()
	s.emit(st)

	err := s.store.SaveFormData(ctx, s.clientID, snapshot)

	s.mu.Lock()
	if err != nil {
		s.lastErr = err
		s.log.Error("autosave failed", zap.Int("fields", len(snapshot)), zap.Error(err))
	} else {
		s.lastErr = nil
		s.savedGen = gen
		s.showSavedLocked()
	}
	if s.gen != gen {
		s.state = Dirty
	} else {
		s.state = Idle
	}
	st = s.statusLocked()
	s.mu.Unlock()
	s.emit(st)

	return err
}

func (s *Session) editableLocked() error {
	switch {
	case s.closed:
		return ErrClosed
	case s.state == Loading:
		return ErrLoading
	}
	return nil
}

func (s *Session) markDirtyLocked() {
	if s.state != Saving {
		s.state = Dirty
	}
}

func (s *Session) showSavedLocked() {
	s.saved = true
	if s.savedTimer != nil {
		s.savedTimer.Stop()
	}
	if s.closed {
		return
	}
	s.savedTimer = time.AfterFunc(s.opts.SavedFor, func() {
		s.mu.Lock()
		s.saved = false
		if s.closed {
			s.mu.Unlock()
			return
		}
		st := s.statusLocked()
		s.mu.Unlock()
		s.emit(st)
	})
}

func (s *Session) statusLocked() Status {
	return Status{State: s.state, Saved: s.saved, LastErr: s.lastErr}
}

func (s *Session) emit(st Status) {
	if s.opts.OnStatus != nil {
		s.opts.OnStatus(st)
	}
}
