package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	clienterrors "github.com/jrsteele09/go-scenario-client/internal/errors"
	"github.com/jrsteele09/go-scenario-client/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrCorrupted = clienterrors.ErrCorrupted

// Subscriber is called after every committed mutation with the resulting state
type Subscriber func(m Mutation, s Session)

// Store owns the in-memory Session. Reads go through getters, writes through
// the named actions, and every mutation is mirrored to session storage.
type Store struct {
	mu          sync.RWMutex
	state       Session
	storage     storage.Storage
	logger      zerolog.Logger
	subscribers []Subscriber
}

type Option func(*Store)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a store and rehydrates any session previously persisted to st
func New(st storage.Storage, opts ...Option) (*Store, error) {
	if st == nil {
		return nil, fmt.Errorf("[store New] storage is required")
	}

	s := &Store{
		state:   InitialSession(),
		storage: st,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.rehydrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) rehydrate() error {
	raw, err := s.storage.Get(storage.SessionKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("[store rehydrate] %w", err)
	}

	restored := InitialSession()
	if err := json.Unmarshal([]byte(raw), &restored); err != nil {
		return fmt.Errorf("[store rehydrate] %w: %v", ErrCorrupted, err)
	}
	restored.normalise()

	s.state = restored
	s.logger.Debug().Bool("loggedIn", restored.LoggedIn).Msg("session rehydrated")
	return nil
}

// Subscribe registers fn to observe every mutation
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Getters

func (s *Store) User() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRaw(s.state.User)
}

func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LoggedIn
}

func (s *Store) ImproveAccepted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ImproveAccepted
}

func (s *Store) Scenario() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRaw(s.state.Scenario)
}

// Snapshot returns a copy of the whole session
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Actions

// AddUser commits SET_USER
func (s *Store) AddUser(user json.RawMessage) error {
	compact, err := compactRaw(user)
	if err != nil {
		return fmt.Errorf("[store AddUser] invalid user: %w", err)
	}
	return s.commit(ActionAddUser, func(state *Session) {
		state.User = compact
	})
}

// SetLoggedIn commits SET_LOGIN
func (s *Store) SetLoggedIn(loggedIn bool) error {
	return s.commit(ActionSetLoggedIn, func(state *Session) {
		state.LoggedIn = loggedIn
	})
}

// AcceptImprove commits ACCEPT_IMPROVE. Only Logout resets the flag.
func (s *Store) AcceptImprove() error {
	return s.commit(ActionAcceptImprove, func(state *Session) {
		state.ImproveAccepted = true
	})
}

// AddScenario commits SET_SCENARIO, replacing the scenario wholesale
func (s *Store) AddScenario(scenario json.RawMessage) error {
	compact, err := compactRaw(scenario)
	if err != nil {
		return fmt.Errorf("[store AddScenario] invalid scenario: %w", err)
	}
	return s.commit(ActionAddScenario, func(state *Session) {
		state.Scenario = compact
	})
}

// Logout commits SET_LOGOUT: every field returns to its initial value and
// the durable mirror, token included, is erased.
func (s *Store) Logout() error {
	return s.commit(ActionLogout, func(state *Session) {
		*state = InitialSession()
	})
}

func (s *Store) commit(action Action, apply func(*Session)) error {
	mutation, ok := MutationFor(action)
	if !ok {
		return fmt.Errorf("[store commit] unknown action %q", action)
	}

	s.mu.Lock()
	apply(&s.state)
	err := s.persistLocked(mutation)
	snapshot := s.state.clone()
	subscribers := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	event := s.logger.Debug()
	if err != nil {
		event = s.logger.Warn().Err(err)
	}
	event.Str("action", string(action)).Str("mutation", string(mutation)).Msg("store mutation")

	for _, fn := range subscribers {
		fn(mutation, snapshot)
	}
	return err
}

func (s *Store) persistLocked(mutation Mutation) error {
	if mutation == MutationSetLogout {
		if err := s.storage.Clear(); err != nil {
			return fmt.Errorf("[store persist] clear: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("[store persist] marshal: %w", err)
	}
	if err := s.storage.Set(storage.SessionKey, string(data)); err != nil {
		return fmt.Errorf("[store persist] %w", err)
	}
	return nil
}
