// Package session owns the remote-store configuration, the live client
// handle, and the last-known connection status. One Session is constructed
// per run and injected wherever remote access is needed; there are no
// package-level singletons.
package session

import (
	"context"
	"time"

	"gigscout/pkg/kv"
	"gigscout/pkg/logger"
	"gigscout/pkg/remote"
)

// Status is the last-known connection state.
type Status struct {
	Connected   bool      `json:"connected"`
	LastChecked time.Time `json:"last_checked"`
	Error       string    `json:"error,omitempty"`
}

type Session struct {
	store    *kv.Store
	defaults remote.Config
	cfg      remote.Config
	client   *remote.Client
	status   Status
}

// New builds a session backed by the local store. defaults are applied when
// the stored config is empty or unusable.
func New(store *kv.Store, defaults remote.Config) *Session {
	return &Session{store: store, defaults: defaults}
}

// Load reads the persisted config, falls back to the defaults when storage
// is empty or stale, and initializes the remote handle.
func (s *Session) Load(ctx context.Context) error {
	found, err := s.store.Get(kv.KeyConfig, &s.cfg)
	if err != nil {
		return err
	}
	if !found || !s.cfg.Valid() {
		s.cfg = s.defaults
		if s.cfg.Valid() {
			if err := s.store.Put(kv.KeyConfig, s.cfg); err != nil {
				return err
			}
		}
	}
	s.initialize(ctx)
	return nil
}

func (s *Session) Config() remote.Config { return s.cfg }

// SetConfig persists a new config and re-initializes the remote handle.
func (s *Session) SetConfig(ctx context.Context, cfg remote.Config) error {
	if err := s.store.Put(kv.KeyConfig, cfg); err != nil {
		return err
	}
	s.cfg = cfg
	s.initialize(ctx)
	return nil
}

func (s *Session) initialize(ctx context.Context) {
	s.client = nil
	if !s.cfg.Valid() {
		s.status = Status{Connected: false, LastChecked: time.Now(), Error: "missing remote configuration"}
		return
	}
	client, err := remote.NewClient(s.cfg)
	if err != nil {
		s.status = Status{Connected: false, LastChecked: time.Now(), Error: err.Error()}
		return
	}
	s.client = client
	s.Test(ctx)
}

// Test probes the remote store and records the outcome.
func (s *Session) Test(ctx context.Context) bool {
	if s.client == nil {
		s.status = Status{Connected: false, LastChecked: time.Now(), Error: "remote client not initialized"}
		return false
	}
	if err := s.client.Ping(ctx); err != nil {
		logger.Dedup("session: connectivity test failed: %v", err)
		s.status = Status{Connected: false, LastChecked: time.Now(), Error: err.Error()}
		return false
	}
	s.status = Status{Connected: true, LastChecked: time.Now()}
	return true
}

func (s *Session) Status() Status { return s.status }

func (s *Session) Connected() bool { return s.status.Connected }

// Client returns the remote handle, nil when not initialized.
func (s *Session) Client() *remote.Client { return s.client }
