// Package memstore provides an in-memory UserStore used by tests and local
// runs without a MongoDB instance. It mirrors the mongostore contract,
// including uniqueness enforcement and compare-and-swap rotation.
package memstore

import (
	"context"
	"sync"
	"time"

	"taskhub.org/internal/auth"
)

var _ auth.UserStore = (*Store)(nil)

// Store is a mutex-guarded map keyed by principal id.
type Store struct {
	mu   sync.RWMutex
	byID map[string]*auth.User
}

// New returns an empty store.
func New() *Store {
	return &Store{byID: make(map[string]*auth.User)}
}

func (s *Store) Create(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return auth.ErrAlreadyExists
		}
	}
	if _, ok := s.byID[u.ID]; ok {
		return auth.ErrAlreadyExists
	}
	s.byID[u.ID] = clone(u)
	return nil
}

func (s *Store) FindByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byID[id]; ok {
		return clone(u), nil
	}
	return nil, auth.ErrNotFound
}

func (s *Store) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return s.findBy(func(u *auth.User) bool { return u.Username == username })
}

func (s *Store) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return s.findBy(func(u *auth.User) bool { return u.Email == email })
}

func (s *Store) FindByVerificationDigest(_ context.Context, digest string, now time.Time) (*auth.User, error) {
	if digest == "" {
		return nil, auth.ErrNotFound
	}
	return s.findBy(func(u *auth.User) bool {
		return u.VerificationDigest == digest && u.VerificationExpiry.After(now)
	})
}

func (s *Store) FindByResetDigest(_ context.Context, digest string, now time.Time) (*auth.User, error) {
	if digest == "" {
		return nil, auth.ErrNotFound
	}
	return s.findBy(func(u *auth.User) bool {
		return u.ResetDigest == digest && u.ResetExpiry.After(now)
	})
}

func (s *Store) Update(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return auth.ErrNotFound
	}
	s.byID[u.ID] = clone(u)
	return nil
}

func (s *Store) SwapRefreshDigest(_ context.Context, userID, oldDigest, newDigest string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok || u.RefreshDigest != oldDigest {
		return auth.ErrNotFound
	}
	u.RefreshDigest = newDigest
	u.UpdatedAt = now
	return nil
}

func (s *Store) findBy(match func(*auth.User) bool) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, auth.ErrNotFound
}

func clone(u *auth.User) *auth.User {
	cp := *u
	return &cp
}
