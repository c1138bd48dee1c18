// Package memory keeps sessions in process memory. It is meant for local
// development and tests: sessions do not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-checkout/internal/session"
)

var _ session.Repository = (*SessionRepository)(nil)

type entry struct {
	data    []byte
	expires time.Time
}

// SessionRepository is an in-memory session.Repository. Snapshots are
// stored encoded, so callers never share state with the repository.
type SessionRepository struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]entry
}

// NewSessionRepository returns an empty repository. Sessions expire ttl
// after their last save; zero disables expiry.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]entry),
	}
}

func (r *SessionRepository) Save(_ context.Context, s *session.Snapshot) error {
	data, err := s.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	e := entry{data: data}
	if r.ttl > 0 {
		e.expires = r.now().Add(r.ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = e
	return nil
}

func (r *SessionRepository) Load(_ context.Context, id string) (*session.Snapshot, error) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok && !e.expires.IsZero() && !r.now().Before(e.expires) {
		delete(r.sessions, id)
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		return nil, session.ErrNotFound
	}

	var s session.Snapshot
	if err := s.UnmarshalBinary(e.data); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &s, nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// DeleteExpired purges expired sessions and returns how many were removed.
func (r *SessionRepository) DeleteExpired(context.Context) (int64, error) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, e := range r.sessions {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *SessionRepository) Ping(context.Context) error { return nil }
