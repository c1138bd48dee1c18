// Package redis stores sessions in Redis with a sliding TTL.
package redis

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xenking/storefront-checkout/internal/session"
)

const keyPrefix = "storefront:session:"

var _ session.Repository = (*SessionRepository)(nil)

// NewClient parses a redis:// URL and verifies the connection.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

// SessionRepository implements session.Repository on Redis. Every save
// refreshes the TTL.
type SessionRepository struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewSessionRepository returns a SessionRepository. Zero ttl keeps
// sessions until deleted.
func NewSessionRepository(client goredis.UniversalClient, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

func (r *SessionRepository) Save(ctx context.Context, s *session.Snapshot) error {
	if err := r.client.Set(ctx, keyPrefix+s.ID, s, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "save session %s", s.ID)
	}
	return nil
}

func (r *SessionRepository) Load(ctx context.Context, id string) (*session.Snapshot, error) {
	var s session.Snapshot
	if err := r.client.Get(ctx, keyPrefix+id).Scan(&s); err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, errors.Wrapf(err, "load session %s", id)
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return errors.Wrapf(err, "delete session %s", id)
	}
	return nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
