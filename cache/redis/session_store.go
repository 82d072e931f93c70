package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	soidc "go.pilab.hu/shadow-oidc"
	"go.pilab.hu/shadow-oidc/parameter"
)

// SessionStore implements soidc.SessionStore on Redis. Entries are written
// with SET PX and redeemed with GETDEL, so expiry and single use are
// enforced server-side.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ soidc.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a new [SessionStore] instance
func NewSessionStore(client redis.UniversalClient, prefix string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// redisKey returns the Redis key for a code. The code itself is hashed.
func (r *SessionStore) redisKey(code parameter.Code) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, soidc.HashToken(code.String()))
}

func (r *SessionStore) Put(ctx context.Context, code parameter.Code, session *soidc.AuthSession) error {
	data, err := marshalSession(session)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.redisKey(code), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session in Redis: %w", err)
	}

	return nil
}

func (r *SessionStore) Take(ctx context.Context, code parameter.Code) (*soidc.AuthSession, error) {
	data, err := r.client.GetDel(ctx, r.redisKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, soidc.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to take session from Redis: %w", err)
	}

	return unmarshalSession(data)
}

func marshalSession(session *soidc.AuthSession) ([]byte, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

func unmarshalSession(data []byte) (*soidc.AuthSession, error) {
	var session soidc.AuthSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}
