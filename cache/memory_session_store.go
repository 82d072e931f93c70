package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	soidc "go.pilab.hu/shadow-oidc"
	"go.pilab.hu/shadow-oidc/parameter"
)

// MemorySessionStore implements soidc.SessionStore using ttlcache. Codes are
// stored by their SHA-256 hash.
type MemorySessionStore struct {
	cache *ttlcache.Cache[string, *soidc.AuthSession]
}

var _ soidc.SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates a store whose entries expire after ttl. The
// cleanup goroutine runs until Close.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *soidc.AuthSession](ttl),
		ttlcache.WithDisableTouchOnHit[string, *soidc.AuthSession](),
	)

	go cache.Start()

	return &MemorySessionStore{
		cache: cache,
	}
}

// Put implements soidc.SessionStore.Put.
func (s *MemorySessionStore) Put(_ context.Context, code parameter.Code, session *soidc.AuthSession) error {
	s.cache.Set(soidc.HashToken(code.String()), session, ttlcache.DefaultTTL)
	return nil
}

// Take implements soidc.SessionStore.Take. Lookup and removal happen under
// the cache lock; expired entries are never returned.
func (s *MemorySessionStore) Take(_ context.Context, code parameter.Code) (*soidc.AuthSession, error) {
	item, ok := s.cache.GetAndDelete(soidc.HashToken(code.String()))
	if !ok || item == nil {
		return nil, soidc.ErrSessionNotFound
	}

	return item.Value(), nil
}

// Len returns the number of sessions, including expired ones not yet swept.
func (s *MemorySessionStore) Len() int {
	return s.cache.Len()
}

// Close stops the cleanup goroutine.
func (s *MemorySessionStore) Close() error {
	s.cache.Stop()
	return nil
}
