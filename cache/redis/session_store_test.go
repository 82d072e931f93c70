package redis

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	soidc "go.pilab.hu/shadow-oidc"
	"go.pilab.hu/shadow-oidc/parameter"
)

func testSession() *soidc.AuthSession {
	return &soidc.AuthSession{
		ClientID:      "abc",
		CodeChallenge: "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		RedirectURI:   parameter.MustParseRedirectURI("https://client.example/cb"),
		Scope:         parameter.NewScopeSet(parameter.ScopeOpenID, parameter.ScopeEmail),
		Subject:       parameter.Subject(strings.Repeat("u", 27)),
		AuthTime:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRedisKey_HashesCode(t *testing.T) {
	store := NewSessionStore(nil, "soidc", time.Minute)
	code := parameter.Code(strings.Repeat("c", 27))

	key := store.redisKey(code)
	assert.True(t, strings.HasPrefix(key, "soidc:session:"))
	assert.NotContains(t, key, code.String())
	assert.Equal(t, "soidc:session:"+soidc.HashToken(code.String()), key)
}

func TestSessionCodec(t *testing.T) {
	session := testSession()

	data, err := marshalSession(session)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"redirect_uri":"https://client.example/cb"`)
	assert.Contains(t, string(data), `"scope":["email","openid"]`)

	decoded, err := unmarshalSession(data)
	require.NoError(t, err)
	assert.Equal(t, session.ClientID, decoded.ClientID)
	assert.Equal(t, session.CodeChallenge, decoded.CodeChallenge)
	assert.True(t, session.RedirectURI.Equal(decoded.RedirectURI))
	assert.Equal(t, session.Scope, decoded.Scope)
	assert.Equal(t, session.Subject, decoded.Subject)
	assert.True(t, session.AuthTime.Equal(decoded.AuthTime))

	_, err = unmarshalSession([]byte(`{"redirect_uri":"/relative"}`))
	assert.ErrorIs(t, err, parameter.ErrInvalidURI)
}

func newTestStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionStore(client, "soidc", ttl), srv
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("take once", func(t *testing.T) {
		store, srv := newTestStore(t, time.Minute)
		code := parameter.Code(strings.Repeat("a", 27))
		require.NoError(t, store.Put(ctx, code, testSession()))

		key := store.redisKey(code)
		assert.True(t, srv.Exists(key))
		assert.Equal(t, time.Minute, srv.TTL(key))

		got, err := store.Take(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, testSession().Subject, got.Subject)
		assert.False(t, srv.Exists(key))

		_, err = store.Take(ctx, code)
		assert.ErrorIs(t, err, soidc.ErrSessionNotFound)
	})

	t.Run("unknown code", func(t *testing.T) {
		store, _ := newTestStore(t, time.Minute)

		_, err := store.Take(ctx, parameter.Code(strings.Repeat("z", 27)))
		assert.ErrorIs(t, err, soidc.ErrSessionNotFound)
	})

	t.Run("last write wins", func(t *testing.T) {
		store, _ := newTestStore(t, time.Minute)
		code := parameter.Code(strings.Repeat("w", 27))

		require.NoError(t, store.Put(ctx, code, testSession()))
		second := testSession()
		second.ClientID = "other"
		require.NoError(t, store.Put(ctx, code, second))

		got, err := store.Take(ctx, code)
		require.NoError(t, err)
		assert.Equal(t, parameter.ClientID("other"), got.ClientID)
	})

	t.Run("expiry", func(t *testing.T) {
		store, srv := newTestStore(t, 10*time.Minute)
		code := parameter.Code(strings.Repeat("b", 27))
		require.NoError(t, store.Put(ctx, code, testSession()))

		srv.FastForward(10*time.Minute - time.Second)
		assert.True(t, srv.Exists(store.redisKey(code)))

		srv.FastForward(time.Second)
		_, err := store.Take(ctx, code)
		assert.ErrorIs(t, err, soidc.ErrSessionNotFound)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		store, srv := newTestStore(t, time.Minute)
		code := parameter.Code(strings.Repeat("c", 27))
		require.NoError(t, srv.Set(store.redisKey(code), "{not json"))

		_, err := store.Take(ctx, code)
		require.Error(t, err)
		assert.NotErrorIs(t, err, soidc.ErrSessionNotFound)
	})

	t.Run("server down", func(t *testing.T) {
		store, srv := newTestStore(t, time.Minute)
		srv.Close()

		_, err := store.Take(ctx, parameter.Code(strings.Repeat("d", 27)))
		require.Error(t, err)
		assert.NotErrorIs(t, err, soidc.ErrSessionNotFound)
	})

	t.Run("concurrent take", func(t *testing.T) {
		store, _ := newTestStore(t, time.Minute)
		code := parameter.Code(strings.Repeat("e", 27))
		require.NoError(t, store.Put(ctx, code, testSession()))

		var (
			wg      sync.WaitGroup
			winners atomic.Int32
		)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := store.Take(ctx, code); err == nil {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), winners.Load())
	})
}
