package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

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
		Scope:         parameter.NewScopeSet(parameter.ScopeOpenID, parameter.ScopeProfile),
		Subject:       parameter.Subject(strings.Repeat("u", 27)),
		AuthTime:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestMemorySessionStore_PutTake(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	code := parameter.Code(strings.Repeat("c", 27))
	session := testSession()

	require.NoError(t, store.Put(ctx, code, session))
	assert.Equal(t, 1, store.Len())

	got, err := store.Take(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, session, got)

	_, err = store.Take(ctx, code)
	assert.ErrorIs(t, err, soidc.ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemorySessionStore_PutOverwrites(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	code := parameter.Code(strings.Repeat("c", 27))

	first := testSession()
	second := testSession()
	second.ClientID = "other"

	require.NoError(t, store.Put(ctx, code, first))
	require.NoError(t, store.Put(ctx, code, second))

	got, err := store.Take(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, parameter.ClientID("other"), got.ClientID)
}

func TestMemorySessionStore_UnknownCode(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()

	_, err := store.Take(context.Background(), parameter.Code(strings.Repeat("x", 27)))
	assert.ErrorIs(t, err, soidc.ErrSessionNotFound)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore(50 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	code := parameter.Code(strings.Repeat("c", 27))
	require.NoError(t, store.Put(ctx, code, testSession()))

	time.Sleep(120 * time.Millisecond)

	_, err := store.Take(ctx, code)
	assert.ErrorIs(t, err, soidc.ErrSessionNotFound)
}

func TestMemorySessionStore_ConcurrentTake(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	code := parameter.Code(strings.Repeat("c", 27))
	require.NoError(t, store.Put(ctx, code, testSession()))

	const workers = 64
	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		start   = make(chan struct{})
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := store.Take(ctx, code); err == nil {
				winners.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
