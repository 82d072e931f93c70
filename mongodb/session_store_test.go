package mongodb

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	soidc "go.pilab.hu/shadow-oidc"
	"go.pilab.hu/shadow-oidc/parameter"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testSession() *soidc.AuthSession {
	return &soidc.AuthSession{
		ClientID:      "abc",
		CodeChallenge: "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		RedirectURI:   parameter.MustParseRedirectURI("https://client.example/cb"),
		Scope:         parameter.NewScopeSet(parameter.ScopeOpenID, parameter.ScopePhone),
		Subject:       parameter.Subject(strings.Repeat("u", 27)),
		AuthTime:      fixedNow,
	}
}

func newStore(mt *mtest.T) *SessionStore {
	store := NewSessionStore(mt.DB, 10*time.Minute)
	store.now = func() time.Time { return fixedNow }
	return store
}

func TestSessionStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	code := parameter.Code(strings.Repeat("c", 27))

	mt.Run("put upserts by code hash", func(mt *mtest.T) {
		store := newStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, store.Put(context.Background(), code, testSession()))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
		assert.NotContains(mt, evt.Command.String(), code.String())
		assert.Contains(mt, evt.Command.String(), soidc.HashToken(code.String()))
	})

	mt.Run("take returns stored session", func(mt *mtest.T) {
		store := newStore(mt)
		session := testSession()

		doc := sessionDocument{
			ID:            soidc.HashToken(code.String()),
			ClientID:      session.ClientID.String(),
			CodeChallenge: session.CodeChallenge.String(),
			RedirectURI:   session.RedirectURI.String(),
			Scope:         session.Scope.Strings(),
			Subject:       session.Subject.String(),
			AuthTime:      session.AuthTime,
			ExpiresAt:     fixedNow.Add(10 * time.Minute),
		}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		got, err := store.Take(context.Background(), code)
		require.NoError(mt, err)
		assert.Equal(mt, session.ClientID, got.ClientID)
		assert.True(mt, session.RedirectURI.Equal(got.RedirectURI))
		assert.Equal(mt, session.Scope, got.Scope)
		assert.Equal(mt, session.Subject, got.Subject)
		assert.True(mt, session.AuthTime.Equal(got.AuthTime))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.Contains(mt, evt.Command.String(), "expires_at")
	})

	mt.Run("take of missing code", func(mt *mtest.T) {
		store := newStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := store.Take(context.Background(), code)
		assert.ErrorIs(mt, err, soidc.ErrSessionNotFound)
	})

	mt.Run("take surfaces server errors", func(mt *mtest.T) {
		store := newStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		_, err := store.Take(context.Background(), code)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, soidc.ErrSessionNotFound)
	})

	mt.Run("corrupt stored session is rejected", func(mt *mtest.T) {
		store := newStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "x"},
			{Key: "client_id", Value: "abc"},
			{Key: "code_challenge", Value: "short"},
		}}))

		_, err := store.Take(context.Background(), code)
		assert.ErrorIs(mt, err, parameter.ErrTooShort)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		store := newStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, store.EnsureIndexes(context.Background()))
	})
}
