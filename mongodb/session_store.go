package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	soidc "go.pilab.hu/shadow-oidc"
	"go.pilab.hu/shadow-oidc/parameter"
)

type sessionDocument struct {
	ID            string    `bson:"_id"`
	ClientID      string    `bson:"client_id"`
	CodeChallenge string    `bson:"code_challenge"`
	RedirectURI   string    `bson:"redirect_uri"`
	Scope         []string  `bson:"scope"`
	Subject       string    `bson:"sub"`
	AuthTime      time.Time `bson:"auth_time"`
	ExpiresAt     time.Time `bson:"expires_at"`
}

// SessionStore implements soidc.SessionStore on a MongoDB collection.
// Take uses findAndModify so concurrent redemptions of one code resolve to a
// single winner.
type SessionStore struct {
	sessions *mongo.Collection
	ttl      time.Duration
	now      func() time.Time
}

var _ soidc.SessionStore = (*SessionStore)(nil)

func NewSessionStore(db *mongo.Database, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: db.Collection(SessionsCollection),
		ttl:      ttl,
		now:      time.Now,
	}
}

// EnsureIndexes creates the TTL index that lets the server sweep expired
// sessions.
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create expires_at index: %w", err)
	}

	return nil
}

func (s *SessionStore) Put(ctx context.Context, code parameter.Code, session *soidc.AuthSession) error {
	doc := sessionDocument{
		ID:            soidc.HashToken(code.String()),
		ClientID:      session.ClientID.String(),
		CodeChallenge: session.CodeChallenge.String(),
		RedirectURI:   session.RedirectURI.String(),
		Scope:         session.Scope.Strings(),
		Subject:       session.Subject.String(),
		AuthTime:      session.AuthTime,
		ExpiresAt:     s.now().Add(s.ttl),
	}

	_, err := s.sessions.ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Take deletes and returns the session. The TTL monitor only runs about once
// a minute, so documents past expires_at are filtered out explicitly.
func (s *SessionStore) Take(ctx context.Context, code parameter.Code) (*soidc.AuthSession, error) {
	filter := bson.M{
		"_id":        soidc.HashToken(code.String()),
		"expires_at": bson.M{"$gt": s.now()},
	}

	var doc sessionDocument
	if err := s.sessions.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, soidc.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to take session: %w", err)
	}

	return doc.toSession()
}

func (d *sessionDocument) toSession() (*soidc.AuthSession, error) {
	clientID, err := parameter.ParseClientID(d.ClientID)
	if err != nil {
		return nil, fmt.Errorf("stored session client_id: %w", err)
	}

	challenge, err := parameter.ParseCodeChallenge(d.CodeChallenge)
	if err != nil {
		return nil, fmt.Errorf("stored session code_challenge: %w", err)
	}

	redirectURI, err := parameter.ParseRedirectURI(d.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("stored session redirect_uri: %w", err)
	}

	scope := parameter.NewScopeSet()
	for _, v := range d.Scope {
		sc, err := parameter.ParseScope(v)
		if err != nil {
			return nil, fmt.Errorf("stored session scope: %w", err)
		}
		scope[sc] = struct{}{}
	}

	subject, err := parameter.ParseSubject(d.Subject)
	if err != nil {
		return nil, fmt.Errorf("stored session sub: %w", err)
	}

	return &soidc.AuthSession{
		ClientID:      clientID,
		CodeChallenge: challenge,
		RedirectURI:   redirectURI,
		Scope:         scope,
		Subject:       subject,
		AuthTime:      d.AuthTime.UTC(),
	}, nil
}
