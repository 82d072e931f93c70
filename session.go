package soidc

import (
	"context"
	"time"

	"go.pilab.hu/shadow-oidc/parameter"
)

// AuthSession is the pending authorization bound to a code between
// /authorize and /token.
type AuthSession struct {
	ClientID      parameter.ClientID      `json:"client_id"`
	CodeChallenge parameter.CodeChallenge `json:"code_challenge"`
	RedirectURI   parameter.RedirectURI   `json:"redirect_uri"`
	Scope         parameter.ScopeSet      `json:"scope"`
	Subject       parameter.Subject       `json:"sub"`
	AuthTime      time.Time               `json:"auth_time"`
}

// SessionStore holds auth sessions keyed by code. Implementations must make
// Take atomic: for concurrent Takes of the same code at most one receives
// the session. Unredeemed sessions expire after the store's TTL.
type SessionStore interface {
	// Put stores the session under code, replacing any previous value.
	Put(ctx context.Context, code parameter.Code, session *AuthSession) error

	// Take removes and returns the session for code. ErrSessionNotFound is
	// returned when the code is unknown, expired or already taken.
	Take(ctx context.Context, code parameter.Code) (*AuthSession, error)
}
