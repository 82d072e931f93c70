package soidc

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.pilab.hu/shadow-oidc/parameter"
)

// TokenResponse is the body of a successful /token call.
type TokenResponse struct {
	AccessToken string              `json:"access_token"`
	IDToken     string              `json:"id_token"`
	TokenType   parameter.TokenType `json:"token_type"`
	ExpiresIn   int64               `json:"expires_in"`
	Scope       string              `json:"scope"`
}

// TokenService issues and validates signed tokens.
type TokenService struct {
	vars   *Vars
	signer *TokenSigner
	now    func() time.Time
}

type TokenServiceOption func(*TokenService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(vars *Vars, signer *TokenSigner, opts ...TokenServiceOption) *TokenService {
	s := &TokenService{
		vars:   vars,
		signer: signer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Issue checks a redemption against its session and mints the token pair.
// Checks run in order: PKCE, redirect_uri, then the client secret when
// confidential-client mode is on.
func (s *TokenService) Issue(ctx context.Context, session *AuthSession, params *parameter.TokenParams) (*TokenResponse, error) {
	if err := VerifyCodeVerifier(session, params.CodeVerifier); err != nil {
		return nil, err
	}

	if !session.RedirectURI.Equal(params.RedirectURI) {
		return nil, &InvalidRedirectURIError{
			Expected: session.RedirectURI,
			Got:      params.RedirectURI,
		}
	}

	if s.vars.Confidential() {
		if err := VerifyClientSecret(s.vars.ClientSecretHash, params.ClientSecret); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(s.vars.Expiration)

	authTime := session.AuthTime
	if authTime.IsZero() {
		authTime = now
	}

	access := &AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.vars.Issuer,
			Subject:   session.Subject.String(),
			Audience:  jwt.ClaimStrings{s.vars.AudienceFor(session.ClientID)},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		AuthTime: jwt.NewNumericDate(authTime),
		ClientID: session.ClientID,
		UserID:   session.Subject,
		Scope:    session.Scope,
		Version:  TokenVersion,
	}

	accessToken, err := s.signer.Sign(access)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}

	identity := &IDTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.vars.Issuer,
			Subject:   session.Subject.String(),
			Audience:  jwt.ClaimStrings{session.ClientID.String()},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		AuthTime: jwt.NewNumericDate(authTime),
		ClientID: session.ClientID,
		ATHash:   AccessTokenHash(accessToken),
		AMR:      []AuthenticationMethod{AMRPassword},
		Version:  TokenVersion,
	}

	idToken, err := s.signer.Sign(identity)
	if err != nil {
		return nil, fmt.Errorf("id token: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("client_id", session.ClientID.String()).
		Str("jti", access.ID).
		Time("expires_at", expiresAt).
		Msg("issued token pair")

	return &TokenResponse{
		AccessToken: accessToken,
		IDToken:     idToken,
		TokenType:   parameter.TokenTypeBearer,
		ExpiresIn:   int64(s.vars.Expiration / time.Second),
		Scope:       session.Scope.String(),
	}, nil
}

// ValidateAccessToken verifies signature, issuer, expiry and scopes of a
// bearer token. A token whose exp equals the current second is expired.
func (s *TokenService) ValidateAccessToken(ctx context.Context, raw string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	if err := s.signer.Parse(raw, claims); err != nil {
		return nil, err
	}

	// ID tokens share secret and issuer but carry neither cid nor scp.
	if claims.ClientID == "" || len(claims.Scope) == 0 {
		return nil, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}

	if claims.Issuer != s.vars.Issuer {
		return nil, &InvalidIssuerError{Expected: s.vars.Issuer, Got: claims.Issuer}
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrTokenExpired)
	}

	if !claims.Scope.Contains(parameter.ScopeOpenID) {
		return nil, &MissingScopesError{
			Required: parameter.NewScopeSet(parameter.ScopeOpenID),
			Got:      claims.Scope,
		}
	}

	if !claims.Scope.Intersects(s.vars.RequiredScopes) {
		return nil, &MissingScopesError{
			Required: s.vars.RequiredScopes,
			Got:      claims.Scope,
		}
	}

	zerolog.Ctx(ctx).Debug().Str("jti", claims.ID).Msg("access token accepted")

	return claims, nil
}
