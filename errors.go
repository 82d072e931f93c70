package soidc

import (
	"errors"
	"fmt"

	"go.pilab.hu/shadow-oidc/parameter"
)

var (
	ErrSessionNotFound     = errors.New("auth session not found")
	ErrInvalidClientSecret = errors.New("client secret does not match")
	ErrSigning             = errors.New("failed to sign token")
	ErrInvalidToken        = errors.New("invalid access token")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidKeyID        = errors.New("invalid key id")
)

// InvalidCodeError is returned when a code has no live auth session, either
// because it was never issued, was already redeemed, or expired.
type InvalidCodeError struct {
	Code parameter.Code
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("no auth session associated with the code `%s`", redact(e.Code.String()))
}

func (e *InvalidCodeError) Unwrap() error { return ErrSessionNotFound }

// InvalidGrantError is returned when the verifier does not hash to the stored
// challenge.
type InvalidGrantError struct {
	Challenge parameter.CodeChallenge
	Verifier  parameter.CodeVerifier
}

func (e *InvalidGrantError) Error() string {
	return fmt.Sprintf("the code verifier `%s` does not match the code challenge `%s`",
		redact(e.Verifier.String()), e.Challenge)
}

// InvalidRedirectURIError is returned when the redirect_uri at redemption
// differs from the one stored with the session.
type InvalidRedirectURIError struct {
	Expected parameter.RedirectURI
	Got      parameter.RedirectURI
}

func (e *InvalidRedirectURIError) Error() string {
	return fmt.Sprintf("invalid redirect uri, expected `%s` got `%s`", e.Expected, e.Got)
}

// InvalidIssuerError reports a token minted for another issuer.
type InvalidIssuerError struct {
	Expected string
	Got      string
}

func (e *InvalidIssuerError) Error() string {
	return fmt.Sprintf("invalid issuer, expected `%s` got `%s`", e.Expected, e.Got)
}

func (e *InvalidIssuerError) Unwrap() error { return ErrInvalidToken }

// MissingScopesError reports an access token whose scopes are not sufficient
// for the resource.
type MissingScopesError struct {
	Required parameter.ScopeSet
	Got      parameter.ScopeSet
}

func (e *MissingScopesError) Error() string {
	return fmt.Sprintf("missing scopes, required one of `%s` got `%s`", e.Required, e.Got)
}

// redact keeps the first 8 characters of a credential for log lines.
func redact(s string) string {
	const keep = 8
	if len(s) <= keep {
		return s
	}
	return s[:keep] + "..."
}
