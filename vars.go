package soidc

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.pilab.hu/shadow-oidc/parameter"
)

const (
	DefaultExpiration = time.Hour
	DefaultSessionTTL = 10 * time.Minute

	// TokenVersion is written to the ver claim.
	TokenVersion = 1
)

// DefaultRequiredScopes is the set a token must intersect to read userinfo.
func DefaultRequiredScopes() parameter.ScopeSet {
	return parameter.NewScopeSet(
		parameter.ScopeProfile,
		parameter.ScopeEmail,
		parameter.ScopeAddress,
		parameter.ScopePhone,
	)
}

// Vars holds the process-wide issuance settings. It is built once at startup
// and shared read-only.
type Vars struct {
	Issuer     string
	Audience   string
	Secret     []byte
	Expiration time.Duration

	RequiredScopes parameter.ScopeSet

	// ClientSecretHash is a bcrypt hash. When set the server runs in
	// confidential-client mode and /token requires a matching client_secret.
	ClientSecretHash []byte
}

// Confidential reports whether client_secret verification is enabled.
func (v *Vars) Confidential() bool {
	return len(v.ClientSecretHash) > 0
}

// AudienceFor returns the access token audience for a client.
func (v *Vars) AudienceFor(clientID parameter.ClientID) string {
	if v.Audience != "" {
		return v.Audience
	}
	return clientID.String()
}

func (v *Vars) Validate() error {
	u, err := url.Parse(v.Issuer)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("issuer must be an absolute URI: `%s`", v.Issuer)
	}

	if len(v.Secret) < 32 {
		return errors.New("secret must be at least 32 bytes")
	}

	if v.Expiration <= 0 {
		return errors.New("expiration must be positive")
	}

	if len(v.RequiredScopes) == 0 {
		return errors.New("required scopes must not be empty")
	}

	return nil
}
