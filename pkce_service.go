package soidc

import (
	"go.pilab.hu/shadow-oidc/parameter"
)

// VerifyCodeVerifier validates the PKCE verifier presented at /token against
// the challenge stored with the session.
func VerifyCodeVerifier(session *AuthSession, verifier parameter.CodeVerifier) error {
	if !parameter.VerifyPKCE(session.CodeChallenge, verifier) {
		return &InvalidGrantError{
			Challenge: session.CodeChallenge,
			Verifier:  verifier,
		}
	}

	return nil
}
