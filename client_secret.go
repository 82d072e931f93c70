package soidc

import (
	"fmt"

	"go.pilab.hu/shadow-oidc/parameter"
	"golang.org/x/crypto/bcrypt"
)

// HashClientSecret hashes a client secret for the client_secret_hash
// setting.
func HashClientSecret(secret parameter.ClientSecret, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash client secret: %w", err)
	}

	return hash, nil
}

// VerifyClientSecret compares secret to a bcrypt hash. An empty secret never
// matches.
func VerifyClientSecret(hash []byte, secret parameter.ClientSecret) error {
	if secret == "" {
		return ErrInvalidClientSecret
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return ErrInvalidClientSecret
	}

	return nil
}
