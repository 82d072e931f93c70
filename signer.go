package soidc

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultKeyID is the kid used when a single HMAC secret is configured.
const DefaultKeyID = "default"

type TokenSignerFunc func(claims jwt.Claims) (string, error)

// TokenSigner signs and parses HS256 tokens. Tokens carry the kid of the
// secret that signed them and are verified against that secret only.
type TokenSigner struct {
	keys         map[string]TokenSignerFunc
	secrets      map[string][]byte
	signingKeyID string
}

// NewTokenSigner creates a signer with secret registered as DefaultKeyID.
func NewTokenSigner(secret []byte) *TokenSigner {
	s := &TokenSigner{
		keys:    make(map[string]TokenSignerFunc),
		secrets: make(map[string][]byte),
	}
	s.AddKeySigner(DefaultKeyID, secret)
	s.signingKeyID = DefaultKeyID

	return s
}

// AddKeySigner registers an HMAC secret under keyID.
func (s *TokenSigner) AddKeySigner(keyID string, secret []byte) {
	s.secrets[keyID] = secret
	s.keys[keyID] = func(claims jwt.Claims) (string, error) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		token.Header["kid"] = keyID

		return token.SignedString(secret)
	}
}

func (s *TokenSigner) Sign(claims jwt.Claims) (string, error) {
	if signer, ok := s.keys[s.signingKeyID]; ok {
		signed, err := signer(claims)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrSigning, err)
		}
		return signed, nil
	}

	return "", ErrInvalidKeyID
}

// Parse verifies the HS256 signature of raw and decodes it into claims.
// Registered claims are not validated here; callers check iss and exp
// against their own clock.
func (s *TokenSigner) Parse(raw string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(raw, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return nil
}

func (s *TokenSigner) keyFunc(token *jwt.Token) (interface{}, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		kid = s.signingKeyID
	}

	secret, ok := s.secrets[kid]
	if !ok {
		return nil, ErrInvalidKeyID
	}

	return secret, nil
}
