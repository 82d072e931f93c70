package parameter

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// PKCE code length bounds (RFC 7636 section 4.1).
const (
	PKCEMinLength = 40
	PKCEMaxLength = 128
)

// ValidatePKCE checks the shape shared by code challenges and verifiers:
// length within [PKCEMinLength, PKCEMaxLength] and unpadded base64url.
func ValidatePKCE(value string) error {
	if _, err := ParseBounded(value, PKCEMinLength, PKCEMaxLength); err != nil {
		return err
	}

	if _, err := base64.RawURLEncoding.DecodeString(value); err != nil {
		return fmt.Errorf("%w: %v", ErrNotBase64URL, err)
	}

	return nil
}

// CodeChallenge is the S256 challenge sent with the authorize request.
type CodeChallenge string

// ParseCodeChallenge validates a code_challenge value.
func ParseCodeChallenge(value string) (CodeChallenge, error) {
	if err := ValidatePKCE(value); err != nil {
		return "", err
	}
	return CodeChallenge(value), nil
}

func (c CodeChallenge) String() string { return string(c) }

func (c CodeChallenge) MarshalText() ([]byte, error) { return []byte(c), nil }

func (c *CodeChallenge) UnmarshalText(text []byte) error {
	v, err := ParseCodeChallenge(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// CodeVerifier is the secret the client reveals at the token endpoint.
type CodeVerifier string

// ParseCodeVerifier validates a code_verifier value.
func ParseCodeVerifier(value string) (CodeVerifier, error) {
	if err := ValidatePKCE(value); err != nil {
		return "", err
	}
	return CodeVerifier(value), nil
}

func (v CodeVerifier) String() string { return string(v) }

// S256Challenge derives the challenge for a verifier:
// BASE64URL-ENCODE(SHA256(ASCII(code_verifier))).
func S256Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifyPKCE reports whether verifier hashes to challenge.
func VerifyPKCE(challenge CodeChallenge, verifier CodeVerifier) bool {
	computed := S256Challenge(string(verifier))
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}
