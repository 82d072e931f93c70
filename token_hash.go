package soidc

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// HashToken returns the hex SHA-256 of a token, used as a storage key so raw
// codes never reach a backend.
func HashToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	hashedBytes := hasher.Sum(nil)
	return hex.EncodeToString(hashedBytes)
}

// AccessTokenHash computes the at_hash claim: the left half of the SHA-256
// of the signed access token, base64url encoded without padding.
func AccessTokenHash(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return base64.RawURLEncoding.EncodeToString(sum[:len(sum)/2])
}
