package soidc

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSigner(t *testing.T) {
	signer := NewTokenSigner([]byte(strings.Repeat("s", 32)))

	raw, err := signer.Sign(jwt.RegisteredClaims{Subject: "u"})
	require.NoError(t, err)

	t.Run("kid header", func(t *testing.T) {
		token, _, err := jwt.NewParser().ParseUnverified(raw, &jwt.RegisteredClaims{})
		require.NoError(t, err)
		assert.Equal(t, DefaultKeyID, token.Header["kid"])
		assert.Equal(t, "HS256", token.Header["alg"])
	})

	t.Run("round trip", func(t *testing.T) {
		claims := &jwt.RegisteredClaims{}
		require.NoError(t, signer.Parse(raw, claims))
		assert.Equal(t, "u", claims.Subject)
	})

	t.Run("unknown kid", func(t *testing.T) {
		other := NewTokenSigner([]byte(strings.Repeat("s", 32)))
		other.AddKeySigner("other", []byte(strings.Repeat("s", 32)))
		other.signingKeyID = "other"

		foreign, err := other.Sign(jwt.RegisteredClaims{Subject: "u"})
		require.NoError(t, err)

		err = signer.Parse(foreign, &jwt.RegisteredClaims{})
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.ErrorIs(t, err, ErrInvalidKeyID)
	})

	t.Run("rejects other algorithms", func(t *testing.T) {
		hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "u"}).
			SignedString([]byte(strings.Repeat("s", 32)))
		require.NoError(t, err)

		assert.ErrorIs(t, signer.Parse(hs512, &jwt.RegisteredClaims{}), ErrInvalidToken)
	})
}
