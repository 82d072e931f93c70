package cmd

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/shadow-oidc/parameter"
	"golang.org/x/crypto/bcrypt"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))

	err := root.Execute()
	return out.String(), err
}

func TestGenSecret(t *testing.T) {
	out, err := execute(t, "", "gen-secret", "--bytes", "48")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Len(t, raw, 48)

	_, err = execute(t, "", "gen-secret", "--bytes", "8")
	assert.Error(t, err)
}

func TestHashSecret(t *testing.T) {
	secret := strings.Repeat("k", 32)

	t.Run("argument", func(t *testing.T) {
		out, err := execute(t, "", "hash-secret", "--cost", "4", secret)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte(secret)))
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := execute(t, secret+"\n", "hash-secret", "--cost", "4")
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte(secret)))
	})

	t.Run("generate", func(t *testing.T) {
		out, err := execute(t, "", "hash-secret", "--cost", "4", "--generate")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(lines[1]), []byte(lines[0])))
	})

	t.Run("too short", func(t *testing.T) {
		_, err := execute(t, "", "hash-secret", "--cost", "4", "short")
		assert.ErrorIs(t, err, parameter.ErrTooShort)
	})
}

func TestPKCE(t *testing.T) {
	t.Run("generated", func(t *testing.T) {
		out, err := execute(t, "", "pkce")
		require.NoError(t, err)

		var pair pkcePair
		require.NoError(t, json.Unmarshal([]byte(out), &pair))
		assert.Len(t, pair.CodeVerifier, 43)
		assert.Equal(t, "S256", pair.CodeChallengeMethod)
		assert.True(t, parameter.VerifyPKCE(parameter.CodeChallenge(pair.CodeChallenge), parameter.CodeVerifier(pair.CodeVerifier)))
	})

	t.Run("existing verifier", func(t *testing.T) {
		out, err := execute(t, "", "pkce", "--verifier", "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
		require.NoError(t, err)

		var pair pkcePair
		require.NoError(t, json.Unmarshal([]byte(out), &pair))
		assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", pair.CodeChallenge)
	})

	t.Run("invalid verifier", func(t *testing.T) {
		_, err := execute(t, "", "pkce", "--verifier", "short")
		assert.ErrorIs(t, err, parameter.ErrTooShort)
	})
}
