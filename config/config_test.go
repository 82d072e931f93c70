package config_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/shadow-oidc/config"
	"go.pilab.hu/shadow-oidc/parameter"
)

// chdir moves into dir so no oidc_config.yaml from the working tree is
// picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

var testSecret = base64.StdEncoding.EncodeToString([]byte(strings.Repeat("s", 32)))

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.Expiration)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, config.StorageTypeMemory, cfg.SessionBackend)
	assert.Equal(t, "address email phone profile", cfg.RequiredScopes)
	assert.Equal(t, float64(10), cfg.TokenRateLimit)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("SOIDC_HTTP_ADDR", "127.0.0.1:9090")
	t.Setenv("SOIDC_ISSUER", "https://auth.example")
	t.Setenv("SOIDC_SECRET", testSecret)
	t.Setenv("SOIDC_EXPIRATION", "15m")
	t.Setenv("SOIDC_SESSION_BACKEND", "redis")
	t.Setenv("SOIDC_REQUIRED_SCOPES", "email")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
	assert.Equal(t, config.StorageTypeRedis, cfg.SessionBackend)

	vars, err := cfg.Vars()
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example", vars.Issuer)
	assert.Equal(t, []byte(strings.Repeat("s", 32)), vars.Secret)
	assert.Equal(t, 15*time.Minute, vars.Expiration)
	assert.Equal(t, parameter.NewScopeSet(parameter.ScopeEmail), vars.RequiredScopes)
	assert.False(t, vars.Confidential())
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oidc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
issuer: https://file.example
secret: `+testSecret+`
session_backend: mongodb
session_ttl: 5m
client_secret_hash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
trusted_proxies:
  - 10.0.0.0/8
  - 192.0.2.10
`), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.StorageTypeMongoDB, cfg.SessionBackend)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)

	vars, err := cfg.Vars()
	require.NoError(t, err)
	assert.True(t, vars.Confidential())

	nets, err := cfg.TrustedProxyNets()
	require.NoError(t, err)
	require.Len(t, nets, 2)
	assert.Equal(t, "10.0.0.0/8", nets[0].String())
	assert.Equal(t, "192.0.2.10/32", nets[1].String())
}

func TestLoadConfig_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("SOIDC_SESSION_BACKEND", "etcd")
		_, err := config.LoadConfig("")
		assert.ErrorContains(t, err, "unknown session backend")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg, err := config.LoadConfig("")
		require.NoError(t, err)
		_, err = cfg.Vars()
		assert.ErrorContains(t, err, "secret is required")
	})

	t.Run("unpadded secret", func(t *testing.T) {
		t.Setenv("SOIDC_SECRET", strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(strings.Repeat("s", 31))), "="))
		cfg, err := config.LoadConfig("")
		require.NoError(t, err)
		_, err = cfg.Vars()
		assert.ErrorContains(t, err, "base64")
	})

	t.Run("malformed client secret hash", func(t *testing.T) {
		t.Setenv("SOIDC_SECRET", testSecret)
		t.Setenv("SOIDC_CLIENT_SECRET_HASH", "$2a$04$abcdefghijklmnopqrstuv")
		cfg, err := config.LoadConfig("")
		require.NoError(t, err)
		_, err = cfg.Vars()
		assert.ErrorContains(t, err, "client_secret_hash")
	})

	t.Run("plaintext client secret", func(t *testing.T) {
		t.Setenv("SOIDC_SECRET", testSecret)
		t.Setenv("SOIDC_CLIENT_SECRET_HASH", strings.Repeat("k", 60))
		cfg, err := config.LoadConfig("")
		require.NoError(t, err)
		_, err = cfg.Vars()
		assert.ErrorContains(t, err, "client_secret_hash")
	})

	t.Run("invalid trusted proxy", func(t *testing.T) {
		t.Setenv("SOIDC_TRUSTED_PROXIES", "10.0.0.0/8,not-an-ip")
		cfg, err := config.LoadConfig("")
		require.NoError(t, err)
		_, err = cfg.TrustedProxyNets()
		assert.ErrorContains(t, err, "trusted_proxies")
	})

	t.Run("unknown required scope", func(t *testing.T) {
		t.Setenv("SOIDC_SECRET", testSecret)
		t.Setenv("SOIDC_REQUIRED_SCOPES", "email offline")
		cfg, err := config.LoadConfig("")
		require.NoError(t, err)
		_, err = cfg.Vars()
		assert.ErrorIs(t, err, parameter.ErrUnrecognized)
	})
}
