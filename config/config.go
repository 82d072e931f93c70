package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
	soidc "go.pilab.hu/shadow-oidc"
	"go.pilab.hu/shadow-oidc/parameter"
	"golang.org/x/crypto/bcrypt"
)

// StorageType selects the session store backend.
type StorageType string

const (
	StorageTypeMemory  StorageType = "memory"
	StorageTypeRedis   StorageType = "redis"
	StorageTypeMongoDB StorageType = "mongodb"
)

// Config holds all configuration for the OIDC server.
type Config struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	LogLevel        string        `mapstructure:"log_level"`
	LogPretty       bool          `mapstructure:"log_pretty"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	Issuer           string        `mapstructure:"issuer"`
	Audience         string        `mapstructure:"audience"`
	Secret           string        `mapstructure:"secret"` // standard base64, padded
	Expiration       time.Duration `mapstructure:"expiration"`
	RequiredScopes   string        `mapstructure:"required_scopes"`
	ClientSecretHash string        `mapstructure:"client_secret_hash"`
	UserFile         string        `mapstructure:"user_file"`

	SessionBackend StorageType   `mapstructure:"session_backend"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	RedisPassword  string        `mapstructure:"redis_password"`
	RedisDB        int           `mapstructure:"redis_db"`
	RedisPrefix    string        `mapstructure:"redis_prefix"`
	MongoURI       string        `mapstructure:"mongo_uri"`
	MongoDBName    string        `mapstructure:"mongo_db_name"`

	TokenRateLimit  float64  `mapstructure:"token_rate_limit"` // requests per second per client IP, 0 disables
	TrustedProxies  []string `mapstructure:"trusted_proxies"`  // CIDRs allowed to set X-Forwarded-For
	AuditLog        string   `mapstructure:"audit_log"`        // file path, "-" for stdout, empty disables
	TracingEnabled  bool     `mapstructure:"tracing_enabled"`
	OtelServiceName string   `mapstructure:"otel_service_name"`
}

// LoadConfig loads configuration from file and environment variables. When
// configFile is empty oidc_config.yaml is looked up in the default paths.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("oidc_config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/shadow-oidc/")
		v.AddConfigPath("$HOME/.shadow-oidc")
	}

	v.SetEnvPrefix("SOIDC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("http_addr", "0.0.0.0:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("issuer", "http://localhost:8080")
	v.SetDefault("audience", "")
	v.SetDefault("secret", "")
	v.SetDefault("expiration", soidc.DefaultExpiration.String())
	v.SetDefault("required_scopes", soidc.DefaultRequiredScopes().String())
	v.SetDefault("client_secret_hash", "")
	v.SetDefault("user_file", "user.json")
	v.SetDefault("session_backend", string(StorageTypeMemory))
	v.SetDefault("session_ttl", soidc.DefaultSessionTTL.String())
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_prefix", "soidc")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db_name", "shadow_oidc")
	v.SetDefault("token_rate_limit", 10)
	v.SetDefault("trusted_proxies", []string{})
	v.SetDefault("audit_log", "")
	v.SetDefault("tracing_enabled", false)
	v.SetDefault("otel_service_name", "shadow-oidc")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	switch cfg.SessionBackend {
	case StorageTypeMemory, StorageTypeRedis, StorageTypeMongoDB:
	default:
		return nil, fmt.Errorf("unknown session backend `%s`", cfg.SessionBackend)
	}

	return &cfg, nil
}

// Vars converts the issuance settings into soidc.Vars and validates them.
func (c *Config) Vars() (*soidc.Vars, error) {
	if c.Secret == "" {
		return nil, errors.New("secret is required")
	}

	secret, err := base64.StdEncoding.DecodeString(c.Secret)
	if err != nil {
		return nil, fmt.Errorf("secret must be standard base64: %w", err)
	}

	required, err := parameter.ParseScopeSet(c.RequiredScopes)
	if err != nil {
		return nil, fmt.Errorf("required_scopes: %w", err)
	}

	vars := &soidc.Vars{
		Issuer:         c.Issuer,
		Audience:       c.Audience,
		Secret:         secret,
		Expiration:     c.Expiration,
		RequiredScopes: required,
	}
	if c.ClientSecretHash != "" {
		if _, err := bcrypt.Cost([]byte(c.ClientSecretHash)); err != nil {
			return nil, fmt.Errorf("client_secret_hash is not a bcrypt hash: %w", err)
		}
		vars.ClientSecretHash = []byte(c.ClientSecretHash)
	}

	if err := vars.Validate(); err != nil {
		return nil, err
	}

	return vars, nil
}

// TrustedProxyNets parses trusted_proxies. A bare IP is taken as a single
// host network.
func (c *Config) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(c.TrustedProxies))

	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if !strings.Contains(raw, "/") {
			ip := net.ParseIP(raw)
			if ip == nil {
				return nil, fmt.Errorf("trusted_proxies: invalid address `%s`", raw)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}

		_, ipNet, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted_proxies: %w", err)
		}
		nets = append(nets, ipNet)
	}

	return nets, nil
}
