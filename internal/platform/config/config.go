// Package config builds the gateway configuration from environment variables
// so main stays lean. Values only; no mechanism lives here.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// SessionType distinguishes the audiences this gateway can serve. Each type
// has its own cookie namespace so one browser can hold both sessions.
type SessionType string

const (
	SessionTypeCitizen  SessionType = "citizen"
	SessionTypeEmployee SessionType = "employee"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	SessionType SessionType

	// Cookie / session policy.
	CookieSecret string
	CookieSecure bool
	SessionTTL   time.Duration

	// SAML service-provider identity.
	SAMLCertFile    string
	SAMLKeyFile     string
	SAMLEntityID    string
	SAMLRootURL     string
	SAMLMetadataURL string // IdP metadata location

	// Service credential minting.
	CredentialSigningKey string
	CredentialIssuer     string
	CredentialAudience   string
	CredentialTTL        time.Duration

	// Upstream services reached through the proxy.
	UpstreamURL string

	// Optional durable audit store.
	AuditPostgresDSN string

	Redis RedisConfig
}

// RedisConfig configures the shared session/index store. An empty URL means
// no shared store; the gateway falls back to in-process stores, which are
// only correct for a single instance.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:                 getenv("GATEWAY_ADDR", ":8080"),
		CookieSecret:         os.Getenv("COOKIE_SIGNING_SECRET"),
		CookieSecure:         os.Getenv("SECURE_COOKIES") != "false",
		SessionTTL:           getenvDuration("SESSION_IDLE_TIMEOUT", 60*time.Minute),
		SAMLCertFile:         os.Getenv("SAML_CERT_FILE"),
		SAMLKeyFile:          os.Getenv("SAML_KEY_FILE"),
		SAMLEntityID:         os.Getenv("SAML_ENTITY_ID"),
		SAMLRootURL:          os.Getenv("SAML_ROOT_URL"),
		SAMLMetadataURL:      os.Getenv("SAML_IDP_METADATA_URL"),
		CredentialSigningKey: os.Getenv("CREDENTIAL_SIGNING_KEY"),
		CredentialIssuer:     getenv("CREDENTIAL_ISSUER", "portalgate"),
		CredentialAudience:   getenv("CREDENTIAL_AUDIENCE", "portal-services"),
		CredentialTTL:        getenvDuration("CREDENTIAL_TTL", 5*time.Minute),
		UpstreamURL:          os.Getenv("UPSTREAM_URL"),
		AuditPostgresDSN:     os.Getenv("AUDIT_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getenvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getenvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}

	switch role := getenv("GATEWAY_ROLE", string(SessionTypeCitizen)); SessionType(role) {
	case SessionTypeCitizen, SessionTypeEmployee:
		cfg.SessionType = SessionType(role)
	default:
		return Server{}, fmt.Errorf("unknown GATEWAY_ROLE %q", role)
	}

	if cfg.CookieSecret == "" {
		return Server{}, fmt.Errorf("COOKIE_SIGNING_SECRET is required")
	}
	if cfg.CredentialSigningKey == "" {
		return Server{}, fmt.Errorf("CREDENTIAL_SIGNING_KEY is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
