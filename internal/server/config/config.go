// Package config assembles the server configuration from defaults, an
// optional .env file, environment variables, a JSON file and command-line
// flags, applied in that order.
package config

import (
	"strings"
	"time"
)

// Config holds runtime settings for the MedTrack server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the REST API.
//   - DatabaseDSN: postgres://, mongodb:// or memory:// connection string.
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - TokenValidityDuration: session token lifetime.
//   - BcryptCost: bcrypt work factor for password hashes.
//   - AllowedOrigin: the single browser origin allowed by CORS.
//   - AuthRateLimit / AuthRateBurst: per-IP token bucket for /auth/*.
//   - S3*: object storage for scanned prescriptions; empty bucket disables it.
//   - TrustProxyHeaders: take the client IP from X-Forwarded-For and friends.
//     Only safe behind a reverse proxy that overwrites those headers.
type Config struct {
	EndpointAddrHTTP        string
	DatabaseDSN             string
	SecretKey               string
	TokenValidityDuration   time.Duration
	BcryptCost              int
	AllowedOrigin           string
	AuthRateLimit           float64
	AuthRateBurst           int
	S3RootUser              string
	S3RootPassword          string
	S3Bucket                string
	S3Region                string
	S3BaseEndpoint          string
	PresignValidityDuration time.Duration
	LogLevel                string
	TrustProxyHeaders       bool
}

// DefaultSecretKey is the development signing secret set by LoadDefaults.
const DefaultSecretKey = "secretKey"

const memoryDSN = "memory://"


// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":4000"
	c.DatabaseDSN = memoryDSN
	c.SecretKey = DefaultSecretKey
	c.TokenValidityDuration = 30 * 24 * time.Hour
	c.BcryptCost = 10
	c.AllowedOrigin = "http://localhost:3000"
	c.AuthRateLimit = 5
	c.AuthRateBurst = 10
	c.S3Region = "us-east-1"
	c.PresignValidityDuration = 15 * time.Minute
	c.LogLevel = "info"
}

// AttachmentsEnabled reports whether object storage is configured.
func (c *Config) AttachmentsEnabled() bool {
	return c.S3Bucket != ""
}

// UsesDefaultSecret reports whether tokens would be signed with
// DefaultSecretKey.
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

// IsMemoryStore reports whether DatabaseDSN selects the in-process store,
// whose data is lost when the process exits.
func (c *Config) IsMemoryStore() bool {
	dsn := strings.TrimSpace(c.DatabaseDSN)
	return dsn == "" || strings.HasPrefix(strings.ToLower(dsn), "memory:")
}

// LoadConfig builds a Config from every source in precedence order.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadDotEnv(".env")
	parseEnv(cfg, lookupEnv)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
