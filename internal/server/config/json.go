package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/medtrack/internal/flagx"
	"github.com/dmitrijs2005/medtrack/internal/timex"
)

// JsonConfig is the on-disk shape of the -c/-config file. Durations accept
// strings such as "30d" or "15m" as well as integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	TokenValidityDuration   timex.Duration `json:"token_validity_duration"`
	BcryptCost              int            `json:"bcrypt_cost"`
	AllowedOrigin           string         `json:"allowed_origin"`
	AuthRateLimit           float64        `json:"auth_rate_limit"`
	AuthRateBurst           int            `json:"auth_rate_burst"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	PresignValidityDuration timex.Duration `json:"presign_validity_duration"`
	LogLevel                string         `json:"log_level"`
	TrustProxyHeaders       bool           `json:"trust_proxy_headers"`
}

// parseJson overlays the fields present in the JSON file named by -c or
// -config. Absent or zero fields keep their previous value. An unreadable
// file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	setString(&config.AllowedOrigin, c.AllowedOrigin)
	if c.AuthRateLimit > 0 {
		config.AuthRateLimit = c.AuthRateLimit
	}
	if c.AuthRateBurst > 0 {
		config.AuthRateBurst = c.AuthRateBurst
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.PresignValidityDuration.Duration > 0 {
		config.PresignValidityDuration = c.PresignValidityDuration.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
	if c.TrustProxyHeaders {
		config.TrustProxyHeaders = true
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
