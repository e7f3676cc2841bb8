package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/medtrack/internal/timex"
)

var lookupEnv = os.LookupEnv

// loadDotEnv copies variables from path into the process environment.
// Variables already set win; a missing file is not an error.
func loadDotEnv(path string) {
	_ = godotenv.Load(path)
}

// parseEnv overlays values from environment variables. Where two names are
// listed the first one present wins. Malformed numbers and durations panic,
// like malformed JSON or flags do.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	first := func(names ...string) (string, bool) {
		for _, n := range names {
			if v, ok := lookup(n); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}

	if v, ok := first("HTTP_ADDRESS"); ok {
		config.EndpointAddrHTTP = v
	} else if v, ok := first("PORT"); ok {
		config.EndpointAddrHTTP = ":" + v
	}
	if v, ok := first("DATABASE_URL", "MONGODB_URI"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := first("JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := first("TOKEN_TTL"); ok {
		d, err := timex.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.TokenValidityDuration = d
	}
	if v, ok := first("BCRYPT_ROUNDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.BcryptCost = n
	}
	if v, ok := first("CLIENT_URL", "client_url", "FRONTEND_URL"); ok {
		config.AllowedOrigin = v
	}
	if v, ok := first("AUTH_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(err)
		}
		config.AuthRateLimit = f
	}
	if v, ok := first("AUTH_RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.AuthRateBurst = n
	}
	if v, ok := first("S3_ROOT_USER"); ok {
		config.S3RootUser = v
	}
	if v, ok := first("S3_ROOT_PASSWORD"); ok {
		config.S3RootPassword = v
	}
	if v, ok := first("S3_BUCKET"); ok {
		config.S3Bucket = v
	}
	if v, ok := first("S3_REGION"); ok {
		config.S3Region = v
	}
	if v, ok := first("S3_BASE_ENDPOINT"); ok {
		config.S3BaseEndpoint = v
	}
	if v, ok := first("PRESIGN_TTL"); ok {
		d, err := timex.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.PresignValidityDuration = d
	}
	if v, ok := first("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
	if v, ok := first("TRUST_PROXY_HEADERS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.TrustProxyHeaders = b
	}
}
