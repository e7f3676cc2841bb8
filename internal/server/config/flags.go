package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/medtrack/internal/flagx"
)

// parseFlags overlays values given on the command line.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g. ":4000")
//	-d string    database DSN
//	-s string    JWT HMAC secret key
//	-t duration  token validity (e.g. "720h")
//	-k int       bcrypt cost
//	-o string    allowed CORS origin
//	-l float     /auth/* requests per second per client
//	-u string    S3 root user
//	-p string    S3 root password
//	-b string    S3 bucket name
//	-g string    S3 region
//	-e string    S3 base endpoint
//	-x duration  presigned URL validity
//	-v string    log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-t", "-k", "-o", "-l", "-u", "-p", "-b", "-g", "-e", "-x", "-v",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "token validity duration")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.AllowedOrigin, "o", config.AllowedOrigin, "allowed CORS origin")
	fs.Float64Var(&config.AuthRateLimit, "l", config.AuthRateLimit, "auth requests per second per client")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.PresignValidityDuration, "x", config.PresignValidityDuration, "presigned URL validity duration")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
