// Command useradd provisions a MedTrack account directly in the configured
// database. It reads the same configuration as the server (-d, -k, -s and
// their environment equivalents) and adds its own account flags.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/medtrack/internal/admin"
	"github.com/dmitrijs2005/medtrack/internal/flagx"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/auth"
	"github.com/dmitrijs2005/medtrack/internal/server/config"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
)

var errMemoryStore = errors.New("useradd needs a persistent database: set DATABASE_URL, MONGODB_URI or -d")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cfg := config.LoadConfig()
	if cfg.IsMemoryStore() {
		return errMemoryStore
	}

	var req services.SignupRequest
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Phone, "phone", "", "phone number")
	fs.StringVar(&req.Aadhaar, "aadhaar", "", "Aadhaar number")
	fs.StringVar(&req.Role, "role", "", "patient, doctor, pharmacist or admin")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-name", "-email", "-phone", "-aadhaar", "-role"})); err != nil {
		return err
	}

	rm, err := repomanager.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer rm.Close(ctx)

	if err := rm.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)
	svc := services.NewUserService(rm.Users(),
		auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.TokenValidityDuration),
		auth.NewPasswordHasher(cfg.BcryptCost),
		logger)

	user, err := admin.UserAdd(ctx, svc, req, bufio.NewReader(os.Stdin), os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s %s (MedTrack ID %s)\n", user.Role, user.Email, user.MedTrackID)
	return nil
}
