// Package server wires the MedTrack backend together: storage backend,
// token issuer, password hasher, optional attachment storage, services and
// the REST transport. It also handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/attachments"
	"github.com/dmitrijs2005/medtrack/internal/server/auth"
	"github.com/dmitrijs2005/medtrack/internal/server/config"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/medtrack/internal/server/rest"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
)

// ErrDefaultSecret is returned by NewApp when a persistent store would be
// served with tokens signed by config.DefaultSecretKey.
var ErrDefaultSecret = errors.New("JWT_SECRET must be set when using a persistent database")

type App struct {
	config     *config.Config
	logger     logging.Logger
	repos      repomanager.RepositoryManager
	httpServer *rest.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if c.UsesDefaultSecret() {
		if !c.IsMemoryStore() {
			return nil, ErrDefaultSecret
		}
		logger.Warn(ctx, "signing tokens with the default development secret; set JWT_SECRET")
	}

	rm, err := repomanager.New(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var store services.AttachmentStore
	if c.AttachmentsEnabled() {
		p, err := attachments.NewS3Presigner(ctx, attachments.Options{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Expires:      c.PresignValidityDuration,
		})
		if err != nil {
			_ = rm.Close(ctx)
			return nil, fmt.Errorf("attachments init error: %w", err)
		}
		store = p
	} else {
		logger.Info(ctx, "S3 bucket not configured, attachments disabled")
	}

	tokens := auth.NewTokenIssuer([]byte(c.SecretKey), c.TokenValidityDuration)
	hasher := auth.NewPasswordHasher(c.BcryptCost)

	us := services.NewUserService(rm.Users(), tokens, hasher, logger)
	ps := services.NewPrescriptionService(rm.Users(), rm.Prescriptions(), store, logger)

	hs := rest.NewServer(rest.Options{
		Address:           c.EndpointAddrHTTP,
		AllowedOrigin:     c.AllowedOrigin,
		AuthRateLimit:     c.AuthRateLimit,
		AuthRateBurst:     c.AuthRateBurst,
		TrustProxyHeaders: c.TrustProxyHeaders,
	}, logger, us, ps, tokens, rm)

	return &App{config: c, logger: logger, repos: rm, httpServer: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the storage backend.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "closing storage", "error", err)
	}

	app.logger.Info(context.Background(), "App stopped")
}
