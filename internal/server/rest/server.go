// Package rest exposes the MedTrack services as a JSON HTTP API.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/auth"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
)

const (
	maxBodyBytes    = 2 << 20
	shutdownTimeout = 10 * time.Second
)

type UserService interface {
	Signup(ctx context.Context, req services.SignupRequest) (*services.AuthResult, error)
	Login(ctx context.Context, req services.LoginRequest) (*services.AuthResult, error)
	Me(ctx context.Context, userID string) (*models.UserView, error)
}

type PrescriptionService interface {
	Issue(ctx context.Context, doctor auth.Identity, req services.IssueRequest) (*models.Prescription, error)
	PatientPrescriptions(ctx context.Context, medTrackID string) (*models.PatientRecord, error)
	ForIdentity(ctx context.Context, id auth.Identity) ([]*models.Prescription, error)
	Dispense(ctx context.Context, pharmacist auth.Identity, prescriptionID string, req services.DispenseRequest) (*models.Prescription, error)
	AttachmentUploadURL(ctx context.Context, id auth.Identity, prescriptionID string) (*services.AttachmentUpload, error)
	AttachmentDownloadURL(ctx context.Context, id auth.Identity, prescriptionID string) (*services.AttachmentDownload, error)
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Options are the transport settings of the HTTP server.
type Options struct {
	Address       string
	AllowedOrigin string
	// AuthRateLimit is the sustained /auth/* request rate per client IP;
	// zero disables limiting.
	AuthRateLimit float64
	AuthRateBurst int

	// TrustProxyHeaders makes X-Forwarded-For, X-Real-IP and True-Client-IP
	// the client address for logging and rate limiting. Enable it only
	// behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

type Server struct {
	opts          Options
	logger        logging.Logger
	users         UserService
	prescriptions PrescriptionService
	verifier      TokenVerifier
	health        HealthChecker
	limiter       *ipRateLimiter
}

func NewServer(opts Options, l logging.Logger, us UserService, ps PrescriptionService, v TokenVerifier, h HealthChecker) *Server {
	return &Server{
		opts:          opts,
		logger:        l.With("module", "http_server"),
		users:         us,
		prescriptions: ps,
		verifier:      v,
		health:        h,
		limiter:       newIPRateLimiter(opts.AuthRateLimit, opts.AuthRateBurst),
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	srv := s.newHTTPServer(ctx)

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdownErr
}

// newHTTPServer builds the http.Server for Run. Request contexts keep the
// values of ctx but not its cancellation, so Shutdown can drain in-flight
// requests after ctx is done.
func (s *Server) newHTTPServer(ctx context.Context) *http.Server {
	base := context.WithoutCancel(ctx)
	return &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}
