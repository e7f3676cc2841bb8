package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/auth"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/prescriptions"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/users"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(context.Context) error { return f.err }

type fakeStore struct{}

func (fakeStore) PresignPut(_ context.Context, key string) (string, error) {
	return "https://s3.local/put/" + key, nil
}

func (fakeStore) PresignGet(_ context.Context, key string) (string, error) {
	return "https://s3.local/get/" + key, nil
}

var errPingFailed = errors.New("ping failed")

type testEnv struct {
	handler http.Handler
	issuer  *auth.TokenIssuer
}

func newTestEnv(t *testing.T, opts Options, store services.AttachmentStore) *testEnv {
	t.Helper()

	userRepo := users.NewInMemoryRepository()
	rxRepo := prescriptions.NewInMemoryRepository()
	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	us := services.NewUserService(userRepo, issuer, hasher, nopLogger{})
	ps := services.NewPrescriptionService(userRepo, rxRepo, store, nopLogger{})

	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "http://localhost:3000"
	}
	srv := NewServer(opts, nopLogger{}, us, ps, issuer, fakeHealth{})
	return &testEnv{handler: srv.Handler(), issuer: issuer}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type signedUp struct {
	Token string `json:"token"`
	User  struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		Role       string `json:"role"`
		MedTrackID string `json:"medTrackId"`
	} `json:"user"`
}

func (e *testEnv) signup(t *testing.T, name, email, phone, aadhaar, role string) signedUp {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": name, "email": email, "phone": phone, "aadhaar": aadhaar,
		"password": "pw-" + name, "role": role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out signedUp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[messageResponse](t, rec).Message
}
