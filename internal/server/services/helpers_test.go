package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/auth"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
}

func testHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost)
}

// failingUsers fails every call with err.
type failingUsers struct{ err error }

func (f failingUsers) Create(context.Context, *models.User) (*models.User, error) {
	return nil, f.err
}
func (f failingUsers) FindByEmailOrPhone(context.Context, string) (*models.User, error) {
	return nil, f.err
}
func (f failingUsers) GetByID(context.Context, string) (*models.User, error) {
	return nil, f.err
}
func (f failingUsers) GetByMedTrackID(context.Context, string) (*models.User, error) {
	return nil, f.err
}

type failingIssuer struct{}

func (failingIssuer) Issue(*models.User) (string, error) { return "", errors.New("sign failed") }

type fakeStore struct {
	putKeys []string
	getKeys []string
	err     error
}

func (f *fakeStore) PresignPut(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.putKeys = append(f.putKeys, key)
	return "https://s3.local/put/" + key, nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.getKeys = append(f.getKeys, key)
	return "https://s3.local/get/" + key, nil
}
