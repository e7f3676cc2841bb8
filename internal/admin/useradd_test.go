package admin

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/auth"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/users"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

func newService(repo users.Repository) *services.UserService {
	return services.NewUserService(repo,
		auth.NewTokenIssuer([]byte("k"), time.Hour),
		auth.NewPasswordHasher(bcrypt.MinCost),
		nopLogger{})
}

func TestUserAdd_PromptsForMissingFields(t *testing.T) {
	withTerminal(t, false, nil)
	repo := users.NewInMemoryRepository()

	var out bytes.Buffer
	in := rdr("Ravi Kumar\n9000000001\n5555\npw-123\n")
	view, err := UserAdd(context.Background(), newService(repo), services.SignupRequest{
		Email: "ravi@pharmacy.in",
		Role:  "pharmacist",
	}, in, &out)
	require.NoError(t, err)

	assert.Equal(t, "Ravi Kumar", view.Name)
	assert.Equal(t, "9000000001", view.Phone)
	assert.Equal(t, models.RolePharmacist, view.Role)
	assert.Contains(t, out.String(), "Full name")
	assert.NotContains(t, out.String(), "Email")

	stored, err := repo.FindByEmailOrPhone(context.Background(), "ravi@pharmacy.in")
	require.NoError(t, err)
	assert.Equal(t, "5555", stored.Aadhaar)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw-123")))
}

func TestUserAdd_PropagatesServiceErrors(t *testing.T) {
	withTerminal(t, false, nil)
	repo := users.NewInMemoryRepository()
	svc := newService(repo)

	req := services.SignupRequest{
		Name: "A", Email: "a@x.com", Phone: "1", Aadhaar: "1", Role: "doctor", Password: "pw",
	}
	_, err := UserAdd(context.Background(), svc, req, rdr(""), &bytes.Buffer{})
	require.NoError(t, err)

	req.Phone, req.Aadhaar = "2", "2"
	_, err = UserAdd(context.Background(), svc, req, rdr(""), &bytes.Buffer{})
	var dup *common.DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)

	req.Email, req.Phone, req.Aadhaar, req.Role = "b@x.com", "3", "3", "nurse"
	_, err = UserAdd(context.Background(), svc, req, rdr(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestUserAdd_CreatesAdmin(t *testing.T) {
	withTerminal(t, false, nil)

	view, err := UserAdd(context.Background(), newService(users.NewInMemoryRepository()), services.SignupRequest{
		Name: "Root", Email: "root@medtrack.in", Phone: "9", Aadhaar: "9", Role: "admin", Password: "pw",
	}, rdr(""), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, view.Role)
}

func TestUserAdd_ReadError(t *testing.T) {
	withTerminal(t, false, nil)

	_, err := UserAdd(context.Background(), newService(users.NewInMemoryRepository()),
		services.SignupRequest{}, rdr(""), &bytes.Buffer{})
	assert.Error(t, err)
}
