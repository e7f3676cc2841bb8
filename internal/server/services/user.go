// Package services holds the MedTrack business logic. UserService covers
// signup, login and profile lookups; PrescriptionService covers issuing,
// searching and dispensing prescriptions.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/users"
)

const (
	medTrackIDPrefix   = "MT"
	medTrackIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	medTrackIDLength   = 8
	medTrackIDAttempts = 3
)

type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type SignupRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Aadhaar  string `json:"aadhaar"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// AuthResult is returned by both Signup and Login.
type AuthResult struct {
	Token string          `json:"token"`
	User  models.UserView `json:"user"`
}

type UserService struct {
	users  users.Repository
	tokens TokenIssuer
	hasher PasswordHasher
	logger logging.Logger

	newMedTrackID func() (string, error)

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(repo users.Repository, tokens TokenIssuer, hasher PasswordHasher, logger logging.Logger) *UserService {
	return &UserService{
		users:         repo,
		tokens:        tokens,
		hasher:        hasher,
		logger:        logger.With("module", "users"),
		newMedTrackID: NewMedTrackID,
	}
}

// NewMedTrackID returns "MT" followed by 8 random characters from [A-Z0-9].
func NewMedTrackID() (string, error) {
	s, err := common.RandomString(medTrackIDAlphabet, medTrackIDLength)
	if err != nil {
		return "", err
	}
	return medTrackIDPrefix + s, nil
}

// Signup is the public registration path. It validates the request, stores
// the user with a bcrypt hash and returns a session token. The admin role
// cannot be self-assigned here. Uniqueness violations surface as
// *common.DuplicateFieldError.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	return s.signup(ctx, req, false)
}

// CreateAccount is Signup for operator tooling: any role, including admin,
// may be assigned.
func (s *UserService) CreateAccount(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	return s.signup(ctx, req, true)
}

func (s *UserService) signup(ctx context.Context, req SignupRequest, allowAdmin bool) (*AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Aadhaar = strings.TrimSpace(req.Aadhaar)

	if req.Name == "" || req.Phone == "" || req.Email == "" || req.Aadhaar == "" || req.Password == "" {
		return nil, common.NewValidationError("Missing required fields")
	}
	if !models.IsEmailIdentifier(req.Email) {
		return nil, common.NewValidationError("Invalid email")
	}
	if models.IsEmailIdentifier(req.Phone) {
		return nil, common.NewValidationError("Invalid phone")
	}

	role, err := models.ParseRole(req.Role)
	if err != nil || (role == models.RoleAdmin && !allowAdmin) {
		return nil, common.NewValidationError("Invalid role")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	user, err := s.create(ctx, &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Aadhaar:      req.Aadhaar,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user signed up", "user_id", user.ID, "role", user.Role)
	return s.authResult(ctx, user)
}

// create stores user, drawing a new MedTrack ID when the generated one
// collides with an existing user.
func (s *UserService) create(ctx context.Context, user *models.User) (*models.User, error) {
	for attempt := 1; ; attempt++ {
		id, err := s.newMedTrackID()
		if err != nil {
			s.logger.Error(ctx, "medtrack id generation failed", "error", err)
			return nil, common.ErrorInternal
		}
		user.MedTrackID = id

		created, err := s.users.Create(ctx, user)
		if err == nil {
			return created, nil
		}

		var dup *common.DuplicateFieldError
		if errors.As(err, &dup) {
			if dup.Field == users.FieldMedTrackID && attempt < medTrackIDAttempts {
				s.logger.Warn(ctx, "medtrack id collision, retrying", "attempt", attempt)
				continue
			}
			return nil, err
		}

		s.logger.Error(ctx, "error creating user", "error", err)
		return nil, common.ErrorInternal
	}
}

// Login authenticates by email (identifier containing "@") or phone. An
// unknown identifier and a wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, common.NewValidationError("Missing credentials")
	}
	if models.IsEmailIdentifier(identifier) {
		identifier = strings.ToLower(identifier)
	}

	user, err := s.users.FindByEmailOrPhone(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Spend the same bcrypt work as a real comparison.
			_ = s.hasher.Compare(s.dummy(), req.Password)
			return nil, common.ErrorInvalidCredentials
		}
		s.logger.Error(ctx, "error looking up user", "error", err)
		return nil, common.ErrorInternal
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, common.ErrorInvalidCredentials
	}

	return s.authResult(ctx, user)
}

// Me returns the profile of the given user.
func (s *UserService) Me(ctx context.Context, userID string) (*models.UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "error loading user", "error", err)
		return nil, common.ErrorInternal
	}
	v := user.View()
	return &v, nil
}

func (s *UserService) authResult(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error(ctx, "error issuing token", "error", err)
		return nil, fmt.Errorf("%w: issue token", common.ErrorInternal)
	}
	return &AuthResult{Token: token, User: user.View()}, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("medtrack-login-timing")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
