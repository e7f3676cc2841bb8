package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

// InMemoryRepository keeps users in process memory. It enforces the same
// uniqueness rules as the database backends.
type InMemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.User
	order []string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*models.User)}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		u := r.byID[id]
		switch {
		case u.Email == user.Email:
			return nil, &common.DuplicateFieldError{Field: FieldEmail}
		case u.Phone == user.Phone:
			return nil, &common.DuplicateFieldError{Field: FieldPhone}
		case u.Aadhaar == user.Aadhaar:
			return nil, &common.DuplicateFieldError{Field: FieldAadhaar}
		case u.MedTrackID == user.MedTrackID:
			return nil, &common.DuplicateFieldError{Field: FieldMedTrackID}
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()

	stored := *user
	r.byID[stored.ID] = &stored
	r.order = append(r.order, stored.ID)

	return user, nil
}

func (r *InMemoryRepository) FindByEmailOrPhone(ctx context.Context, identifier string) (*models.User, error) {
	email := models.IsEmailIdentifier(identifier)
	return r.find(func(u *models.User) bool {
		if email {
			return u.Email == identifier
		}
		return u.Phone == identifier
	})
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *InMemoryRepository) GetByMedTrackID(ctx context.Context, medTrackID string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.MedTrackID == medTrackID })
}

func (r *InMemoryRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if u := r.byID[id]; match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}
