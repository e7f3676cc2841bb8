// Package users is the credential store: user records keyed by id with
// unique email, phone, aadhaar and MedTrack ID.
package users

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

// Repository persists users. Create returns *common.DuplicateFieldError when
// a unique field is taken; lookups return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmailOrPhone(ctx context.Context, identifier string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByMedTrackID(ctx context.Context, medTrackID string) (*models.User, error)
}

// Field names reported in DuplicateFieldError.
const (
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldAadhaar    = "aadhaar"
	FieldMedTrackID = "medTrackId"
)
