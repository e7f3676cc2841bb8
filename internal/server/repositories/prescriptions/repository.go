// Package prescriptions stores prescriptions and performs the one-time
// dispense transition.
package prescriptions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

// Repository persists prescriptions. Lists are ordered newest issue first.
// Dispense sets the dispense fields only when the prescription has not been
// dispensed yet; otherwise it returns common.ErrorAlreadyDispensed. Unknown
// ids yield common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, p *models.Prescription) (*models.Prescription, error)
	GetByID(ctx context.Context, id string) (*models.Prescription, error)
	ListByPatientMedTrackID(ctx context.Context, medTrackID string) ([]*models.Prescription, error)
	ListByDoctorID(ctx context.Context, doctorID string) ([]*models.Prescription, error)
	Dispense(ctx context.Context, id, pharmacistID, remarks string, at time.Time) (*models.Prescription, error)
	SetAttachmentKey(ctx context.Context, id, key string) error
}
