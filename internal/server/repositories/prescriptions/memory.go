package prescriptions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

type InMemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]*models.Prescription
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*models.Prescription)}
}

func (r *InMemoryRepository) Create(ctx context.Context, p *models.Prescription) (*models.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.IssueDate.IsZero() {
		p.IssueDate = time.Now().UTC()
	}
	r.byID[p.ID] = clone(p)
	return p, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(p), nil
}

func (r *InMemoryRepository) ListByPatientMedTrackID(ctx context.Context, medTrackID string) ([]*models.Prescription, error) {
	return r.list(func(p *models.Prescription) bool { return p.PatientMedTrackID == medTrackID }), nil
}

func (r *InMemoryRepository) ListByDoctorID(ctx context.Context, doctorID string) ([]*models.Prescription, error) {
	return r.list(func(p *models.Prescription) bool { return p.DoctorID == doctorID }), nil
}

func (r *InMemoryRepository) Dispense(ctx context.Context, id, pharmacistID, remarks string, at time.Time) (*models.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.Dispensed() {
		return nil, common.ErrorAlreadyDispensed
	}

	at = at.UTC()
	p.DispenseDate = &at
	p.DispensedBy = pharmacistID
	p.Remarks = remarks

	return clone(p), nil
}

func (r *InMemoryRepository) SetAttachmentKey(ctx context.Context, id, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.AttachmentKey = key
	return nil
}

func (r *InMemoryRepository) list(match func(*models.Prescription) bool) []*models.Prescription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.Prescription{}
	for _, p := range r.byID {
		if match(p) {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.After(out[j].IssueDate) })
	return out
}

func clone(p *models.Prescription) *models.Prescription {
	c := *p
	c.MedicineNames = append([]string(nil), p.MedicineNames...)
	if p.DispenseDate != nil {
		d := *p.DispenseDate
		c.DispenseDate = &d
	}
	return &c
}
