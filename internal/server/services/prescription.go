package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/attachments"
	"github.com/dmitrijs2005/medtrack/internal/server/auth"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/prescriptions"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/users"
)

const maxRemarksLength = 1000

// AttachmentStore presigns object storage URLs for prescription scans.
type AttachmentStore interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

type IssueRequest struct {
	PatientMedTrackID string   `json:"patientMedTrackId"`
	Diagnosis         string   `json:"diagnosis"`
	MedicineNames     []string `json:"medicineNames"`
	Notes             string   `json:"notes"`
}

type DispenseRequest struct {
	Remarks string `json:"remarks"`
}

type AttachmentUpload struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

type AttachmentDownload struct {
	DownloadURL string `json:"downloadUrl"`
}

type PrescriptionService struct {
	users         users.Repository
	prescriptions prescriptions.Repository
	attachments   AttachmentStore
	logger        logging.Logger
	now           func() time.Time
}

// NewPrescriptionService builds the service. A nil store disables
// attachments; the URL operations then return common.ErrorAttachmentsDisabled.
func NewPrescriptionService(usersRepo users.Repository, repo prescriptions.Repository, store AttachmentStore, logger logging.Logger) *PrescriptionService {
	return &PrescriptionService{
		users:         usersRepo,
		prescriptions: repo,
		attachments:   store,
		logger:        logger.With("module", "prescriptions"),
		now:           time.Now,
	}
}

// Issue creates a prescription for the patient with the given MedTrack ID.
func (s *PrescriptionService) Issue(ctx context.Context, doctor auth.Identity, req IssueRequest) (*models.Prescription, error) {
	if !doctor.HasRole(models.RoleDoctor, models.RoleAdmin) {
		return nil, common.ErrorForbidden
	}

	req.PatientMedTrackID = strings.TrimSpace(req.PatientMedTrackID)
	req.Diagnosis = strings.TrimSpace(req.Diagnosis)
	medicines := make([]string, 0, len(req.MedicineNames))
	for _, m := range req.MedicineNames {
		if m = strings.TrimSpace(m); m != "" {
			medicines = append(medicines, m)
		}
	}

	if req.PatientMedTrackID == "" || req.Diagnosis == "" || len(medicines) == 0 {
		return nil, common.NewValidationError("Missing required fields")
	}

	patient, err := s.users.GetByMedTrackID(ctx, req.PatientMedTrackID)
	if err != nil {
		return nil, s.mapRepoError(ctx, "error loading patient", err)
	}
	if patient.Role != models.RolePatient {
		return nil, common.NewValidationError("Target user is not a patient")
	}

	p, err := s.prescriptions.Create(ctx, &models.Prescription{
		PatientID:         patient.ID,
		PatientMedTrackID: patient.MedTrackID,
		DoctorID:          doctor.UserID,
		Diagnosis:         req.Diagnosis,
		MedicineNames:     medicines,
		Notes:             strings.TrimSpace(req.Notes),
		IssueDate:         s.now().UTC(),
	})
	if err != nil {
		return nil, s.mapRepoError(ctx, "error creating prescription", err)
	}

	s.logger.Info(ctx, "prescription issued", "prescription_id", p.ID, "doctor_id", doctor.UserID)
	return p, nil
}

// PatientPrescriptions returns the patient with the given MedTrack ID and
// their prescriptions, newest first.
func (s *PrescriptionService) PatientPrescriptions(ctx context.Context, medTrackID string) (*models.PatientRecord, error) {
	medTrackID = strings.TrimSpace(medTrackID)
	if medTrackID == "" {
		return nil, common.ErrorNotFound
	}

	patient, err := s.users.GetByMedTrackID(ctx, medTrackID)
	if err != nil {
		return nil, s.mapRepoError(ctx, "error loading patient", err)
	}
	if patient.Role != models.RolePatient {
		return nil, common.ErrorNotFound
	}

	list, err := s.prescriptions.ListByPatientMedTrackID(ctx, medTrackID)
	if err != nil {
		return nil, s.mapRepoError(ctx, "error listing prescriptions", err)
	}

	return &models.PatientRecord{Patient: patient.View(), Prescriptions: list}, nil
}

// ForIdentity lists a patient's own prescriptions or the ones a doctor
// issued. Other roles own none.
func (s *PrescriptionService) ForIdentity(ctx context.Context, id auth.Identity) ([]*models.Prescription, error) {
	var (
		list []*models.Prescription
		err  error
	)
	switch id.Role {
	case models.RolePatient:
		list, err = s.prescriptions.ListByPatientMedTrackID(ctx, id.MedTrackID)
	case models.RoleDoctor:
		list, err = s.prescriptions.ListByDoctorID(ctx, id.UserID)
	default:
		return []*models.Prescription{}, nil
	}
	if err != nil {
		return nil, s.mapRepoError(ctx, "error listing prescriptions", err)
	}
	return list, nil
}

// Dispense marks the prescription as dispensed by the caller. A prescription
// can be dispensed once; later attempts get common.ErrorAlreadyDispensed.
func (s *PrescriptionService) Dispense(ctx context.Context, pharmacist auth.Identity, prescriptionID string, req DispenseRequest) (*models.Prescription, error) {
	if !pharmacist.HasRole(models.RolePharmacist, models.RoleAdmin) {
		return nil, common.ErrorForbidden
	}

	remarks := strings.TrimSpace(req.Remarks)
	if len(remarks) > maxRemarksLength {
		return nil, common.NewValidationError("Remarks too long")
	}

	p, err := s.prescriptions.Dispense(ctx, prescriptionID, pharmacist.UserID, remarks, s.now().UTC())
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyDispensed) {
			s.logger.Warn(ctx, "dispense rejected, already dispensed",
				"prescription_id", prescriptionID, "pharmacist_id", pharmacist.UserID)
			return nil, err
		}
		return nil, s.mapRepoError(ctx, "error dispensing prescription", err)
	}

	s.logger.Info(ctx, "prescription dispensed", "prescription_id", p.ID, "pharmacist_id", pharmacist.UserID)
	return p, nil
}

// AttachmentUploadURL presigns an upload for a scan of the prescription and
// records the object key. Only the issuing doctor or an admin may upload.
func (s *PrescriptionService) AttachmentUploadURL(ctx context.Context, id auth.Identity, prescriptionID string) (*AttachmentUpload, error) {
	if s.attachments == nil {
		return nil, common.ErrorAttachmentsDisabled
	}

	p, err := s.prescriptions.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, s.mapRepoError(ctx, "error loading prescription", err)
	}
	if !(id.Role == models.RoleAdmin || (id.Role == models.RoleDoctor && p.DoctorID == id.UserID)) {
		return nil, common.ErrorForbidden
	}

	key := attachments.StorageKey(p.ID, s.now().UTC())
	url, err := s.attachments.PresignPut(ctx, key)
	if err != nil {
		s.logger.Error(ctx, "error presigning upload", "error", err)
		return nil, common.ErrorInternal
	}

	if err := s.prescriptions.SetAttachmentKey(ctx, p.ID, key); err != nil {
		return nil, s.mapRepoError(ctx, "error saving attachment key", err)
	}

	return &AttachmentUpload{UploadURL: url, Key: key}, nil
}

// AttachmentDownloadURL presigns a download of the stored scan. Patients
// may only fetch their own.
func (s *PrescriptionService) AttachmentDownloadURL(ctx context.Context, id auth.Identity, prescriptionID string) (*AttachmentDownload, error) {
	if s.attachments == nil {
		return nil, common.ErrorAttachmentsDisabled
	}

	p, err := s.prescriptions.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, s.mapRepoError(ctx, "error loading prescription", err)
	}
	if id.Role == models.RolePatient && p.PatientID != id.UserID {
		return nil, common.ErrorForbidden
	}
	if p.AttachmentKey == "" {
		return nil, common.ErrorNotFound
	}

	url, err := s.attachments.PresignGet(ctx, p.AttachmentKey)
	if err != nil {
		s.logger.Error(ctx, "error presigning download", "error", err)
		return nil, common.ErrorInternal
	}

	return &AttachmentDownload{DownloadURL: url}, nil
}

func (s *PrescriptionService) mapRepoError(ctx context.Context, msg string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.logger.Error(ctx, msg, "error", err)
	return common.ErrorInternal
}
