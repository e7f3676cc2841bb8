package models

import "time"

// Prescription is issued by a doctor to a patient and dispensed at most
// once by a pharmacist.
type Prescription struct {
	ID                string     `json:"_id" bson:"_id"`
	PatientID         string     `json:"patientId" bson:"patientId"`
	PatientMedTrackID string     `json:"patientMedTrackId" bson:"patientMedTrackId"`
	DoctorID          string     `json:"doctorId" bson:"doctorId"`
	Diagnosis         string     `json:"diagnosis" bson:"diagnosis"`
	MedicineNames     []string   `json:"medicineNames" bson:"medicineNames"`
	Notes             string     `json:"notes,omitempty" bson:"notes,omitempty"`
	IssueDate         time.Time  `json:"issueDate" bson:"issueDate"`
	DispenseDate      *time.Time `json:"dispenseDate" bson:"dispenseDate"`
	DispensedBy       string     `json:"dispensedBy,omitempty" bson:"dispensedBy,omitempty"`
	Remarks           string     `json:"remarks,omitempty" bson:"remarks,omitempty"`
	AttachmentKey     string     `json:"attachmentKey,omitempty" bson:"attachmentKey,omitempty"`
}

func (p *Prescription) Dispensed() bool {
	return p.DispenseDate != nil
}

// PatientRecord is the pharmacy search result for one MedTrack ID.
type PatientRecord struct {
	Patient       UserView        `json:"patient"`
	Prescriptions []*Prescription `json:"prescriptions"`
}
