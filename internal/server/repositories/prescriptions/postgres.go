package prescriptions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/dbx"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

const columns = `id, patient_id, patient_med_track_id, doctor_id, diagnosis, medicine_names,
		 notes, issue_date, dispense_date, dispensed_by, remarks, attachment_key`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Prescription) (*models.Prescription, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.IssueDate.IsZero() {
		p.IssueDate = time.Now().UTC()
	}

	medicines, err := json.Marshal(p.MedicineNames)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO prescriptions (id, patient_id, patient_med_track_id, doctor_id, diagnosis, medicine_names, notes, issue_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.PatientID, p.PatientMedTrackID, p.DoctorID, p.Diagnosis, string(medicines), p.Notes, p.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Prescription, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM prescriptions WHERE id = $1`, id)
	return scanOne(row)
}

func (r *PostgresRepository) ListByPatientMedTrackID(ctx context.Context, medTrackID string) ([]*models.Prescription, error) {
	return r.list(ctx, `SELECT `+columns+` FROM prescriptions
		 WHERE patient_med_track_id = $1
		 ORDER BY issue_date DESC`, medTrackID)
}

func (r *PostgresRepository) ListByDoctorID(ctx context.Context, doctorID string) ([]*models.Prescription, error) {
	if uuid.Validate(doctorID) != nil {
		return []*models.Prescription{}, nil
	}
	return r.list(ctx, `SELECT `+columns+` FROM prescriptions
		 WHERE doctor_id = $1
		 ORDER BY issue_date DESC`, doctorID)
}

// Dispense locks the row, checks it has not been dispensed and records the
// dispense in the same transaction, so concurrent callers serialize on the
// row lock and exactly one of them succeeds.
func (r *PostgresRepository) Dispense(ctx context.Context, id, pharmacistID, remarks string, at time.Time) (*models.Prescription, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}

	var out *models.Prescription
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var dispensed sql.NullTime
		err := tx.QueryRowContext(ctx,
			`SELECT dispense_date FROM prescriptions WHERE id = $1 FOR UPDATE`, id).Scan(&dispensed)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}
		if dispensed.Valid {
			return common.ErrorAlreadyDispensed
		}

		row := tx.QueryRowContext(ctx,
			`UPDATE prescriptions SET dispense_date = $2, dispensed_by = $3, remarks = $4
		 WHERE id = $1
		 RETURNING `+columns, id, at, pharmacistID, remarks)
		out, err = scanOne(row)
		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *PostgresRepository) SetAttachmentKey(ctx context.Context, id, key string) error {
	if uuid.Validate(id) != nil {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, `UPDATE prescriptions SET attachment_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.Prescription, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Prescription{}
	for rows.Next() {
		p, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(s scanner) (*models.Prescription, error) {
	var (
		p           models.Prescription
		medicines   []byte
		dispensed   sql.NullTime
		dispensedBy sql.NullString
	)

	err := s.Scan(&p.ID, &p.PatientID, &p.PatientMedTrackID, &p.DoctorID, &p.Diagnosis, &medicines,
		&p.Notes, &p.IssueDate, &dispensed, &dispensedBy, &p.Remarks, &p.AttachmentKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(medicines) > 0 {
		if err := json.Unmarshal(medicines, &p.MedicineNames); err != nil {
			return nil, fmt.Errorf("db error: medicine_names: %w", err)
		}
	}
	if dispensed.Valid {
		t := dispensed.Time
		p.DispenseDate = &t
	}
	p.DispensedBy = dispensedBy.String

	return &p, nil
}
