package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/dbx"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

const pgUniqueViolation = "23505"

var constraintFields = map[string]string{
	"users_email_key":        FieldEmail,
	"users_phone_key":        FieldPhone,
	"users_aadhaar_key":      FieldAadhaar,
	"users_med_track_id_key": FieldMedTrackID,
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectUser = `SELECT id, name, email, phone, aadhaar, role, med_track_id, password_hash, created_at
		 FROM users`

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO users (id, name, email, phone, aadhaar, role, med_track_id, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`

	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.Phone, user.Aadhaar,
		string(user.Role), user.MedTrackID, user.PasswordHash,
	).Scan(&createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if field, ok := constraintFields[pgErr.ConstraintName]; ok {
				return nil, &common.DuplicateFieldError{Field: field}
			}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.CreatedAt = createdAt
	return user, nil
}

func (r *PostgresRepository) FindByEmailOrPhone(ctx context.Context, identifier string) (*models.User, error) {
	column := "phone"
	if models.IsEmailIdentifier(identifier) {
		column = "email"
	}
	return r.getOne(ctx, selectUser+` WHERE `+column+` = $1`, identifier)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByMedTrackID(ctx context.Context, medTrackID string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE med_track_id = $1`, medTrackID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var role string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.Aadhaar,
		&role, &user.MedTrackID, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Role = models.Role(role)
	return user, nil
}
