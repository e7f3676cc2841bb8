package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create success", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := newUser()
		u.ID = ""
		got, err := repo.Create(context.Background(), u)
		require.NoError(mt, err)
		assert.NotEmpty(mt, got.ID)
		assert.False(mt, got.CreatedAt.IsZero())
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		for _, tt := range []struct{ index, field string }{
			{"email", FieldEmail},
			{"phone_1", FieldPhone},
			{"aadhaar", FieldAadhaar},
			{"medTrackId", FieldMedTrackID},
		} {
			repo := NewMongoRepository(mt.Coll)
			mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error collection: medTrack.users index: " + tt.index + " dup key: { x: \"y\" }",
			}))

			_, err := repo.Create(context.Background(), newUser())
			var dup *common.DuplicateFieldError
			require.True(mt, errors.As(err, &dup), "index %s: %v", tt.index, err)
			assert.Equal(mt, tt.field, dup.Field)
		}
	})

	mt.Run("create other write error", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "document failed validation"}))

		_, err := repo.Create(context.Background(), newUser())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, common.ErrorDuplicateField)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u-1"},
			{Key: "name", Value: "Asha"},
			{Key: "email", Value: "asha@example.com"},
			{Key: "phone", Value: "9876543210"},
			{Key: "role", Value: "doctor"},
			{Key: "medTrackId", Value: "MTAB12CD34"},
			{Key: "password", Value: "$2a$10$hash"},
			{Key: "createdAt", Value: created},
		}))

		got, err := repo.FindByEmailOrPhone(context.Background(), "asha@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, "u-1", got.ID)
		assert.Equal(mt, models.RoleDoctor, got.Role)
		assert.Equal(mt, "$2a$10$hash", got.PasswordHash)
		assert.True(mt, created.Equal(got.CreatedAt))
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByMedTrackID(context.Background(), "MTNOPE0000")
		assert.ErrorIs(mt, err, common.ErrorNotFound)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.EnsureIndexes(context.Background()))
	})
}

func TestDuplicateField(t *testing.T) {
	assert.Equal(t, "email", duplicateField(errors.New("E11000 duplicate key error collection: db.users index: email_1 dup key: {}")))
	assert.Empty(t, duplicateField(errors.New("E11000 duplicate key error collection: db.users index: _id_ dup key: {}")))
	assert.Empty(t, duplicateField(errors.New("something else")))
}
