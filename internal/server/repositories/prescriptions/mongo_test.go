package prescriptions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

func rxDoc(id string, dispensed *time.Time) bson.D {
	d := bson.D{
		{Key: "_id", Value: id},
		{Key: "patientId", Value: patientID},
		{Key: "patientMedTrackId", Value: "MTAB12CD34"},
		{Key: "doctorId", Value: doctorID},
		{Key: "diagnosis", Value: "Flu"},
		{Key: "medicineNames", Value: bson.A{"Paracetamol", "ORS"}},
		{Key: "issueDate", Value: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	if dispensed != nil {
		d = append(d,
			bson.E{Key: "dispenseDate", Value: *dispensed},
			bson.E{Key: "dispensedBy", Value: pharmID},
			bson.E{Key: "remarks", Value: "done"})
	} else {
		d = append(d, bson.E{Key: "dispenseDate", Value: nil})
	}
	return d
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	ns := func(mt *mtest.T) string { return mt.Coll.Database().Name() + "." + mt.Coll.Name() }

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p, err := repo.Create(context.Background(), &models.Prescription{PatientID: patientID, Diagnosis: "Flu"})
		require.NoError(mt, err)
		assert.NotEmpty(mt, p.ID)
		assert.NotNil(mt, p.MedicineNames)
		assert.False(mt, p.IssueDate.IsZero())
	})

	mt.Run("list by patient", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, rxDoc(rxID, nil), rxDoc("second", nil)))

		list, err := repo.ListByPatientMedTrackID(context.Background(), "MTAB12CD34")
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, []string{"Paracetamol", "ORS"}, list[0].MedicineNames)
		assert.Nil(mt, list[0].DispenseDate)
	})

	mt.Run("list empty", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		list, err := repo.ListByDoctorID(context.Background(), doctorID)
		require.NoError(mt, err)
		assert.NotNil(mt, list)
		assert.Empty(mt, list)
	})

	mt.Run("dispense success", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		at := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: rxDoc(rxID, &at)}})

		p, err := repo.Dispense(context.Background(), rxID, pharmID, "done", at)
		require.NoError(mt, err)
		require.NotNil(mt, p.DispenseDate)
		assert.True(mt, at.Equal(*p.DispenseDate))
		assert.Equal(mt, pharmID, p.DispensedBy)
	})

	mt.Run("dispense already dispensed", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		at := time.Now()
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, rxDoc(rxID, &at)),
		)

		_, err := repo.Dispense(context.Background(), rxID, pharmID, "again", time.Now())
		assert.ErrorIs(mt, err, common.ErrorAlreadyDispensed)
	})

	mt.Run("dispense not found", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch),
		)

		_, err := repo.Dispense(context.Background(), "missing", pharmID, "", time.Now())
		assert.ErrorIs(mt, err, common.ErrorNotFound)
	})

	mt.Run("set attachment key", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}},
			bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}},
		)

		require.NoError(mt, repo.SetAttachmentKey(context.Background(), rxID, "k"))
		assert.ErrorIs(mt, repo.SetAttachmentKey(context.Background(), "missing", "k"), common.ErrorNotFound)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, repo.EnsureIndexes(context.Background()))
	})
}
