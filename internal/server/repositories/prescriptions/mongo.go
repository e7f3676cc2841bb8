package prescriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "patientMedTrackId", Value: 1}, {Key: "issueDate", Value: -1}}},
		{Keys: bson.D{{Key: "doctorId", Value: 1}, {Key: "issueDate", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, p *models.Prescription) (*models.Prescription, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.IssueDate.IsZero() {
		p.IssueDate = time.Now().UTC()
	}
	p.IssueDate = p.IssueDate.Truncate(time.Millisecond)
	if p.MedicineNames == nil {
		p.MedicineNames = []string{}
	}

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Prescription, error) {
	p := &models.Prescription{}
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *MongoRepository) ListByPatientMedTrackID(ctx context.Context, medTrackID string) ([]*models.Prescription, error) {
	return r.list(ctx, bson.M{"patientMedTrackId": medTrackID})
}

func (r *MongoRepository) ListByDoctorID(ctx context.Context, doctorID string) ([]*models.Prescription, error) {
	return r.list(ctx, bson.M{"doctorId": doctorID})
}

// Dispense updates only a document whose dispenseDate is still null. When
// nothing matched, a second read tells a missing prescription from one that
// was already dispensed.
func (r *MongoRepository) Dispense(ctx context.Context, id, pharmacistID, remarks string, at time.Time) (*models.Prescription, error) {
	filter := bson.M{"_id": id, "dispenseDate": nil}
	update := bson.M{"$set": bson.M{
		"dispenseDate": at.UTC().Truncate(time.Millisecond),
		"dispensedBy":  pharmacistID,
		"remarks":      remarks,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	p := &models.Prescription{}
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(p)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, common.ErrorAlreadyDispensed
}

func (r *MongoRepository) SetAttachmentKey(ctx context.Context, id, key string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"attachmentKey": key}})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) list(ctx context.Context, filter bson.M) ([]*models.Prescription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "issueDate", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	out := []*models.Prescription{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
