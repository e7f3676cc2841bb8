package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

var dupKeyIndex = regexp.MustCompile(`index: (\S+) dup key`)

type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

// EnsureIndexes creates the unique indexes the duplicate detection relies
// on. Index names equal the field they cover.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	var indexes []mongo.IndexModel
	for _, f := range []string{FieldEmail, FieldPhone, FieldAadhaar, FieldMedTrackID} {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: f, Value: 1}},
			Options: options.Index().SetName(f).SetUnique(true),
		})
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if field := duplicateField(err); field != "" {
				return nil, &common.DuplicateFieldError{Field: field}
			}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// duplicateField extracts the field from an E11000 message. Both our own
// index names and driver defaults ("email_1") are understood.
func duplicateField(err error) string {
	m := dupKeyIndex.FindStringSubmatch(err.Error())
	if m == nil {
		return ""
	}
	name := strings.TrimSuffix(m[1], "_1")
	switch name {
	case FieldEmail, FieldPhone, FieldAadhaar, FieldMedTrackID:
		return name
	}
	return ""
}

func (r *MongoRepository) FindByEmailOrPhone(ctx context.Context, identifier string) (*models.User, error) {
	key := FieldPhone
	if models.IsEmailIdentifier(identifier) {
		key = FieldEmail
	}
	return r.findOne(ctx, bson.M{key: identifier})
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetByMedTrackID(ctx context.Context, medTrackID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{FieldMedTrackID: medTrackID})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	user := &models.User{}
	if err := r.coll.FindOne(ctx, filter).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
