package repomanager

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/dmitrijs2005/medtrack/internal/server/repositories/prescriptions"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/users"
)

// DefaultMongoDatabase is used when the connection string names no database.
const DefaultMongoDatabase = "medTrack"

type MongoRepositoryManager struct {
	client        *mongo.Client
	users         *users.MongoRepository
	prescriptions *prescriptions.MongoRepository
}

// OpenMongo connects to the deployment in uri. The database is taken from
// the URI path.
func OpenMongo(ctx context.Context, uri string) (*MongoRepositoryManager, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid mongodb uri: %w", err)
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = DefaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("db error: %w", err)
	}

	return NewMongoRepositoryManager(client, dbName), nil
}

func NewMongoRepositoryManager(client *mongo.Client, dbName string) *MongoRepositoryManager {
	db := client.Database(dbName)
	return &MongoRepositoryManager{
		client:        client,
		users:         users.NewMongoRepository(db.Collection("users")),
		prescriptions: prescriptions.NewMongoRepository(db.Collection("prescriptions")),
	}
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MongoRepositoryManager) Prescriptions() prescriptions.Repository {
	return m.prescriptions
}

// RunMigrations creates the indexes; MongoDB has no schema to migrate.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	if err := m.users.EnsureIndexes(ctx); err != nil {
		return err
	}
	return m.prescriptions.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
