package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/kitstock/internal/domain/models"
)

const snapshotCollection = "dashboard_snapshots"

// Repository defines the interface for dashboard snapshot storage.
type Repository interface {
	SaveSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error
	RecentSnapshots(ctx context.Context, limit int64) ([]models.DashboardSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return newRepository(client, dbName), nil
}

func newRepository(client *mongo.Client, dbName string) *MongoDBRepository {
	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: snapshotCollection,
	}
}

// SaveSnapshot stores the snapshot, replacing any earlier one taken the same day.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	_, err := collection.ReplaceOne(ctx,
		bson.M{"date": snapshot.Date},
		snapshot,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save dashboard snapshot: %w", err)
	}
	return nil
}

// RecentSnapshots returns up to limit snapshots, newest first.
func (r *MongoDBRepository) RecentSnapshots(ctx context.Context, limit int64) ([]models.DashboardSnapshot, error) {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	cursor, err := collection.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard snapshots: %w", err)
	}

	var snapshots []models.DashboardSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard snapshots: %w", err)
	}
	return snapshots, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
