package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/config"
)

// SessionsCollection holds the device sessions the realtime layer reads
const SessionsCollection = "sessions"

// MongoDB represents MongoDB database connection
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	config   *config.MongoDBConfig
}

// NewMongoDB creates new MongoDB connection
func NewMongoDB(cfg *config.MongoDBConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	// Sessions are read once per connection attempt, so a small pool is enough
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(1).
		SetMaxConnIdleTime(60 * time.Second).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(10 * time.Second).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection with retry logic
	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		if err := client.Ping(ctx, nil); err != nil {
			if i == maxRetries-1 {
				client.Disconnect(ctx)
				return nil, err
			}
			time.Sleep(time.Duration(i+1) * time.Second)
			continue
		}
		break
	}

	return &MongoDB{
		Client:   client,
		Database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

// Close closes MongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// GetCollection returns a collection
func (m *MongoDB) GetCollection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

// CreateIndexes creates the indexes the session lookup relies on
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	sessions := m.GetCollection(SessionsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "device_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}

	_, err := sessions.Indexes().CreateMany(ctx, indexes)
	return err
}
