package secondary

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/repository"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/database"
)

// SessionRepositoryImpl implements SessionRepository interface
type SessionRepositoryImpl struct {
	db         *database.MongoDB
	collection *mongo.Collection
}

// NewSessionRepository creates new session repository
func NewSessionRepository(db *database.MongoDB) repository.SessionRepository {
	return &SessionRepositoryImpl{
		db:         db,
		collection: db.GetCollection(database.SessionsCollection),
	}
}

// GetLatestActiveSession returns the newest active, unexpired session for a device
func (r *SessionRepositoryImpl) GetLatestActiveSession(ctx context.Context, deviceID string) (*entity.Session, error) {
	var session entity.Session

	err := r.retryOperation(ctx, func() error {
		opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
		return r.collection.FindOne(ctx, activeSessionFilter(deviceID, time.Now()), opts).Decode(&session)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func activeSessionFilter(deviceID string, now time.Time) bson.M {
	return bson.M{
		"device_id": deviceID,
		"status":    entity.SessionStatusActive,
		"token":     bson.M{"$ne": ""},
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$exists": false}},
			bson.M{"expires_at": nil},
			bson.M{"expires_at": bson.M{"$gt": now}},
		},
	}
}

// retryOperation executes an operation with retry logic for MongoDB connection issues
func (r *SessionRepositoryImpl) retryOperation(ctx context.Context, operation func() error) error {
	maxRetries := 3
	baseDelay := 200 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = operation()
		if err == nil || !isConnectionError(err) || attempt == maxRetries-1 {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay * time.Duration(attempt+1)):
		}
	}
	return err
}

// isConnectionError checks if the error is related to MongoDB connection issues
func isConnectionError(err error) bool {
	if err == nil || errors.Is(err, mongo.ErrNoDocuments) {
		return false
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, connErr := range []string{
		"connection",
		"server selection",
		"no reachable servers",
		"socket",
		"broken pipe",
	} {
		if strings.Contains(errStr, connErr) {
			return true
		}
	}
	return false
}
