package secondary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
)

func TestActiveSessionFilter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	filter := activeSessionFilter("device-1", now)

	assert.Equal(t, "device-1", filter["device_id"])
	assert.Equal(t, entity.SessionStatusActive, filter["status"])
	assert.Equal(t, bson.M{"$ne": ""}, filter["token"])

	or, ok := filter["$or"].(bson.A)
	assert.True(t, ok)
	assert.Len(t, or, 3)
	assert.Contains(t, or, bson.M{"expires_at": bson.M{"$gt": now}})
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no documents", mongo.ErrNoDocuments, false},
		{"server selection", errors.New("server selection error: context deadline exceeded"), true},
		{"socket", errors.New("Socket closed"), true},
		{"duplicate key", errors.New("E11000 duplicate key error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConnectionError(tt.err))
		})
	}
}

func TestRetryOperation_StopsOnNonConnectionError(t *testing.T) {
	repo := &SessionRepositoryImpl{}
	calls := 0

	err := repo.retryOperation(context.Background(), func() error {
		calls++
		return errors.New("E11000 duplicate key error")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryOperation_RetriesConnectionErrors(t *testing.T) {
	repo := &SessionRepositoryImpl{}
	calls := 0

	err := repo.retryOperation(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}
