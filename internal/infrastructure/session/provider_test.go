package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/config"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
	rterrors "github.com/valentine-ezugu/xflowapp-sub001/pkg/errors"
)

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) GetLatestActiveSession(ctx context.Context, deviceID string) (*entity.Session, error) {
	args := m.Called(ctx, deviceID)
	if s := args.Get(0); s != nil {
		return s.(*entity.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestStaticProvider(t *testing.T) {
	provider := NewStaticProvider("tok", 42)

	session, err := provider.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, int64(42), session.UserID)
	assert.Equal(t, entity.SessionStatusActive, session.Status)
}

func TestStaticProvider_NoToken(t *testing.T) {
	provider := NewStaticProvider("", 0)

	session, err := provider.CurrentSession(context.Background())
	assert.Nil(t, session)
	assert.True(t, rterrors.IsCode(err, rterrors.ErrCodeNoSession))
}

func TestRepositoryProvider_Found(t *testing.T) {
	repo := new(MockSessionRepository)
	stored := &entity.Session{UserID: 7, DeviceID: "device-1", Token: "tok", Status: entity.SessionStatusActive}
	repo.On("GetLatestActiveSession", mock.Anything, "device-1").Return(stored, nil)

	provider := NewRepositoryProvider(repo, "device-1", logger.NewNop())
	session, err := provider.CurrentSession(context.Background())

	require.NoError(t, err)
	assert.Same(t, stored, session)
	repo.AssertExpectations(t)
}

func TestRepositoryProvider_NoSession(t *testing.T) {
	repo := new(MockSessionRepository)
	repo.On("GetLatestActiveSession", mock.Anything, "device-1").Return(nil, nil)

	provider := NewRepositoryProvider(repo, "device-1", logger.NewNop())
	_, err := provider.CurrentSession(context.Background())

	assert.True(t, rterrors.IsCode(err, rterrors.ErrCodeNoSession))
}

func TestRepositoryProvider_StoreError(t *testing.T) {
	repo := new(MockSessionRepository)
	repo.On("GetLatestActiveSession", mock.Anything, "device-1").Return(nil, errors.New("server selection error"))

	provider := NewRepositoryProvider(repo, "device-1", logger.NewNop())
	_, err := provider.CurrentSession(context.Background())

	assert.True(t, rterrors.IsCode(err, rterrors.ErrCodeSessionStore))
	assert.False(t, rterrors.IsCode(err, rterrors.ErrCodeNoSession))
}

func TestNewFromConfig(t *testing.T) {
	provider, err := NewFromConfig(&config.SessionConfig{Source: config.SessionSourceStatic, Token: "tok"}, nil, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &StaticProvider{}, provider)

	_, err = NewFromConfig(&config.SessionConfig{Source: config.SessionSourceMongoDB, DeviceID: "d"}, nil, logger.NewNop())
	assert.True(t, rterrors.IsCode(err, rterrors.ErrCodeConfiguration))

	provider, err = NewFromConfig(&config.SessionConfig{Source: config.SessionSourceMongoDB, DeviceID: "d"}, new(MockSessionRepository), logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &RepositoryProvider{}, provider)

	_, err = NewFromConfig(&config.SessionConfig{Source: "keychain"}, nil, logger.NewNop())
	assert.Error(t, err)
}
