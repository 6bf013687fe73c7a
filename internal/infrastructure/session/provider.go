package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/repository"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/service"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/config"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
	rterrors "github.com/valentine-ezugu/xflowapp-sub001/pkg/errors"
)

// StaticProvider serves a session fixed at startup, from configuration or flags
type StaticProvider struct {
	session *entity.Session
}

// NewStaticProvider creates a provider for a fixed token. An empty token means
// there is no session.
func NewStaticProvider(token string, userID int64) *StaticProvider {
	if token == "" {
		return &StaticProvider{}
	}
	return &StaticProvider{
		session: &entity.Session{
			UserID: userID,
			Token:  token,
			Status: entity.SessionStatusActive,
		},
	}
}

// CurrentSession returns the configured session
func (p *StaticProvider) CurrentSession(ctx context.Context) (*entity.Session, error) {
	if p.session == nil {
		return nil, rterrors.NewNoSessionError("no session token configured")
	}
	return p.session, nil
}

// RepositoryProvider reads the newest active session for one device from storage
type RepositoryProvider struct {
	repo     repository.SessionRepository
	deviceID string
	logger   *logger.Logger
}

// NewRepositoryProvider creates a provider backed by a session repository
func NewRepositoryProvider(repo repository.SessionRepository, deviceID string, logger *logger.Logger) *RepositoryProvider {
	return &RepositoryProvider{
		repo:     repo,
		deviceID: deviceID,
		logger:   logger.WithComponent("session-provider"),
	}
}

// CurrentSession looks up the session on every call so token rotation is picked up
// by the next connection attempt.
func (p *RepositoryProvider) CurrentSession(ctx context.Context) (*entity.Session, error) {
	session, err := p.repo.GetLatestActiveSession(ctx, p.deviceID)
	if err != nil {
		return nil, rterrors.NewSessionStoreError("failed to load session", err)
	}
	if session == nil {
		return nil, rterrors.NewNoSessionError("no active session for device " + p.deviceID)
	}

	p.logger.Debug("Session loaded",
		zap.Int64("user_id", session.UserID),
		zap.String("device_id", p.deviceID))
	return session, nil
}

// NewFromConfig creates the provider selected by session.source. repo may be nil
// for the static source.
func NewFromConfig(cfg *config.SessionConfig, repo repository.SessionRepository, logger *logger.Logger) (service.SessionProvider, error) {
	switch cfg.Source {
	case config.SessionSourceStatic:
		return NewStaticProvider(cfg.Token, cfg.UserID), nil
	case config.SessionSourceMongoDB:
		if repo == nil {
			return nil, rterrors.NewConfigurationError("mongodb session source needs a session repository", nil)
		}
		return NewRepositoryProvider(repo, cfg.DeviceID, logger), nil
	default:
		return nil, rterrors.NewConfigurationError("unknown session source "+cfg.Source, nil)
	}
}
