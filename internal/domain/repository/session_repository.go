package repository

import (
	"context"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
)

// SessionRepository interface for session data operations
type SessionRepository interface {
	// GetLatestActiveSession returns the newest usable session for a device, or nil
	// when there is none.
	GetLatestActiveSession(ctx context.Context, deviceID string) (*entity.Session, error)
}
