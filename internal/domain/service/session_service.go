package service

import (
	"context"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
)

// SessionProvider exposes the current authenticated session. It is read, never owned,
// by the realtime layer. Implementations return a NO_SESSION error when there is none.
type SessionProvider interface {
	CurrentSession(ctx context.Context) (*entity.Session, error)
}
