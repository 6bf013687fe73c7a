package binding

import (
	"context"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/service"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
)

// AppWide receives events for the whole application, optionally limited to a set
// of event types.
type AppWide struct {
	*base
	types []entity.EventType
}

// NewAppWide creates an inactive app-wide binding. callback may be nil, in which case
// activation only ensures the connection is up until a callback is set.
func NewAppWide(
	connection service.ConnectionManager,
	registry service.SubscriptionRegistry,
	callback service.Listener,
	logger *logger.Logger,
	types ...entity.EventType,
) *AppWide {
	return &AppWide{
		base:  newBase(connection, registry, callback, logger.WithComponent("app-binding")),
		types: types,
	}
}

// Activate connects if needed and starts delivering events
func (b *AppWide) Activate() {
	b.activate(b.filter(), true)
}

// ActivateContext activates the binding until ctx is done
func (b *AppWide) ActivateContext(ctx context.Context) {
	b.bindContext(ctx, b.activate(b.filter(), true))
}

func (b *AppWide) filter() *entity.Filter {
	if len(b.types) == 0 {
		return nil
	}
	return entity.NewTypeFilter(b.types...)
}
