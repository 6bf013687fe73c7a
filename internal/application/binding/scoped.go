package binding

import (
	"context"
	"sync"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/service"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
	"github.com/valentine-ezugu/xflowapp-sub001/pkg/utils"
)

// Scoped receives events for one counterparty, matched by id or address. A scope
// with neither key set receives nothing.
type Scoped struct {
	*base

	scopeMu sync.Mutex
	id      *int64
	address *string
}

// NewScoped creates an inactive binding for the given counterparty
func NewScoped(
	connection service.ConnectionManager,
	registry service.SubscriptionRegistry,
	callback service.Listener,
	logger *logger.Logger,
	counterpartyID *int64,
	counterpartyAddress *string,
) *Scoped {
	return &Scoped{
		base:    newBase(connection, registry, callback, logger.WithComponent("scoped-binding")),
		id:      copyInt64(counterpartyID),
		address: utils.NormalizeAddressPtr(counterpartyAddress),
	}
}

// Activate connects if needed and starts delivering events for the scope
func (b *Scoped) Activate() {
	filter := b.filter()
	b.activate(filter, !filter.IsEmpty())
}

// ActivateContext activates the binding until ctx is done
func (b *Scoped) ActivateContext(ctx context.Context) {
	filter := b.filter()
	b.bindContext(ctx, b.activate(filter, !filter.IsEmpty()))
}

// SetScope changes the counterparty. An active binding re-registers with the new
// criteria; an unchanged scope is a no-op.
func (b *Scoped) SetScope(counterpartyID *int64, counterpartyAddress *string) {
	address := utils.NormalizeAddressPtr(counterpartyAddress)

	b.scopeMu.Lock()
	if equalInt64(b.id, counterpartyID) && equalString(b.address, address) {
		b.scopeMu.Unlock()
		return
	}
	b.id = copyInt64(counterpartyID)
	b.address = address
	b.scopeMu.Unlock()

	filter := b.filter()
	b.rebind(filter, !filter.IsEmpty())
}

func (b *Scoped) filter() *entity.Filter {
	b.scopeMu.Lock()
	defer b.scopeMu.Unlock()
	return &entity.Filter{
		CounterpartyID:      b.id,
		CounterpartyAddress: b.address,
	}
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func equalInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
