package entity

import "github.com/valentine-ezugu/xflowapp-sub001/pkg/utils"

// Filter declares which events a listener wants. The criteria form a union: an event
// matches when its type is in Types, or its counterparty id equals CounterpartyID, or
// its counterparty address equals CounterpartyAddress.
type Filter struct {
	Types               map[EventType]struct{}
	CounterpartyID      *int64
	CounterpartyAddress *string
}

// NewTypeFilter builds a filter matching any of the given event types
func NewTypeFilter(types ...EventType) *Filter {
	f := &Filter{Types: make(map[EventType]struct{}, len(types))}
	for _, t := range types {
		f.Types[t] = struct{}{}
	}
	return f
}

// NewCounterpartyFilter builds a filter matching a counterparty by id or address.
// Either key may be nil.
func NewCounterpartyFilter(id *int64, address *string) *Filter {
	return &Filter{
		CounterpartyID:      id,
		CounterpartyAddress: utils.NormalizeAddressPtr(address),
	}
}

// IsEmpty reports whether the filter declares no criteria. An empty filter behaves
// like no filter at all.
func (f *Filter) IsEmpty() bool {
	return f == nil || (len(f.Types) == 0 && f.CounterpartyID == nil && f.CounterpartyAddress == nil)
}

// Matches applies the filter to an event. Addresses are compared in normalized form
// on both sides, so hand-built filters and undecoded events behave like decoded ones.
func (f *Filter) Matches(event WebSocketEvent) bool {
	if f.IsEmpty() {
		return true
	}
	if _, ok := f.Types[event.Type]; ok {
		return true
	}
	if f.CounterpartyID != nil && event.CounterpartyID != nil && *f.CounterpartyID == *event.CounterpartyID {
		return true
	}
	if f.CounterpartyAddress != nil && event.CounterpartyAddress != nil {
		want := utils.NormalizeAddress(*f.CounterpartyAddress)
		if want != "" && want == utils.NormalizeAddress(*event.CounterpartyAddress) {
			return true
		}
	}
	return false
}

// TypeNames returns the declared types as strings, for logging
func (f *Filter) TypeNames() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.Types))
	for t := range f.Types {
		names = append(names, string(t))
	}
	return names
}
