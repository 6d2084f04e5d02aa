package payment

import "context"

// Provider settles a created intent with the upstream payment service.
type Provider interface {
	Settle(ctx context.Context, intent *Intent) (Status, error)
}

// MockProvider settles everything instantly. Stands in for a real
// acquirer integration.
type MockProvider struct{}

func (MockProvider) Settle(ctx context.Context, intent *Intent) (Status, error) {
	return StatusPaid, nil
}
