package application

import (
	"fmt"
	"sync"
)

// ShippingNumberProvider hands out SH000001-style numbers from a process-wide
// counter seeded at startup from the persisted shipping count
type ShippingNumberProvider struct {
	mu      sync.Mutex
	current int64
}

// NewShippingNumberProvider creates a provider starting at zero
func NewShippingNumberProvider() *ShippingNumberProvider {
	return &ShippingNumberProvider{}
}

// Init seeds the counter with the number of existing shippings
func (p *ShippingNumberProvider) Init(count int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = count
}

// Next returns the next shipping number
func (p *ShippingNumberProvider) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	return fmt.Sprintf("SH%06d", p.current)
}
