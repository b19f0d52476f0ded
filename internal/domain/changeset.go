package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeSet accumulates everything one operation changed. Nothing reaches
// storage until the whole set is committed.
type ChangeSet struct {
	UserID        string
	Now           time.Time
	orders        map[string]*Order
	orderIDs      []string
	shippings     map[string]*Shipping
	shippingIDs   []string
	stats         []*CarrierRequestDatesStat
	tariffs       []*Tariff
	history       []HistoryEntry
	notifications []Notification
}

// NewChangeSet starts an empty change set
func NewChangeSet(userID string, now time.Time) *ChangeSet {
	return &ChangeSet{
		UserID:    userID,
		Now:       now,
		orders:    make(map[string]*Order),
		shippings: make(map[string]*Shipping),
	}
}

// TouchOrders marks orders as modified
func (c *ChangeSet) TouchOrders(orders ...*Order) {
	for _, o := range orders {
		o.UpdatedAt = c.Now
		if _, ok := c.orders[o.ID]; !ok {
			c.orderIDs = append(c.orderIDs, o.ID)
		}
		c.orders[o.ID] = o
	}
}

// TouchShipping marks a shipping as modified
func (c *ChangeSet) TouchShipping(s *Shipping) {
	s.UpdatedAt = c.Now
	if _, ok := c.shippings[s.ID]; !ok {
		c.shippingIDs = append(c.shippingIDs, s.ID)
	}
	c.shippings[s.ID] = s
}

// SaveStat records a carrier request stat upsert
func (c *ChangeSet) SaveStat(stat *CarrierRequestDatesStat) {
	c.stats = append(c.stats, stat)
}

// SaveTariff records a tariff upsert
func (c *ChangeSet) SaveTariff(t *Tariff) {
	c.tariffs = append(c.tariffs, t)
}

// AddHistory appends an audit entry for entityID
func (c *ChangeSet) AddHistory(entityID, messageKey string, args ...string) {
	c.history = append(c.history, HistoryEntry{
		ID:         uuid.New().String(),
		EntityID:   entityID,
		MessageKey: messageKey,
		Args:       args,
		UserID:     c.UserID,
		CreatedAt:  c.Now,
	})
}

// Notify queues a notification for delivery after commit
func (c *ChangeSet) Notify(n Notification) {
	c.notifications = append(c.notifications, n)
}

// Orders returns modified orders in first-touch order
func (c *ChangeSet) Orders() []*Order {
	out := make([]*Order, 0, len(c.orderIDs))
	for _, id := range c.orderIDs {
		out = append(out, c.orders[id])
	}
	return out
}

// Shippings returns modified shippings in first-touch order
func (c *ChangeSet) Shippings() []*Shipping {
	out := make([]*Shipping, 0, len(c.shippingIDs))
	for _, id := range c.shippingIDs {
		out = append(out, c.shippings[id])
	}
	return out
}

func (c *ChangeSet) Stats() []*CarrierRequestDatesStat { return c.stats }
func (c *ChangeSet) Tariffs() []*Tariff                 { return c.tariffs }
func (c *ChangeSet) History() []HistoryEntry            { return c.history }
func (c *ChangeSet) Notifications() []Notification      { return c.notifications }

// IsEmpty reports whether nothing would be written
func (c *ChangeSet) IsEmpty() bool {
	return len(c.orderIDs) == 0 && len(c.shippingIDs) == 0 && len(c.stats) == 0 &&
		len(c.tariffs) == 0 && len(c.history) == 0 && len(c.notifications) == 0
}
