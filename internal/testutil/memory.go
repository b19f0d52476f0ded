// Package testutil provides in-memory stores and builders for exercising
// the application layer without a database.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// Store is an in-memory database shared by the repositories below. Reads
// hand out copies so nothing changes until Commit.
type Store struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	shippings map[string]*domain.Shipping
	tariffs   map[string]*domain.Tariff
	stats     map[string]*domain.CarrierRequestDatesStat

	History       []domain.HistoryEntry
	Notifications []domain.Notification
	Commits       int
	CommitErr     error
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		orders:    make(map[string]*domain.Order),
		shippings: make(map[string]*domain.Shipping),
		tariffs:   make(map[string]*domain.Tariff),
		stats:     make(map[string]*domain.CarrierRequestDatesStat),
	}
}

// PutOrders seeds orders
func (s *Store) PutOrders(orders ...*domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range orders {
		c := *o
		s.orders[o.ID] = &c
	}
}

// PutShippings seeds shippings
func (s *Store) PutShippings(shippings ...*domain.Shipping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range shippings {
		c := *sh
		s.shippings[sh.ID] = &c
	}
}

// PutTariffs seeds tariffs
func (s *Store) PutTariffs(tariffs ...*domain.Tariff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tariffs {
		c := *t
		s.tariffs[t.ID] = &c
	}
}

// Order returns the stored order
func (s *Store) Order(id string) *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		c := *o
		return &c
	}
	return nil
}

// Shipping returns the stored shipping
func (s *Store) Shipping(id string) *domain.Shipping {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh, ok := s.shippings[id]; ok {
		c := *sh
		return &c
	}
	return nil
}

// Stat returns the stored carrier request stat
func (s *Store) Stat(shippingID, carrierID string) *domain.CarrierRequestDatesStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stats[shippingID+"/"+carrierID]; ok {
		c := *st
		return &c
	}
	return nil
}

// HistoryKeys lists the message keys of the history written for entityID
func (s *Store) HistoryKeys(entityID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for _, h := range s.History {
		if h.EntityID == entityID {
			keys = append(keys, h.MessageKey)
		}
	}
	return keys
}

// ListByEntity implements domain.HistoryRepository
func (s *Store) ListByEntity(_ context.Context, entityID string) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.HistoryEntry
	for _, h := range s.History {
		if h.EntityID == entityID {
			out = append(out, h)
		}
	}
	return out, nil
}

// Commit applies a change set
func (s *Store) Commit(_ context.Context, changes *domain.ChangeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CommitErr != nil {
		return s.CommitErr
	}
	for _, o := range changes.Orders() {
		c := *o
		s.orders[o.ID] = &c
	}
	for _, sh := range changes.Shippings() {
		c := *sh
		s.shippings[sh.ID] = &c
	}
	for _, t := range changes.Tariffs() {
		c := *t
		s.tariffs[t.ID] = &c
	}
	for _, st := range changes.Stats() {
		c := *st
		s.stats[st.ShippingID+"/"+st.CarrierID] = &c
	}
	s.History = append(s.History, changes.History()...)
	s.Notifications = append(s.Notifications, changes.Notifications()...)
	s.Commits++
	return nil
}

// Orders returns the store as an OrderRepository
func (s *Store) Orders() domain.OrderRepository { return orderRepo{s} }

// Shippings returns the store as a ShippingRepository
func (s *Store) Shippings() domain.ShippingRepository { return shippingRepo{s} }

// Tariffs returns the store as a TariffRepository
func (s *Store) Tariffs() domain.TariffRepository { return tariffRepo{s} }

// Stats returns the store as a CarrierRequestStatRepository
func (s *Store) Stats() domain.CarrierRequestStatRepository { return statRepo{s} }

type orderRepo struct{ s *Store }

func (r orderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	if o := r.s.Order(id); o != nil {
		return o, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
}

func (r orderRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, id := range ids {
		if o := r.s.Order(id); o != nil {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r orderRepo) FindByShippingID(_ context.Context, shippingID string) ([]*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.s.orders {
		if o.InShippingOf(shippingID) {
			c := *o
			out = append(out, &c)
		}
	}
	sortOrders(out)
	return out, nil
}

type shippingRepo struct{ s *Store }

func (r shippingRepo) FindByID(_ context.Context, id string) (*domain.Shipping, error) {
	if sh := r.s.Shipping(id); sh != nil {
		return sh, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrShippingNotFound, id)
}

func (r shippingRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Shipping, error) {
	var out []*domain.Shipping
	for _, id := range ids {
		if sh := r.s.Shipping(id); sh != nil {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (r shippingRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.shippings)), nil
}

type tariffRepo struct{ s *Store }

func (r tariffRepo) FindByID(_ context.Context, id string) (*domain.Tariff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tariffs[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrTariffNotFound, id)
}

func (r tariffRepo) FindActive(_ context.Context, date time.Time) ([]*domain.Tariff, error) {
	return r.filter(func(t *domain.Tariff) bool { return t.Covers(date) }), nil
}

func (r tariffRepo) FindByTariffication(_ context.Context, tt domain.TarifficationType) ([]*domain.Tariff, error) {
	return r.filter(func(t *domain.Tariff) bool { return t.TarifficationType == tt }), nil
}

func (r tariffRepo) filter(keep func(*domain.Tariff) bool) []*domain.Tariff {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Tariff
	for _, t := range r.s.tariffs {
		if keep(t) {
			c := *t
			out = append(out, &c)
		}
	}
	sortTariffs(out)
	return out
}

type statRepo struct{ s *Store }

func (r statRepo) Find(_ context.Context, shippingID, carrierID string) (*domain.CarrierRequestDatesStat, error) {
	return r.s.Stat(shippingID, carrierID), nil
}
