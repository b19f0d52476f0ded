package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// Dictionaries is a map-backed reference data source
type Dictionaries struct {
	Companies      map[string]*domain.Company
	Warehouses     map[string]*domain.Warehouse
	Carriers       map[string]*domain.Carrier
	VehicleTypeMap map[string]*domain.VehicleType
	BodyTypes      map[string]*domain.BodyType
	Reads          int
}

// NewDictionaries creates an empty source
func NewDictionaries() *Dictionaries {
	return &Dictionaries{
		Companies:      make(map[string]*domain.Company),
		Warehouses:     make(map[string]*domain.Warehouse),
		Carriers:       make(map[string]*domain.Carrier),
		VehicleTypeMap: make(map[string]*domain.VehicleType),
		BodyTypes:      make(map[string]*domain.BodyType),
	}
}

func find[T any](d *Dictionaries, m map[string]*T, id string, notFound error) (*T, error) {
	d.Reads++
	if v, ok := m[id]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", notFound, id)
}

func (d *Dictionaries) Company(_ context.Context, id string) (*domain.Company, error) {
	return find(d, d.Companies, id, domain.ErrCompanyNotFound)
}

func (d *Dictionaries) Warehouse(_ context.Context, id string) (*domain.Warehouse, error) {
	return find(d, d.Warehouses, id, domain.ErrWarehouseNotFound)
}

func (d *Dictionaries) Carrier(_ context.Context, id string) (*domain.Carrier, error) {
	return find(d, d.Carriers, id, domain.ErrCarrierNotFound)
}

func (d *Dictionaries) VehicleType(_ context.Context, id string) (*domain.VehicleType, error) {
	return find(d, d.VehicleTypeMap, id, domain.ErrVehicleTypeNotFound)
}

func (d *Dictionaries) BodyType(_ context.Context, id string) (*domain.BodyType, error) {
	return find(d, d.BodyTypes, id, domain.ErrBodyTypeNotFound)
}

func (d *Dictionaries) VehicleTypes(_ context.Context) ([]*domain.VehicleType, error) {
	d.Reads++
	out := make([]*domain.VehicleType, 0, len(d.VehicleTypeMap))
	for _, v := range d.VehicleTypeMap {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PoolingCall is one recorded request to the fake pooling service
type PoolingCall struct {
	Op      string
	Request *domain.ReservationRequest
	Filter  *domain.SlotFilter
}

// PoolingClient is a scripted pooling service. Unset responses succeed
// with empty results.
type PoolingClient struct {
	mu    sync.Mutex
	Calls []PoolingCall

	Slots    domain.HTTPResult[[]domain.Slot]
	Booking  []domain.HTTPResult[*domain.Reservation]
	Update   domain.HTTPResult[*domain.Reservation]
	Cancel   domain.HTTPResult[*domain.Reservation]
	bookings int
}

// NewPoolingClient creates a client that answers every call with success
func NewPoolingClient() *PoolingClient {
	return &PoolingClient{
		Slots:  domain.HTTPSuccess(http.StatusOK, []domain.Slot{}),
		Update: domain.HTTPSuccess(http.StatusOK, &domain.Reservation{}),
		Cancel: domain.HTTPSuccess(http.StatusOK, &domain.Reservation{}),
	}
}

func (c *PoolingClient) record(call PoolingCall) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, call)
}

// Ops lists the recorded operations in call order
func (c *PoolingClient) Ops() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ops := make([]string, len(c.Calls))
	for i, call := range c.Calls {
		ops[i] = call.Op
	}
	return ops
}

func (c *PoolingClient) GetSlots(_ context.Context, filter domain.SlotFilter, _ *domain.Company) domain.HTTPResult[[]domain.Slot] {
	c.record(PoolingCall{Op: "getSlots", Filter: &filter})
	return c.Slots
}

func (c *PoolingClient) GetSlot(_ context.Context, id string, _ *domain.Company) domain.HTTPResult[*domain.Slot] {
	c.record(PoolingCall{Op: "getSlot"})
	for i := range c.Slots.Result {
		if c.Slots.Result[i].ID == id {
			slot := c.Slots.Result[i]
			return domain.HTTPSuccess(http.StatusOK, &slot)
		}
	}
	return domain.HTTPFailure[*domain.Slot](http.StatusNotFound, "slot not found")
}

// BookSlot answers with the scripted bookings in turn, repeating the last
func (c *PoolingClient) BookSlot(_ context.Context, req domain.ReservationRequest, _ *domain.Company) domain.HTTPResult[*domain.Reservation] {
	c.record(PoolingCall{Op: "bookSlot", Request: &req})
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Booking) == 0 {
		return domain.HTTPSuccess(http.StatusOK, &domain.Reservation{ID: "R-1", Number: "B-1", SlotID: req.SlotID})
	}
	i := c.bookings
	if i >= len(c.Booking) {
		i = len(c.Booking) - 1
	}
	c.bookings++
	return c.Booking[i]
}

func (c *PoolingClient) UpdateReservation(_ context.Context, req domain.ReservationRequest, _ *domain.Company) domain.HTTPResult[*domain.Reservation] {
	c.record(PoolingCall{Op: "updateReservation", Request: &req})
	return c.Update
}

func (c *PoolingClient) CancelSlot(_ context.Context, _, _, _ string, _ *domain.Company) domain.HTTPResult[*domain.Reservation] {
	c.record(PoolingCall{Op: "cancelSlot"})
	return c.Cancel
}

func sortOrders(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderNumber < orders[j].OrderNumber })
}

func sortTariffs(tariffs []*domain.Tariff) {
	sort.Slice(tariffs, func(i, j int) bool { return tariffs[i].ID < tariffs[j].ID })
}
