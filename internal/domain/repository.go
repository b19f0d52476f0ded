package domain

import (
	"context"
	"time"
)

// OrderRepository reads orders
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Order, error)
	FindByShippingID(ctx context.Context, shippingID string) ([]*Order, error)
}

// ShippingRepository reads shippings
type ShippingRepository interface {
	FindByID(ctx context.Context, id string) (*Shipping, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Shipping, error)
	Count(ctx context.Context) (int64, error)
}

// TariffRepository reads rate cards
type TariffRepository interface {
	FindByID(ctx context.Context, id string) (*Tariff, error)
	// FindActive returns tariffs whose effective range covers date
	FindActive(ctx context.Context, date time.Time) ([]*Tariff, error)
	FindByTariffication(ctx context.Context, t TarifficationType) ([]*Tariff, error)
}

// CarrierRequestStatRepository reads carrier request stats
type CarrierRequestStatRepository interface {
	Find(ctx context.Context, shippingID, carrierID string) (*CarrierRequestDatesStat, error)
}

// HistoryRepository reads the audit trail
type HistoryRepository interface {
	ListByEntity(ctx context.Context, entityID string) ([]HistoryEntry, error)
}

// Dictionaries is the read-only reference data the core consumes
type Dictionaries interface {
	Company(ctx context.Context, id string) (*Company, error)
	Warehouse(ctx context.Context, id string) (*Warehouse, error)
	Carrier(ctx context.Context, id string) (*Carrier, error)
	VehicleType(ctx context.Context, id string) (*VehicleType, error)
	BodyType(ctx context.Context, id string) (*BodyType, error)
	VehicleTypes(ctx context.Context) ([]*VehicleType, error)
}

// UnitOfWork persists a change set atomically
type UnitOfWork interface {
	Commit(ctx context.Context, changes *ChangeSet) error
}

// PoolingClient talks to the external slot reservation service
type PoolingClient interface {
	GetSlots(ctx context.Context, filter SlotFilter, company *Company) HTTPResult[[]Slot]
	GetSlot(ctx context.Context, id string, company *Company) HTTPResult[*Slot]
	BookSlot(ctx context.Context, req ReservationRequest, company *Company) HTTPResult[*Reservation]
	UpdateReservation(ctx context.Context, req ReservationRequest, company *Company) HTTPResult[*Reservation]
	CancelSlot(ctx context.Context, reservationID, bookingNumber, foreignID string, company *Company) HTTPResult[*Reservation]
}
