package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pooling operations, used for error mapping, logging and metrics
const (
	PoolingOpGetSlots = "getSlots"
	PoolingOpGetSlot  = "getSlot"
	PoolingOpBookSlot = "bookSlot"
	PoolingOpUpdate   = "updateReservation"
	PoolingOpCancel   = "cancelSlot"
)

// SlotFilter narrows the slot search of the pooling service
type SlotFilter struct {
	DateFrom         time.Time `json:"dateFrom"`
	DateTo           time.Time `json:"dateTo"`
	ShippingRegionID string    `json:"shippingRegionId,omitempty"`
	DeliveryRegionID string    `json:"deliveryRegionId,omitempty"`
	CarTypeID        string    `json:"carTypeId,omitempty"`
	ProductType      string    `json:"productType,omitempty"`
	CarrierID        string    `json:"carrierId,omitempty"`
}

// Slot is a bookable consolidated transport window
type Slot struct {
	ID                string           `json:"id"`
	ShippingDate      time.Time        `json:"shippingDate"`
	DeliveryDate      time.Time        `json:"deliveryDate"`
	ConsolidationDate *time.Time       `json:"consolidationDate,omitempty"`
	AvailableUntil    *time.Time       `json:"availableUntil,omitempty"`
	ShippingRegionID  string           `json:"shippingRegionId,omitempty"`
	DeliveryRegionID  string           `json:"deliveryRegionId,omitempty"`
	CarTypeID         string           `json:"carTypeId,omitempty"`
	CarrierID         string           `json:"carrierId,omitempty"`
	FreePallets       int64            `json:"freePallets"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
}

// PoolingAddress is a loading or unloading point of a reservation
type PoolingAddress struct {
	WarehouseID string `json:"warehouseId,omitempty"`
	PostalCode  string `json:"postalCode" validate:"required"`
	Region      string `json:"region" validate:"required"`
	City        string `json:"city" validate:"required"`
	Street      string `json:"street" validate:"required"`
	House       string `json:"house" validate:"required"`
}

// ReservationOrder is one order inside a reservation with its pallet positions
type ReservationOrder struct {
	OrderNumber          string           `json:"orderNumber"`
	ClientOrderNumber    string           `json:"clientOrderNumber"`
	ClientName           string           `json:"clientName,omitempty"`
	DistributionCenterID string           `json:"distributionCenterId,omitempty"`
	PalletFrom           int64            `json:"palletFrom"`
	PalletTo             int64            `json:"palletTo"`
	WeightKg             *decimal.Decimal `json:"weightKg,omitempty"`
	OrderCost            *decimal.Decimal `json:"orderCost,omitempty"`
	LoadingAddress       PoolingAddress   `json:"loadingAddress"`
	UnloadingAddress     PoolingAddress   `json:"unloadingAddress"`
}

// ReservationRequest books or updates a slot
type ReservationRequest struct {
	ID              string             `json:"id,omitempty"`
	SlotID          string             `json:"slotId"`
	ForeignID       string             `json:"foreignId"`
	Number          string             `json:"number"`
	ClientForeignID string             `json:"clientForeignId,omitempty"`
	CarrierID       string             `json:"carrierId"`
	CarTypeID       string             `json:"carTypeId,omitempty"`
	BodyTypeID      string             `json:"bodyTypeId,omitempty"`
	ProductType     string             `json:"productType,omitempty"`
	ShippingDate    time.Time          `json:"shippingDate"`
	DeliveryDate    time.Time          `json:"deliveryDate"`
	ExtraService    string             `json:"extraService,omitempty"`
	Orders          []ReservationOrder `json:"orders"`
}

// Reservation is a booked slot
type Reservation struct {
	ID                string     `json:"id"`
	Number            string     `json:"number"`
	SlotID            string     `json:"slotId"`
	Status            string     `json:"status,omitempty"`
	ConsolidationDate *time.Time `json:"consolidationDate,omitempty"`
	AvailableUntil    *time.Time `json:"availableUntil,omitempty"`
}
