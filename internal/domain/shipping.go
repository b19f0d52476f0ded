package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shipping groups orders into one transport. Quantities and dates are
// aggregated from its orders and never edited directly.
type Shipping struct {
	ID             string        `bson:"_id" json:"id"`
	ShippingNumber string        `bson:"shippingNumber" json:"shippingNumber"`
	Status         ShippingState `bson:"status" json:"status"`
	CompanyID      *string       `bson:"companyId,omitempty" json:"companyId,omitempty"`

	CarrierID         *string            `bson:"carrierId,omitempty" json:"carrierId,omitempty"`
	VehicleTypeID     *string            `bson:"vehicleTypeId,omitempty" json:"vehicleTypeId,omitempty"`
	BodyTypeID        *string            `bson:"bodyTypeId,omitempty" json:"bodyTypeId,omitempty"`
	TarifficationType *TarifficationType `bson:"tarifficationType,omitempty" json:"tarifficationType,omitempty"`
	DeliveryType      *DeliveryType      `bson:"deliveryType,omitempty" json:"deliveryType,omitempty"`

	PalletsCount          *decimal.Decimal `bson:"palletsCount,omitempty" json:"palletsCount,omitempty"`
	ConfirmedPalletsCount *decimal.Decimal `bson:"confirmedPalletsCount,omitempty" json:"confirmedPalletsCount,omitempty"`
	ActualPalletsCount    *decimal.Decimal `bson:"actualPalletsCount,omitempty" json:"actualPalletsCount,omitempty"`
	WeightKg              *decimal.Decimal `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	ActualWeightKg        *decimal.Decimal `bson:"actualWeightKg,omitempty" json:"actualWeightKg,omitempty"`
	TrucksDowntime        *decimal.Decimal `bson:"trucksDowntime,omitempty" json:"trucksDowntime,omitempty"`
	TemperatureMin        *int             `bson:"temperatureMin,omitempty" json:"temperatureMin,omitempty"`
	TemperatureMax        *int             `bson:"temperatureMax,omitempty" json:"temperatureMax,omitempty"`

	ShippingWarehouseID  *string    `bson:"shippingWarehouseId,omitempty" json:"shippingWarehouseId,omitempty"`
	DeliveryWarehouseID  *string    `bson:"deliveryWarehouseId,omitempty" json:"deliveryWarehouseId,omitempty"`
	ShippingAddress      string     `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	DeliveryAddress      string     `bson:"deliveryAddress,omitempty" json:"deliveryAddress,omitempty"`
	LoadingArrivalTime   *time.Time `bson:"loadingArrivalTime,omitempty" json:"loadingArrivalTime,omitempty"`
	LoadingDepartureTime *time.Time `bson:"loadingDepartureTime,omitempty" json:"loadingDepartureTime,omitempty"`
	ShippingDate         *time.Time `bson:"shippingDate,omitempty" json:"shippingDate,omitempty"`
	DeliveryDate         *time.Time `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`

	BasicDeliveryCostWithoutVAT *decimal.Decimal `bson:"basicDeliveryCostWithoutVat,omitempty" json:"basicDeliveryCostWithoutVat,omitempty"`
	ExtraPointCostsWithoutVAT   *decimal.Decimal `bson:"extraPointCostsWithoutVat,omitempty" json:"extraPointCostsWithoutVat,omitempty"`
	ReturnCostWithoutVAT        *decimal.Decimal `bson:"returnCostWithoutVat,omitempty" json:"returnCostWithoutVat,omitempty"`
	DowntimeRate                *decimal.Decimal `bson:"downtimeRate,omitempty" json:"downtimeRate,omitempty"`
	OtherCosts                  *decimal.Decimal `bson:"otherCosts,omitempty" json:"otherCosts,omitempty"`
	TotalDeliveryCostWithoutVAT *decimal.Decimal `bson:"totalDeliveryCostWithoutVat,omitempty" json:"totalDeliveryCostWithoutVat,omitempty"`
	TotalDeliveryCost           *decimal.Decimal `bson:"totalDeliveryCost,omitempty" json:"totalDeliveryCost,omitempty"`

	IsPooling            bool       `bson:"isPooling" json:"isPooling"`
	BookingNumber        string     `bson:"bookingNumber,omitempty" json:"bookingNumber,omitempty"`
	PoolingReservationID string     `bson:"poolingReservationId,omitempty" json:"poolingReservationId,omitempty"`
	SlotID               string     `bson:"slotId,omitempty" json:"slotId,omitempty"`
	ConsolidationDate    *time.Time `bson:"consolidationDate,omitempty" json:"consolidationDate,omitempty"`
	AvailableUntil       *time.Time `bson:"availableUntil,omitempty" json:"availableUntil,omitempty"`

	Driver DriverData `bson:"driver" json:"driver"`

	IsNewCarrierRequest bool `bson:"isNewCarrierRequest" json:"isNewCarrierRequest"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Tariffication returns the tariffication type or "" when unset
func (s *Shipping) Tariffication() TarifficationType {
	if s.TarifficationType == nil {
		return ""
	}
	return *s.TarifficationType
}

// IsDelivery reports whether the shipping is carried by a hired carrier
func (s *Shipping) IsDelivery() bool {
	return s.DeliveryType == nil || *s.DeliveryType == DeliveryTypeDelivery
}

// SetStatus changes the status and mirrors it onto every member order
func (s *Shipping) SetStatus(status ShippingState, orders []*Order) {
	s.Status = status
	for _, o := range orders {
		if o.InShippingOf(s.ID) {
			st := status
			o.OrderShippingStatus = &st
		}
	}
}

// ClearReservation forgets the pooling slot
func (s *Shipping) ClearReservation() {
	s.BookingNumber = ""
	s.PoolingReservationID = ""
	s.SlotID = ""
	s.ConsolidationDate = nil
	s.AvailableUntil = nil
}

// CarrierRequestDatesStat records when a carrier was asked about a shipping
// and how it answered. Rows are upserted, never removed.
type CarrierRequestDatesStat struct {
	ID          string     `bson:"_id" json:"id"`
	ShippingID  string     `bson:"shippingId" json:"shippingId"`
	CarrierID   string     `bson:"carrierId" json:"carrierId"`
	SentAt      *time.Time `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	RejectedAt  *time.Time `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	ConfirmedAt *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
}
