package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a single consignment. ShippingID is set exactly while Status is
// OrderInShipping, and OrderShippingStatus mirrors the owning shipping's
// status as of the last sync.
type Order struct {
	ID                  string         `bson:"_id" json:"id"`
	OrderNumber         string         `bson:"orderNumber" json:"orderNumber"`
	ClientOrderNumber   string         `bson:"clientOrderNumber,omitempty" json:"clientOrderNumber,omitempty"`
	ClientName          string         `bson:"clientName,omitempty" json:"clientName,omitempty"`
	SoldTo              string         `bson:"soldTo,omitempty" json:"soldTo,omitempty"`
	CompanyID           *string        `bson:"companyId,omitempty" json:"companyId,omitempty"`
	Status              OrderState     `bson:"status" json:"status"`
	OrderShippingStatus *ShippingState `bson:"orderShippingStatus,omitempty" json:"orderShippingStatus,omitempty"`
	ShippingID          *string        `bson:"shippingId,omitempty" json:"shippingId,omitempty"`
	ShippingNumber      string         `bson:"shippingNumber,omitempty" json:"shippingNumber,omitempty"`

	PalletsCount          *decimal.Decimal `bson:"palletsCount,omitempty" json:"palletsCount,omitempty"`
	ConfirmedPalletsCount *decimal.Decimal `bson:"confirmedPalletsCount,omitempty" json:"confirmedPalletsCount,omitempty"`
	ActualPalletsCount    *decimal.Decimal `bson:"actualPalletsCount,omitempty" json:"actualPalletsCount,omitempty"`
	WeightKg              *decimal.Decimal `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	ActualWeightKg        *decimal.Decimal `bson:"actualWeightKg,omitempty" json:"actualWeightKg,omitempty"`
	BoxesCount            *decimal.Decimal `bson:"boxesCount,omitempty" json:"boxesCount,omitempty"`
	ConfirmedBoxesCount   *decimal.Decimal `bson:"confirmedBoxesCount,omitempty" json:"confirmedBoxesCount,omitempty"`
	OrderAmount           *decimal.Decimal `bson:"orderAmount,omitempty" json:"orderAmount,omitempty"`

	ShippingWarehouseID *string `bson:"shippingWarehouseId,omitempty" json:"shippingWarehouseId,omitempty"`
	DeliveryWarehouseID *string `bson:"deliveryWarehouseId,omitempty" json:"deliveryWarehouseId,omitempty"`
	ShippingAddress     string  `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	DeliveryAddress     string  `bson:"deliveryAddress,omitempty" json:"deliveryAddress,omitempty"`
	ShippingCity        string  `bson:"shippingCity,omitempty" json:"shippingCity,omitempty"`
	DeliveryCity        string  `bson:"deliveryCity,omitempty" json:"deliveryCity,omitempty"`
	ShippingRegion      string  `bson:"shippingRegion,omitempty" json:"shippingRegion,omitempty"`
	DeliveryRegion      string  `bson:"deliveryRegion,omitempty" json:"deliveryRegion,omitempty"`

	ShippingDate           *time.Time `bson:"shippingDate,omitempty" json:"shippingDate,omitempty"`
	DeliveryDate           *time.Time `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`
	LoadingArrivalTime     *time.Time `bson:"loadingArrivalTime,omitempty" json:"loadingArrivalTime,omitempty"`
	LoadingDepartureTime   *time.Time `bson:"loadingDepartureTime,omitempty" json:"loadingDepartureTime,omitempty"`
	UnloadingArrivalTime   *time.Time `bson:"unloadingArrivalTime,omitempty" json:"unloadingArrivalTime,omitempty"`
	UnloadingDepartureTime *time.Time `bson:"unloadingDepartureTime,omitempty" json:"unloadingDepartureTime,omitempty"`

	TemperatureMin *int `bson:"temperatureMin,omitempty" json:"temperatureMin,omitempty"`
	TemperatureMax *int `bson:"temperatureMax,omitempty" json:"temperatureMax,omitempty"`

	CarrierID         *string            `bson:"carrierId,omitempty" json:"carrierId,omitempty"`
	VehicleTypeID     *string            `bson:"vehicleTypeId,omitempty" json:"vehicleTypeId,omitempty"`
	BodyTypeID        *string            `bson:"bodyTypeId,omitempty" json:"bodyTypeId,omitempty"`
	TarifficationType *TarifficationType `bson:"tarifficationType,omitempty" json:"tarifficationType,omitempty"`
	DeliveryType      *DeliveryType      `bson:"deliveryType,omitempty" json:"deliveryType,omitempty"`

	DeliveryCost       *decimal.Decimal `bson:"deliveryCost,omitempty" json:"deliveryCost,omitempty"`
	ManualDeliveryCost bool             `bson:"manualDeliveryCost" json:"manualDeliveryCost"`
	TotalAmount        *decimal.Decimal `bson:"totalAmount,omitempty" json:"totalAmount,omitempty"`
	TotalAmountNds     *decimal.Decimal `bson:"totalAmountNds,omitempty" json:"totalAmountNds,omitempty"`
	OtherExpenses      *decimal.Decimal `bson:"otherExpenses,omitempty" json:"otherExpenses,omitempty"`
	DowntimeAmount     *decimal.Decimal `bson:"downtimeAmount,omitempty" json:"downtimeAmount,omitempty"`
	ReturnCost         *decimal.Decimal `bson:"returnCost,omitempty" json:"returnCost,omitempty"`
	TrucksDowntime     *decimal.Decimal `bson:"trucksDowntime,omitempty" json:"trucksDowntime,omitempty"`

	BookingNumber string `bson:"bookingNumber,omitempty" json:"bookingNumber,omitempty"`
	IsPooling     bool   `bson:"isPooling" json:"isPooling"`

	Driver DriverData `bson:"driver" json:"driver"`

	IsNewForConfirmed   bool `bson:"isNewForConfirmed" json:"isNewForConfirmed"`
	IsNewCarrierRequest bool `bson:"isNewCarrierRequest" json:"isNewCarrierRequest"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DriverData is copied between a shipping and its orders
type DriverData struct {
	DriverName         string `bson:"driverName,omitempty" json:"driverName,omitempty"`
	DriverPhone        string `bson:"driverPhone,omitempty" json:"driverPhone,omitempty"`
	DriverPassportData string `bson:"driverPassportData,omitempty" json:"driverPassportData,omitempty"`
	VehicleNumber      string `bson:"vehicleNumber,omitempty" json:"vehicleNumber,omitempty"`
	TrailerNumber      string `bson:"trailerNumber,omitempty" json:"trailerNumber,omitempty"`
}

// IsDelivery reports whether the order is carried by a hired carrier.
// An unset delivery type counts as Delivery.
func (o *Order) IsDelivery() bool {
	return o.DeliveryType == nil || *o.DeliveryType == DeliveryTypeDelivery
}

// Tariffication returns the tariffication type or "" when unset
func (o *Order) Tariffication() TarifficationType {
	if o.TarifficationType == nil {
		return ""
	}
	return *o.TarifficationType
}

// AttachTo links the order to a shipping and mirrors its status
func (o *Order) AttachTo(s *Shipping) {
	id := s.ID
	status := s.Status
	o.ShippingID = &id
	o.ShippingNumber = s.ShippingNumber
	o.OrderShippingStatus = &status
	o.Status = OrderInShipping
}

// Detach clears the shipping linkage and moves the order back to status
func (o *Order) Detach(status OrderState) {
	o.ShippingID = nil
	o.ShippingNumber = ""
	o.OrderShippingStatus = nil
	o.Status = status
}

// InShippingOf reports whether the order currently belongs to shippingID
func (o *Order) InShippingOf(shippingID string) bool {
	return o.ShippingID != nil && *o.ShippingID == shippingID
}
