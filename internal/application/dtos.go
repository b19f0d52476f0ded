package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// OrderDTO is the editable form of an order. An empty ID creates a new order.
type OrderDTO struct {
	ID                string  `json:"id"`
	OrderNumber       string  `json:"orderNumber" binding:"required,max=64"`
	ClientOrderNumber string  `json:"clientOrderNumber" binding:"max=64"`
	ClientName        string  `json:"clientName" binding:"max=256"`
	SoldTo            string  `json:"soldTo" binding:"max=64"`
	CompanyID         *string `json:"companyId"`

	PalletsCount          *decimal.Decimal `json:"palletsCount"`
	ConfirmedPalletsCount *decimal.Decimal `json:"confirmedPalletsCount"`
	ActualPalletsCount    *decimal.Decimal `json:"actualPalletsCount"`
	WeightKg              *decimal.Decimal `json:"weightKg"`
	ActualWeightKg        *decimal.Decimal `json:"actualWeightKg"`
	BoxesCount            *decimal.Decimal `json:"boxesCount"`
	ConfirmedBoxesCount   *decimal.Decimal `json:"confirmedBoxesCount"`
	OrderAmount           *decimal.Decimal `json:"orderAmount"`
	TrucksDowntime        *decimal.Decimal `json:"trucksDowntime"`

	ShippingWarehouseID *string `json:"shippingWarehouseId"`
	DeliveryWarehouseID *string `json:"deliveryWarehouseId"`
	ShippingAddress     string  `json:"shippingAddress" binding:"max=512"`
	DeliveryAddress     string  `json:"deliveryAddress" binding:"max=512"`
	ShippingCity        string  `json:"shippingCity"`
	DeliveryCity        string  `json:"deliveryCity"`
	ShippingRegion      string  `json:"shippingRegion"`
	DeliveryRegion      string  `json:"deliveryRegion"`

	ShippingDate           *time.Time `json:"shippingDate"`
	DeliveryDate           *time.Time `json:"deliveryDate"`
	LoadingArrivalTime     *time.Time `json:"loadingArrivalTime"`
	LoadingDepartureTime   *time.Time `json:"loadingDepartureTime"`
	UnloadingArrivalTime   *time.Time `json:"unloadingArrivalTime"`
	UnloadingDepartureTime *time.Time `json:"unloadingDepartureTime"`

	TemperatureMin *int `json:"temperatureMin" binding:"omitempty,gte=-50,lte=50"`
	TemperatureMax *int `json:"temperatureMax" binding:"omitempty,gte=-50,lte=50"`

	CarrierID         *string                   `json:"carrierId"`
	VehicleTypeID     *string                   `json:"vehicleTypeId"`
	BodyTypeID        *string                   `json:"bodyTypeId"`
	TarifficationType *domain.TarifficationType `json:"tarifficationType" binding:"omitempty,oneof=ftl ltl pooling milkrun doubledeck"`
	DeliveryType      *domain.DeliveryType      `json:"deliveryType" binding:"omitempty,oneof=delivery selfDelivery courier"`

	DriverName         string `json:"driverName"`
	DriverPhone        string `json:"driverPhone"`
	DriverPassportData string `json:"driverPassportData"`
	VehicleNumber      string `json:"vehicleNumber"`
	TrailerNumber      string `json:"trailerNumber"`
}

// OrderSaveResult is the outcome of OrderEditService.Save
type OrderSaveResult struct {
	Order      *domain.Order            `json:"order,omitempty"`
	Validation *domain.ValidationResult `json:"validation,omitempty"`
	Result     Result                   `json:"result"`
}

// IsError reports whether nothing was saved
func (r OrderSaveResult) IsError() bool {
	return r.Validation.IsError() || r.Result.IsError
}
