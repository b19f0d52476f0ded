package testutil

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// Company and reference ids used by the builders
const (
	CompanyID   = "company-1"
	CarrierID   = "carrier-1"
	BodyTypeID  = "body-1"
	WarehouseA  = "wh-a"
	WarehouseB  = "wh-b"
	VehicleS    = "vt-small"
	VehicleL    = "vt-large"
	ManagerID   = "user-manager"
	CarrierUser = "user-carrier"
)

// Dec parses a decimal literal
func Dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// Date builds a UTC instant
func Date(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}

// Manager is a shipping manager of the test company
func Manager() domain.User {
	return domain.User{ID: ManagerID, Role: domain.RoleShippingManager}
}

// Carrier is a carrier-side user
func Carrier() domain.User {
	return domain.User{ID: CarrierUser, Role: domain.RoleCarrier}
}

// Ctx is the context used by tests
func Ctx() context.Context {
	return context.Background()
}

// NewOrder builds a created delivery order of the test company with one
// pallet, dates and both warehouses set. Options adjust it further.
func NewOrder(id, number string, opts ...func(*domain.Order)) *domain.Order {
	deliveryType := domain.DeliveryTypeDelivery
	tariffication := domain.TarifficationFtl
	o := &domain.Order{
		ID:                  id,
		OrderNumber:         number,
		ClientOrderNumber:   "C-" + number,
		ClientName:          "Client",
		CompanyID:           domain.Ptr(CompanyID),
		Status:              domain.OrderCreated,
		PalletsCount:        Dec("1"),
		WeightKg:            Dec("100"),
		OrderAmount:         Dec("1000"),
		ShippingWarehouseID: domain.Ptr(WarehouseA),
		DeliveryWarehouseID: domain.Ptr(WarehouseB),
		ShippingAddress:     "Loading st. 1",
		DeliveryAddress:     "Unloading st. 2",
		ShippingCity:        "Moscow",
		DeliveryCity:        "Tver",
		ShippingRegion:      "Moscow",
		DeliveryRegion:      "Moscow",
		ShippingDate:        Date(2026, time.March, 10, 9),
		DeliveryDate:        Date(2026, time.March, 11, 9),
		CarrierID:           domain.Ptr(CarrierID),
		BodyTypeID:          domain.Ptr(BodyTypeID),
		TarifficationType:   &tariffication,
		DeliveryType:        &deliveryType,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithPallets sets the pallet count
func WithPallets(p string) func(*domain.Order) {
	return func(o *domain.Order) { o.PalletsCount = Dec(p) }
}

// WithTariffication sets the tariffication type
func WithTariffication(t domain.TarifficationType) func(*domain.Order) {
	return func(o *domain.Order) { o.TarifficationType = &t }
}

// WithStatus sets the order status
func WithStatus(s domain.OrderState) func(*domain.Order) {
	return func(o *domain.Order) { o.Status = s }
}

// InShipping links the order to the shipping
func InShipping(s *domain.Shipping) func(*domain.Order) {
	return func(o *domain.Order) { o.AttachTo(s) }
}

// NewShipping builds a delivery shipping of the test company
func NewShipping(id, number string, status domain.ShippingState, opts ...func(*domain.Shipping)) *domain.Shipping {
	deliveryType := domain.DeliveryTypeDelivery
	tariffication := domain.TarifficationFtl
	s := &domain.Shipping{
		ID:                id,
		ShippingNumber:    number,
		Status:            status,
		CompanyID:         domain.Ptr(CompanyID),
		CarrierID:         domain.Ptr(CarrierID),
		BodyTypeID:        domain.Ptr(BodyTypeID),
		TarifficationType: &tariffication,
		DeliveryType:      &deliveryType,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTariff builds an FTL warehouse-pair tariff for 2026 with a full LTL table
func NewTariff(id string, ftl string, opts ...func(*domain.Tariff)) *domain.Tariff {
	t := &domain.Tariff{
		ID:                  id,
		CarrierID:           domain.Ptr(CarrierID),
		TarifficationType:   domain.TarifficationFtl,
		ShippingWarehouseID: domain.Ptr(WarehouseA),
		DeliveryWarehouseID: domain.Ptr(WarehouseB),
		EffectiveDate:       time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		ExpirationDate:      time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		FtlRate:             Dec(ftl),
	}
	for i := range t.LtlRates {
		v := decimal.NewFromInt(int64(i+1) * 100)
		t.LtlRates[i] = &v
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SeedDictionaries fills d with the reference data the builders point at:
// a pooling-ready company, two warehouses, one carrier, one body type and
// a small and a large vehicle.
func SeedDictionaries(d *Dictionaries) {
	d.Companies[CompanyID] = &domain.Company{
		ID:                 CompanyID,
		Name:               "Acme",
		PoolingProductType: "FMCG",
		PoolingClientID:    "pc-1",
	}
	for _, id := range []string{WarehouseA, WarehouseB} {
		d.Warehouses[id] = &domain.Warehouse{
			ID:              id,
			Name:            "Warehouse " + id,
			CompanyID:       domain.Ptr(CompanyID),
			PoolingID:       "p-" + id,
			PoolingRegionID: "r-" + id,
			Region:          "Moscow",
			City:            "Moscow",
			PostalCode:      "101000",
			Street:          "Main",
			House:           "1",
		}
	}
	d.Carriers[CarrierID] = &domain.Carrier{ID: CarrierID, Title: "Fast Trucks", PoolingID: "p-carrier"}
	d.BodyTypes[BodyTypeID] = &domain.BodyType{ID: BodyTypeID, Name: "Tent", PoolingID: "p-body"}
	d.VehicleTypeMap[VehicleS] = &domain.VehicleType{
		ID: VehicleS, Name: "Small", BodyTypeID: domain.Ptr(BodyTypeID),
		PalletsCount: domain.Ptr(int64(10)), PoolingID: "p-small",
	}
	d.VehicleTypeMap[VehicleL] = &domain.VehicleType{
		ID: VehicleL, Name: "Large", BodyTypeID: domain.Ptr(BodyTypeID),
		PalletsCount: domain.Ptr(int64(33)), PoolingID: "p-large",
	}
}
