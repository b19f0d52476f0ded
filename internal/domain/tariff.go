package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LtlRateCount is the size of the per-pallet LTL rate table
const LtlRateCount = 33

// Tariff is a rate card. A tariff matches by warehouse pair, city pair or
// region pair, checked in that order.
type Tariff struct {
	ID                string            `bson:"_id" json:"id"`
	CompanyID         *string           `bson:"companyId,omitempty" json:"companyId,omitempty"`
	CarrierID         *string           `bson:"carrierId,omitempty" json:"carrierId,omitempty"`
	VehicleTypeID     *string           `bson:"vehicleTypeId,omitempty" json:"vehicleTypeId,omitempty"`
	BodyTypeID        *string           `bson:"bodyTypeId,omitempty" json:"bodyTypeId,omitempty"`
	TarifficationType TarifficationType `bson:"tarifficationType" json:"tarifficationType"`

	ShippingWarehouseID *string `bson:"shippingWarehouseId,omitempty" json:"shippingWarehouseId,omitempty"`
	DeliveryWarehouseID *string `bson:"deliveryWarehouseId,omitempty" json:"deliveryWarehouseId,omitempty"`
	ShipmentCity        string  `bson:"shipmentCity,omitempty" json:"shipmentCity,omitempty"`
	DeliveryCity        string  `bson:"deliveryCity,omitempty" json:"deliveryCity,omitempty"`
	ShipmentRegion      string  `bson:"shipmentRegion,omitempty" json:"shipmentRegion,omitempty"`
	DeliveryRegion      string  `bson:"deliveryRegion,omitempty" json:"deliveryRegion,omitempty"`

	EffectiveDate  time.Time `bson:"effectiveDate" json:"effectiveDate"`
	ExpirationDate time.Time `bson:"expirationDate" json:"expirationDate"`

	FtlRate           *decimal.Decimal                `bson:"ftlRate,omitempty" json:"ftlRate,omitempty"`
	LtlRates          [LtlRateCount]*decimal.Decimal `bson:"ltlRates" json:"ltlRates"`
	ExtraPointRate    *decimal.Decimal                `bson:"extraPointRate,omitempty" json:"extraPointRate,omitempty"`
	PoolingPalletRate *decimal.Decimal                `bson:"poolingPalletRate,omitempty" json:"poolingPalletRate,omitempty"`

	StartWinterPeriod *time.Time       `bson:"startWinterPeriod,omitempty" json:"startWinterPeriod,omitempty"`
	EndWinterPeriod   *time.Time       `bson:"endWinterPeriod,omitempty" json:"endWinterPeriod,omitempty"`
	WinterAllowance   *decimal.Decimal `bson:"winterAllowance,omitempty" json:"winterAllowance,omitempty"`
}

// LtlRate returns the rate for n pallets: nil below one pallet, the last
// rate for n at or above the table size.
func (t *Tariff) LtlRate(n int64) *decimal.Decimal {
	if n < 1 {
		return nil
	}
	if n > LtlRateCount {
		n = LtlRateCount
	}
	return t.LtlRates[n-1]
}

// Covers reports whether date lies in [EffectiveDate, ExpirationDate]
func (t *Tariff) Covers(date time.Time) bool {
	return !date.Before(t.EffectiveDate) && !date.After(t.ExpirationDate)
}

// InWinter reports whether date falls in the inclusive winter period
func (t *Tariff) InWinter(date time.Time) bool {
	if t.StartWinterPeriod == nil || t.EndWinterPeriod == nil || t.WinterAllowance == nil {
		return false
	}
	d := TruncateDay(date)
	return !d.Before(TruncateDay(*t.StartWinterPeriod)) && !d.After(TruncateDay(*t.EndWinterPeriod))
}

// SameKey reports whether both tariffs price the same route for the same parties
func (t *Tariff) SameKey(o *Tariff) bool {
	return t.TarifficationType == o.TarifficationType &&
		EqualPtr(t.CompanyID, o.CompanyID) &&
		EqualPtr(t.CarrierID, o.CarrierID) &&
		EqualPtr(t.VehicleTypeID, o.VehicleTypeID) &&
		EqualPtr(t.BodyTypeID, o.BodyTypeID) &&
		EqualPtr(t.ShippingWarehouseID, o.ShippingWarehouseID) &&
		EqualPtr(t.DeliveryWarehouseID, o.DeliveryWarehouseID) &&
		t.ShipmentCity == o.ShipmentCity && t.DeliveryCity == o.DeliveryCity &&
		t.ShipmentRegion == o.ShipmentRegion && t.DeliveryRegion == o.DeliveryRegion
}

// Overlaps reports whether the effective ranges intersect
func (t *Tariff) Overlaps(o *Tariff) bool {
	return !t.EffectiveDate.After(o.ExpirationDate) && !o.EffectiveDate.After(t.ExpirationDate)
}

// SameRange reports whether both tariffs cover exactly the same dates
func (t *Tariff) SameRange(o *Tariff) bool {
	return t.EffectiveDate.Equal(o.EffectiveDate) && t.ExpirationDate.Equal(o.ExpirationDate)
}
