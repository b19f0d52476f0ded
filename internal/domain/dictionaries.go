package domain

import "github.com/shopspring/decimal"

// Company is a client of the platform
type Company struct {
	ID                        string `bson:"_id" json:"id"`
	Name                      string `bson:"name" json:"name"`
	OrderRequiresConfirmation bool   `bson:"orderRequiresConfirmation" json:"orderRequiresConfirmation"`
	PoolingProductType        string `bson:"poolingProductType,omitempty" json:"poolingProductType,omitempty"`
	PoolingToken              string `bson:"poolingToken,omitempty" json:"-"`
	PoolingClientID           string `bson:"poolingClientId,omitempty" json:"poolingClientId,omitempty"`
	PoolingExtraService       string `bson:"poolingExtraService,omitempty" json:"poolingExtraService,omitempty"`
}

// Warehouse is a loading or unloading point
type Warehouse struct {
	ID                   string  `bson:"_id" json:"id"`
	Name                 string  `bson:"name" json:"name"`
	CompanyID            *string `bson:"companyId,omitempty" json:"companyId,omitempty"`
	PoolingID            string  `bson:"poolingId,omitempty" json:"poolingId,omitempty"`
	PoolingRegionID      string  `bson:"poolingRegionId,omitempty" json:"poolingRegionId,omitempty"`
	DistributionCenterID string  `bson:"distributionCenterId,omitempty" json:"distributionCenterId,omitempty"`
	Region               string  `bson:"region,omitempty" json:"region,omitempty"`
	City                 string  `bson:"city,omitempty" json:"city,omitempty"`
	PostalCode           string  `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Street               string  `bson:"street,omitempty" json:"street,omitempty"`
	House                string  `bson:"house,omitempty" json:"house,omitempty"`
	Address              string  `bson:"address,omitempty" json:"address,omitempty"`
}

// Carrier is a transport company
type Carrier struct {
	ID        string  `bson:"_id" json:"id"`
	Title     string  `bson:"title" json:"title"`
	CompanyID *string `bson:"companyId,omitempty" json:"companyId,omitempty"`
	PoolingID string  `bson:"poolingId,omitempty" json:"poolingId,omitempty"`
}

// VehicleType describes truck capacity
type VehicleType struct {
	ID            string           `bson:"_id" json:"id"`
	Name          string           `bson:"name" json:"name"`
	CompanyID     *string          `bson:"companyId,omitempty" json:"companyId,omitempty"`
	BodyTypeID    *string          `bson:"bodyTypeId,omitempty" json:"bodyTypeId,omitempty"`
	PalletsCount  *int64           `bson:"palletsCount,omitempty" json:"palletsCount,omitempty"`
	TonnageKg     *decimal.Decimal `bson:"tonnageKg,omitempty" json:"tonnageKg,omitempty"`
	IsInterregion bool             `bson:"isInterregion" json:"isInterregion"`
	PoolingID     string           `bson:"poolingId,omitempty" json:"poolingId,omitempty"`
}

// Fits reports whether the vehicle can carry pallets and weight.
// Unknown capacity or unknown load never blocks.
func (v *VehicleType) Fits(pallets, weight *decimal.Decimal) bool {
	if v.PalletsCount != nil && pallets != nil && pallets.GreaterThan(decimal.NewFromInt(*v.PalletsCount)) {
		return false
	}
	if v.TonnageKg != nil && weight != nil && weight.GreaterThan(*v.TonnageKg) {
		return false
	}
	return true
}

// BodyType describes the truck body
type BodyType struct {
	ID        string  `bson:"_id" json:"id"`
	Name      string  `bson:"name" json:"name"`
	CompanyID *string `bson:"companyId,omitempty" json:"companyId,omitempty"`
	PoolingID string  `bson:"poolingId,omitempty" json:"poolingId,omitempty"`
}
