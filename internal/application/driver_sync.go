package application

import "github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"

type driverField struct {
	name string
	get  func(*domain.DriverData) string
	set  func(*domain.DriverData, string)
}

var driverFields = []driverField{
	{"driverName", func(d *domain.DriverData) string { return d.DriverName }, func(d *domain.DriverData, v string) { d.DriverName = v }},
	{"driverPhone", func(d *domain.DriverData) string { return d.DriverPhone }, func(d *domain.DriverData, v string) { d.DriverPhone = v }},
	{"driverPassportData", func(d *domain.DriverData) string { return d.DriverPassportData }, func(d *domain.DriverData, v string) { d.DriverPassportData = v }},
	{"vehicleNumber", func(d *domain.DriverData) string { return d.VehicleNumber }, func(d *domain.DriverData, v string) { d.VehicleNumber = v }},
	{"trailerNumber", func(d *domain.DriverData) string { return d.TrailerNumber }, func(d *domain.DriverData, v string) { d.TrailerNumber = v }},
}

// IsDriverField reports whether field is kept in sync between a shipping and its orders
func IsDriverField(field string) bool {
	for _, f := range driverFields {
		if f.name == field {
			return true
		}
	}
	return false
}

// DriverDataSync copies driver data onto the shipping field by field: a
// value all orders agree on is kept, any disagreement clears the field.
func DriverDataSync(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) {
	if len(orders) == 0 {
		return
	}
	for _, f := range driverFields {
		value := f.get(&orders[0].Driver)
		for _, o := range orders[1:] {
			if f.get(&o.Driver) != value {
				value = ""
				break
			}
		}
		f.set(&shipping.Driver, value)
	}
	sc.Changes.TouchShipping(shipping)
}
