package application

import "github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"

// shippingField is an order field every member of a shipping must share
type shippingField struct {
	name       string
	toOrder    func(src, dst *domain.Order)
	toShipping func(src *domain.Order, dst *domain.Shipping)
}

var shippingFields = []shippingField{
	{"carrierId",
		func(src, dst *domain.Order) { dst.CarrierID = clonePtr(src.CarrierID) },
		func(src *domain.Order, dst *domain.Shipping) { dst.CarrierID = clonePtr(src.CarrierID) }},
	{"vehicleTypeId",
		func(src, dst *domain.Order) { dst.VehicleTypeID = clonePtr(src.VehicleTypeID) },
		func(src *domain.Order, dst *domain.Shipping) { dst.VehicleTypeID = clonePtr(src.VehicleTypeID) }},
	{"bodyTypeId",
		func(src, dst *domain.Order) { dst.BodyTypeID = clonePtr(src.BodyTypeID) },
		func(src *domain.Order, dst *domain.Shipping) { dst.BodyTypeID = clonePtr(src.BodyTypeID) }},
	{"tarifficationType",
		func(src, dst *domain.Order) { dst.TarifficationType = clonePtr(src.TarifficationType) },
		func(src *domain.Order, dst *domain.Shipping) { dst.TarifficationType = clonePtr(src.TarifficationType) }},
	{"deliveryType",
		func(src, dst *domain.Order) { dst.DeliveryType = clonePtr(src.DeliveryType) },
		func(src *domain.Order, dst *domain.Shipping) { dst.DeliveryType = clonePtr(src.DeliveryType) }},
}

// IsShippingField reports whether field must be equal across a shipping and its orders
func IsShippingField(field string) bool {
	for _, f := range shippingFields {
		if f.name == field {
			return true
		}
	}
	return false
}

// ShippingFieldSync copies the changed shipping-level fields of source onto
// the shipping and every other member order. Each member gets a history row
// per copied field.
func ShippingFieldSync(sc *Scope, shipping *domain.Shipping, source *domain.Order, members []*domain.Order, changed []string) {
	synced := false
	for _, f := range shippingFields {
		if !contains(changed, f.name) {
			continue
		}
		synced = true
		f.toShipping(source, shipping)
		for _, o := range members {
			if o.ID == source.ID {
				continue
			}
			f.toOrder(source, o)
			sc.Changes.AddHistory(o.ID, domain.MsgHistoryOrderFieldChanged, o.OrderNumber, f.name)
		}
	}
	if !synced {
		return
	}
	sc.Changes.TouchShipping(shipping)
	sc.Changes.TouchOrders(members...)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
