package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// orderField maps one DTO field onto an order
type orderField struct {
	name    string
	changed func(*OrderDTO, *domain.Order) bool
	apply   func(*OrderDTO, *domain.Order)
}

func valueField[T comparable](name string, from func(*OrderDTO) T, to func(*domain.Order) *T) orderField {
	return orderField{
		name:    name,
		changed: func(d *OrderDTO, o *domain.Order) bool { return from(d) != *to(o) },
		apply:   func(d *OrderDTO, o *domain.Order) { *to(o) = from(d) },
	}
}

func refField[T comparable](name string, from func(*OrderDTO) *T, to func(*domain.Order) **T) orderField {
	return orderField{
		name:    name,
		changed: func(d *OrderDTO, o *domain.Order) bool { return !domain.EqualPtr(from(d), *to(o)) },
		apply: func(d *OrderDTO, o *domain.Order) {
			if v := from(d); v != nil {
				*to(o) = domain.Ptr(*v)
			} else {
				*to(o) = nil
			}
		},
	}
}

func timeField(name string, from func(*OrderDTO) *time.Time, to func(*domain.Order) **time.Time) orderField {
	return orderField{
		name:    name,
		changed: func(d *OrderDTO, o *domain.Order) bool { return !domain.EqualTime(from(d), *to(o)) },
		apply: func(d *OrderDTO, o *domain.Order) {
			if v := from(d); v != nil {
				*to(o) = domain.Ptr(*v)
			} else {
				*to(o) = nil
			}
		},
	}
}

func decimalField(name string, from func(*OrderDTO) *decimal.Decimal, to func(*domain.Order) **decimal.Decimal) orderField {
	return orderField{
		name:    name,
		changed: func(d *OrderDTO, o *domain.Order) bool { return !domain.EqualDecimal(from(d), *to(o)) },
		apply: func(d *OrderDTO, o *domain.Order) {
			if v := from(d); v != nil {
				*to(o) = domain.Ptr(*v)
			} else {
				*to(o) = nil
			}
		},
	}
}

var orderFields = []orderField{
	valueField("orderNumber", func(d *OrderDTO) string { return d.OrderNumber }, func(o *domain.Order) *string { return &o.OrderNumber }),
	valueField("clientOrderNumber", func(d *OrderDTO) string { return d.ClientOrderNumber }, func(o *domain.Order) *string { return &o.ClientOrderNumber }),
	valueField("clientName", func(d *OrderDTO) string { return d.ClientName }, func(o *domain.Order) *string { return &o.ClientName }),
	valueField("soldTo", func(d *OrderDTO) string { return d.SoldTo }, func(o *domain.Order) *string { return &o.SoldTo }),
	refField("companyId", func(d *OrderDTO) *string { return d.CompanyID }, func(o *domain.Order) **string { return &o.CompanyID }),

	decimalField("palletsCount", func(d *OrderDTO) *decimal.Decimal { return d.PalletsCount }, func(o *domain.Order) **decimal.Decimal { return &o.PalletsCount }),
	decimalField("confirmedPalletsCount", func(d *OrderDTO) *decimal.Decimal { return d.ConfirmedPalletsCount }, func(o *domain.Order) **decimal.Decimal { return &o.ConfirmedPalletsCount }),
	decimalField("actualPalletsCount", func(d *OrderDTO) *decimal.Decimal { return d.ActualPalletsCount }, func(o *domain.Order) **decimal.Decimal { return &o.ActualPalletsCount }),
	decimalField("weightKg", func(d *OrderDTO) *decimal.Decimal { return d.WeightKg }, func(o *domain.Order) **decimal.Decimal { return &o.WeightKg }),
	decimalField("actualWeightKg", func(d *OrderDTO) *decimal.Decimal { return d.ActualWeightKg }, func(o *domain.Order) **decimal.Decimal { return &o.ActualWeightKg }),
	decimalField("boxesCount", func(d *OrderDTO) *decimal.Decimal { return d.BoxesCount }, func(o *domain.Order) **decimal.Decimal { return &o.BoxesCount }),
	decimalField("confirmedBoxesCount", func(d *OrderDTO) *decimal.Decimal { return d.ConfirmedBoxesCount }, func(o *domain.Order) **decimal.Decimal { return &o.ConfirmedBoxesCount }),
	decimalField("orderAmount", func(d *OrderDTO) *decimal.Decimal { return d.OrderAmount }, func(o *domain.Order) **decimal.Decimal { return &o.OrderAmount }),
	decimalField("trucksDowntime", func(d *OrderDTO) *decimal.Decimal { return d.TrucksDowntime }, func(o *domain.Order) **decimal.Decimal { return &o.TrucksDowntime }),

	refField("shippingWarehouseId", func(d *OrderDTO) *string { return d.ShippingWarehouseID }, func(o *domain.Order) **string { return &o.ShippingWarehouseID }),
	refField("deliveryWarehouseId", func(d *OrderDTO) *string { return d.DeliveryWarehouseID }, func(o *domain.Order) **string { return &o.DeliveryWarehouseID }),
	valueField("shippingAddress", func(d *OrderDTO) string { return d.ShippingAddress }, func(o *domain.Order) *string { return &o.ShippingAddress }),
	valueField("deliveryAddress", func(d *OrderDTO) string { return d.DeliveryAddress }, func(o *domain.Order) *string { return &o.DeliveryAddress }),
	valueField("shippingCity", func(d *OrderDTO) string { return d.ShippingCity }, func(o *domain.Order) *string { return &o.ShippingCity }),
	valueField("deliveryCity", func(d *OrderDTO) string { return d.DeliveryCity }, func(o *domain.Order) *string { return &o.DeliveryCity }),
	valueField("shippingRegion", func(d *OrderDTO) string { return d.ShippingRegion }, func(o *domain.Order) *string { return &o.ShippingRegion }),
	valueField("deliveryRegion", func(d *OrderDTO) string { return d.DeliveryRegion }, func(o *domain.Order) *string { return &o.DeliveryRegion }),

	timeField("shippingDate", func(d *OrderDTO) *time.Time { return d.ShippingDate }, func(o *domain.Order) **time.Time { return &o.ShippingDate }),
	timeField("deliveryDate", func(d *OrderDTO) *time.Time { return d.DeliveryDate }, func(o *domain.Order) **time.Time { return &o.DeliveryDate }),
	timeField("loadingArrivalTime", func(d *OrderDTO) *time.Time { return d.LoadingArrivalTime }, func(o *domain.Order) **time.Time { return &o.LoadingArrivalTime }),
	timeField("loadingDepartureTime", func(d *OrderDTO) *time.Time { return d.LoadingDepartureTime }, func(o *domain.Order) **time.Time { return &o.LoadingDepartureTime }),
	timeField("unloadingArrivalTime", func(d *OrderDTO) *time.Time { return d.UnloadingArrivalTime }, func(o *domain.Order) **time.Time { return &o.UnloadingArrivalTime }),
	timeField("unloadingDepartureTime", func(d *OrderDTO) *time.Time { return d.UnloadingDepartureTime }, func(o *domain.Order) **time.Time { return &o.UnloadingDepartureTime }),

	refField("temperatureMin", func(d *OrderDTO) *int { return d.TemperatureMin }, func(o *domain.Order) **int { return &o.TemperatureMin }),
	refField("temperatureMax", func(d *OrderDTO) *int { return d.TemperatureMax }, func(o *domain.Order) **int { return &o.TemperatureMax }),

	refField("carrierId", func(d *OrderDTO) *string { return d.CarrierID }, func(o *domain.Order) **string { return &o.CarrierID }),
	refField("vehicleTypeId", func(d *OrderDTO) *string { return d.VehicleTypeID }, func(o *domain.Order) **string { return &o.VehicleTypeID }),
	refField("bodyTypeId", func(d *OrderDTO) *string { return d.BodyTypeID }, func(o *domain.Order) **string { return &o.BodyTypeID }),
	refField("tarifficationType", func(d *OrderDTO) *domain.TarifficationType { return d.TarifficationType }, func(o *domain.Order) **domain.TarifficationType { return &o.TarifficationType }),
	refField("deliveryType", func(d *OrderDTO) *domain.DeliveryType { return d.DeliveryType }, func(o *domain.Order) **domain.DeliveryType { return &o.DeliveryType }),

	valueField("driverName", func(d *OrderDTO) string { return d.DriverName }, func(o *domain.Order) *string { return &o.Driver.DriverName }),
	valueField("driverPhone", func(d *OrderDTO) string { return d.DriverPhone }, func(o *domain.Order) *string { return &o.Driver.DriverPhone }),
	valueField("driverPassportData", func(d *OrderDTO) string { return d.DriverPassportData }, func(o *domain.Order) *string { return &o.Driver.DriverPassportData }),
	valueField("vehicleNumber", func(d *OrderDTO) string { return d.VehicleNumber }, func(o *domain.Order) *string { return &o.Driver.VehicleNumber }),
	valueField("trailerNumber", func(d *OrderDTO) string { return d.TrailerNumber }, func(o *domain.Order) *string { return &o.Driver.TrailerNumber }),
}

// MapOrderChanges applies dto onto o and returns the names of the fields
// whose value changed
func MapOrderChanges(dto *OrderDTO, o *domain.Order) []string {
	var changed []string
	for _, f := range orderFields {
		if f.changed(dto, o) {
			changed = append(changed, f.name)
			f.apply(dto, o)
		}
	}
	return changed
}

// ToOrderDTO is the inverse of MapOrderChanges
func ToOrderDTO(o *domain.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	return &OrderDTO{
		ID:                     o.ID,
		OrderNumber:            o.OrderNumber,
		ClientOrderNumber:      o.ClientOrderNumber,
		ClientName:             o.ClientName,
		SoldTo:                 o.SoldTo,
		CompanyID:              o.CompanyID,
		PalletsCount:           o.PalletsCount,
		ConfirmedPalletsCount:  o.ConfirmedPalletsCount,
		ActualPalletsCount:     o.ActualPalletsCount,
		WeightKg:               o.WeightKg,
		ActualWeightKg:         o.ActualWeightKg,
		BoxesCount:             o.BoxesCount,
		ConfirmedBoxesCount:    o.ConfirmedBoxesCount,
		OrderAmount:            o.OrderAmount,
		TrucksDowntime:         o.TrucksDowntime,
		ShippingWarehouseID:    o.ShippingWarehouseID,
		DeliveryWarehouseID:    o.DeliveryWarehouseID,
		ShippingAddress:        o.ShippingAddress,
		DeliveryAddress:        o.DeliveryAddress,
		ShippingCity:           o.ShippingCity,
		DeliveryCity:           o.DeliveryCity,
		ShippingRegion:         o.ShippingRegion,
		DeliveryRegion:         o.DeliveryRegion,
		ShippingDate:           o.ShippingDate,
		DeliveryDate:           o.DeliveryDate,
		LoadingArrivalTime:     o.LoadingArrivalTime,
		LoadingDepartureTime:   o.LoadingDepartureTime,
		UnloadingArrivalTime:   o.UnloadingArrivalTime,
		UnloadingDepartureTime: o.UnloadingDepartureTime,
		TemperatureMin:         o.TemperatureMin,
		TemperatureMax:         o.TemperatureMax,
		CarrierID:              o.CarrierID,
		VehicleTypeID:          o.VehicleTypeID,
		BodyTypeID:             o.BodyTypeID,
		TarifficationType:      o.TarifficationType,
		DeliveryType:           o.DeliveryType,
		DriverName:             o.Driver.DriverName,
		DriverPhone:            o.Driver.DriverPhone,
		DriverPassportData:     o.Driver.DriverPassportData,
		VehicleNumber:          o.Driver.VehicleNumber,
		TrailerNumber:          o.Driver.TrailerNumber,
	}
}
