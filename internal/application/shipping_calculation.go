package application

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
)

// ShippingCalculationService derives shipping aggregates from its orders
type ShippingCalculationService struct {
	costs  *DeliveryCostService
	logger *logging.Logger
}

// NewShippingCalculationService creates a ShippingCalculationService
func NewShippingCalculationService(costs *DeliveryCostService, logger *logging.Logger) *ShippingCalculationService {
	return &ShippingCalculationService{
		costs:  costs,
		logger: logger.WithComponent("shipping-calculation"),
	}
}

// RecalculateShipping rebuilds quantities, route and dates of the shipping
// from its orders, then re-selects the vehicle type. Values no order
// carries stay nil.
func (s *ShippingCalculationService) RecalculateShipping(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) error {
	shipping.PalletsCount = ceilPtr(sumOf(orders, func(o *domain.Order) *decimal.Decimal { return o.PalletsCount }))
	shipping.ConfirmedPalletsCount = ceilPtr(sumOf(orders, func(o *domain.Order) *decimal.Decimal { return o.ConfirmedPalletsCount }))
	shipping.ActualPalletsCount = ceilPtr(sumOf(orders, func(o *domain.Order) *decimal.Decimal { return o.ActualPalletsCount }))
	shipping.WeightKg = sumOf(orders, func(o *domain.Order) *decimal.Decimal { return o.WeightKg })
	shipping.ActualWeightKg = sumOf(orders, func(o *domain.Order) *decimal.Decimal { return o.ActualWeightKg })
	shipping.TrucksDowntime = sumOf(orders, func(o *domain.Order) *decimal.Decimal { return o.TrucksDowntime })

	shipping.TemperatureMin, shipping.TemperatureMax = TemperatureIntersection(orders)

	if len(orders) > 0 {
		first := sortedBy(orders, func(o *domain.Order) *time.Time { return o.ShippingDate }, false)[0]
		last := sortedBy(orders, func(o *domain.Order) *time.Time { return o.DeliveryDate }, true)[0]
		shipping.ShippingAddress = first.ShippingAddress
		shipping.ShippingWarehouseID = first.ShippingWarehouseID
		shipping.DeliveryAddress = last.DeliveryAddress
		shipping.DeliveryWarehouseID = last.DeliveryWarehouseID
	}

	shipping.LoadingArrivalTime = earliest(orders, func(o *domain.Order) *time.Time { return o.LoadingArrivalTime })
	shipping.LoadingDepartureTime = earliest(orders, func(o *domain.Order) *time.Time { return o.LoadingDepartureTime })
	shipping.ShippingDate = earliest(orders, func(o *domain.Order) *time.Time { return o.ShippingDate })
	shipping.DeliveryDate = latest(orders, func(o *domain.Order) *time.Time { return o.DeliveryDate })

	sc.Changes.TouchShipping(shipping)

	return s.SyncVehicleType(sc, shipping, orders)
}

// TemperatureIntersection narrows the allowed range to what every order
// accepts. Any order without both bounds, or disjoint ranges, drops the
// constraint entirely.
func TemperatureIntersection(orders []*domain.Order) (*int, *int) {
	if len(orders) == 0 {
		return nil, nil
	}
	var lo, hi *int
	for _, o := range orders {
		if o.TemperatureMin == nil || o.TemperatureMax == nil {
			return nil, nil
		}
		if lo == nil || *o.TemperatureMin > *lo {
			lo = domain.Ptr(*o.TemperatureMin)
		}
		if hi == nil || *o.TemperatureMax < *hi {
			hi = domain.Ptr(*o.TemperatureMax)
		}
	}
	if *lo > *hi {
		return nil, nil
	}
	return lo, hi
}

// SyncVehicleType picks the smallest vehicle that fits the shipping while it
// is still negotiable, and re-prices when the choice changes
func (s *ShippingCalculationService) SyncVehicleType(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) error {
	if !shipping.Status.In(domain.ShippingCreated, domain.ShippingRequestSent) {
		return nil
	}

	all, err := sc.Dict.VehicleTypes(sc.Ctx)
	if err != nil {
		return fmt.Errorf("failed to load vehicle types: %w", err)
	}

	interregion := isInterregion(orders)
	var candidates []*domain.VehicleType
	for _, vt := range all {
		if !domain.EqualPtr(vt.BodyTypeID, shipping.BodyTypeID) {
			continue
		}
		if vt.CompanyID != nil && !domain.EqualPtr(vt.CompanyID, shipping.CompanyID) {
			continue
		}
		if vt.IsInterregion != interregion {
			continue
		}
		if !vt.Fits(shipping.PalletsCount, shipping.WeightKg) {
			continue
		}
		candidates = append(candidates, vt)
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].PalletsCount, candidates[j].PalletsCount
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})

	best := candidates[0]
	if shipping.VehicleTypeID != nil && *shipping.VehicleTypeID == best.ID {
		return nil
	}

	shipping.VehicleTypeID = domain.Ptr(best.ID)
	for _, o := range orders {
		o.VehicleTypeID = domain.Ptr(best.ID)
	}
	sc.Changes.AddHistory(shipping.ID, domain.MsgHistoryVehicleTypeChanged, shipping.ShippingNumber, best.Name)
	sc.Changes.TouchShipping(shipping)
	sc.Changes.TouchOrders(orders...)

	s.logger.WithShipping(shipping.ID, shipping.ShippingNumber).Info("Vehicle type changed", "vehicleTypeId", best.ID)

	return s.costs.UpdateDeliveryCost(sc, shipping, orders, false)
}

func isInterregion(orders []*domain.Order) bool {
	regions := make(map[string]struct{})
	for _, o := range orders {
		if o.ShippingRegion != "" {
			regions[o.ShippingRegion] = struct{}{}
		}
		if o.DeliveryRegion != "" {
			regions[o.DeliveryRegion] = struct{}{}
		}
	}
	return len(regions) > 1
}

// RecalculateDeliveryCosts re-prices the shipping from its tariff
func (s *ShippingCalculationService) RecalculateDeliveryCosts(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) error {
	return s.costs.UpdateDeliveryCost(sc, shipping, orders, false)
}

// ClearShippingOrdersCosts zeroes the shipping-derived amounts of orders
// leaving a shipping
func (s *ShippingCalculationService) ClearShippingOrdersCosts(sc *Scope, orders []*domain.Order) {
	for _, o := range orders {
		o.DowntimeAmount = zeroDecimal()
		o.OtherExpenses = zeroDecimal()
		o.ReturnCost = zeroDecimal()
		o.TotalAmount = zeroDecimal()
		o.TotalAmountNds = zeroDecimal()
		o.DeliveryCost = zeroDecimal()
	}
	sc.Changes.TouchOrders(orders...)
}
