package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
)

var costableStatuses = []domain.ShippingState{
	domain.ShippingCreated,
	domain.ShippingRequestSent,
	domain.ShippingRejectedByTc,
	domain.ShippingSlotBooked,
	domain.ShippingSlotCancelled,
	domain.ShippingChangesAgreeing,
}

// BaseDeliveryCost prices a shipping with tariff. Flat-rate tariffs ignore
// pallets, pooling shippings pay per pallet, everything else reads the LTL
// table at the rounded-up pallet total. The winter allowance applies on top.
func BaseDeliveryCost(tariff *domain.Tariff, shipping *domain.Shipping, orders []*domain.Order) *decimal.Decimal {
	var cost *decimal.Decimal
	pallets := totalPallets(orders).Ceil()

	switch {
	case tariff.TarifficationType.IsFlatRate():
		cost = tariff.FtlRate
	case shipping.IsPooling && tariff.PoolingPalletRate != nil:
		v := tariff.PoolingPalletRate.Mul(pallets)
		cost = &v
	default:
		if pallets.LessThan(decimal.NewFromInt(1)) {
			zero := decimal.Zero
			cost = &zero
		} else {
			cost = tariff.LtlRate(pallets.IntPart())
		}
	}

	if cost == nil {
		return nil
	}

	if date := shippingDateOf(shipping, orders); date != nil && tariff.InWinter(*date) {
		factor := decimal.NewFromInt(1).Add(tariff.WinterAllowance.Div(decimal.NewFromInt(100)))
		v := cost.Mul(factor)
		cost = &v
	}

	v := *cost
	return &v
}

// ExtraPointCost charges every distinct address beyond the first loading and
// last unloading point. Fewer than two addresses yields a negative count,
// which is kept as is.
func ExtraPointCost(tariff *domain.Tariff, orders []*domain.Order) *decimal.Decimal {
	if tariff.ExtraPointRate == nil {
		return nil
	}
	addresses := make(map[string]struct{})
	for _, o := range orders {
		if o.ShippingAddress != "" {
			addresses[o.ShippingAddress] = struct{}{}
		}
		if o.DeliveryAddress != "" {
			addresses[o.DeliveryAddress] = struct{}{}
		}
	}
	count := decimal.NewFromInt(int64(len(addresses) - 2))
	v := count.Mul(*tariff.ExtraPointRate)
	return &v
}

// DeliveryCostService keeps shipping and order cost fields in line with the
// applicable tariff
type DeliveryCostService struct {
	tariffs *TariffService
	logger  *logging.Logger
}

// NewDeliveryCostService creates a DeliveryCostService
func NewDeliveryCostService(tariffs *TariffService, logger *logging.Logger) *DeliveryCostService {
	return &DeliveryCostService{
		tariffs: tariffs,
		logger:  logger.WithComponent("delivery-cost"),
	}
}

// UpdateDeliveryCost re-prices the shipping when it is still in a priceable
// state and every order carries its dates. A missing tariff zeroes the costs.
func (s *DeliveryCostService) UpdateDeliveryCost(sc *Scope, shipping *domain.Shipping, orders []*domain.Order, ignoreManualCost bool) error {
	if !s.canUpdate(shipping, orders, ignoreManualCost) {
		return nil
	}

	tariff, err := s.tariffs.FindTariff(sc, shipping, orders, TariffQuery{})
	if err != nil {
		return err
	}

	if tariff == nil {
		if !domain.IsZeroOrNil(shipping.BasicDeliveryCostWithoutVAT) {
			sc.Changes.AddHistory(shipping.ID, domain.MsgHistoryNoTariffFound, shipping.ShippingNumber)
		}
		s.logger.WithShipping(shipping.ID, shipping.ShippingNumber).Info("No tariff found, clearing delivery cost")

		shipping.BasicDeliveryCostWithoutVAT = zeroDecimal()
		shipping.ExtraPointCostsWithoutVAT = zeroDecimal()
		for _, o := range orders {
			o.DeliveryCost = zeroDecimal()
			o.ManualDeliveryCost = false
		}
	} else {
		base := BaseDeliveryCost(tariff, shipping, orders)
		if base == nil {
			zero := decimal.Zero
			base = &zero
		}
		shipping.BasicDeliveryCostWithoutVAT = base
		shipping.ExtraPointCostsWithoutVAT = ExtraPointCost(tariff, orders)

		for i, share := range Apportion(*base, orders) {
			v := share
			orders[i].DeliveryCost = &v
		}
	}

	RecalculateTotalCosts(shipping, orders)
	sc.Changes.TouchShipping(shipping)
	sc.Changes.TouchOrders(orders...)
	return nil
}

func (s *DeliveryCostService) canUpdate(shipping *domain.Shipping, orders []*domain.Order, ignoreManualCost bool) bool {
	if !shipping.Status.In(costableStatuses...) {
		return false
	}
	if shipping.DeliveryType == nil || *shipping.DeliveryType != domain.DeliveryTypeDelivery {
		return false
	}
	if shipping.CarrierID == nil || shipping.TarifficationType == nil {
		return false
	}
	if len(orders) == 0 {
		return false
	}
	for _, o := range orders {
		if o.ManualDeliveryCost && !ignoreManualCost {
			return false
		}
		if o.ShippingDate == nil || o.DeliveryDate == nil {
			return false
		}
	}
	return true
}

// RecalculateTotalCosts sums every cost component of the shipping, spreads
// the total across orders by pallet share and derives gross amounts.
func RecalculateTotalCosts(shipping *domain.Shipping, orders []*domain.Order) {
	total := domain.DecimalOrZero(shipping.BasicDeliveryCostWithoutVAT).
		Add(domain.DecimalOrZero(shipping.DowntimeRate)).
		Add(domain.DecimalOrZero(shipping.ReturnCostWithoutVAT)).
		Add(domain.DecimalOrZero(shipping.ExtraPointCostsWithoutVAT)).
		Add(domain.DecimalOrZero(shipping.OtherCosts))

	gross := total.Mul(domain.VATRate)
	shipping.TotalDeliveryCostWithoutVAT = &total
	shipping.TotalDeliveryCost = &gross

	for i, share := range Apportion(total, orders) {
		amount := share
		nds := share.Mul(domain.VATRate).Round(2)
		orders[i].TotalAmount = &amount
		orders[i].TotalAmountNds = &nds
	}
}

// Apportion splits amount across orders by pallet share, rounded to cents.
// The last order with pallets absorbs the rounding remainder so the parts
// always sum to amount. With no pallets every share is zero.
func Apportion(amount decimal.Decimal, orders []*domain.Order) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(orders))
	total := totalPallets(orders)
	if total.IsZero() {
		return shares
	}

	last := -1
	allocated := decimal.Zero
	for i, o := range orders {
		pallets := domain.DecimalOrZero(o.PalletsCount)
		if pallets.IsZero() {
			continue
		}
		shares[i] = amount.Mul(pallets).Div(total).Round(2)
		allocated = allocated.Add(shares[i])
		last = i
	}
	if last >= 0 {
		shares[last] = shares[last].Add(amount.Sub(allocated))
	}
	return shares
}

func totalPallets(orders []*domain.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(domain.DecimalOrZero(o.PalletsCount))
	}
	return sum
}

func shippingDateOf(shipping *domain.Shipping, orders []*domain.Order) *time.Time {
	if shipping.ShippingDate != nil {
		return shipping.ShippingDate
	}
	return earliest(orders, func(o *domain.Order) *time.Time { return o.ShippingDate })
}

func zeroDecimal() *decimal.Decimal {
	v := decimal.Zero
	return &v
}
