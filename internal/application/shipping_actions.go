package application

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/metrics"
)

// ShippingActionService groups orders into shippings and takes them apart
// again. All changes go to the scope's change set.
type ShippingActionService struct {
	shippings domain.ShippingRepository
	orders    domain.OrderRepository
	calc      *ShippingCalculationService
	numbers   *ShippingNumberProvider
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewShippingActionService creates a ShippingActionService
func NewShippingActionService(
	shippings domain.ShippingRepository,
	orders domain.OrderRepository,
	calc *ShippingCalculationService,
	numbers *ShippingNumberProvider,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ShippingActionService {
	return &ShippingActionService{
		shippings: shippings,
		orders:    orders,
		calc:      calc,
		numbers:   numbers,
		metrics:   m,
		logger:    logger.WithComponent("shipping-actions"),
	}
}

// UnionOrders creates a new shipping from orders. The carrier, vehicle and
// body type are taken over only when every order agrees on them.
func (s *ShippingActionService) UnionOrders(sc *Scope, orders []*domain.Order) (*domain.Shipping, error) {
	if len(orders) == 0 {
		return nil, fmt.Errorf("no orders to group")
	}

	deliveryType := domain.DeliveryTypeDelivery
	shipping := &domain.Shipping{
		ID:                uuid.New().String(),
		ShippingNumber:    s.numbers.Next(),
		Status:            domain.ShippingCreated,
		CompanyID:         agreed(orders, func(o *domain.Order) *string { return o.CompanyID }),
		CarrierID:         agreed(orders, func(o *domain.Order) *string { return o.CarrierID }),
		VehicleTypeID:     agreed(orders, func(o *domain.Order) *string { return o.VehicleTypeID }),
		BodyTypeID:        agreed(orders, func(o *domain.Order) *string { return o.BodyTypeID }),
		TarifficationType: firstTariffication(orders),
		DeliveryType:      &deliveryType,
		CreatedAt:         sc.Now,
	}

	sc.Changes.AddHistory(shipping.ID, domain.MsgHistoryShippingCreated, shipping.ShippingNumber)
	s.attach(sc, shipping, orders)

	if err := s.rebuild(sc, shipping, orders); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordShippingCreated()
	}
	s.logger.WithShipping(shipping.ID, shipping.ShippingNumber).Info("Shipping created", "orders", len(orders))
	return shipping, nil
}

// UnionOrdersInExisted merges orders into the shipping of the one selected
// order that is already grouped. A confirmed shipping goes back to the
// carrier for another confirmation.
func (s *ShippingActionService) UnionOrdersInExisted(sc *Scope, orders []*domain.Order) (*domain.Shipping, error) {
	var anchor *domain.Order
	var added []*domain.Order
	for _, o := range orders {
		if o.Status == domain.OrderInShipping && o.ShippingID != nil {
			anchor = o
			continue
		}
		added = append(added, o)
	}
	if anchor == nil {
		return nil, fmt.Errorf("no grouped order among selection")
	}

	shipping, err := s.shippings.FindByID(sc.Ctx, *anchor.ShippingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipping: %w", err)
	}
	loaded, err := s.orders.FindByShippingID(sc.Ctx, shipping.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipping orders: %w", err)
	}
	members := append(mergeOrders(loaded, orders), added...)

	s.attach(sc, shipping, added)

	if shipping.Status == domain.ShippingConfirmed {
		shipping.SetStatus(domain.ShippingRequestSent, members)
		shipping.IsNewCarrierRequest = true
		sc.Changes.AddHistory(shipping.ID, domain.MsgHistoryShippingStatusChanged, shipping.ShippingNumber, string(shipping.Status))
		sc.Changes.Notify(notification(domain.NotifyRequestToCarrier, shipping, members))
	} else if shipping.Status != domain.ShippingCreated {
		sc.Changes.Notify(notification(domain.NotifyAddOrdersToShipping, shipping, added))
	}

	if err := s.rebuild(sc, shipping, members); err != nil {
		return nil, err
	}

	s.logger.WithShipping(shipping.ID, shipping.ShippingNumber).Info("Orders added to shipping", "added", len(added))
	return shipping, nil
}

// RemoveFromShipping releases orders from their shippings. A shipping left
// without orders is cancelled, the others are recalculated.
func (s *ShippingActionService) RemoveFromShipping(sc *Scope, orders []*domain.Order) ([]*domain.Shipping, error) {
	groups := make(map[string][]*domain.Order)
	var ids []string
	for _, o := range orders {
		if o.ShippingID == nil {
			continue
		}
		id := *o.ShippingID
		if _, ok := groups[id]; !ok {
			ids = append(ids, id)
		}
		groups[id] = append(groups[id], o)
	}

	var touched []*domain.Shipping
	for _, id := range ids {
		shipping, err := s.shippings.FindByID(sc.Ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load shipping: %w", err)
		}
		loaded, err := s.orders.FindByShippingID(sc.Ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load shipping orders: %w", err)
		}

		removed := groups[id]
		removedIDs := make(map[string]bool, len(removed))
		for _, o := range removed {
			removedIDs[o.ID] = true
		}
		var remaining []*domain.Order
		for _, o := range loaded {
			if !removedIDs[o.ID] {
				remaining = append(remaining, o)
			}
		}

		s.detach(sc, shipping, removed)

		if len(remaining) == 0 {
			s.cancel(sc, shipping)
		} else {
			if shipping.Status != domain.ShippingCreated {
				sc.Changes.Notify(notification(domain.NotifyRemoveOrdersFromShipping, shipping, removed))
			}
			if err := s.rebuild(sc, shipping, remaining); err != nil {
				return nil, err
			}
		}
		touched = append(touched, shipping)

		s.logger.WithShipping(shipping.ID, shipping.ShippingNumber).Info("Orders removed from shipping",
			"removed", len(removed), "remaining", len(remaining))
	}
	return touched, nil
}

// CancelShipping releases every order of the shipping and cancels it
func (s *ShippingActionService) CancelShipping(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) {
	s.detach(sc, shipping, orders)
	s.cancel(sc, shipping)
}

func (s *ShippingActionService) attach(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) {
	for _, o := range orders {
		o.AttachTo(shipping)
		sc.Changes.AddHistory(o.ID, domain.MsgHistoryOrderAddedToShipping, o.OrderNumber, shipping.ShippingNumber)
	}
	sc.Changes.TouchOrders(orders...)
	sc.Changes.TouchShipping(shipping)
}

func (s *ShippingActionService) detach(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) {
	for _, o := range orders {
		o.Detach(sc.Dict.ReadyState(sc.Ctx, o))
		sc.Changes.AddHistory(o.ID, domain.MsgHistoryOrderRemovedFromShipping, o.OrderNumber, shipping.ShippingNumber)
	}
	s.calc.ClearShippingOrdersCosts(sc, orders)
}

func (s *ShippingActionService) cancel(sc *Scope, shipping *domain.Shipping) {
	shipping.SetStatus(domain.ShippingCanceled, nil)
	sc.Changes.AddHistory(shipping.ID, domain.MsgHistoryShippingStatusChanged, shipping.ShippingNumber, string(shipping.Status))
	sc.Changes.TouchShipping(shipping)
	if !shipping.Tariffication().IsPoolingLike() {
		sc.Changes.Notify(notification(domain.NotifyCancelShipping, shipping, nil))
	}
}

// rebuild re-aggregates the shipping and re-prices it
func (s *ShippingActionService) rebuild(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) error {
	if err := s.calc.RecalculateShipping(sc, shipping, orders); err != nil {
		return err
	}
	DriverDataSync(sc, shipping, orders)
	return s.calc.RecalculateDeliveryCosts(sc, shipping, orders)
}

func firstTariffication(orders []*domain.Order) *domain.TarifficationType {
	for _, o := range orders {
		if o.TarifficationType != nil {
			t := *o.TarifficationType
			return &t
		}
	}
	return nil
}

// mergeOrders returns loaded with every entry replaced by the caller's
// instance of the same order, so edits are made on one copy
func mergeOrders(loaded, given []*domain.Order) []*domain.Order {
	byID := make(map[string]*domain.Order, len(given))
	for _, o := range given {
		byID[o.ID] = o
	}
	out := make([]*domain.Order, len(loaded))
	for i, o := range loaded {
		if g, ok := byID[o.ID]; ok {
			out[i] = g
		} else {
			out[i] = o
		}
	}
	return out
}

func notification(typ domain.NotificationType, shipping *domain.Shipping, orders []*domain.Order) domain.Notification {
	return domain.Notification{
		Type:           typ,
		ShippingID:     shipping.ID,
		ShippingNumber: shipping.ShippingNumber,
		CarrierID:      deref(shipping.CarrierID),
		OrderIDs:       orderIDs(orders),
	}
}

// Load returns the shipping and its orders, substituting the caller's
// instances for orders it already holds
func (s *ShippingActionService) Load(sc *Scope, shippingID string, given []*domain.Order) (*domain.Shipping, []*domain.Order, error) {
	shipping, err := s.shippings.FindByID(sc.Ctx, shippingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load shipping: %w", err)
	}
	loaded, err := s.orders.FindByShippingID(sc.Ctx, shippingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load shipping orders: %w", err)
	}
	return shipping, mergeOrders(loaded, given), nil
}
