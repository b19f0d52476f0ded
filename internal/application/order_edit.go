package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application/validation"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
)

// Fields whose change re-aggregates the owning shipping
var aggregateFields = []string{
	"palletsCount", "confirmedPalletsCount", "actualPalletsCount",
	"weightKg", "actualWeightKg", "trucksDowntime",
	"shippingWarehouseId", "deliveryWarehouseId", "shippingAddress", "deliveryAddress",
	"shippingRegion", "deliveryRegion",
	"shippingDate", "deliveryDate", "loadingArrivalTime", "loadingDepartureTime",
	"temperatureMin", "temperatureMax",
}

// CreateHook finishes a newly created order inside the same scope
type CreateHook func(sc *Scope, o *domain.Order) (Result, error)

// OrderEditService saves edited orders: validation, field mapping and the
// cascades onto the owning shipping
type OrderEditService struct {
	scopes    *ScopeFactory
	uow       domain.UnitOfWork
	orders    domain.OrderRepository
	shippings domain.ShippingRepository
	calc      *ShippingCalculationService
	pooling   *PoolingService
	rules     []validation.Rule
	onCreate  CreateHook
	logger    *logging.Logger
}

// NewOrderEditService creates an OrderEditService with the standard rule set
func NewOrderEditService(
	scopes *ScopeFactory,
	uow domain.UnitOfWork,
	orders domain.OrderRepository,
	shippings domain.ShippingRepository,
	calc *ShippingCalculationService,
	pooling *PoolingService,
	logger *logging.Logger,
) *OrderEditService {
	return &OrderEditService{
		scopes:    scopes,
		uow:       uow,
		orders:    orders,
		shippings: shippings,
		calc:      calc,
		pooling:   pooling,
		rules:     validation.Rules(),
		logger:    logger.WithComponent("order-edit"),
	}
}

// OnCreate registers the step that moves a new draft order forward
func (s *OrderEditService) OnCreate(hook CreateHook) {
	s.onCreate = hook
}

// Save validates and applies dto, then commits every resulting change at
// once. Nothing is written when validation or a cascade fails.
func (s *OrderEditService) Save(ctx context.Context, user domain.User, dto *OrderDTO) (OrderSaveResult, error) {
	sc := s.scopes.Open(ctx, user)

	result, err := s.save(sc, dto)
	if err != nil || result.IsError() {
		return result, err
	}

	if !sc.Changes.IsEmpty() {
		if err := s.uow.Commit(ctx, sc.Changes); err != nil {
			return OrderSaveResult{}, fmt.Errorf("failed to save order: %w", err)
		}
	}
	return result, nil
}

func (s *OrderEditService) save(sc *Scope, dto *OrderDTO) (OrderSaveResult, error) {
	var current *domain.Order
	proposed := &domain.Order{}
	if dto.ID != "" {
		var err error
		if current, err = s.orders.FindByID(sc.Ctx, dto.ID); err != nil {
			return OrderSaveResult{}, err
		}
		copied := *current
		proposed = &copied
	}

	changed := MapOrderChanges(dto, proposed)

	var shipping *domain.Shipping
	if current != nil && current.ShippingID != nil {
		var err error
		if shipping, err = s.shippings.FindByID(sc.Ctx, *current.ShippingID); err != nil {
			return OrderSaveResult{}, fmt.Errorf("failed to load shipping: %w", err)
		}
	}

	v, err := validation.Validate(validation.Context{
		Ctx:      sc.Ctx,
		Dict:     sc.Dict,
		Shipping: shipping,
		Now:      sc.Now,
	}, s.rules, changed, proposed, current)
	if err != nil {
		return OrderSaveResult{}, err
	}
	if v.IsError() {
		return OrderSaveResult{Validation: v, Result: Invalid(v)}, nil
	}

	if current == nil {
		return s.create(sc, proposed)
	}

	if len(changed) == 0 {
		return OrderSaveResult{Order: current, Result: Success(domain.MsgOrderSaved, current.OrderNumber)}, nil
	}

	*current = *proposed
	for _, field := range changed {
		sc.Changes.AddHistory(current.ID, domain.MsgHistoryOrderFieldChanged, current.OrderNumber, field)
	}
	sc.Changes.TouchOrders(current)

	if shipping != nil {
		res, err := s.cascade(sc, shipping, current, changed)
		if err != nil || res.IsError {
			return OrderSaveResult{Order: current, Result: res}, err
		}
	}

	return OrderSaveResult{Order: current, Result: Success(domain.MsgOrderSaved, current.OrderNumber)}, nil
}

func (s *OrderEditService) create(sc *Scope, o *domain.Order) (OrderSaveResult, error) {
	o.ID = uuid.New().String()
	o.Status = domain.OrderDraft
	o.CreatedAt = sc.Now
	sc.Changes.AddHistory(o.ID, domain.MsgHistoryOrderCreated, o.OrderNumber)
	sc.Changes.TouchOrders(o)

	if s.onCreate != nil {
		res, err := s.onCreate(sc, o)
		if err != nil || res.IsError {
			return OrderSaveResult{Order: o, Result: res}, err
		}
	}

	s.logger.WithOrder(o.ID, o.OrderNumber).Info("Order created", "status", o.Status)
	return OrderSaveResult{Order: o, Result: Success(domain.MsgOrderSaved, o.OrderNumber)}, nil
}

// cascade pushes an order edit onto its shipping. Shipping-level fields are
// copied to every member first. A confirmed shipping needs the carrier to
// agree again, a booked slot is updated in place.
func (s *OrderEditService) cascade(sc *Scope, shipping *domain.Shipping, order *domain.Order, changed []string) (Result, error) {
	loaded, err := s.orders.FindByShippingID(sc.Ctx, shipping.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load shipping orders: %w", err)
	}
	members := mergeOrders(loaded, []*domain.Order{order})

	reaggregate := anyOf(changed, aggregateFields)
	resync := false
	for _, field := range changed {
		if IsShippingField(field) {
			resync = true
			break
		}
	}
	reprice := reaggregate || resync

	if resync {
		ShippingFieldSync(sc, shipping, order, members, changed)
	}

	if reaggregate {
		if err := s.calc.RecalculateShipping(sc, shipping, members); err != nil {
			return Result{}, err
		}
	}
	if reprice {
		if err := s.calc.RecalculateDeliveryCosts(sc, shipping, members); err != nil {
			return Result{}, err
		}
	}
	for _, field := range changed {
		if IsDriverField(field) {
			DriverDataSync(sc, shipping, members)
			break
		}
	}

	if !reprice {
		return Success(domain.MsgOrderSaved, order.OrderNumber), nil
	}

	switch {
	case shipping.Status == domain.ShippingConfirmed:
		shipping.SetStatus(domain.ShippingChangesAgreeing, members)
		sc.Changes.AddHistory(shipping.ID, domain.MsgHistoryShippingStatusChanged, shipping.ShippingNumber, string(shipping.Status))
		sc.Changes.TouchShipping(shipping)
		sc.Changes.TouchOrders(members...)

	case shipping.Status == domain.ShippingSlotBooked && shipping.Tariffication().IsPoolingLike():
		update, err := s.pooling.UpdateReservation(sc, shipping, members)
		if err != nil {
			return Result{}, err
		}
		if update.IsError() {
			return update.AsResult(), nil
		}
	}
	return Success(domain.MsgOrderSaved, order.OrderNumber), nil
}

func anyOf(changed, fields []string) bool {
	for _, f := range changed {
		if contains(fields, f) {
			return true
		}
	}
	return false
}
