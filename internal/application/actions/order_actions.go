package actions

import (
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// Statuses of a shipping that still accepts changes to its order list
var openShippingStates = []domain.ShippingState{
	domain.ShippingCreated,
	domain.ShippingRequestSent,
	domain.ShippingConfirmed,
	domain.ShippingRejectedByTc,
	domain.ShippingSlotCancelled,
	domain.ShippingChangesAgreeing,
}

// Statuses from which a shipping may be sent out
var sendableShippingStates = []domain.ShippingState{
	domain.ShippingCreated,
	domain.ShippingRejectedByTc,
	domain.ShippingSlotCancelled,
	domain.ShippingChangesAgreeing,
}

func setOrderStatus(sc *application.Scope, o *domain.Order, status domain.OrderState) Result {
	o.Status = status
	sc.Changes.AddHistory(o.ID, domain.MsgHistoryOrderStatusChanged, o.OrderNumber, string(status))
	sc.Changes.TouchOrders(o)
	return application.Success(domain.MsgOrderStatusChanged, o.OrderNumber, string(status))
}

func shippingStatusOf(o *domain.Order) (domain.ShippingState, bool) {
	if o.Status != domain.OrderInShipping || o.ShippingID == nil || o.OrderShippingStatus == nil {
		return "", false
	}
	return *o.OrderShippingStatus, true
}

// commonShipping returns the one shipping all orders belong to
func commonShipping(orders []*domain.Order) (string, bool) {
	var id string
	for i, o := range orders {
		if o.Status != domain.OrderInShipping || o.ShippingID == nil {
			return "", false
		}
		if i == 0 {
			id = *o.ShippingID
		} else if *o.ShippingID != id {
			return "", false
		}
	}
	return id, id != ""
}

type createOrder struct{}

func (createOrder) IsAvailable(_ *application.Scope, o *domain.Order) bool {
	return o.Status == domain.OrderDraft
}

func (createOrder) Run(sc *application.Scope, o *domain.Order) (Result, error) {
	return setOrderStatus(sc, o, domain.OrderCreated), nil
}

type confirmOrder struct{}

func (confirmOrder) IsAvailable(sc *application.Scope, o *domain.Order) bool {
	return o.Status == domain.OrderCreated && sc.Dict.RequiresConfirmation(sc.Ctx, o)
}

func (confirmOrder) Run(sc *application.Scope, o *domain.Order) (Result, error) {
	o.IsNewForConfirmed = true
	return setOrderStatus(sc, o, domain.OrderConfirmed), nil
}

type cancelOrder struct{}

func (cancelOrder) IsAvailable(_ *application.Scope, o *domain.Order) bool {
	return o.Status.In(domain.OrderDraft, domain.OrderCreated, domain.OrderConfirmed)
}

func (cancelOrder) Run(sc *application.Scope, o *domain.Order) (Result, error) {
	return setOrderStatus(sc, o, domain.OrderCanceled), nil
}

// groupable is an order that may start or join a shipping
func groupable(sc *application.Scope, o *domain.Order) bool {
	return o.ShippingID == nil && o.IsDelivery() && sc.Dict.IsConfirmed(sc.Ctx, o)
}

type createShipping struct {
	shippings *application.ShippingActionService
}

func (createShipping) IsAvailable(sc *application.Scope, o *domain.Order) bool {
	return groupable(sc, o)
}

func (a createShipping) Run(sc *application.Scope, o *domain.Order) (Result, error) {
	shipping, err := a.shippings.UnionOrders(sc, []*domain.Order{o})
	if err != nil {
		return Result{}, err
	}
	return application.Success(domain.MsgShippingCreated, shipping.ShippingNumber), nil
}

type unionOrders struct {
	shippings *application.ShippingActionService
}

func (unionOrders) IsAvailable(sc *application.Scope, orders []*domain.Order) bool {
	if len(orders) < 2 {
		return false
	}
	for _, o := range orders {
		if !groupable(sc, o) {
			return false
		}
	}
	return true
}

func (a unionOrders) Run(sc *application.Scope, orders []*domain.Order) (Result, error) {
	shipping, err := a.shippings.UnionOrders(sc, orders)
	if err != nil {
		return Result{}, err
	}
	return application.Success(domain.MsgShippingCreated, shipping.ShippingNumber), nil
}

type unionOrdersInExisted struct {
	shippings *application.ShippingActionService
}

func (unionOrdersInExisted) IsAvailable(sc *application.Scope, orders []*domain.Order) bool {
	if len(orders) < 2 {
		return false
	}
	grouped := 0
	for _, o := range orders {
		if status, ok := shippingStatusOf(o); ok {
			if !status.In(domain.ShippingCreated, domain.ShippingRequestSent, domain.ShippingConfirmed, domain.ShippingRejectedByTc) {
				return false
			}
			grouped++
			continue
		}
		if !groupable(sc, o) {
			return false
		}
	}
	return grouped == 1
}

func (a unionOrdersInExisted) Run(sc *application.Scope, orders []*domain.Order) (Result, error) {
	shipping, err := a.shippings.UnionOrdersInExisted(sc, orders)
	if err != nil {
		return Result{}, err
	}
	return application.Success(domain.MsgOrdersAddedToShipping, shipping.ShippingNumber), nil
}

type removeFromShipping struct {
	shippings *application.ShippingActionService
}

func (removeFromShipping) IsAvailable(_ *application.Scope, orders []*domain.Order) bool {
	for _, o := range orders {
		status, ok := shippingStatusOf(o)
		if !ok || !status.In(openShippingStates...) {
			return false
		}
	}
	return true
}

func (a removeFromShipping) Run(sc *application.Scope, orders []*domain.Order) (Result, error) {
	touched, err := a.shippings.RemoveFromShipping(sc, orders)
	if err != nil {
		return Result{}, err
	}
	number := ""
	if len(touched) > 0 {
		number = touched[0].ShippingNumber
	}
	return application.Success(domain.MsgOrdersRemovedFromShipping, number), nil
}

type orderShipped struct{}

func (orderShipped) IsAvailable(sc *application.Scope, o *domain.Order) bool {
	if status, ok := shippingStatusOf(o); ok {
		return status.In(domain.ShippingConfirmed, domain.ShippingSlotBooked)
	}
	return !o.IsDelivery() && o.ShippingID == nil && sc.Dict.IsConfirmed(sc.Ctx, o)
}

func (orderShipped) Run(sc *application.Scope, o *domain.Order) (Result, error) {
	return setOrderStatus(sc, o, domain.OrderShipped), nil
}

type orderDelivered struct{}

func (orderDelivered) IsAvailable(_ *application.Scope, o *domain.Order) bool {
	return o.Status == domain.OrderShipped
}

func (orderDelivered) Run(sc *application.Scope, o *domain.Order) (Result, error) {
	return setOrderStatus(sc, o, domain.OrderDelivered), nil
}

type fullReturn struct{}

func (fullReturn) IsAvailable(_ *application.Scope, o *domain.Order) bool {
	return o.Status == domain.OrderDelivered
}

func (fullReturn) Run(sc *application.Scope, o *domain.Order) (Result, error) {
	return setOrderStatus(sc, o, domain.OrderFullReturn), nil
}

type orderLost struct{}

func (orderLost) IsAvailable(_ *application.Scope, o *domain.Order) bool {
	return o.Status == domain.OrderShipped
}

func (orderLost) Run(sc *application.Scope, o *domain.Order) (Result, error) {
	return setOrderStatus(sc, o, domain.OrderLost), nil
}

type archiveOrder struct{}

func (archiveOrder) IsAvailable(_ *application.Scope, o *domain.Order) bool {
	if o.IsDelivery() {
		return o.Status == domain.OrderDelivered
	}
	return o.Status == domain.OrderShipped
}

func (archiveOrder) Run(sc *application.Scope, o *domain.Order) (Result, error) {
	return setOrderStatus(sc, o, domain.OrderArchive), nil
}

// rollbackOrder steps an order back to its logical predecessor
type rollbackOrder struct{}

func (rollbackOrder) previous(sc *application.Scope, o *domain.Order) (domain.OrderState, bool) {
	switch o.Status {
	case domain.OrderCanceled:
		return domain.OrderCreated, true
	case domain.OrderConfirmed:
		return domain.OrderCreated, true
	case domain.OrderShipped:
		if o.IsDelivery() && o.ShippingID != nil {
			return domain.OrderInShipping, true
		}
		return sc.Dict.ReadyState(sc.Ctx, o), true
	case domain.OrderDelivered:
		return domain.OrderShipped, true
	case domain.OrderArchive:
		if o.IsDelivery() {
			return domain.OrderDelivered, true
		}
		return domain.OrderShipped, true
	}
	return "", false
}

func (a rollbackOrder) IsAvailable(sc *application.Scope, o *domain.Order) bool {
	_, ok := a.previous(sc, o)
	return ok
}

func (a rollbackOrder) Run(sc *application.Scope, o *domain.Order) (Result, error) {
	status, _ := a.previous(sc, o)
	return setOrderStatus(sc, o, status), nil
}

// sendOrderShippingToTk sends the shipping of the selected orders
type sendOrderShippingToTk struct {
	shippings *application.ShippingActionService
	sender    *application.SendShippingService
}

func (sendOrderShippingToTk) IsAvailable(_ *application.Scope, orders []*domain.Order) bool {
	if _, ok := commonShipping(orders); !ok {
		return false
	}
	status, _ := shippingStatusOf(orders[0])
	return status.In(sendableShippingStates...) && orders[0].CarrierID != nil
}

func (a sendOrderShippingToTk) Run(sc *application.Scope, orders []*domain.Order) (Result, error) {
	id, _ := commonShipping(orders)
	shipping, members, err := a.shippings.Load(sc, id, orders)
	if err != nil {
		return Result{}, err
	}
	if shipping.CarrierID == nil {
		return application.Failure(domain.MsgActionNotAvailable, "sendOrderShippingToTk"), nil
	}
	return a.sender.Send(sc, shipping, members)
}

type sendToPooling struct {
	shippings *application.ShippingActionService
	sender    *application.SendShippingService
}

func (sendToPooling) IsAvailable(_ *application.Scope, orders []*domain.Order) bool {
	if _, ok := commonShipping(orders); !ok {
		return false
	}
	first := orders[0]
	status, _ := shippingStatusOf(first)
	return status.In(sendableShippingStates...) && first.CarrierID != nil && first.Tariffication().IsPoolingLike()
}

func (a sendToPooling) Run(sc *application.Scope, orders []*domain.Order) (Result, error) {
	id, _ := commonShipping(orders)
	shipping, members, err := a.shippings.Load(sc, id, orders)
	if err != nil {
		return Result{}, err
	}
	return a.sender.SendToPooling(sc, shipping, members)
}

type cancelOrderPoolingReservation struct {
	shippings *application.ShippingActionService
	sender    *application.SendShippingService
}

func (cancelOrderPoolingReservation) IsAvailable(_ *application.Scope, orders []*domain.Order) bool {
	if _, ok := commonShipping(orders); !ok {
		return false
	}
	status, _ := shippingStatusOf(orders[0])
	return status == domain.ShippingSlotBooked
}

func (a cancelOrderPoolingReservation) Run(sc *application.Scope, orders []*domain.Order) (Result, error) {
	id, _ := commonShipping(orders)
	shipping, members, err := a.shippings.Load(sc, id, orders)
	if err != nil {
		return Result{}, err
	}
	return a.sender.CancelReservation(sc, shipping, members)
}
