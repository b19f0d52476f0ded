package actions

import (
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

func setShippingStatus(sc *application.Scope, t *ShippingTarget, status domain.ShippingState) Result {
	t.Shipping.SetStatus(status, t.Orders)
	sc.Changes.AddHistory(t.Shipping.ID, domain.MsgHistoryShippingStatusChanged, t.Shipping.ShippingNumber, string(status))
	sc.Changes.TouchShipping(t.Shipping)
	sc.Changes.TouchOrders(t.Orders...)
	return application.Success(domain.MsgShippingStatusChanged, t.Shipping.ShippingNumber, string(status))
}

type sendShippingToTk struct {
	sender *application.SendShippingService
}

func (sendShippingToTk) IsAvailable(_ *application.Scope, t *ShippingTarget) bool {
	return t.Shipping.Status.In(sendableShippingStates...) && t.Shipping.CarrierID != nil && len(t.Orders) > 0
}

func (a sendShippingToTk) Run(sc *application.Scope, t *ShippingTarget) (Result, error) {
	return a.sender.Send(sc, t.Shipping, t.Orders)
}

type confirmShipping struct {
	stats *application.CarrierRequestStats
}

func (confirmShipping) IsAvailable(_ *application.Scope, t *ShippingTarget) bool {
	return t.Shipping.Status.In(domain.ShippingRequestSent, domain.ShippingChangesAgreeing)
}

func (a confirmShipping) Run(sc *application.Scope, t *ShippingTarget) (Result, error) {
	if err := a.stats.MarkConfirmed(sc, t.Shipping); err != nil {
		return Result{}, err
	}
	t.Shipping.IsNewCarrierRequest = false
	return setShippingStatus(sc, t, domain.ShippingConfirmed), nil
}

type rejectRequestShipping struct {
	stats *application.CarrierRequestStats
}

func (rejectRequestShipping) IsAvailable(_ *application.Scope, t *ShippingTarget) bool {
	return t.Shipping.Status.In(domain.ShippingRequestSent, domain.ShippingChangesAgreeing)
}

func (a rejectRequestShipping) Run(sc *application.Scope, t *ShippingTarget) (Result, error) {
	if err := a.stats.MarkRejected(sc, t.Shipping); err != nil {
		return Result{}, err
	}
	t.Shipping.IsNewCarrierRequest = false
	res := setShippingStatus(sc, t, domain.ShippingRejectedByTc)
	sc.Changes.Notify(domain.Notification{
		Type:           domain.NotifyRejectShippingRequest,
		ShippingID:     t.Shipping.ID,
		ShippingNumber: t.Shipping.ShippingNumber,
		CarrierID:      derefString(t.Shipping.CarrierID),
	})
	return res, nil
}

type cancelShipping struct {
	shippings *application.ShippingActionService
}

func (cancelShipping) IsAvailable(_ *application.Scope, t *ShippingTarget) bool {
	return t.Shipping.Status.In(openShippingStates...)
}

func (a cancelShipping) Run(sc *application.Scope, t *ShippingTarget) (Result, error) {
	a.shippings.CancelShipping(sc, t.Shipping, t.Orders)
	return application.Success(domain.MsgShippingStatusChanged, t.Shipping.ShippingNumber, string(t.Shipping.Status)), nil
}

type completeShipping struct{}

func (completeShipping) IsAvailable(_ *application.Scope, t *ShippingTarget) bool {
	return t.Shipping.Status.In(domain.ShippingConfirmed, domain.ShippingSlotBooked)
}

func (completeShipping) Run(sc *application.Scope, t *ShippingTarget) (Result, error) {
	return setShippingStatus(sc, t, domain.ShippingCompleted), nil
}

type billSend struct{}

func (billSend) IsAvailable(_ *application.Scope, t *ShippingTarget) bool {
	return t.Shipping.Status == domain.ShippingCompleted
}

func (billSend) Run(sc *application.Scope, t *ShippingTarget) (Result, error) {
	return setShippingStatus(sc, t, domain.ShippingBillSend), nil
}

type archiveShipping struct{}

func (archiveShipping) IsAvailable(_ *application.Scope, t *ShippingTarget) bool {
	return t.Shipping.Status == domain.ShippingBillSend
}

func (archiveShipping) Run(sc *application.Scope, t *ShippingTarget) (Result, error) {
	return setShippingStatus(sc, t, domain.ShippingArchive), nil
}

type cancelShippingPoolingReservation struct {
	sender *application.SendShippingService
}

func (cancelShippingPoolingReservation) IsAvailable(_ *application.Scope, t *ShippingTarget) bool {
	return t.Shipping.Status == domain.ShippingSlotBooked
}

func (a cancelShippingPoolingReservation) Run(sc *application.Scope, t *ShippingTarget) (Result, error) {
	return a.sender.CancelReservation(sc, t.Shipping, t.Orders)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
