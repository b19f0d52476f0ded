package application

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
)

// CarrierRequestStats upserts the per carrier request timestamps
type CarrierRequestStats struct {
	repo domain.CarrierRequestStatRepository
}

// NewCarrierRequestStats creates a CarrierRequestStats
func NewCarrierRequestStats(repo domain.CarrierRequestStatRepository) *CarrierRequestStats {
	return &CarrierRequestStats{repo: repo}
}

// MarkSent records that the shipping was sent to its carrier
func (c *CarrierRequestStats) MarkSent(sc *Scope, shipping *domain.Shipping) error {
	return c.mark(sc, shipping, func(s *domain.CarrierRequestDatesStat, now time.Time) { s.SentAt = &now })
}

// MarkConfirmed records the carrier's confirmation
func (c *CarrierRequestStats) MarkConfirmed(sc *Scope, shipping *domain.Shipping) error {
	return c.mark(sc, shipping, func(s *domain.CarrierRequestDatesStat, now time.Time) { s.ConfirmedAt = &now })
}

// MarkRejected records the carrier's rejection
func (c *CarrierRequestStats) MarkRejected(sc *Scope, shipping *domain.Shipping) error {
	return c.mark(sc, shipping, func(s *domain.CarrierRequestDatesStat, now time.Time) { s.RejectedAt = &now })
}

func (c *CarrierRequestStats) mark(sc *Scope, shipping *domain.Shipping, set func(*domain.CarrierRequestDatesStat, time.Time)) error {
	if shipping.CarrierID == nil {
		return nil
	}
	stat, err := c.repo.Find(sc.Ctx, shipping.ID, *shipping.CarrierID)
	if err != nil {
		return fmt.Errorf("failed to load carrier request stat: %w", err)
	}
	if stat == nil {
		stat = &domain.CarrierRequestDatesStat{
			ID:         uuid.New().String(),
			ShippingID: shipping.ID,
			CarrierID:  *shipping.CarrierID,
		}
	}
	set(stat, sc.Now)
	sc.Changes.SaveStat(stat)
	return nil
}

// SendShippingService sends a shipping out: pooling tariffications book a
// slot, everything else becomes a request to the carrier
type SendShippingService struct {
	pooling *PoolingService
	stats   *CarrierRequestStats
	calc    *ShippingCalculationService
	logger  *logging.Logger
}

// NewSendShippingService creates a SendShippingService
func NewSendShippingService(pooling *PoolingService, stats *CarrierRequestStats, calc *ShippingCalculationService, logger *logging.Logger) *SendShippingService {
	return &SendShippingService{
		pooling: pooling,
		stats:   stats,
		calc:    calc,
		logger:  logger.WithComponent("send-shipping"),
	}
}

// Send dispatches the shipping. A failed booking leaves the shipping and
// its orders untouched.
func (s *SendShippingService) Send(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) (Result, error) {
	if shipping.Tariffication().IsPoolingLike() {
		return s.SendToPooling(sc, shipping, orders)
	}
	return s.SendToCarrier(sc, shipping, orders)
}

// SendToCarrier asks the assigned carrier to take the shipping
func (s *SendShippingService) SendToCarrier(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) (Result, error) {
	shipping.SetStatus(domain.ShippingRequestSent, orders)
	shipping.IsNewCarrierRequest = true
	for _, o := range orders {
		o.IsNewCarrierRequest = true
	}

	if err := s.stats.MarkSent(sc, shipping); err != nil {
		return Result{}, err
	}

	sc.Changes.AddHistory(shipping.ID, domain.MsgHistoryShippingStatusChanged, shipping.ShippingNumber, string(shipping.Status))
	sc.Changes.Notify(notification(domain.NotifyRequestToCarrier, shipping, orders))
	sc.Changes.TouchShipping(shipping)
	sc.Changes.TouchOrders(orders...)

	s.logger.WithShipping(shipping.ID, shipping.ShippingNumber).Info("Shipping request sent to carrier", "carrierId", deref(shipping.CarrierID))
	return Success(domain.MsgShippingStatusChanged, shipping.ShippingNumber, string(shipping.Status)), nil
}

// SendToPooling books a slot for the shipping
func (s *SendShippingService) SendToPooling(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) (Result, error) {
	booking, err := s.pooling.BookSlot(sc, shipping, orders)
	if err != nil {
		return Result{}, err
	}
	if booking.IsError() {
		s.logger.WithShipping(shipping.ID, shipping.ShippingNumber).Info("Slot booking rejected", "reason", booking.AsResult().Message)
		return booking.AsResult(), nil
	}

	reservation := booking.Reservation.Result
	if reservation == nil {
		s.logger.WithShipping(shipping.ID, shipping.ShippingNumber).Warn("Slot booking answered without a reservation")
		return Failure(MapPoolingError(domain.PoolingOpBookSlot, http.StatusBadGateway, "")), nil
	}

	shipping.IsPooling = true
	shipping.BookingNumber = reservation.Number
	shipping.PoolingReservationID = reservation.ID
	shipping.SlotID = reservation.SlotID
	shipping.ConsolidationDate = reservation.ConsolidationDate
	shipping.AvailableUntil = reservation.AvailableUntil
	if slot := booking.Slot; slot != nil {
		if shipping.SlotID == "" {
			shipping.SlotID = slot.ID
		}
		if shipping.ConsolidationDate == nil {
			shipping.ConsolidationDate = slot.ConsolidationDate
		}
		if shipping.AvailableUntil == nil {
			shipping.AvailableUntil = slot.AvailableUntil
		}
	}
	for _, o := range orders {
		o.IsPooling = true
		o.BookingNumber = reservation.Number
	}
	shipping.SetStatus(domain.ShippingSlotBooked, orders)
	if err := s.calc.RecalculateDeliveryCosts(sc, shipping, orders); err != nil {
		return Result{}, err
	}

	sc.Changes.AddHistory(shipping.ID, domain.MsgHistorySlotBooked, shipping.ShippingNumber, reservation.Number)
	sc.Changes.TouchShipping(shipping)
	sc.Changes.TouchOrders(orders...)

	s.logger.WithShipping(shipping.ID, shipping.ShippingNumber).Info("Slot booked", "bookingNumber", reservation.Number)
	return Success(domain.MsgSlotBooked, shipping.ShippingNumber, reservation.Number), nil
}

// CancelReservation releases the slot of a booked shipping. It refuses once
// the consolidation cutoff has passed.
func (s *SendShippingService) CancelReservation(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) (Result, error) {
	if !CheckConsolidationDate(shipping, sc.Now) {
		return Failure(domain.MsgConsolidationDateOverdue), nil
	}

	res, err := s.pooling.CancelSlot(sc, shipping)
	if err != nil {
		return Result{}, err
	}
	if res.IsError {
		return Failure(res.Error), nil
	}

	shipping.ClearReservation()
	shipping.IsPooling = false
	for _, o := range orders {
		o.BookingNumber = ""
		o.IsPooling = false
	}
	shipping.SetStatus(domain.ShippingSlotCancelled, orders)
	if err := s.calc.RecalculateDeliveryCosts(sc, shipping, orders); err != nil {
		return Result{}, err
	}

	sc.Changes.AddHistory(shipping.ID, domain.MsgHistoryShippingStatusChanged, shipping.ShippingNumber, string(shipping.Status))
	sc.Changes.TouchShipping(shipping)
	sc.Changes.TouchOrders(orders...)
	return Success(domain.MsgShippingStatusChanged, shipping.ShippingNumber, string(shipping.Status)), nil
}
