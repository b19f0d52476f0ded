package validation

import (
	"time"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// dateOrder fails when both instants are set and later is before earlier
func dateOrder(field, message string, earlier, later *time.Time) *domain.ValidationError {
	if earlier == nil || later == nil || !later.Before(*earlier) {
		return nil
	}
	return &domain.ValidationError{
		Field:   field,
		Message: message,
		Type:    domain.InvalidDateRange,
	}
}

type deliveryDateRule struct{}

func (deliveryDateRule) IsApplicable(field string) bool {
	return field == "shippingDate" || field == "deliveryDate"
}

func (deliveryDateRule) Validate(_ Context, _ string, o, _ *domain.Order) (*domain.ValidationError, error) {
	return dateOrder("deliveryDate", domain.MsgInvalidDeliveryDate, o.ShippingDate, o.DeliveryDate), nil
}

type loadingDepartureRule struct{}

func (loadingDepartureRule) IsApplicable(field string) bool {
	return field == "loadingArrivalTime" || field == "loadingDepartureTime"
}

func (loadingDepartureRule) Validate(_ Context, _ string, o, _ *domain.Order) (*domain.ValidationError, error) {
	return dateOrder("loadingDepartureTime", domain.MsgInvalidLoadingDeparture, o.LoadingArrivalTime, o.LoadingDepartureTime), nil
}

type unloadingArrivalRule struct{}

func (unloadingArrivalRule) IsApplicable(field string) bool {
	return field == "loadingDepartureTime" || field == "unloadingArrivalTime"
}

func (unloadingArrivalRule) Validate(_ Context, _ string, o, _ *domain.Order) (*domain.ValidationError, error) {
	return dateOrder("unloadingArrivalTime", domain.MsgInvalidUnloadingArrival, o.LoadingDepartureTime, o.UnloadingArrivalTime), nil
}

// unloadingDepartureRule keeps the historical direction: departure may not
// be later than arrival
type unloadingDepartureRule struct{}

func (unloadingDepartureRule) IsApplicable(field string) bool {
	return field == "unloadingArrivalTime" || field == "unloadingDepartureTime"
}

func (unloadingDepartureRule) Validate(_ Context, _ string, o, _ *domain.Order) (*domain.ValidationError, error) {
	return dateOrder("unloadingDepartureTime", domain.MsgInvalidUnloadingDeparture, o.UnloadingDepartureTime, o.UnloadingArrivalTime), nil
}
