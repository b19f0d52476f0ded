package domain

import "errors"

// Lookup failures. The HTTP layer maps these by message.
var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrShippingNotFound    = errors.New("shipping not found")
	ErrTariffNotFound      = errors.New("tariff not found")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrWarehouseNotFound   = errors.New("warehouse not found")
	ErrCarrierNotFound     = errors.New("carrier not found")
	ErrVehicleTypeNotFound = errors.New("vehicle type not found")
	ErrBodyTypeNotFound    = errors.New("body type not found")
	ErrActionNotFound      = errors.New("action not found")
	ErrUnauthorized        = errors.New("unauthorized")
)
