package domain

// Message keys resolved by the translation catalog. Positional args are
// documented next to each key.
const (
	// {0} order number
	MsgHistoryOrderCreated = "history.orderCreated"
	// {0} order number, {1} new status
	MsgHistoryOrderStatusChanged = "history.orderStatusChanged"
	// {0} order number, {1} shipping number
	MsgHistoryOrderAddedToShipping = "history.orderAddedToShipping"
	// {0} order number, {1} shipping number
	MsgHistoryOrderRemovedFromShipping = "history.orderRemovedFromShipping"
	// {0} order number, {1} field
	MsgHistoryOrderFieldChanged = "history.orderFieldChanged"
	// {0} shipping number
	MsgHistoryShippingCreated = "history.shippingCreated"
	// {0} shipping number, {1} new status
	MsgHistoryShippingStatusChanged = "history.shippingStatusChanged"
	// {0} shipping number, {1} booking number
	MsgHistorySlotBooked = "history.slotBooked"
	// {0} shipping number
	MsgHistoryNoTariffFound = "history.noTariffFound"
	// {0} shipping number, {1} vehicle type name
	MsgHistoryVehicleTypeChanged = "history.vehicleTypeChanged"
	// {0} tariff id
	MsgHistoryTariffSaved = "history.tariffSaved"

	// {0} action name
	MsgActionNotAvailable = "action.notAvailable"
	// {0} entity number, {1} new status
	MsgOrderStatusChanged = "result.orderStatusChanged"
	// {0} shipping number, {1} new status
	MsgShippingStatusChanged = "result.shippingStatusChanged"
	// {0} shipping number
	MsgShippingCreated = "result.shippingCreated"
	// {0} shipping number
	MsgOrdersAddedToShipping = "result.ordersAddedToShipping"
	// {0} shipping number
	MsgOrdersRemovedFromShipping = "result.ordersRemovedFromShipping"
	// {0} shipping number, {1} booking number
	MsgSlotBooked = "result.slotBooked"
	// {0} shipping number
	MsgBacklightCleared = "result.backlightCleared"
	// {0} order number
	MsgOrderSaved = "result.orderSaved"

	MsgConsolidationDateOverdue  = "pooling.consolidationDateOverdue"
	MsgPoolingUnauthorized       = "pooling.unauthorized"
	MsgPoolingForbiddenSlots     = "pooling.forbidden.slots"
	MsgPoolingForbiddenBooking   = "pooling.forbidden.booking"
	MsgPoolingForbiddenCancel    = "pooling.forbidden.cancel"
	MsgPoolingNotFoundSlot       = "pooling.notFound.slot"
	MsgPoolingNotFoundReserv     = "pooling.notFound.reservation"
	MsgPoolingInternalError      = "pooling.internalServerError"
	MsgPoolingTimeout            = "pooling.timeout"
	MsgPoolingUnavailable        = "pooling.unavailable"
	MsgPoolingBadResponse        = "pooling.badResponse"
	MsgPoolingNoSlots            = "pooling.noSlots"
	MsgPoolingDoubledeck         = "pooling.doubledeckNotSupported"
	MsgPoolingNotReserved        = "pooling.notReserved"
	// {0} field, {1} order number
	MsgPoolingFieldRequired = "pooling.fieldRequired"
	// {0} dictionary, {1} entry name
	MsgPoolingMissingExternalID = "pooling.missingExternalId"
	// {0} field
	MsgPoolingFieldsMismatch = "pooling.fieldsMismatch"
	// {0} order number
	MsgPoolingInvalidPallets = "pooling.invalidPallets"
	// {0} point (loading/unloading), {1} field
	MsgPoolingIncompleteAddress = "pooling.incompleteAddress"

	// {0} field
	MsgValueIsReadonly = "validation.valueIsReadonly"
	// {0} field
	MsgValueIsRequired = "validation.valueIsRequired"
	// {0} field
	MsgInvalidDictionaryValue    = "validation.invalidDictionaryValue"
	MsgInvalidDeliveryDate       = "validation.invalidDeliveryDate"
	MsgInvalidLoadingDeparture   = "validation.invalidLoadingDeparture"
	MsgInvalidUnloadingArrival   = "validation.invalidUnloadingArrival"
	MsgInvalidUnloadingDeparture = "validation.invalidUnloadingDeparture"
	MsgInvalidTariffRange        = "validation.invalidTariffRange"
	MsgDuplicatedTariff          = "validation.duplicatedTariff"
	MsgTariffOverlap             = "validation.tariffOverlap"
)
