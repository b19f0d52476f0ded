package application

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
)

// consolidationCutoffHour is the hour of the day before consolidation after
// which a reservation can no longer be cancelled
const consolidationCutoffHour = 17

// PoolingService validates orders for the external slot reservation
// service and drives slot search, booking, update and cancellation
type PoolingService struct {
	client   domain.PoolingClient
	validate *validator.Validate
	logger   *logging.Logger
}

// NewPoolingService creates a PoolingService
func NewPoolingService(client domain.PoolingClient, logger *logging.Logger) *PoolingService {
	return &PoolingService{
		client:   client,
		validate: validator.New(),
		logger:   logger.WithComponent("pooling"),
	}
}

// ValidateOrders runs the pre-flight checks in order and stops at the first
// stage that fails: required fields, external ids of referenced
// dictionaries, agreement across orders, pallets and tariffication.
func (s *PoolingService) ValidateOrders(sc *Scope, orders []*domain.Order) *domain.ValidationResult {
	stages := []func(*Scope, []*domain.Order) *domain.ValidationResult{
		s.checkRequiredFields,
		s.checkRelatedValues,
		s.checkFieldsMatch,
		s.checkPalletsAndTariffication,
	}
	for _, stage := range stages {
		if result := stage(sc, orders); result.IsError() {
			return result
		}
	}
	return &domain.ValidationResult{}
}

func (s *PoolingService) checkRequiredFields(sc *Scope, orders []*domain.Order) *domain.ValidationResult {
	result := &domain.ValidationResult{}
	missing := func(o *domain.Order, field string) {
		result.AddError(field, domain.MsgPoolingFieldRequired, domain.ValueIsRequired, field, o.OrderNumber)
	}

	for _, o := range orders {
		if o.Tariffication().IsPoolingLike() {
			if o.ShippingWarehouseID == nil {
				missing(o, "shippingWarehouseId")
			}
			if o.DeliveryWarehouseID == nil {
				missing(o, "deliveryWarehouseId")
			}
		} else {
			if o.ShippingAddress == "" {
				missing(o, "shippingAddress")
			}
			if o.DeliveryAddress == "" {
				missing(o, "deliveryAddress")
			}
		}
		if o.ShippingDate == nil {
			missing(o, "shippingDate")
		}
		if o.DeliveryDate == nil {
			missing(o, "deliveryDate")
		}
		if o.CarrierID == nil {
			missing(o, "carrierId")
		}
		if o.BodyTypeID == nil {
			missing(o, "bodyTypeId")
		}
		if o.OrderAmount == nil || !o.OrderAmount.IsPositive() {
			missing(o, "orderAmount")
		}
		if o.OrderNumber == "" {
			missing(o, "orderNumber")
		}
		if o.ClientOrderNumber == "" {
			missing(o, "clientOrderNumber")
		}
		if o.ClientName == "" && !s.deliversToDistributionCenter(sc, o) {
			missing(o, "clientName")
		}
	}
	return result
}

func (s *PoolingService) deliversToDistributionCenter(sc *Scope, o *domain.Order) bool {
	if o.DeliveryWarehouseID == nil {
		return false
	}
	wh, err := sc.Dict.Warehouse(sc.Ctx, *o.DeliveryWarehouseID)
	return err == nil && wh.DistributionCenterID != ""
}

func (s *PoolingService) checkRelatedValues(sc *Scope, orders []*domain.Order) *domain.ValidationResult {
	result := &domain.ValidationResult{}
	seen := make(map[string]bool)
	report := func(field, dictionary, id, name string) {
		if seen[dictionary+id] {
			return
		}
		seen[dictionary+id] = true
		if name == "" {
			name = id
		}
		result.AddError(field, domain.MsgPoolingMissingExternalID, domain.InvalidDictionaryValue, dictionary, name)
	}

	for _, o := range orders {
		if o.ShippingWarehouseID != nil {
			wh, err := sc.Dict.Warehouse(sc.Ctx, *o.ShippingWarehouseID)
			if err != nil || wh.PoolingID == "" {
				report("shippingWarehouseId", "warehouse", *o.ShippingWarehouseID, nameOf(wh, err, func(w *domain.Warehouse) string { return w.Name }))
			}
		}
		if o.DeliveryWarehouseID != nil {
			wh, err := sc.Dict.Warehouse(sc.Ctx, *o.DeliveryWarehouseID)
			if err != nil || (wh.DistributionCenterID == "" && wh.PoolingID == "") {
				report("deliveryWarehouseId", "warehouse", *o.DeliveryWarehouseID, nameOf(wh, err, func(w *domain.Warehouse) string { return w.Name }))
			}
		}
		if o.CarrierID != nil {
			c, err := sc.Dict.Carrier(sc.Ctx, *o.CarrierID)
			if err != nil || c.PoolingID == "" {
				report("carrierId", "carrier", *o.CarrierID, nameOf(c, err, func(c *domain.Carrier) string { return c.Title }))
			}
		}
		if o.BodyTypeID != nil {
			bt, err := sc.Dict.BodyType(sc.Ctx, *o.BodyTypeID)
			if err != nil || bt.PoolingID == "" {
				report("bodyTypeId", "bodyType", *o.BodyTypeID, nameOf(bt, err, func(b *domain.BodyType) string { return b.Name }))
			}
		}
	}
	return result
}

func nameOf[T any](v *T, err error, name func(*T) string) string {
	if err != nil || v == nil {
		return ""
	}
	return name(v)
}

func (s *PoolingService) checkFieldsMatch(_ *Scope, orders []*domain.Order) *domain.ValidationResult {
	result := &domain.ValidationResult{}
	if len(orders) < 2 {
		return result
	}
	first := orders[0]
	mismatch := func(field string) {
		result.AddError(field, domain.MsgPoolingFieldsMismatch, domain.InvalidValueFormat, field)
	}

	sameDay := func(a, b *time.Time) bool {
		if a == nil || b == nil {
			return a == nil && b == nil
		}
		return domain.TruncateDay(*a).Equal(domain.TruncateDay(*b))
	}

	type matchedField struct {
		name  string
		equal func(a, b *domain.Order) bool
	}
	var fields []matchedField
	if first.Tariffication().IsPoolingLike() {
		fields = append(fields,
			matchedField{"shippingDate", func(a, b *domain.Order) bool { return sameDay(a.ShippingDate, b.ShippingDate) }},
			matchedField{"deliveryDate", func(a, b *domain.Order) bool { return sameDay(a.DeliveryDate, b.DeliveryDate) }},
			matchedField{"shippingWarehouseId", func(a, b *domain.Order) bool { return domain.EqualPtr(a.ShippingWarehouseID, b.ShippingWarehouseID) }},
			matchedField{"deliveryWarehouseId", func(a, b *domain.Order) bool { return domain.EqualPtr(a.DeliveryWarehouseID, b.DeliveryWarehouseID) }},
		)
	}
	fields = append(fields,
		matchedField{"carrierId", func(a, b *domain.Order) bool { return domain.EqualPtr(a.CarrierID, b.CarrierID) }},
		matchedField{"bodyTypeId", func(a, b *domain.Order) bool { return domain.EqualPtr(a.BodyTypeID, b.BodyTypeID) }},
	)

	for _, f := range fields {
		for _, o := range orders[1:] {
			if !f.equal(first, o) {
				mismatch(f.name)
				break
			}
		}
	}
	return result
}

func (s *PoolingService) checkPalletsAndTariffication(_ *Scope, orders []*domain.Order) *domain.ValidationResult {
	result := &domain.ValidationResult{}
	for _, o := range orders {
		if o.PalletsCount == nil || !o.PalletsCount.IsPositive() {
			result.AddError("palletsCount", domain.MsgPoolingInvalidPallets, domain.ValueIsRequired, o.OrderNumber)
		}
		if o.Tariffication() == domain.TarifficationDoubledeck {
			result.AddError("tarifficationType", domain.MsgPoolingDoubledeck, domain.InvalidValueFormat)
			break
		}
	}
	return result
}

// PalletRange is the 1-based span of pallet positions an order occupies
type PalletRange struct {
	From int64
	To   int64
}

// PalletRanges lays orders out one after another. Each boundary is the
// running pallet total rounded up.
func PalletRanges(orders []*domain.Order) []PalletRange {
	ranges := make([]PalletRange, len(orders))
	running := decimal.Zero
	prevTo := int64(0)
	for i, o := range orders {
		running = running.Add(domain.DecimalOrZero(o.PalletsCount))
		to := running.Ceil().IntPart()
		ranges[i] = PalletRange{From: prevTo + 1, To: to}
		prevTo = to
	}
	return ranges
}

// CheckConsolidationDate reports whether the reservation may still be
// cancelled: the cutoff is 17:00 on the day before consolidation.
func CheckConsolidationDate(shipping *domain.Shipping, now time.Time) bool {
	if shipping.ConsolidationDate == nil {
		return true
	}
	day := domain.TruncateDay(*shipping.ConsolidationDate).AddDate(0, 0, -1)
	cutoff := day.Add(consolidationCutoffHour * time.Hour)
	return now.In(cutoff.Location()).Before(cutoff)
}

type poolingContext struct {
	company          *domain.Company
	shippingWh       *domain.Warehouse
	deliveryWh       *domain.Warehouse
	carrierPoolingID string
	carTypeID        string
	bodyTypeID       string
}

func (s *PoolingService) resolve(sc *Scope, shipping *domain.Shipping) (*poolingContext, error) {
	pc := &poolingContext{}
	var err error
	if pc.company, err = sc.Dict.CompanyOf(sc.Ctx, shipping.CompanyID); err != nil {
		return nil, err
	}
	if shipping.ShippingWarehouseID != nil {
		if pc.shippingWh, err = sc.Dict.Warehouse(sc.Ctx, *shipping.ShippingWarehouseID); err != nil {
			return nil, err
		}
	}
	if shipping.DeliveryWarehouseID != nil {
		if pc.deliveryWh, err = sc.Dict.Warehouse(sc.Ctx, *shipping.DeliveryWarehouseID); err != nil {
			return nil, err
		}
	}
	if shipping.CarrierID != nil {
		c, err := sc.Dict.Carrier(sc.Ctx, *shipping.CarrierID)
		if err != nil {
			return nil, err
		}
		pc.carrierPoolingID = c.PoolingID
	}
	if shipping.VehicleTypeID != nil {
		vt, err := sc.Dict.VehicleType(sc.Ctx, *shipping.VehicleTypeID)
		if err != nil {
			return nil, err
		}
		pc.carTypeID = vt.PoolingID
	}
	if shipping.BodyTypeID != nil {
		bt, err := sc.Dict.BodyType(sc.Ctx, *shipping.BodyTypeID)
		if err != nil {
			return nil, err
		}
		pc.bodyTypeID = bt.PoolingID
	}
	return pc, nil
}

func (pc *poolingContext) productType() string {
	if pc.company == nil {
		return ""
	}
	return pc.company.PoolingProductType
}

// GetSlot finds the first slot on the shipping's route and dates with room
// for all its pallets
func (s *PoolingService) GetSlot(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) domain.HTTPResult[*domain.Slot] {
	pc, err := s.resolve(sc, shipping)
	if err != nil {
		return domain.HTTPFailure[*domain.Slot](http.StatusUnprocessableEntity, err.Error())
	}

	filter := domain.SlotFilter{
		CarTypeID:   pc.carTypeID,
		ProductType: pc.productType(),
		CarrierID:   pc.carrierPoolingID,
	}
	if shipping.ShippingDate != nil {
		filter.DateFrom = domain.TruncateDay(*shipping.ShippingDate)
	}
	if shipping.DeliveryDate != nil {
		filter.DateTo = domain.TruncateDay(*shipping.DeliveryDate).AddDate(0, 0, 1)
	}
	if pc.shippingWh != nil {
		filter.ShippingRegionID = pc.shippingWh.PoolingRegionID
	}
	if pc.deliveryWh != nil {
		filter.DeliveryRegionID = pc.deliveryWh.PoolingRegionID
	}

	start := time.Now()
	res := s.client.GetSlots(sc.Ctx, filter, pc.company)
	s.logCall(sc, domain.PoolingOpGetSlots, shipping, res.StatusCode, time.Since(start))
	if res.IsError {
		return domain.HTTPFailure[*domain.Slot](res.StatusCode, MapPoolingError(domain.PoolingOpGetSlots, res.StatusCode, res.Error))
	}

	pallets := totalPallets(orders).Ceil().IntPart()
	for i := range res.Result {
		if res.Result[i].FreePallets >= pallets {
			slot := res.Result[i]
			return domain.HTTPSuccess(res.StatusCode, &slot)
		}
	}
	return domain.HTTPFailure[*domain.Slot](http.StatusNotFound, domain.MsgPoolingNoSlots)
}

// GetSlots lists every slot on the shipping's route, for the slot picker
func (s *PoolingService) GetSlots(sc *Scope, filter domain.SlotFilter, companyID *string) domain.HTTPResult[[]domain.Slot] {
	company, err := sc.Dict.CompanyOf(sc.Ctx, companyID)
	if err != nil {
		return domain.HTTPFailure[[]domain.Slot](http.StatusUnprocessableEntity, err.Error())
	}
	start := time.Now()
	res := s.client.GetSlots(sc.Ctx, filter, company)
	s.logger.ExternalCall(sc.Ctx, "pooling", domain.PoolingOpGetSlots, res.StatusCode, time.Since(start), map[string]any{
		"shippingRegion": filter.ShippingRegionID,
		"deliveryRegion": filter.DeliveryRegionID,
		"dateFrom":       filter.DateFrom,
		"carrier":        filter.CarrierID,
	})
	if res.IsError {
		return domain.HTTPFailure[[]domain.Slot](res.StatusCode, MapPoolingError(domain.PoolingOpGetSlots, res.StatusCode, res.Error))
	}
	return res
}

// BuildReservation assembles the reservation payload. Incomplete loading or
// unloading addresses are reported per field and block the request.
func (s *PoolingService) BuildReservation(sc *Scope, shipping *domain.Shipping, orders []*domain.Order, slotID string) (domain.ReservationRequest, *domain.ValidationResult, error) {
	result := &domain.ValidationResult{}
	pc, err := s.resolve(sc, shipping)
	if err != nil {
		return domain.ReservationRequest{}, nil, err
	}

	req := domain.ReservationRequest{
		ID:          shipping.PoolingReservationID,
		SlotID:      slotID,
		ForeignID:   shipping.ID,
		Number:      shipping.ShippingNumber,
		CarrierID:   pc.carrierPoolingID,
		CarTypeID:   pc.carTypeID,
		BodyTypeID:  pc.bodyTypeID,
		ProductType: pc.productType(),
	}
	if pc.company != nil {
		req.ClientForeignID = pc.company.PoolingClientID
		req.ExtraService = pc.company.PoolingExtraService
	}
	if shipping.ShippingDate != nil {
		req.ShippingDate = *shipping.ShippingDate
	}
	if shipping.DeliveryDate != nil {
		req.DeliveryDate = *shipping.DeliveryDate
	}

	ranges := PalletRanges(orders)
	for i, o := range orders {
		loading, err := s.addressOf(sc, o.ShippingWarehouseID, o.ShippingAddress)
		if err != nil {
			return req, nil, err
		}
		unloading, err := s.addressOf(sc, o.DeliveryWarehouseID, o.DeliveryAddress)
		if err != nil {
			return req, nil, err
		}
		s.checkAddress(result, "loading", o.OrderNumber, loading)
		s.checkAddress(result, "unloading", o.OrderNumber, unloading)

		ro := domain.ReservationOrder{
			OrderNumber:       o.OrderNumber,
			ClientOrderNumber: o.ClientOrderNumber,
			ClientName:        o.ClientName,
			PalletFrom:        ranges[i].From,
			PalletTo:          ranges[i].To,
			WeightKg:          o.WeightKg,
			OrderCost:         o.OrderAmount,
			LoadingAddress:    loading,
			UnloadingAddress:  unloading,
		}
		if o.DeliveryWarehouseID != nil {
			if wh, err := sc.Dict.Warehouse(sc.Ctx, *o.DeliveryWarehouseID); err == nil {
				ro.DistributionCenterID = wh.DistributionCenterID
			}
		}
		req.Orders = append(req.Orders, ro)
	}
	return req, result, nil
}

func (s *PoolingService) addressOf(sc *Scope, warehouseID *string, freeText string) (domain.PoolingAddress, error) {
	if warehouseID == nil {
		return domain.PoolingAddress{Street: freeText}, nil
	}
	wh, err := sc.Dict.Warehouse(sc.Ctx, *warehouseID)
	if err != nil {
		return domain.PoolingAddress{}, err
	}
	return domain.PoolingAddress{
		WarehouseID: wh.PoolingID,
		PostalCode:  wh.PostalCode,
		Region:      wh.Region,
		City:        wh.City,
		Street:      wh.Street,
		House:       wh.House,
	}, nil
}

func (s *PoolingService) checkAddress(result *domain.ValidationResult, point, orderNumber string, addr domain.PoolingAddress) {
	err := s.validate.Struct(addr)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return
	}
	for _, fe := range verrs {
		result.AddError(point+"."+lowerFirst(fe.Field()), domain.MsgPoolingIncompleteAddress, domain.ValueIsRequired, point, lowerFirst(fe.Field()), orderNumber)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

// BookResult is the outcome of a booking attempt. Validation failures stop
// the flow before any call is made.
type BookResult struct {
	Validation  *domain.ValidationResult
	Reservation domain.HTTPResult[*domain.Reservation]
	Slot        *domain.Slot
}

// IsError reports whether the booking failed for any reason
func (r BookResult) IsError() bool {
	return r.Validation.IsError() || r.Reservation.IsError
}

// AsResult converts a failed booking into a rejected operation result
func (r BookResult) AsResult() Result {
	if r.Validation.IsError() {
		return Invalid(r.Validation)
	}
	return Failure(r.Reservation.Error)
}

// BookSlot validates the orders, finds a slot and books it. When booking
// with the company's extra service fails it is retried once without it.
func (s *PoolingService) BookSlot(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) (BookResult, error) {
	if v := s.ValidateOrders(sc, orders); v.IsError() {
		return BookResult{Validation: v}, nil
	}

	slot := s.GetSlot(sc, shipping, orders)
	if slot.IsError {
		return BookResult{Reservation: domain.HTTPFailure[*domain.Reservation](slot.StatusCode, slot.Error)}, nil
	}

	req, v, err := s.BuildReservation(sc, shipping, orders, slot.Result.ID)
	if err != nil {
		return BookResult{}, err
	}
	if v.IsError() {
		return BookResult{Validation: v}, nil
	}

	pc, err := s.resolve(sc, shipping)
	if err != nil {
		return BookResult{}, err
	}

	res := s.book(sc, shipping, req, pc.company)
	if res.IsError && req.ExtraService != "" {
		s.logger.WithShipping(shipping.ID, shipping.ShippingNumber).Info("Booking failed with extra service, retrying without it",
			"extraService", req.ExtraService, "status", res.StatusCode)
		req.ExtraService = ""
		res = s.book(sc, shipping, req, pc.company)
	}
	if res.IsError {
		res.Error = MapPoolingError(domain.PoolingOpBookSlot, res.StatusCode, res.Error)
	}
	return BookResult{Reservation: res, Slot: slot.Result}, nil
}

func (s *PoolingService) book(sc *Scope, shipping *domain.Shipping, req domain.ReservationRequest, company *domain.Company) domain.HTTPResult[*domain.Reservation] {
	start := time.Now()
	res := s.client.BookSlot(sc.Ctx, req, company)
	s.logCall(sc, domain.PoolingOpBookSlot, shipping, res.StatusCode, time.Since(start))
	return res
}

// UpdateReservation resubmits the orders of an already booked shipping
func (s *PoolingService) UpdateReservation(sc *Scope, shipping *domain.Shipping, orders []*domain.Order) (BookResult, error) {
	if shipping.PoolingReservationID == "" {
		return BookResult{Reservation: domain.HTTPFailure[*domain.Reservation](http.StatusConflict, domain.MsgPoolingNotReserved)}, nil
	}

	req, v, err := s.BuildReservation(sc, shipping, orders, shipping.SlotID)
	if err != nil {
		return BookResult{}, err
	}
	if v.IsError() {
		return BookResult{Validation: v}, nil
	}
	pc, err := s.resolve(sc, shipping)
	if err != nil {
		return BookResult{}, err
	}

	start := time.Now()
	res := s.client.UpdateReservation(sc.Ctx, req, pc.company)
	s.logCall(sc, domain.PoolingOpUpdate, shipping, res.StatusCode, time.Since(start))
	if res.IsError {
		res.Error = MapPoolingError(domain.PoolingOpUpdate, res.StatusCode, res.Error)
	}
	return BookResult{Reservation: res}, nil
}

// CancelSlot releases the reservation. The consolidation cutoff is the
// caller's responsibility.
func (s *PoolingService) CancelSlot(sc *Scope, shipping *domain.Shipping) (domain.HTTPResult[*domain.Reservation], error) {
	pc, err := s.resolve(sc, shipping)
	if err != nil {
		return domain.HTTPResult[*domain.Reservation]{}, err
	}

	start := time.Now()
	res := s.client.CancelSlot(sc.Ctx, shipping.PoolingReservationID, shipping.BookingNumber, shipping.ID, pc.company)
	s.logCall(sc, domain.PoolingOpCancel, shipping, res.StatusCode, time.Since(start))
	if res.IsError {
		res.Error = MapPoolingError(domain.PoolingOpCancel, res.StatusCode, res.Error)
	}
	return res, nil
}

func (s *PoolingService) logCall(sc *Scope, op string, shipping *domain.Shipping, status int, d time.Duration) {
	details := map[string]any{
		"shippingId":     shipping.ID,
		"shippingNumber": shipping.ShippingNumber,
		"origin":         deref(shipping.ShippingWarehouseID),
		"destination":    deref(shipping.DeliveryWarehouseID),
		"carrier":        deref(shipping.CarrierID),
	}
	if shipping.ShippingDate != nil {
		details["date"] = shipping.ShippingDate.Format(time.DateOnly)
	}
	s.logger.ExternalCall(sc.Ctx, "pooling", op, status, d, details)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MapPoolingError turns a failed call's status into a message key. Codes
// without a dedicated key keep the service's own message.
func MapPoolingError(op string, status int, raw string) string {
	switch status {
	case http.StatusUnauthorized:
		return domain.MsgPoolingUnauthorized
	case http.StatusForbidden:
		switch op {
		case domain.PoolingOpGetSlots:
			return domain.MsgPoolingForbiddenSlots
		case domain.PoolingOpCancel:
			return domain.MsgPoolingForbiddenCancel
		default:
			return domain.MsgPoolingForbiddenBooking
		}
	case http.StatusNotFound:
		if op == domain.PoolingOpGetSlots || op == domain.PoolingOpBookSlot {
			return domain.MsgPoolingNotFoundSlot
		}
		return domain.MsgPoolingNotFoundReserv
	case http.StatusInternalServerError:
		return domain.MsgPoolingInternalError
	case http.StatusBadGateway:
		return domain.MsgPoolingBadResponse
	}
	return raw
}
