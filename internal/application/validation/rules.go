// Package validation holds the per-field rules applied when an order is
// edited. Rules see the proposed order next to the stored one and report
// at most one error each.
package validation

import (
	"context"
	"errors"
	"time"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// Context is what a rule may consult besides the two orders
type Context struct {
	Ctx  context.Context
	Dict domain.Dictionaries
	// Shipping owns the stored order, nil when ungrouped
	Shipping *domain.Shipping
	Now      time.Time
}

// Rule checks one concern for the fields it applies to. current is nil
// for a new order.
type Rule interface {
	IsApplicable(field string) bool
	Validate(c Context, field string, proposed, current *domain.Order) (*domain.ValidationError, error)
}

// Rules returns the rule set in evaluation order
func Rules() []Rule {
	return []Rule{
		NewReadonlyWhilePooled(),
		NewCompanyConsistency(),
		deliveryDateRule{},
		loadingDepartureRule{},
		unloadingArrivalRule{},
		unloadingDepartureRule{},
	}
}

// Validate runs every applicable rule for each changed field. A rule that
// covers several changed fields reports its error once.
func Validate(c Context, rules []Rule, changed []string, proposed, current *domain.Order) (*domain.ValidationResult, error) {
	result := &domain.ValidationResult{}
	seen := make(map[string]bool)
	for _, rule := range rules {
		for _, field := range changed {
			if !rule.IsApplicable(field) {
				continue
			}
			verr, err := rule.Validate(c, field, proposed, current)
			if err != nil {
				return nil, err
			}
			if verr == nil || seen[verr.Field+verr.Message] {
				continue
			}
			seen[verr.Field+verr.Message] = true
			result.Add(verr)
		}
	}
	return result, nil
}

// ReadonlyWhilePooled locks the fields a booked slot depends on until the
// slot's editable window has passed
type ReadonlyWhilePooled struct {
	fields map[string]bool
}

// NewReadonlyWhilePooled creates the rule over the slot-bound fields
func NewReadonlyWhilePooled() *ReadonlyWhilePooled {
	r := &ReadonlyWhilePooled{fields: make(map[string]bool)}
	for _, f := range []string{
		"carrierId", "vehicleTypeId", "bodyTypeId",
		"shippingWarehouseId", "deliveryWarehouseId",
		"shippingDate", "deliveryDate",
		"shippingAddress", "deliveryAddress",
		"soldTo",
	} {
		r.fields[f] = true
	}
	return r
}

func (r *ReadonlyWhilePooled) IsApplicable(field string) bool {
	return r.fields[field]
}

func (r *ReadonlyWhilePooled) Validate(c Context, field string, _, current *domain.Order) (*domain.ValidationError, error) {
	if current == nil || current.OrderShippingStatus == nil {
		return nil, nil
	}
	if *current.OrderShippingStatus != domain.ShippingSlotBooked || !current.Tariffication().IsPoolingLike() {
		return nil, nil
	}
	if c.Shipping != nil && c.Shipping.AvailableUntil != nil && c.Now.After(*c.Shipping.AvailableUntil) {
		return nil, nil
	}
	return &domain.ValidationError{
		Field:   field,
		Message: domain.MsgValueIsReadonly,
		Args:    []string{field},
		Type:    domain.ValueIsReadonly,
	}, nil
}

type companyLoader func(ctx context.Context, dict domain.Dictionaries, id string) (*string, error)

type dictionaryRef struct {
	get  func(*domain.Order) *string
	load companyLoader
}

// CompanyConsistency rejects dictionary references that belong to
// another company than the order
type CompanyConsistency struct {
	refs map[string]dictionaryRef
}

// NewCompanyConsistency creates the rule over every dictionary reference of an order
func NewCompanyConsistency() *CompanyConsistency {
	r := &CompanyConsistency{refs: make(map[string]dictionaryRef)}
	add := func(field string, get func(*domain.Order) *string, load companyLoader) {
		r.refs[field] = dictionaryRef{get, load}
	}

	warehouse := func(ctx context.Context, d domain.Dictionaries, id string) (*string, error) {
		w, err := d.Warehouse(ctx, id)
		if err != nil {
			return nil, err
		}
		return w.CompanyID, nil
	}
	add("shippingWarehouseId", func(o *domain.Order) *string { return o.ShippingWarehouseID }, warehouse)
	add("deliveryWarehouseId", func(o *domain.Order) *string { return o.DeliveryWarehouseID }, warehouse)
	add("carrierId", func(o *domain.Order) *string { return o.CarrierID },
		func(ctx context.Context, d domain.Dictionaries, id string) (*string, error) {
			v, err := d.Carrier(ctx, id)
			if err != nil {
				return nil, err
			}
			return v.CompanyID, nil
		})
	add("vehicleTypeId", func(o *domain.Order) *string { return o.VehicleTypeID },
		func(ctx context.Context, d domain.Dictionaries, id string) (*string, error) {
			v, err := d.VehicleType(ctx, id)
			if err != nil {
				return nil, err
			}
			return v.CompanyID, nil
		})
	add("bodyTypeId", func(o *domain.Order) *string { return o.BodyTypeID },
		func(ctx context.Context, d domain.Dictionaries, id string) (*string, error) {
			v, err := d.BodyType(ctx, id)
			if err != nil {
				return nil, err
			}
			return v.CompanyID, nil
		})
	return r
}

func (r *CompanyConsistency) IsApplicable(field string) bool {
	_, ok := r.refs[field]
	return ok
}

func (r *CompanyConsistency) Validate(c Context, field string, proposed, _ *domain.Order) (*domain.ValidationError, error) {
	ref := r.refs[field]
	id := ref.get(proposed)
	if id == nil {
		return nil, nil
	}

	invalid := &domain.ValidationError{
		Field:   field,
		Message: domain.MsgInvalidDictionaryValue,
		Args:    []string{field},
		Type:    domain.InvalidDictionaryValue,
	}

	companyID, err := ref.load(c.Ctx, c.Dict, *id)
	if err != nil {
		if isNotFound(err) {
			return invalid, nil
		}
		return nil, err
	}
	if companyID != nil && !domain.EqualPtr(companyID, proposed.CompanyID) {
		return invalid, nil
	}
	return nil, nil
}

func isNotFound(err error) bool {
	for _, target := range []error{
		domain.ErrWarehouseNotFound, domain.ErrCarrierNotFound,
		domain.ErrVehicleTypeNotFound, domain.ErrBodyTypeNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
