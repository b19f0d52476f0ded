package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/metrics"
)

// Match tiers, most precise first
const (
	TierWarehouse = "warehouse"
	TierCity      = "city"
	TierRegion    = "region"
	TierNone      = "none"
)

// TariffQuery overrides the shipping's own attributes during a lookup.
// Zero values mean "use the shipping".
type TariffQuery struct {
	CarrierID         *string
	VehicleTypeIDs    []string
	TarifficationType *domain.TarifficationType
	IgnoredCarrierIDs []string
}

// TariffService matches shippings to rate cards and guards tariff edits
type TariffService struct {
	repo    domain.TariffRepository
	uow     domain.UnitOfWork
	metrics *metrics.Metrics
	logger  *logging.Logger
	clock   Clock
}

// NewTariffService creates a TariffService
func NewTariffService(repo domain.TariffRepository, uow domain.UnitOfWork, m *metrics.Metrics, logger *logging.Logger, clock Clock) *TariffService {
	return &TariffService{
		repo:    repo,
		uow:     uow,
		metrics: m,
		logger:  logger.WithComponent("tariff"),
		clock:   clock,
	}
}

type route struct {
	date                time.Time
	shippingWarehouseID *string
	deliveryWarehouseID *string
	shippingCity        string
	deliveryCity        string
	shippingRegion      string
	deliveryRegion      string
}

func routeOf(orders []*domain.Order) (route, bool) {
	date := earliest(orders, func(o *domain.Order) *time.Time { return o.ShippingDate })
	if date == nil {
		return route{}, false
	}

	first := sortedBy(orders, func(o *domain.Order) *time.Time { return o.ShippingDate }, false)[0]
	last := sortedBy(orders, func(o *domain.Order) *time.Time { return o.DeliveryDate }, true)[0]

	return route{
		date:                *date,
		shippingWarehouseID: first.ShippingWarehouseID,
		deliveryWarehouseID: last.DeliveryWarehouseID,
		shippingCity:        first.ShippingCity,
		deliveryCity:        last.DeliveryCity,
		shippingRegion:      first.ShippingRegion,
		deliveryRegion:      last.DeliveryRegion,
	}, true
}

// FindTariff returns the rate card for the shipping, or nil when no tier
// matches. Warehouse-pair tariffs win over city pairs, city pairs over
// region pairs. Within a tier the cheapest tariff wins, ties keep input order.
func (s *TariffService) FindTariff(sc *Scope, shipping *domain.Shipping, orders []*domain.Order, q TariffQuery) (*domain.Tariff, error) {
	if len(orders) == 0 {
		return nil, nil
	}
	r, ok := routeOf(orders)
	if !ok {
		return nil, nil
	}

	active, err := sc.Dict.ActiveTariffs(sc.Ctx, r.date)
	if err != nil {
		return nil, err
	}

	candidates, err := s.narrow(sc, shipping, r.date, active, q)
	if err != nil {
		return nil, err
	}

	tiers := []struct {
		name  string
		match func(t *domain.Tariff) bool
	}{
		{TierWarehouse, func(t *domain.Tariff) bool {
			return t.ShippingWarehouseID != nil && t.DeliveryWarehouseID != nil &&
				domain.EqualPtr(t.ShippingWarehouseID, r.shippingWarehouseID) &&
				domain.EqualPtr(t.DeliveryWarehouseID, r.deliveryWarehouseID)
		}},
		{TierCity, func(t *domain.Tariff) bool {
			return sameName(t.ShipmentCity, r.shippingCity) && sameName(t.DeliveryCity, r.deliveryCity)
		}},
		{TierRegion, func(t *domain.Tariff) bool {
			return sameName(t.ShipmentRegion, r.shippingRegion) && sameName(t.DeliveryRegion, r.deliveryRegion)
		}},
	}

	for _, tier := range tiers {
		var matched []*domain.Tariff
		for _, t := range candidates {
			if tier.match(t) {
				matched = append(matched, t)
			}
		}
		if len(matched) == 0 {
			continue
		}

		s.recordLookup(tier.name)
		if len(matched) == 1 {
			return matched[0], nil
		}
		return cheapest(matched, shipping, orders), nil
	}

	s.recordLookup(TierNone)
	return nil, nil
}

func (s *TariffService) recordLookup(tier string) {
	if s.metrics != nil {
		s.metrics.RecordTariffLookup(tier)
	}
}

func (s *TariffService) narrow(sc *Scope, shipping *domain.Shipping, date time.Time, active []*domain.Tariff, q TariffQuery) ([]*domain.Tariff, error) {
	tariffication := shipping.TarifficationType
	if q.TarifficationType != nil {
		tariffication = q.TarifficationType
	}
	carrierID := shipping.CarrierID
	if q.CarrierID != nil {
		carrierID = q.CarrierID
	}

	var out []*domain.Tariff
	for _, t := range active {
		if !t.Covers(date) {
			continue
		}
		if tariffication == nil || t.TarifficationType != *tariffication {
			continue
		}
		if t.CompanyID != nil && !domain.EqualPtr(t.CompanyID, shipping.CompanyID) {
			continue
		}
		if t.BodyTypeID != nil && shipping.BodyTypeID != nil && *t.BodyTypeID != *shipping.BodyTypeID {
			continue
		}
		if len(q.VehicleTypeIDs) > 0 {
			if t.VehicleTypeID == nil || !contains(q.VehicleTypeIDs, *t.VehicleTypeID) {
				continue
			}
		} else if t.VehicleTypeID != nil && !domain.EqualPtr(t.VehicleTypeID, shipping.VehicleTypeID) {
			continue
		}
		if carrierID != nil && !domain.EqualPtr(t.CarrierID, carrierID) {
			continue
		}
		if t.CarrierID != nil && contains(q.IgnoredCarrierIDs, *t.CarrierID) {
			continue
		}

		if t.TarifficationType != domain.TarifficationFtl && t.VehicleTypeID != nil {
			vt, err := sc.Dict.VehicleType(sc.Ctx, *t.VehicleTypeID)
			if err != nil {
				return nil, fmt.Errorf("failed to load vehicle type %s: %w", *t.VehicleTypeID, err)
			}
			if !vt.Fits(shipping.PalletsCount, shipping.WeightKg) {
				continue
			}
		}

		out = append(out, t)
	}
	return out, nil
}

func cheapest(tariffs []*domain.Tariff, shipping *domain.Shipping, orders []*domain.Order) *domain.Tariff {
	type priced struct {
		tariff *domain.Tariff
		cost   *decimal.Decimal
	}
	list := make([]priced, len(tariffs))
	for i, t := range tariffs {
		list[i] = priced{tariff: t, cost: BaseDeliveryCost(t, shipping, orders)}
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].cost, list[j].cost
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.LessThan(*b)
	})
	return list[0].tariff
}

func sameName(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// TariffSaveResult reports why a tariff was not stored
type TariffSaveResult struct {
	Tariff            *domain.Tariff           `json:"tariff,omitempty"`
	Validation        *domain.ValidationResult `json:"validation,omitempty"`
	NeedsConfirmation bool                     `json:"needsConfirmation"`
}

// ValidateTariff rejects inverted ranges and exact duplicates of an existing
// key and range. An overlapping range is only a warning that the caller
// must confirm.
func (s *TariffService) ValidateTariff(ctx context.Context, t *domain.Tariff, confirmOverlap bool) (*domain.ValidationResult, bool, error) {
	result := &domain.ValidationResult{}
	if t.EffectiveDate.After(t.ExpirationDate) {
		result.AddError("expirationDate", domain.MsgInvalidTariffRange, domain.InvalidDateRange)
		return result, false, nil
	}

	existing, err := s.repo.FindByTariffication(ctx, t.TarifficationType)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load tariffs: %w", err)
	}

	overlap := false
	for _, other := range existing {
		if other.ID == t.ID || !t.SameKey(other) {
			continue
		}
		if t.SameRange(other) {
			result.AddError("effectiveDate", domain.MsgDuplicatedTariff, domain.DuplicatedRecord)
			return result, false, nil
		}
		if t.Overlaps(other) {
			overlap = true
		}
	}

	if overlap && !confirmOverlap {
		result.AddError("effectiveDate", domain.MsgTariffOverlap, domain.InvalidDateRange)
		return result, true, nil
	}
	return result, false, nil
}

// Save validates and stores a tariff
func (s *TariffService) Save(ctx context.Context, user domain.User, t *domain.Tariff, confirmOverlap bool) (*TariffSaveResult, error) {
	validation, needsConfirm, err := s.ValidateTariff(ctx, t, confirmOverlap)
	if err != nil {
		return nil, err
	}
	if validation.IsError() {
		return &TariffSaveResult{Validation: validation, NeedsConfirmation: needsConfirm}, nil
	}

	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	changes := domain.NewChangeSet(user.ID, s.clock())
	changes.SaveTariff(t)
	changes.AddHistory(t.ID, domain.MsgHistoryTariffSaved, t.ID)
	if err := s.uow.Commit(ctx, changes); err != nil {
		return nil, fmt.Errorf("failed to save tariff: %w", err)
	}

	s.logger.Info("Tariff saved", "tariffId", t.ID, "tarifficationType", t.TarifficationType)
	return &TariffSaveResult{Tariff: t}, nil
}
