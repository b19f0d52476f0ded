package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// Clock returns the current time
type Clock func() time.Time

// Scope carries one operation: caller, clock, pending changes and the
// dictionary cache. A scope is never shared between requests.
type Scope struct {
	Ctx     context.Context
	User    domain.User
	Now     time.Time
	Changes *domain.ChangeSet
	Dict    *Lookup
}

// NewScope opens a scope with an empty change set and a fresh cache
func NewScope(ctx context.Context, user domain.User, now time.Time, dict domain.Dictionaries, tariffs domain.TariffRepository) *Scope {
	return &Scope{
		Ctx:     ctx,
		User:    user,
		Now:     now,
		Changes: domain.NewChangeSet(user.ID, now),
		Dict:    NewLookup(dict, tariffs),
	}
}

// Lookup memoizes dictionary reads for the lifetime of one scope
type Lookup struct {
	source       domain.Dictionaries
	tariffs      domain.TariffRepository
	companies    map[string]*domain.Company
	warehouses   map[string]*domain.Warehouse
	carriers     map[string]*domain.Carrier
	vehicleTypes map[string]*domain.VehicleType
	bodyTypes    map[string]*domain.BodyType
	allVehicles  []*domain.VehicleType
	activeTariff map[string][]*domain.Tariff
}

var _ domain.Dictionaries = (*Lookup)(nil)

// NewLookup wraps source with a per-scope cache
func NewLookup(source domain.Dictionaries, tariffs domain.TariffRepository) *Lookup {
	return &Lookup{
		source:       source,
		tariffs:      tariffs,
		companies:    make(map[string]*domain.Company),
		warehouses:   make(map[string]*domain.Warehouse),
		carriers:     make(map[string]*domain.Carrier),
		vehicleTypes: make(map[string]*domain.VehicleType),
		bodyTypes:    make(map[string]*domain.BodyType),
		activeTariff: make(map[string][]*domain.Tariff),
	}
}

func cached[T any](ctx context.Context, cache map[string]*T, id string, load func(context.Context, string) (*T, error)) (*T, error) {
	if v, ok := cache[id]; ok {
		return v, nil
	}
	v, err := load(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = v
	return v, nil
}

func (l *Lookup) Company(ctx context.Context, id string) (*domain.Company, error) {
	return cached(ctx, l.companies, id, l.source.Company)
}

func (l *Lookup) Warehouse(ctx context.Context, id string) (*domain.Warehouse, error) {
	return cached(ctx, l.warehouses, id, l.source.Warehouse)
}

func (l *Lookup) Carrier(ctx context.Context, id string) (*domain.Carrier, error) {
	return cached(ctx, l.carriers, id, l.source.Carrier)
}

func (l *Lookup) VehicleType(ctx context.Context, id string) (*domain.VehicleType, error) {
	return cached(ctx, l.vehicleTypes, id, l.source.VehicleType)
}

func (l *Lookup) BodyType(ctx context.Context, id string) (*domain.BodyType, error) {
	return cached(ctx, l.bodyTypes, id, l.source.BodyType)
}

func (l *Lookup) VehicleTypes(ctx context.Context) ([]*domain.VehicleType, error) {
	if l.allVehicles != nil {
		return l.allVehicles, nil
	}
	all, err := l.source.VehicleTypes(ctx)
	if err != nil {
		return nil, err
	}
	l.allVehicles = all
	return all, nil
}

// ActiveTariffs returns tariffs covering date, read once per day per scope
func (l *Lookup) ActiveTariffs(ctx context.Context, date time.Time) ([]*domain.Tariff, error) {
	key := date.Format(time.DateOnly)
	if v, ok := l.activeTariff[key]; ok {
		return v, nil
	}
	tariffs, err := l.tariffs.FindActive(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load tariffs: %w", err)
	}
	l.activeTariff[key] = tariffs
	return tariffs, nil
}

// CompanyOf resolves an optional company reference; nil id yields nil
func (l *Lookup) CompanyOf(ctx context.Context, id *string) (*domain.Company, error) {
	if id == nil {
		return nil, nil
	}
	return l.Company(ctx, *id)
}

// RequiresConfirmation reports whether orders of the company need an explicit confirm step
func (l *Lookup) RequiresConfirmation(ctx context.Context, o *domain.Order) bool {
	company, err := l.CompanyOf(ctx, o.CompanyID)
	return err == nil && company != nil && company.OrderRequiresConfirmation
}

// IsConfirmed reports whether the order is ready for grouping. With
// auto-confirmation a created order already counts as confirmed.
func (l *Lookup) IsConfirmed(ctx context.Context, o *domain.Order) bool {
	if l.RequiresConfirmation(ctx, o) {
		return o.Status == domain.OrderConfirmed
	}
	return o.Status == domain.OrderCreated
}

// ReadyState is the status an order returns to when released from a shipping
func (l *Lookup) ReadyState(ctx context.Context, o *domain.Order) domain.OrderState {
	if l.RequiresConfirmation(ctx, o) {
		return domain.OrderConfirmed
	}
	return domain.OrderCreated
}

// ScopeFactory opens scopes over the shared dictionary source
type ScopeFactory struct {
	dict    domain.Dictionaries
	tariffs domain.TariffRepository
	clock   Clock
}

// NewScopeFactory creates a ScopeFactory
func NewScopeFactory(dict domain.Dictionaries, tariffs domain.TariffRepository, clock Clock) *ScopeFactory {
	if clock == nil {
		clock = time.Now
	}
	return &ScopeFactory{dict: dict, tariffs: tariffs, clock: clock}
}

// Open starts a scope for one operation of user
func (f *ScopeFactory) Open(ctx context.Context, user domain.User) *Scope {
	return NewScope(ctx, user, f.clock(), f.dict, f.tariffs)
}
