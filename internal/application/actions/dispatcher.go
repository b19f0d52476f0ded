package actions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/metrics"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/tracing"
)

// Action outcomes reported to metrics
const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Dispatcher resolves actions by name, checks access and availability, runs
// them and commits the scope only when the run succeeded
type Dispatcher struct {
	registry  *Registry
	scopes    *application.ScopeFactory
	uow       domain.UnitOfWork
	orders    domain.OrderRepository
	shippings domain.ShippingRepository
	metrics   *metrics.Metrics
	logger    *logging.Logger
	tracer    trace.Tracer
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(
	registry *Registry,
	scopes *application.ScopeFactory,
	uow domain.UnitOfWork,
	orders domain.OrderRepository,
	shippings domain.ShippingRepository,
	m *metrics.Metrics,
	logger *logging.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		scopes:    scopes,
		uow:       uow,
		orders:    orders,
		shippings: shippings,
		metrics:   m,
		logger:    logger.WithComponent("actions"),
		tracer:    otel.Tracer("tms-core/actions"),
	}
}

// Invoke runs the named action on the entities with ids
func (d *Dispatcher) Invoke(ctx context.Context, user domain.User, group Group, name string, ids []string) (Result, error) {
	return tracing.TracedOperation(ctx, d.tracer, "action."+name, func(ctx context.Context) (Result, error) {
		return d.invoke(ctx, user, group, name, ids)
	}, attribute.String("action.group", string(group)), attribute.Int("action.records", len(ids)))
}

func (d *Dispatcher) invoke(ctx context.Context, user domain.User, group Group, name string, ids []string) (Result, error) {
	e, ok := d.registry.byKey[key(group, name)]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", domain.ErrActionNotFound, name)
	}
	if !e.desc.AllowedFor(user.Role) {
		return Result{}, domain.ErrUnauthorized
	}

	sc := d.scopes.Open(ctx, user)
	log := d.logger.WithOperation(name).WithContext(ctx)

	var (
		res Result
		err error
	)
	switch group {
	case GroupOrder:
		res, err = d.invokeOrders(sc, e, ids)
	case GroupShipping:
		res, err = d.invokeShippings(sc, e, ids)
	default:
		return Result{}, fmt.Errorf("%w: %s", domain.ErrActionNotFound, name)
	}

	if err != nil {
		d.record(e.desc, outcomeError)
		return Result{}, err
	}
	if res.IsError {
		d.record(e.desc, outcomeRejected)
		log.Info("Action rejected", "message", res.Message, "ids", ids)
		return res, nil
	}

	if err := d.uow.Commit(ctx, sc.Changes); err != nil {
		d.record(e.desc, outcomeError)
		return Result{}, fmt.Errorf("failed to commit %s: %w", name, err)
	}

	d.record(e.desc, outcomeSuccess)
	log.Info("Action completed", "ids", ids, "message", res.Message)
	d.logger.Audit(ctx, name, string(group), strings.Join(ids, ","), user.ID, map[string]any{"role": string(user.Role)})
	return res, nil
}

func (d *Dispatcher) invokeOrders(sc *application.Scope, e *entry, ids []string) (Result, error) {
	orders, err := d.loadOrders(sc, ids)
	if err != nil {
		return Result{}, err
	}
	if !e.orders.available(sc, orders) {
		return application.Failure(domain.MsgActionNotAvailable, e.desc.Name), nil
	}
	return e.orders.run(sc, orders)
}

func (d *Dispatcher) invokeShippings(sc *application.Scope, e *entry, ids []string) (Result, error) {
	targets, err := d.loadShippings(sc, ids)
	if err != nil {
		return Result{}, err
	}
	if !e.shipping.available(sc, targets) {
		return application.Failure(domain.MsgActionNotAvailable, e.desc.Name), nil
	}
	return e.shipping.run(sc, targets)
}

// AvailableActions lists the actions user may run on the selection right now
func (d *Dispatcher) AvailableActions(ctx context.Context, user domain.User, group Group, ids []string) ([]Descriptor, error) {
	sc := d.scopes.Open(ctx, user)

	var (
		orders  []*domain.Order
		targets []*ShippingTarget
		err     error
	)
	switch group {
	case GroupOrder:
		orders, err = d.loadOrders(sc, ids)
	case GroupShipping:
		targets, err = d.loadShippings(sc, ids)
	}
	if err != nil {
		return nil, err
	}

	var out []Descriptor
	for _, e := range d.registry.ordered {
		if e.desc.Group != group || !e.desc.AllowedFor(user.Role) {
			continue
		}
		var available bool
		if e.orders != nil {
			available = e.orders.available(sc, orders)
		} else {
			available = e.shipping.available(sc, targets)
		}
		if available {
			out = append(out, e.desc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (d *Dispatcher) loadOrders(sc *application.Scope, ids []string) ([]*domain.Order, error) {
	orders, err := d.orders.FindByIDs(sc.Ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	if len(orders) != len(ids) {
		return nil, domain.ErrOrderNotFound
	}
	for _, o := range orders {
		if !canAccess(sc.User, o.CompanyID) {
			return nil, domain.ErrUnauthorized
		}
	}
	return orders, nil
}

func (d *Dispatcher) loadShippings(sc *application.Scope, ids []string) ([]*ShippingTarget, error) {
	shippings, err := d.shippings.FindByIDs(sc.Ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load shippings: %w", err)
	}
	if len(shippings) != len(ids) {
		return nil, domain.ErrShippingNotFound
	}
	targets := make([]*ShippingTarget, 0, len(shippings))
	for _, s := range shippings {
		if !canAccess(sc.User, s.CompanyID) {
			return nil, domain.ErrUnauthorized
		}
		orders, err := d.orders.FindByShippingID(sc.Ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load shipping orders: %w", err)
		}
		targets = append(targets, &ShippingTarget{Shipping: s, Orders: orders})
	}
	return targets, nil
}

// canAccess keeps company-bound users inside their company
func canAccess(user domain.User, companyID *string) bool {
	if user.CompanyID == nil || companyID == nil {
		return true
	}
	return *user.CompanyID == *companyID
}

func (d *Dispatcher) record(desc Descriptor, outcome string) {
	if d.metrics != nil {
		d.metrics.RecordAction(string(desc.Group), desc.Name, outcome)
	}
}
