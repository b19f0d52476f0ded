// Package actions is the catalog of lifecycle operations on orders and
// shippings. Every action pairs an availability predicate with its effect
// and is registered explicitly with its display metadata.
package actions

import (
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// Result is the outcome shown to the user
type Result = application.Result

// Group is the entity an action applies to
type Group string

const (
	GroupOrder    Group = "order"
	GroupShipping Group = "shipping"
)

// Kind tells whether an action runs per entity or on the selection as a whole
type Kind string

const (
	KindSingle Kind = "single"
	KindGroup  Kind = "group"
)

// Descriptor is the catalog metadata of an action
type Descriptor struct {
	Name  string        `json:"name"`
	Group Group         `json:"group"`
	Kind  Kind          `json:"kind"`
	Order int           `json:"order"`
	Roles []domain.Role `json:"-"`
}

// AllowedFor reports whether role may see and run the action
func (d Descriptor) AllowedFor(role domain.Role) bool {
	for _, r := range d.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// SingleOrderAction applies to each selected order on its own
type SingleOrderAction interface {
	IsAvailable(sc *application.Scope, o *domain.Order) bool
	Run(sc *application.Scope, o *domain.Order) (Result, error)
}

// GroupOrderAction applies to the selected orders together
type GroupOrderAction interface {
	IsAvailable(sc *application.Scope, orders []*domain.Order) bool
	Run(sc *application.Scope, orders []*domain.Order) (Result, error)
}

// ShippingTarget is a shipping together with its orders
type ShippingTarget struct {
	Shipping *domain.Shipping
	Orders   []*domain.Order
}

// ShippingAction applies to each selected shipping
type ShippingAction interface {
	IsAvailable(sc *application.Scope, t *ShippingTarget) bool
	Run(sc *application.Scope, t *ShippingTarget) (Result, error)
}

type orderHandler struct {
	available func(sc *application.Scope, orders []*domain.Order) bool
	run       func(sc *application.Scope, orders []*domain.Order) (Result, error)
}

type shippingHandler struct {
	available func(sc *application.Scope, targets []*ShippingTarget) bool
	run       func(sc *application.Scope, targets []*ShippingTarget) (Result, error)
}

type entry struct {
	desc     Descriptor
	orders   *orderHandler
	shipping *shippingHandler
}

// Registry holds the actions in display order
type Registry struct {
	byKey   map[string]*entry
	ordered []*entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]*entry)}
}

func key(group Group, name string) string {
	return string(group) + "/" + name
}

func (r *Registry) add(e *entry) {
	k := key(e.desc.Group, e.desc.Name)
	if _, dup := r.byKey[k]; dup {
		panic("actions: duplicate action " + k)
	}
	r.byKey[k] = e
	r.ordered = append(r.ordered, e)
}

// RegisterSingleOrder adds an action run once per selected order. The
// selection is available only when every order is.
func (r *Registry) RegisterSingleOrder(desc Descriptor, a SingleOrderAction) {
	desc.Group, desc.Kind = GroupOrder, KindSingle
	r.add(&entry{desc: desc, orders: &orderHandler{
		available: func(sc *application.Scope, orders []*domain.Order) bool {
			if len(orders) == 0 {
				return false
			}
			for _, o := range orders {
				if !a.IsAvailable(sc, o) {
					return false
				}
			}
			return true
		},
		run: func(sc *application.Scope, orders []*domain.Order) (Result, error) {
			var last Result
			for _, o := range orders {
				res, err := a.Run(sc, o)
				if err != nil || res.IsError {
					return res, err
				}
				last = res
			}
			return last, nil
		},
	}})
}

// RegisterGroupOrder adds an action run on the whole selection
func (r *Registry) RegisterGroupOrder(desc Descriptor, a GroupOrderAction) {
	desc.Group, desc.Kind = GroupOrder, KindGroup
	r.add(&entry{desc: desc, orders: &orderHandler{
		available: func(sc *application.Scope, orders []*domain.Order) bool {
			return len(orders) > 0 && a.IsAvailable(sc, orders)
		},
		run: a.Run,
	}})
}

// RegisterShipping adds an action run once per selected shipping
func (r *Registry) RegisterShipping(desc Descriptor, a ShippingAction) {
	desc.Group, desc.Kind = GroupShipping, KindSingle
	r.add(&entry{desc: desc, shipping: &shippingHandler{
		available: func(sc *application.Scope, targets []*ShippingTarget) bool {
			if len(targets) == 0 {
				return false
			}
			for _, t := range targets {
				if !a.IsAvailable(sc, t) {
					return false
				}
			}
			return true
		},
		run: func(sc *application.Scope, targets []*ShippingTarget) (Result, error) {
			var last Result
			for _, t := range targets {
				res, err := a.Run(sc, t)
				if err != nil || res.IsError {
					return res, err
				}
				last = res
			}
			return last, nil
		},
	}})
}

// Lookup finds an action by group and name
func (r *Registry) Lookup(group Group, name string) (Descriptor, bool) {
	e, ok := r.byKey[key(group, name)]
	if !ok {
		return Descriptor{}, false
	}
	return e.desc, true
}

// Descriptors lists the catalog of group in display order
func (r *Registry) Descriptors(group Group) []Descriptor {
	var out []Descriptor
	for _, e := range r.ordered {
		if e.desc.Group == group {
			out = append(out, e.desc)
		}
	}
	return out
}
