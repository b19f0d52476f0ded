package application

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

func earliest(orders []*domain.Order, get func(*domain.Order) *time.Time) *time.Time {
	var out *time.Time
	for _, o := range orders {
		if v := get(o); v != nil && (out == nil || v.Before(*out)) {
			t := *v
			out = &t
		}
	}
	return out
}

func latest(orders []*domain.Order, get func(*domain.Order) *time.Time) *time.Time {
	var out *time.Time
	for _, o := range orders {
		if v := get(o); v != nil && (out == nil || v.After(*out)) {
			t := *v
			out = &t
		}
	}
	return out
}

// sortedBy orders a copy of orders by a date, missing dates last
func sortedBy(orders []*domain.Order, get func(*domain.Order) *time.Time, desc bool) []*domain.Order {
	out := append([]*domain.Order(nil), orders...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := get(out[i]), get(out[j])
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		if desc {
			return a.After(*b)
		}
		return a.Before(*b)
	})
	return out
}

// sumOf adds the present values; nil when none is present
func sumOf(orders []*domain.Order, get func(*domain.Order) *decimal.Decimal) *decimal.Decimal {
	var out *decimal.Decimal
	for _, o := range orders {
		v := get(o)
		if v == nil {
			continue
		}
		if out == nil {
			s := *v
			out = &s
			continue
		}
		s := out.Add(*v)
		out = &s
	}
	return out
}

func ceilPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := d.Ceil()
	return &v
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func orderIDs(orders []*domain.Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}

// agreed returns the common value of all orders, or nil when any differ or is missing
func agreed(orders []*domain.Order, get func(*domain.Order) *string) *string {
	var out *string
	for i, o := range orders {
		v := get(o)
		if v == nil {
			return nil
		}
		if i == 0 {
			s := *v
			out = &s
			continue
		}
		if *v != *out {
			return nil
		}
	}
	return out
}
