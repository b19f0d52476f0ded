package application

import (
	"context"
	"fmt"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
)

// BacklightService clears the "new" highlighting once the right audience
// has looked at an entity
type BacklightService struct {
	scopes *ScopeFactory
	uow    domain.UnitOfWork
}

// NewBacklightService creates a BacklightService
func NewBacklightService(scopes *ScopeFactory, uow domain.UnitOfWork) *BacklightService {
	return &BacklightService{scopes: scopes, uow: uow}
}

// ClearOnView drops the flags the viewer's role is responsible for and
// persists only when something was cleared
func (s *BacklightService) ClearOnView(ctx context.Context, user domain.User, orders []*domain.Order, shippings []*domain.Shipping) error {
	sc := s.scopes.Open(ctx, user)
	ClearBacklight(sc, orders, shippings)
	if sc.Changes.IsEmpty() {
		return nil
	}
	if err := s.uow.Commit(ctx, sc.Changes); err != nil {
		return fmt.Errorf("failed to clear backlight: %w", err)
	}
	return nil
}

// ClearBacklight is ClearOnView without the commit. Managers clear the
// confirmation highlight, carriers their request highlight.
func ClearBacklight(sc *Scope, orders []*domain.Order, shippings []*domain.Shipping) {
	managers := sc.User.HasRole(domain.RoleAdministrator, domain.RoleShippingManager, domain.RoleTransportCoordinator)
	carrier := sc.User.HasRole(domain.RoleCarrier)

	for _, o := range orders {
		touched := false
		if managers && o.IsNewForConfirmed {
			o.IsNewForConfirmed = false
			touched = true
		}
		if carrier && o.IsNewCarrierRequest {
			o.IsNewCarrierRequest = false
			touched = true
		}
		if touched {
			sc.Changes.TouchOrders(o)
		}
	}
	for _, sh := range shippings {
		if carrier && sh.IsNewCarrierRequest {
			sh.IsNewCarrierRequest = false
			sc.Changes.TouchShipping(sh)
		}
	}
}
