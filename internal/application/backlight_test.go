package application_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	tu "github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/testutil"
)

func TestClearOnView(t *testing.T) {
	flagged := func() ([]*domain.Order, []*domain.Shipping) {
		o := tu.NewOrder("o-1", "100", func(o *domain.Order) {
			o.IsNewForConfirmed = true
			o.IsNewCarrierRequest = true
		})
		s := tu.NewShipping("s-1", "SH000001", domain.ShippingRequestSent, func(s *domain.Shipping) {
			s.IsNewCarrierRequest = true
		})
		return []*domain.Order{o}, []*domain.Shipping{s}
	}

	tests := []struct {
		name             string
		user             domain.User
		wantConfirmed    bool
		wantOrderRequest bool
		wantShipRequest  bool
	}{
		{"manager clears confirmation highlight", tu.Manager(), false, true, true},
		{"carrier clears request highlight", tu.Carrier(), true, false, false},
		{"client clears nothing", domain.User{ID: "u-client", Role: domain.RoleClient}, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := tu.NewApp(tariffNow)
			orders, shippings := flagged()
			app.Store.PutOrders(orders...)
			app.Store.PutShippings(shippings...)

			require.NoError(t, app.Backlight.ClearOnView(tu.Ctx(), tt.user, orders, shippings))

			o := app.Store.Order("o-1")
			s := app.Store.Shipping("s-1")
			assert.Equal(t, tt.wantConfirmed, o.IsNewForConfirmed)
			assert.Equal(t, tt.wantOrderRequest, o.IsNewCarrierRequest)
			assert.Equal(t, tt.wantShipRequest, s.IsNewCarrierRequest)
		})
	}

	t.Run("nothing to clear skips the write", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		app.Store.CommitErr = errors.New("must not be called")
		order := tu.NewOrder("o-1", "100")

		require.NoError(t, app.Backlight.ClearOnView(tu.Ctx(), tu.Manager(), []*domain.Order{order}, nil))
		assert.Equal(t, 0, app.Store.Commits)
	})

	t.Run("commit failure surfaces", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		app.Store.CommitErr = errors.New("down")
		orders, _ := flagged()

		err := app.Backlight.ClearOnView(tu.Ctx(), tu.Manager(), orders, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "down")
	})
}
