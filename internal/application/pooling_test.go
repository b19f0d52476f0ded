package application_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	tu "github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/testutil"
)

func poolingOrder(id, number string, opts ...func(*domain.Order)) *domain.Order {
	opts = append([]func(*domain.Order){tu.WithTariffication(domain.TarifficationPooling)}, opts...)
	return tu.NewOrder(id, number, opts...)
}

func poolingShipping(opts ...func(*domain.Shipping)) *domain.Shipping {
	tariffication := domain.TarifficationPooling
	opts = append([]func(*domain.Shipping){func(s *domain.Shipping) {
		s.TarifficationType = &tariffication
		s.ShippingWarehouseID = domain.Ptr(tu.WarehouseA)
		s.DeliveryWarehouseID = domain.Ptr(tu.WarehouseB)
		s.ShippingDate = tu.Date(2026, time.March, 10, 9)
		s.DeliveryDate = tu.Date(2026, time.March, 11, 9)
	}}, opts...)
	return tu.NewShipping("s-1", "SH000001", domain.ShippingCreated, opts...)
}

func messages(v *domain.ValidationResult) []string {
	var out []string
	for _, e := range v.Errors {
		out = append(out, e.Message)
	}
	return out
}

func TestValidateOrders_StopsAtFirstFailingStage(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(app *tu.App)
		orders  func() []*domain.Order
		want    []string
		wantArg []string
	}{
		{
			name: "required fields win over related values",
			setup: func(app *tu.App) {
				app.Dict.Warehouses[tu.WarehouseA].PoolingID = ""
			},
			orders: func() []*domain.Order {
				return []*domain.Order{poolingOrder("o-1", "100", func(o *domain.Order) { o.CarrierID = nil })}
			},
			want:    []string{domain.MsgPoolingFieldRequired},
			wantArg: []string{"carrierId", "100"},
		},
		{
			name: "missing external id",
			setup: func(app *tu.App) {
				app.Dict.Carriers[tu.CarrierID].PoolingID = ""
			},
			orders: func() []*domain.Order {
				return []*domain.Order{poolingOrder("o-1", "100"), poolingOrder("o-2", "101")}
			},
			want:    []string{domain.MsgPoolingMissingExternalID},
			wantArg: []string{"carrier", "Fast Trucks"},
		},
		{
			name: "orders disagree on the shipping day",
			orders: func() []*domain.Order {
				return []*domain.Order{
					poolingOrder("o-1", "100"),
					poolingOrder("o-2", "101", func(o *domain.Order) { o.ShippingDate = tu.Date(2026, time.March, 11, 9) }),
				}
			},
			want:    []string{domain.MsgPoolingFieldsMismatch},
			wantArg: []string{"shippingDate"},
		},
		{
			name: "same day at different hours is a match",
			orders: func() []*domain.Order {
				return []*domain.Order{
					poolingOrder("o-1", "100"),
					poolingOrder("o-2", "101", func(o *domain.Order) { o.ShippingDate = tu.Date(2026, time.March, 10, 15) }),
				}
			},
		},
		{
			name: "pallets required",
			orders: func() []*domain.Order {
				return []*domain.Order{poolingOrder("o-1", "100", tu.WithPallets("0"))}
			},
			want:    []string{domain.MsgPoolingInvalidPallets},
			wantArg: []string{"100"},
		},
		{
			name: "doubledeck is not bookable",
			orders: func() []*domain.Order {
				return []*domain.Order{tu.NewOrder("o-1", "100", tu.WithTariffication(domain.TarifficationDoubledeck))}
			},
			want: []string{domain.MsgPoolingDoubledeck},
		},
		{
			name: "client name optional for distribution centers",
			setup: func(app *tu.App) {
				app.Dict.Warehouses[tu.WarehouseB].DistributionCenterID = "dc-1"
			},
			orders: func() []*domain.Order {
				return []*domain.Order{poolingOrder("o-1", "100", func(o *domain.Order) { o.ClientName = "" })}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := tu.NewApp(tariffNow)
			if tt.setup != nil {
				tt.setup(app)
			}

			result := app.PoolingSv.ValidateOrders(app.Scope(tu.Manager()), tt.orders())

			if tt.want == nil {
				assert.False(t, result.IsError(), "unexpected errors: %v", result.Errors)
				return
			}
			assert.Equal(t, tt.want, messages(result))
			if tt.wantArg != nil {
				assert.Equal(t, tt.wantArg, result.Errors[0].Args)
			}
		})
	}
}

func TestPalletRanges(t *testing.T) {
	orders := []*domain.Order{
		tu.NewOrder("o-1", "100", tu.WithPallets("1.5")),
		tu.NewOrder("o-2", "101", tu.WithPallets("2")),
		tu.NewOrder("o-3", "102", tu.WithPallets("1")),
	}
	assert.Equal(t, []application.PalletRange{{From: 1, To: 2}, {From: 3, To: 4}, {From: 5, To: 5}}, application.PalletRanges(orders))
}

func TestCheckConsolidationDate(t *testing.T) {
	tomorrow9 := tu.Date(2026, time.March, 11, 9)

	tests := []struct {
		name          string
		consolidation *time.Time
		now           time.Time
		want          bool
	}{
		{"before the cutoff", tomorrow9, time.Date(2026, time.March, 10, 16, 0, 0, 0, time.UTC), true},
		{"after the cutoff", tomorrow9, time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC), false},
		{"exactly at the cutoff", tomorrow9, time.Date(2026, time.March, 10, 17, 0, 0, 0, time.UTC), false},
		{"no consolidation date", nil, time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shipping := poolingShipping(func(s *domain.Shipping) { s.ConsolidationDate = tt.consolidation })
			assert.Equal(t, tt.want, application.CheckConsolidationDate(shipping, tt.now))
		})
	}
}

func TestMapPoolingError(t *testing.T) {
	tests := []struct {
		op     string
		status int
		want   string
	}{
		{domain.PoolingOpGetSlots, http.StatusUnauthorized, domain.MsgPoolingUnauthorized},
		{domain.PoolingOpGetSlots, http.StatusForbidden, domain.MsgPoolingForbiddenSlots},
		{domain.PoolingOpBookSlot, http.StatusForbidden, domain.MsgPoolingForbiddenBooking},
		{domain.PoolingOpUpdate, http.StatusForbidden, domain.MsgPoolingForbiddenBooking},
		{domain.PoolingOpCancel, http.StatusForbidden, domain.MsgPoolingForbiddenCancel},
		{domain.PoolingOpGetSlots, http.StatusNotFound, domain.MsgPoolingNotFoundSlot},
		{domain.PoolingOpBookSlot, http.StatusNotFound, domain.MsgPoolingNotFoundSlot},
		{domain.PoolingOpCancel, http.StatusNotFound, domain.MsgPoolingNotFoundReserv},
		{domain.PoolingOpUpdate, http.StatusInternalServerError, domain.MsgPoolingInternalError},
		{domain.PoolingOpBookSlot, http.StatusBadGateway, domain.MsgPoolingBadResponse},
		{domain.PoolingOpBookSlot, http.StatusBadRequest, "raw message"},
	}

	for _, tt := range tests {
		t.Run(tt.op+"/"+http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, application.MapPoolingError(tt.op, tt.status, "raw message"))
		})
	}
}

func TestBookSlot(t *testing.T) {
	slots := domain.HTTPSuccess(http.StatusOK, []domain.Slot{
		{ID: "slot-small", FreePallets: 1},
		{ID: "slot-big", FreePallets: 10},
	})

	t.Run("books the first slot with room", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		app.Pooling.Slots = slots
		shipping := poolingShipping()
		orders := []*domain.Order{poolingOrder("o-1", "100", tu.WithPallets("1.5"), tu.InShipping(shipping))}

		res, err := app.PoolingSv.BookSlot(app.Scope(tu.Manager()), shipping, orders)
		require.NoError(t, err)
		require.False(t, res.IsError())
		assert.Equal(t, "slot-big", res.Slot.ID)
		assert.Equal(t, "B-1", res.Reservation.Result.Number)

		require.Equal(t, []string{"getSlots", "bookSlot"}, app.Pooling.Ops())
		req := app.Pooling.Calls[1].Request
		assert.Equal(t, "slot-big", req.SlotID)
		assert.Equal(t, "p-carrier", req.CarrierID)
		assert.Equal(t, "pc-1", req.ClientForeignID)
		require.Len(t, req.Orders, 1)
		assert.Equal(t, int64(1), req.Orders[0].PalletFrom)
		assert.Equal(t, int64(2), req.Orders[0].PalletTo)
		assert.Equal(t, "101000", req.Orders[0].LoadingAddress.PostalCode)
		filter := app.Pooling.Calls[0].Filter
		assert.Equal(t, "r-"+tu.WarehouseA, filter.ShippingRegionID)
		assert.Equal(t, "FMCG", filter.ProductType)
	})

	t.Run("retries once without the extra service", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		app.Pooling.Slots = slots
		app.Dict.Companies[tu.CompanyID].PoolingExtraService = "tail-lift"
		app.Pooling.Booking = []domain.HTTPResult[*domain.Reservation]{
			domain.HTTPFailure[*domain.Reservation](http.StatusBadRequest, "extra service unavailable"),
			domain.HTTPSuccess(http.StatusOK, &domain.Reservation{ID: "R-2", Number: "B-2"}),
		}
		shipping := poolingShipping()
		orders := []*domain.Order{poolingOrder("o-1", "100", tu.InShipping(shipping))}

		res, err := app.PoolingSv.BookSlot(app.Scope(tu.Manager()), shipping, orders)
		require.NoError(t, err)
		require.False(t, res.IsError())
		assert.Equal(t, "B-2", res.Reservation.Result.Number)
		require.Equal(t, []string{"getSlots", "bookSlot", "bookSlot"}, app.Pooling.Ops())
		assert.Equal(t, "tail-lift", app.Pooling.Calls[1].Request.ExtraService)
		assert.Empty(t, app.Pooling.Calls[2].Request.ExtraService)
	})

	t.Run("no slot with room", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		app.Pooling.Slots = slots
		shipping := poolingShipping()
		orders := []*domain.Order{poolingOrder("o-1", "100", tu.WithPallets("11"), tu.InShipping(shipping))}

		res, err := app.PoolingSv.BookSlot(app.Scope(tu.Manager()), shipping, orders)
		require.NoError(t, err)
		require.True(t, res.IsError())
		assert.Equal(t, domain.MsgPoolingNoSlots, res.AsResult().Message)
		assert.Equal(t, []string{"getSlots"}, app.Pooling.Ops())
	})

	t.Run("booking refused", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		app.Pooling.Slots = slots
		app.Pooling.Booking = []domain.HTTPResult[*domain.Reservation]{
			domain.HTTPFailure[*domain.Reservation](http.StatusForbidden, "nope"),
		}
		shipping := poolingShipping()
		orders := []*domain.Order{poolingOrder("o-1", "100", tu.InShipping(shipping))}

		res, err := app.PoolingSv.BookSlot(app.Scope(tu.Manager()), shipping, orders)
		require.NoError(t, err)
		assert.Equal(t, domain.MsgPoolingForbiddenBooking, res.AsResult().Message)
	})

	t.Run("invalid orders never reach the service", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		shipping := poolingShipping()
		orders := []*domain.Order{poolingOrder("o-1", "100", func(o *domain.Order) { o.OrderAmount = nil })}

		res, err := app.PoolingSv.BookSlot(app.Scope(tu.Manager()), shipping, orders)
		require.NoError(t, err)
		require.True(t, res.IsError())
		assert.Equal(t, domain.MsgPoolingFieldRequired, res.AsResult().Message)
		assert.Empty(t, app.Pooling.Ops())
	})

	t.Run("incomplete warehouse address", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		app.Pooling.Slots = slots
		app.Dict.Warehouses[tu.WarehouseB].House = ""
		shipping := poolingShipping()
		orders := []*domain.Order{poolingOrder("o-1", "100", tu.InShipping(shipping))}

		res, err := app.PoolingSv.BookSlot(app.Scope(tu.Manager()), shipping, orders)
		require.NoError(t, err)
		require.True(t, res.Validation.IsError())
		assert.Equal(t, "unloading.house", res.Validation.Errors[0].Field)
		assert.Equal(t, []string{"unloading", "house", "100"}, res.Validation.Errors[0].Args)
		assert.Equal(t, []string{"getSlots"}, app.Pooling.Ops())
	})
}

func TestUpdateReservation_RequiresReservation(t *testing.T) {
	app := tu.NewApp(tariffNow)
	shipping := poolingShipping()

	res, err := app.PoolingSv.UpdateReservation(app.Scope(tu.Manager()), shipping, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, res.Reservation.StatusCode)
	assert.Equal(t, domain.MsgPoolingNotReserved, res.AsResult().Message)
	assert.Empty(t, app.Pooling.Ops())
}
