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

func TestOrderEdit_UngroupedFieldChange(t *testing.T) {
	app := tu.NewApp(tariffNow)
	order := tu.NewOrder("o-1", "100")
	app.Store.PutOrders(order)

	dto := application.ToOrderDTO(order)
	dto.PalletsCount = tu.Dec("4")
	dto.ClientName = "Other client"

	res, err := app.OrderEdit.Save(tu.Ctx(), tu.Manager(), dto)
	require.NoError(t, err)
	require.False(t, res.IsError(), res.Result.Message)

	assert.Equal(t, 1, app.Store.Commits)
	assert.True(t, app.Store.Order("o-1").PalletsCount.Equal(*tu.Dec("4")))
	assert.Equal(t, "Other client", app.Store.Order("o-1").ClientName)

	var fields []string
	for _, h := range app.Store.History {
		if h.MessageKey == domain.MsgHistoryOrderFieldChanged {
			require.Len(t, h.Args, 2)
			assert.Equal(t, "100", h.Args[0])
			fields = append(fields, h.Args[1])
		}
	}
	assert.ElementsMatch(t, []string{"palletsCount", "clientName"}, fields)
}

func TestOrderEdit_NothingChangedWritesNothing(t *testing.T) {
	app := tu.NewApp(tariffNow)
	order := tu.NewOrder("o-1", "100")
	app.Store.PutOrders(order)

	res, err := app.OrderEdit.Save(tu.Ctx(), tu.Manager(), application.ToOrderDTO(order))
	require.NoError(t, err)
	assert.False(t, res.IsError())
	assert.Equal(t, 0, app.Store.Commits)
}

func TestOrderEdit_ValidationBlocksCommit(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(app *tu.App)
		edit    func(dto *application.OrderDTO)
		message string
	}{
		{
			name: "delivery before shipping",
			edit: func(dto *application.OrderDTO) {
				dto.DeliveryDate = tu.Date(2026, time.March, 9, 9)
			},
			message: domain.MsgInvalidDeliveryDate,
		},
		{
			name: "unloading departure after arrival",
			edit: func(dto *application.OrderDTO) {
				dto.UnloadingArrivalTime = tu.Date(2026, time.March, 11, 9)
				dto.UnloadingDepartureTime = tu.Date(2026, time.March, 11, 11)
			},
			message: domain.MsgInvalidUnloadingDeparture,
		},
		{
			name: "carrier of another company",
			setup: func(app *tu.App) {
				app.Dict.Carriers["carrier-x"] = &domain.Carrier{ID: "carrier-x", CompanyID: domain.Ptr("company-2")}
			},
			edit: func(dto *application.OrderDTO) {
				dto.CarrierID = domain.Ptr("carrier-x")
			},
			message: domain.MsgInvalidDictionaryValue,
		},
		{
			name: "unknown warehouse",
			edit: func(dto *application.OrderDTO) {
				dto.DeliveryWarehouseID = domain.Ptr("wh-missing")
			},
			message: domain.MsgInvalidDictionaryValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := tu.NewApp(tariffNow)
			if tt.setup != nil {
				tt.setup(app)
			}
			order := tu.NewOrder("o-1", "100")
			app.Store.PutOrders(order)

			dto := application.ToOrderDTO(order)
			tt.edit(dto)

			res, err := app.OrderEdit.Save(tu.Ctx(), tu.Manager(), dto)
			require.NoError(t, err)
			require.True(t, res.IsError())
			assert.Equal(t, tt.message, res.Result.Message)
			assert.Equal(t, 0, app.Store.Commits)
		})
	}
}

func TestOrderEdit_ReadonlyWhilePooled(t *testing.T) {
	setup := func(availableUntil *time.Time) (*tu.App, *domain.Order) {
		app := tu.NewApp(tariffNow)
		shipping := poolingShipping(func(s *domain.Shipping) {
			s.Status = domain.ShippingSlotBooked
			s.PoolingReservationID = "R-1"
			s.AvailableUntil = availableUntil
		})
		order := poolingOrder("o-1", "100", tu.InShipping(shipping))
		app.Store.PutShippings(shipping)
		app.Store.PutOrders(order)
		return app, order
	}

	t.Run("slot-bound field is locked", func(t *testing.T) {
		app, order := setup(tu.Date(2026, time.March, 5, 0))
		dto := application.ToOrderDTO(order)
		dto.SoldTo = "new sold-to"

		res, err := app.OrderEdit.Save(tu.Ctx(), tu.Manager(), dto)
		require.NoError(t, err)
		require.True(t, res.IsError())
		assert.Equal(t, domain.MsgValueIsReadonly, res.Result.Message)
		assert.Equal(t, []string{"soldTo"}, res.Validation.Errors[0].Args)
		assert.Equal(t, 0, app.Store.Commits)
	})

	t.Run("lock lifts after the editable window", func(t *testing.T) {
		app, order := setup(tu.Date(2026, time.February, 20, 0))
		dto := application.ToOrderDTO(order)
		dto.SoldTo = "new sold-to"

		res, err := app.OrderEdit.Save(tu.Ctx(), tu.Manager(), dto)
		require.NoError(t, err)
		assert.False(t, res.IsError(), res.Result.Message)
		assert.Equal(t, 1, app.Store.Commits)
	})
}

func TestOrderEdit_CascadesOntoShipping(t *testing.T) {
	t.Run("confirmed shipping goes back to agreeing", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		shipping, orders := seedShipping(app, domain.ShippingConfirmed, "2", "3")

		dto := application.ToOrderDTO(orders[0])
		dto.PalletsCount = tu.Dec("5")

		res, err := app.OrderEdit.Save(tu.Ctx(), tu.Manager(), dto)
		require.NoError(t, err)
		require.False(t, res.IsError(), res.Result.Message)

		stored := app.Store.Shipping(shipping.ID)
		assert.Equal(t, domain.ShippingChangesAgreeing, stored.Status)
		assert.True(t, stored.PalletsCount.Equal(*tu.Dec("8")))
		for _, id := range []string{"o-1", "o-2"} {
			assert.Equal(t, domain.ShippingChangesAgreeing, *app.Store.Order(id).OrderShippingStatus)
		}
	})

	t.Run("driver fields only sync the driver", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		shipping, orders := seedShipping(app, domain.ShippingConfirmed, "2")

		dto := application.ToOrderDTO(orders[0])
		dto.DriverName = "Ivan"

		res, err := app.OrderEdit.Save(tu.Ctx(), tu.Manager(), dto)
		require.NoError(t, err)
		require.False(t, res.IsError())

		stored := app.Store.Shipping(shipping.ID)
		assert.Equal(t, domain.ShippingConfirmed, stored.Status)
		assert.Equal(t, "Ivan", stored.Driver.DriverName)
	})

	t.Run("shipping-level fields follow the edited order", func(t *testing.T) {
		tests := []struct {
			name  string
			edit  func(dto *application.OrderDTO)
			order func(o *domain.Order) any
			ship  func(s *domain.Shipping) any
			want  any
		}{
			{
				name:  "carrier",
				edit:  func(dto *application.OrderDTO) { dto.CarrierID = domain.Ptr("carrier-2") },
				order: func(o *domain.Order) any { return *o.CarrierID },
				ship:  func(s *domain.Shipping) any { return *s.CarrierID },
				want:  "carrier-2",
			},
			{
				name:  "body type",
				edit:  func(dto *application.OrderDTO) { dto.BodyTypeID = domain.Ptr("body-2") },
				order: func(o *domain.Order) any { return *o.BodyTypeID },
				ship:  func(s *domain.Shipping) any { return *s.BodyTypeID },
				want:  "body-2",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				app := tu.NewApp(tariffNow)
				app.Dict.Carriers["carrier-2"] = &domain.Carrier{ID: "carrier-2", Title: "Slow Trucks"}
				app.Dict.BodyTypes["body-2"] = &domain.BodyType{ID: "body-2", Name: "Reefer"}
				shipping, orders := seedShipping(app, domain.ShippingCreated, "2", "3")

				dto := application.ToOrderDTO(orders[0])
				tt.edit(dto)

				res, err := app.OrderEdit.Save(tu.Ctx(), tu.Manager(), dto)
				require.NoError(t, err)
				require.False(t, res.IsError(), res.Result.Message)

				assert.Equal(t, tt.want, tt.ship(app.Store.Shipping(shipping.ID)))
				for _, id := range []string{"o-1", "o-2"} {
					assert.Equal(t, tt.want, tt.order(app.Store.Order(id)), id)
				}

				var otherRows int
				for _, h := range app.Store.History {
					if h.EntityID == "o-2" && h.MessageKey == domain.MsgHistoryOrderFieldChanged {
						otherRows++
					}
				}
				assert.Equal(t, 1, otherRows)
			})
		}
	})

	bookedSetup := func() (*tu.App, *domain.Order) {
		app := tu.NewApp(tariffNow)
		shipping := poolingShipping(func(s *domain.Shipping) {
			s.Status = domain.ShippingSlotBooked
			s.PoolingReservationID = "R-1"
			s.BookingNumber = "B-1"
			s.SlotID = "slot-1"
		})
		order := poolingOrder("o-1", "100", tu.InShipping(shipping))
		app.Store.PutShippings(shipping)
		app.Store.PutOrders(order)
		return app, order
	}

	t.Run("booked slot is updated", func(t *testing.T) {
		app, order := bookedSetup()
		dto := application.ToOrderDTO(order)
		dto.PalletsCount = tu.Dec("2")

		res, err := app.OrderEdit.Save(tu.Ctx(), tu.Manager(), dto)
		require.NoError(t, err)
		require.False(t, res.IsError(), res.Result.Message)

		assert.Equal(t, []string{"updateReservation"}, app.Pooling.Ops())
		assert.Equal(t, "slot-1", app.Pooling.Calls[0].Request.SlotID)
		assert.Equal(t, 1, app.Store.Commits)
	})

	t.Run("refused update writes nothing", func(t *testing.T) {
		app, order := bookedSetup()
		app.Pooling.Update = domain.HTTPFailure[*domain.Reservation](http.StatusNotFound, "gone")
		dto := application.ToOrderDTO(order)
		dto.PalletsCount = tu.Dec("2")

		res, err := app.OrderEdit.Save(tu.Ctx(), tu.Manager(), dto)
		require.NoError(t, err)
		require.True(t, res.IsError())
		assert.Equal(t, domain.MsgPoolingNotFoundReserv, res.Result.Message)
		assert.Equal(t, 0, app.Store.Commits)
		assert.True(t, app.Store.Order("o-1").PalletsCount.Equal(*tu.Dec("1")))
	})
}

func TestOrderEdit_Create(t *testing.T) {
	app := tu.NewApp(tariffNow)
	var hooked *domain.Order
	app.OrderEdit.OnCreate(func(sc *application.Scope, o *domain.Order) (application.Result, error) {
		hooked = o
		assert.Equal(t, domain.OrderDraft, o.Status)
		o.Status = domain.OrderCreated
		sc.Changes.TouchOrders(o)
		return application.Success(domain.MsgOrderSaved), nil
	})

	template := tu.NewOrder("", "200")
	res, err := app.OrderEdit.Save(tu.Ctx(), tu.Manager(), application.ToOrderDTO(template))
	require.NoError(t, err)
	require.False(t, res.IsError(), res.Result.Message)
	require.NotNil(t, hooked)

	id := res.Order.ID
	require.NotEmpty(t, id)
	stored := app.Store.Order(id)
	require.NotNil(t, stored)
	assert.Equal(t, domain.OrderCreated, stored.Status)
	assert.Equal(t, tariffNow, stored.CreatedAt)
	assert.Equal(t, []string{domain.MsgHistoryOrderCreated}, app.Store.HistoryKeys(id))
	assert.Equal(t, 1, app.Store.Commits)
}
