package actions_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application/actions"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	tu "github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/testutil"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
)

var now = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

var admin = domain.User{ID: "user-admin", Role: domain.RoleAdministrator}

func newDispatcher(app *tu.App) *actions.Dispatcher {
	catalog := actions.NewCatalog(actions.Services{
		Shippings: app.Shippings,
		Sender:    app.Sender,
		Stats:     app.Stats,
	})
	return actions.NewDispatcher(catalog, app.Scopes, app.Store, app.Store.Orders(), app.Store.Shippings(), nil, logging.Nop())
}

func names(ds []actions.Descriptor) []string {
	var out []string
	for _, d := range ds {
		out = append(out, d.Name)
	}
	return out
}

func TestInvoke_Errors(t *testing.T) {
	tests := []struct {
		name    string
		user    domain.User
		group   actions.Group
		action  string
		ids     []string
		wantErr error
	}{
		{"unknown action", tu.Manager(), actions.GroupOrder, "teleport", []string{"o-1"}, domain.ErrActionNotFound},
		{"shipping action asked as order action", tu.Manager(), actions.GroupOrder, actions.CompleteShipping, []string{"o-1"}, domain.ErrActionNotFound},
		{"role may not run it", tu.Carrier(), actions.GroupOrder, actions.UnionOrders, []string{"o-1", "o-2"}, domain.ErrUnauthorized},
		{"missing order", tu.Manager(), actions.GroupOrder, actions.CancelOrder, []string{"o-1", "o-404"}, domain.ErrOrderNotFound},
		{"missing shipping", tu.Manager(), actions.GroupShipping, actions.CancelShipping, []string{"s-404"}, domain.ErrShippingNotFound},
		{
			"other company", domain.User{ID: "u", Role: domain.RoleShippingManager, CompanyID: domain.Ptr("company-2")},
			actions.GroupOrder, actions.CancelOrder, []string{"o-1"}, domain.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := tu.NewApp(now)
			app.Store.PutOrders(tu.NewOrder("o-1", "100"), tu.NewOrder("o-2", "101"))

			_, err := newDispatcher(app).Invoke(tu.Ctx(), tt.user, tt.group, tt.action, tt.ids)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, app.Store.Commits)
		})
	}
}

func TestInvoke_NotAvailableIsRejected(t *testing.T) {
	app := tu.NewApp(now)
	app.Store.PutOrders(tu.NewOrder("o-1", "100"))

	res, err := newDispatcher(app).Invoke(tu.Ctx(), tu.Manager(), actions.GroupOrder, actions.OrderDelivered, []string{"o-1"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, domain.MsgActionNotAvailable, res.Message)
	assert.Equal(t, []string{actions.OrderDelivered}, res.Args)
	assert.Equal(t, 0, app.Store.Commits)
}

func TestInvoke_SelectionIsAvailableOnlyAsAWhole(t *testing.T) {
	app := tu.NewApp(now)
	app.Store.PutOrders(
		tu.NewOrder("o-1", "100"),
		tu.NewOrder("o-2", "101", tu.WithStatus(domain.OrderShipped)),
	)

	res, err := newDispatcher(app).Invoke(tu.Ctx(), tu.Manager(), actions.GroupOrder, actions.CancelOrder, []string{"o-1", "o-2"})
	require.NoError(t, err)
	assert.True(t, res.IsError, "the selection is available only when every order is")
	assert.Equal(t, domain.OrderCreated, app.Store.Order("o-1").Status)
}

func TestInvoke_UnionThenSendThenConfirm(t *testing.T) {
	app := tu.NewApp(now)
	app.Store.PutOrders(
		tu.NewOrder("o-1", "100", tu.WithPallets("5")),
		tu.NewOrder("o-2", "101", tu.WithPallets("7")),
	)
	d := newDispatcher(app)

	res, err := d.Invoke(tu.Ctx(), tu.Manager(), actions.GroupOrder, actions.UnionOrders, []string{"o-1", "o-2"})
	require.NoError(t, err)
	require.False(t, res.IsError, res.Message)
	assert.Equal(t, domain.MsgShippingCreated, res.Message)
	assert.Equal(t, []string{"SH000001"}, res.Args)

	shippingID := *app.Store.Order("o-1").ShippingID
	assert.Equal(t, shippingID, *app.Store.Order("o-2").ShippingID)

	res, err = d.Invoke(tu.Ctx(), tu.Manager(), actions.GroupShipping, actions.SendShippingToTk, []string{shippingID})
	require.NoError(t, err)
	require.False(t, res.IsError, res.Message)
	assert.Equal(t, domain.ShippingRequestSent, app.Store.Shipping(shippingID).Status)

	app.Now = now.Add(2 * time.Hour)
	res, err = d.Invoke(tu.Ctx(), tu.Carrier(), actions.GroupShipping, actions.ConfirmShipping, []string{shippingID})
	require.NoError(t, err)
	require.False(t, res.IsError, res.Message)

	assert.Equal(t, domain.ShippingConfirmed, app.Store.Shipping(shippingID).Status)
	assert.Equal(t, domain.ShippingConfirmed, *app.Store.Order("o-2").OrderShippingStatus)
	stat := app.Store.Stat(shippingID, tu.CarrierID)
	require.NotNil(t, stat)
	assert.Equal(t, now, *stat.SentAt)
	assert.Equal(t, now.Add(2*time.Hour), *stat.ConfirmedAt)
	assert.Equal(t, 3, app.Store.Commits)
}

func TestInvoke_FailedBookingCommitsNothing(t *testing.T) {
	app := tu.NewApp(now)
	pooling := domain.TarifficationPooling
	shipping := tu.NewShipping("s-1", "SH000001", domain.ShippingCreated, func(s *domain.Shipping) {
		s.TarifficationType = &pooling
		s.ShippingWarehouseID = domain.Ptr(tu.WarehouseA)
		s.DeliveryWarehouseID = domain.Ptr(tu.WarehouseB)
	})
	app.Store.PutShippings(shipping)
	app.Store.PutOrders(tu.NewOrder("o-1", "100", tu.WithTariffication(pooling), tu.InShipping(shipping)))
	app.Pooling.Slots = domain.HTTPSuccess(http.StatusOK, []domain.Slot{{ID: "slot-1", FreePallets: 5}})
	app.Pooling.Booking = []domain.HTTPResult[*domain.Reservation]{
		domain.HTTPFailure[*domain.Reservation](http.StatusForbidden, "no"),
	}

	res, err := newDispatcher(app).Invoke(tu.Ctx(), tu.Manager(), actions.GroupOrder, actions.SendToPooling, []string{"o-1"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, domain.MsgPoolingForbiddenBooking, res.Message)
	assert.Equal(t, 0, app.Store.Commits)
	assert.Equal(t, domain.ShippingCreated, app.Store.Shipping("s-1").Status)
}

func TestInvoke_CommitFailure(t *testing.T) {
	app := tu.NewApp(now)
	app.Store.PutOrders(tu.NewOrder("o-1", "100"))
	app.Store.CommitErr = errors.New("write conflict")

	_, err := newDispatcher(app).Invoke(tu.Ctx(), tu.Manager(), actions.GroupOrder, actions.CancelOrder, []string{"o-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write conflict")
	assert.Equal(t, domain.OrderCreated, app.Store.Order("o-1").Status)
}

func TestAvailableActions(t *testing.T) {
	tests := []struct {
		name  string
		user  domain.User
		setup func(app *tu.App)
		ids   []string
		want  []string
	}{
		{
			name: "manager on two created orders",
			user: tu.Manager(),
			ids:  []string{"o-1", "o-2"},
			want: []string{actions.CreateShipping, actions.UnionOrders, actions.CancelOrder},
		},
		{
			name: "client on the same orders",
			user: domain.User{ID: "u-client", Role: domain.RoleClient},
			ids:  []string{"o-1", "o-2"},
			want: []string{actions.CancelOrder},
		},
		{
			name:  "company that confirms orders",
			user:  tu.Manager(),
			setup: func(app *tu.App) { app.Dict.Companies[tu.CompanyID].OrderRequiresConfirmation = true },
			ids:   []string{"o-1"},
			want:  []string{actions.ConfirmOrder, actions.CancelOrder},
		},
		{
			name: "single order cannot be united",
			user: tu.Manager(),
			ids:  []string{"o-1"},
			want: []string{actions.CreateShipping, actions.CancelOrder},
		},
		{
			name: "empty selection",
			user: tu.Manager(),
			ids:  []string{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := tu.NewApp(now)
			if tt.setup != nil {
				tt.setup(app)
			}
			app.Store.PutOrders(tu.NewOrder("o-1", "100"), tu.NewOrder("o-2", "101"))

			got, err := newDispatcher(app).AvailableActions(tu.Ctx(), tt.user, actions.GroupOrder, tt.ids)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestAvailableActions_ShippingsForCarrier(t *testing.T) {
	app := tu.NewApp(now)
	shipping := tu.NewShipping("s-1", "SH000001", domain.ShippingRequestSent)
	app.Store.PutShippings(shipping)
	app.Store.PutOrders(tu.NewOrder("o-1", "100", tu.InShipping(shipping)))

	got, err := newDispatcher(app).AvailableActions(tu.Ctx(), tu.Carrier(), actions.GroupShipping, []string{"s-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{actions.ConfirmShipping, actions.RejectRequestShipping}, names(got))
}

func TestCreateOrderHook(t *testing.T) {
	app := tu.NewApp(now)
	hook := actions.CreateOrderHook()

	draft := tu.NewOrder("o-1", "100", tu.WithStatus(domain.OrderDraft))
	res, err := hook(app.Scope(tu.Manager()), draft)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, domain.OrderCreated, draft.Status)

	res, err = hook(app.Scope(tu.Manager()), draft)
	require.NoError(t, err)
	assert.True(t, res.IsError, "only drafts can be created")
}
