package application_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	tu "github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/testutil"
)

var tariffNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func cityTariff(id, ftl string) *domain.Tariff {
	return tu.NewTariff(id, ftl, func(t *domain.Tariff) {
		t.ShippingWarehouseID = nil
		t.DeliveryWarehouseID = nil
		t.ShipmentCity = "moscow "
		t.DeliveryCity = "Tver"
	})
}

func regionTariff(id, ftl string) *domain.Tariff {
	return tu.NewTariff(id, ftl, func(t *domain.Tariff) {
		t.ShippingWarehouseID = nil
		t.DeliveryWarehouseID = nil
		t.ShipmentRegion = "Moscow"
		t.DeliveryRegion = "Moscow"
	})
}

func TestFindTariff_Tiers(t *testing.T) {
	tests := []struct {
		name    string
		tariffs []*domain.Tariff
		want    string
	}{
		{
			name:    "warehouse pair wins over city",
			tariffs: []*domain.Tariff{cityTariff("t-city", "100"), tu.NewTariff("t-wh", "900")},
			want:    "t-wh",
		},
		{
			name: "falls back to city when no warehouse pair matches",
			tariffs: []*domain.Tariff{
				tu.NewTariff("t-other-wh", "50", func(t *domain.Tariff) { t.DeliveryWarehouseID = domain.Ptr("wh-z") }),
				cityTariff("t-city", "700"),
				regionTariff("t-region", "10"),
			},
			want: "t-city",
		},
		{
			name:    "falls back to region",
			tariffs: []*domain.Tariff{regionTariff("t-region", "10")},
			want:    "t-region",
		},
		{
			name:    "cheapest within a tier",
			tariffs: []*domain.Tariff{cityTariff("t-a", "800"), cityTariff("t-b", "600")},
			want:    "t-b",
		},
		{
			name:    "equal price keeps the first",
			tariffs: []*domain.Tariff{cityTariff("t-a", "600"), cityTariff("t-b", "600")},
			want:    "t-a",
		},
		{
			name: "other carrier does not match",
			tariffs: []*domain.Tariff{
				tu.NewTariff("t-wh", "900", func(t *domain.Tariff) { t.CarrierID = domain.Ptr("carrier-2") }),
			},
		},
		{
			name: "expired tariff does not match",
			tariffs: []*domain.Tariff{
				tu.NewTariff("t-wh", "900", func(t *domain.Tariff) {
					t.ExpirationDate = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
				}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := tu.NewApp(tariffNow)
			app.Store.PutTariffs(tt.tariffs...)
			shipping := tu.NewShipping("s-1", "SH000001", domain.ShippingCreated)
			orders := []*domain.Order{tu.NewOrder("o-1", "100", tu.InShipping(shipping))}

			found, err := app.Tariffs.FindTariff(app.Scope(tu.Manager()), shipping, orders, application.TariffQuery{})
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, found)
				return
			}
			require.NotNil(t, found)
			assert.Equal(t, tt.want, found.ID)
		})
	}
}

func TestFindTariff_QueryOverrides(t *testing.T) {
	app := tu.NewApp(tariffNow)
	app.Store.PutTariffs(
		tu.NewTariff("t-c1", "900"),
		tu.NewTariff("t-c2", "500", func(t *domain.Tariff) { t.CarrierID = domain.Ptr("carrier-2") }),
	)
	shipping := tu.NewShipping("s-1", "SH000001", domain.ShippingCreated)
	orders := []*domain.Order{tu.NewOrder("o-1", "100", tu.InShipping(shipping))}
	sc := app.Scope(tu.Manager())

	found, err := app.Tariffs.FindTariff(sc, shipping, orders, application.TariffQuery{CarrierID: domain.Ptr("carrier-2")})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "t-c2", found.ID)

	found, err = app.Tariffs.FindTariff(sc, shipping, orders, application.TariffQuery{
		CarrierID:         domain.Ptr("carrier-2"),
		IgnoredCarrierIDs: []string{"carrier-2"},
	})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestTariffService_Save(t *testing.T) {
	base := func() *domain.Tariff { return tu.NewTariff("", "1000") }

	t.Run("inverted range", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		tariff := base()
		tariff.ExpirationDate = tariff.EffectiveDate.AddDate(0, 0, -1)

		res, err := app.Tariffs.Save(tu.Ctx(), tu.Manager(), tariff, false)
		require.NoError(t, err)
		require.True(t, res.Validation.IsError())
		assert.Equal(t, domain.MsgInvalidTariffRange, res.Validation.Errors[0].Message)
		assert.Equal(t, 0, app.Store.Commits)
	})

	t.Run("exact duplicate", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		app.Store.PutTariffs(tu.NewTariff("t-1", "900"))

		res, err := app.Tariffs.Save(tu.Ctx(), tu.Manager(), base(), false)
		require.NoError(t, err)
		require.True(t, res.Validation.IsError())
		assert.Equal(t, domain.MsgDuplicatedTariff, res.Validation.Errors[0].Message)
		assert.False(t, res.NeedsConfirmation)
	})

	t.Run("overlap needs confirmation", func(t *testing.T) {
		app := tu.NewApp(tariffNow)
		app.Store.PutTariffs(tu.NewTariff("t-1", "900", func(t *domain.Tariff) {
			t.EffectiveDate = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
			t.ExpirationDate = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
		}))

		res, err := app.Tariffs.Save(tu.Ctx(), tu.Manager(), base(), false)
		require.NoError(t, err)
		assert.True(t, res.NeedsConfirmation)
		assert.Equal(t, domain.MsgTariffOverlap, res.Validation.Errors[0].Message)

		res, err = app.Tariffs.Save(tu.Ctx(), tu.Manager(), base(), true)
		require.NoError(t, err)
		require.NotNil(t, res.Tariff)
		assert.NotEmpty(t, res.Tariff.ID)
		assert.Equal(t, 1, app.Store.Commits)
		assert.Equal(t, []string{domain.MsgHistoryTariffSaved}, app.Store.HistoryKeys(res.Tariff.ID))
	})
}
