package application_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	tu "github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/testutil"
)

func withTemperature(min, max *int) func(*domain.Order) {
	return func(o *domain.Order) {
		o.TemperatureMin = min
		o.TemperatureMax = max
	}
}

func TestTemperatureIntersection(t *testing.T) {
	p := domain.Ptr[int]
	tests := []struct {
		name   string
		ranges [][2]*int
		min    *int
		max    *int
	}{
		{"overlapping ranges narrow", [][2]*int{{p(0), p(10)}, {p(5), p(15)}, {p(8), p(20)}}, p(8), p(10)},
		{"disjoint ranges drop the constraint", [][2]*int{{p(0), p(5)}, {p(10), p(15)}}, nil, nil},
		{"touching ranges meet in a point", [][2]*int{{p(0), p(5)}, {p(5), p(15)}}, p(5), p(5)},
		{"missing bound drops the constraint", [][2]*int{{p(0), p(10)}, {nil, p(15)}}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var orders []*domain.Order
			for _, r := range tt.ranges {
				orders = append(orders, tu.NewOrder("o", "n", withTemperature(r[0], r[1])))
			}
			min, max := application.TemperatureIntersection(orders)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
		})
	}

	t.Run("no orders", func(t *testing.T) {
		min, max := application.TemperatureIntersection(nil)
		assert.Nil(t, min)
		assert.Nil(t, max)
	})
}

func TestRecalculateShipping(t *testing.T) {
	app := tu.NewApp(tariffNow)
	shipping := tu.NewShipping("s-1", "SH000001", domain.ShippingCreated)
	orders := []*domain.Order{
		tu.NewOrder("o-1", "100", tu.WithPallets("4.5"), tu.InShipping(shipping), func(o *domain.Order) {
			o.ShippingDate = tu.Date(2026, time.March, 9, 8)
			o.DeliveryDate = tu.Date(2026, time.March, 12, 8)
			o.DeliveryAddress = "Far st. 9"
			o.LoadingArrivalTime = tu.Date(2026, time.March, 9, 7)
		}),
		tu.NewOrder("o-2", "101", tu.WithPallets("3"), tu.InShipping(shipping), func(o *domain.Order) {
			o.ShippingAddress = "Late st. 5"
		}),
	}

	sc := app.Scope(tu.Manager())
	require.NoError(t, app.Calc.RecalculateShipping(sc, shipping, orders))

	assert.True(t, shipping.PalletsCount.Equal(*tu.Dec("8")), "pallets are summed and rounded up")
	assert.True(t, shipping.WeightKg.Equal(*tu.Dec("200")))
	assert.Nil(t, shipping.ActualPalletsCount)
	assert.Equal(t, "Loading st. 1", shipping.ShippingAddress)
	assert.Equal(t, "Far st. 9", shipping.DeliveryAddress)
	assert.Equal(t, tu.Date(2026, time.March, 9, 8), shipping.ShippingDate)
	assert.Equal(t, tu.Date(2026, time.March, 12, 8), shipping.DeliveryDate)
	assert.Equal(t, tu.Date(2026, time.March, 9, 7), shipping.LoadingArrivalTime)
	assert.Nil(t, shipping.LoadingDepartureTime)
}

func TestSyncVehicleType(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.ShippingState
		pallets string
		region  string
		want    *string
	}{
		{"smallest vehicle that fits", domain.ShippingCreated, "8", "Moscow", domain.Ptr(tu.VehicleS)},
		{"larger vehicle when the small one is full", domain.ShippingRequestSent, "12", "Moscow", domain.Ptr(tu.VehicleL)},
		{"nothing fits", domain.ShippingCreated, "40", "Moscow", nil},
		{"interregion route needs an interregion vehicle", domain.ShippingCreated, "8", "Tver", nil},
		{"confirmed shipping keeps its vehicle", domain.ShippingConfirmed, "8", "Moscow", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := tu.NewApp(tariffNow)
			shipping := tu.NewShipping("s-1", "SH000001", tt.status, func(s *domain.Shipping) {
				s.PalletsCount = tu.Dec(tt.pallets)
			})
			orders := []*domain.Order{tu.NewOrder("o-1", "100", tu.InShipping(shipping), func(o *domain.Order) {
				o.DeliveryRegion = tt.region
			})}

			require.NoError(t, app.Calc.SyncVehicleType(app.Scope(tu.Manager()), shipping, orders))
			assert.Equal(t, tt.want, shipping.VehicleTypeID)
			assert.Equal(t, tt.want, orders[0].VehicleTypeID)
		})
	}
}

func TestDriverDataSync(t *testing.T) {
	app := tu.NewApp(tariffNow)
	shipping := tu.NewShipping("s-1", "SH000001", domain.ShippingCreated, func(s *domain.Shipping) {
		s.Driver.TrailerNumber = "stale"
	})
	orders := []*domain.Order{
		tu.NewOrder("o-1", "100", func(o *domain.Order) {
			o.Driver = domain.DriverData{DriverName: "Ivan", DriverPhone: "+7 900", VehicleNumber: "A001AA"}
		}),
		tu.NewOrder("o-2", "101", func(o *domain.Order) {
			o.Driver = domain.DriverData{DriverName: "Ivan", DriverPhone: "+7 901", VehicleNumber: "A001AA"}
		}),
	}

	application.DriverDataSync(app.Scope(tu.Manager()), shipping, orders)

	assert.Equal(t, "Ivan", shipping.Driver.DriverName)
	assert.Equal(t, "A001AA", shipping.Driver.VehicleNumber)
	assert.Empty(t, shipping.Driver.DriverPhone, "disagreeing values are cleared")
	assert.Empty(t, shipping.Driver.TrailerNumber)
	assert.Equal(t, "+7 900", orders[0].Driver.DriverPhone, "orders keep their own values")
	assert.True(t, application.IsDriverField("driverPhone"))
	assert.False(t, application.IsDriverField("palletsCount"))
}

func TestShippingNumberProvider(t *testing.T) {
	p := application.NewShippingNumberProvider()
	p.Init(41)
	assert.Equal(t, "SH000042", p.Next())

	var wg sync.WaitGroup
	numbers := make(chan string, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			numbers <- p.Next()
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for n := range numbers {
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, 100)
	assert.Equal(t, "SH000143", p.Next())
}
