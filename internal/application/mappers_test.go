package application_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	tu "github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/testutil"
)

func TestMapOrderChanges(t *testing.T) {
	tests := []struct {
		name string
		edit func(dto *application.OrderDTO)
		want []string
	}{
		{"unchanged", func(*application.OrderDTO) {}, nil},
		{"same decimal different scale", func(d *application.OrderDTO) { d.PalletsCount = tu.Dec("1.00") }, nil},
		{"same instant other zone", func(d *application.OrderDTO) {
			d.ShippingDate = domain.Ptr(d.ShippingDate.In(time.FixedZone("MSK", 3*3600)))
		}, nil},
		{"cleared reference", func(d *application.OrderDTO) { d.CarrierID = nil }, []string{"carrierId"}},
		{"driver field", func(d *application.OrderDTO) { d.VehicleNumber = "A001AA" }, []string{"vehicleNumber"}},
		{"several fields in declaration order", func(d *application.OrderDTO) {
			d.TemperatureMax = domain.Ptr(8)
			d.OrderNumber = "100-a"
			d.WeightKg = tu.Dec("250")
		}, []string{"orderNumber", "weightKg", "temperatureMax"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := tu.NewOrder("o-1", "100")
			dto := application.ToOrderDTO(order)
			tt.edit(dto)

			changed := application.MapOrderChanges(dto, order)
			assert.Equal(t, tt.want, changed)
		})
	}
}

func TestMapOrderChanges_AppliesCopies(t *testing.T) {
	order := tu.NewOrder("o-1", "100")
	dto := application.ToOrderDTO(order)
	dto.CarrierID = domain.Ptr("carrier-2")

	application.MapOrderChanges(dto, order)
	*dto.CarrierID = "carrier-3"

	assert.Equal(t, "carrier-2", *order.CarrierID, "the order must not alias the dto")
}

func TestToOrderDTO(t *testing.T) {
	assert.Nil(t, application.ToOrderDTO(nil))

	order := tu.NewOrder("o-1", "100", func(o *domain.Order) {
		o.Driver.DriverName = "Ivan"
	})
	dto := application.ToOrderDTO(order)
	assert.Equal(t, "o-1", dto.ID)
	assert.Equal(t, "Ivan", dto.DriverName)
	assert.Equal(t, order.ShippingWarehouseID, dto.ShippingWarehouseID)
}
