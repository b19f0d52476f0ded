package testutil

import (
	"time"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/application"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
)

// App wires the application services over the in-memory store
type App struct {
	Store   *Store
	Dict    *Dictionaries
	Pooling *PoolingClient
	Now     time.Time

	Scopes    *application.ScopeFactory
	Tariffs   *application.TariffService
	Costs     *application.DeliveryCostService
	Calc      *application.ShippingCalculationService
	Numbers   *application.ShippingNumberProvider
	Shippings *application.ShippingActionService
	PoolingSv *application.PoolingService
	Stats     *application.CarrierRequestStats
	Sender    *application.SendShippingService
	OrderEdit *application.OrderEditService
	Backlight *application.BacklightService
}

// NewApp builds the services with seeded dictionaries and a fixed clock
func NewApp(now time.Time) *App {
	a := &App{
		Store:   NewStore(),
		Dict:    NewDictionaries(),
		Pooling: NewPoolingClient(),
		Now:     now,
	}
	SeedDictionaries(a.Dict)

	logger := logging.Nop()
	clock := func() time.Time { return a.Now }

	a.Scopes = application.NewScopeFactory(a.Dict, a.Store.Tariffs(), clock)
	a.Tariffs = application.NewTariffService(a.Store.Tariffs(), a.Store, nil, logger, clock)
	a.Costs = application.NewDeliveryCostService(a.Tariffs, logger)
	a.Calc = application.NewShippingCalculationService(a.Costs, logger)
	a.Numbers = application.NewShippingNumberProvider()
	a.Shippings = application.NewShippingActionService(a.Store.Shippings(), a.Store.Orders(), a.Calc, a.Numbers, nil, logger)
	a.PoolingSv = application.NewPoolingService(a.Pooling, logger)
	a.Stats = application.NewCarrierRequestStats(a.Store.Stats())
	a.Sender = application.NewSendShippingService(a.PoolingSv, a.Stats, a.Calc, logger)
	a.OrderEdit = application.NewOrderEditService(a.Scopes, a.Store, a.Store.Orders(), a.Store.Shippings(), a.Calc, a.PoolingSv, logger)
	a.Backlight = application.NewBacklightService(a.Scopes, a.Store)
	return a
}

// Scope opens a scope for user at the app's clock
func (a *App) Scope(user domain.User) *application.Scope {
	return a.Scopes.Open(Ctx(), user)
}
