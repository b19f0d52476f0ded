package mongodb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/infrastructure/mongodb"
	tu "github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/testutil"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/cloudevents"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	pkgmongo "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/mongodb"
	sharedtesting "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/testing"
)

var now = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	client    *pkgmongo.InstrumentedClient
	uow       *mongodb.UnitOfWork
	orders    *mongodb.OrderRepository
	shippings *mongodb.ShippingRepository
	tariffs   *mongodb.TariffRepository
	stats     *mongodb.CarrierRequestStatRepository
	history   *mongodb.HistoryRepository
	dict      *mongodb.Dictionaries
}

func setup(t *testing.T) *fixture {
	sharedtesting.SkipIfShort(t)
	ctx := context.Background()

	container, err := sharedtesting.NewMongoDBContainer(ctx)
	require.NoError(t, err)

	config := pkgmongo.DefaultConfig()
	config.URI = container.URI
	config.Database = "tms_test"
	config.MinPoolSize = 0
	raw, err := pkgmongo.NewClient(ctx, config)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := raw.Close(ctx); err != nil {
			t.Logf("Failed to disconnect MongoDB client: %v", err)
		}
		if err := container.Close(ctx); err != nil {
			t.Logf("Failed to close MongoDB container: %v", err)
		}
	})

	require.NoError(t, raw.SupportsTransactions(ctx))
	client := pkgmongo.NewInstrumentedClient(raw, nil, logging.Nop())
	require.NoError(t, mongodb.EnsureIndexes(ctx, client))

	return &fixture{
		client:    client,
		uow:       mongodb.NewUnitOfWork(client, cloudevents.NewEventFactory(cloudevents.SourceTMS), logging.Nop()),
		orders:    mongodb.NewOrderRepository(client),
		shippings: mongodb.NewShippingRepository(client),
		tariffs:   mongodb.NewTariffRepository(client),
		stats:     mongodb.NewCarrierRequestStatRepository(client),
		history:   mongodb.NewHistoryRepository(client),
		dict:      mongodb.NewDictionaries(client),
	}
}

func seedDictionaries(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	src := tu.NewDictionaries()
	tu.SeedDictionaries(src)

	insert := func(collection string, docs ...interface{}) {
		_, err := f.client.Database().Collection(collection).InsertMany(ctx, docs)
		require.NoError(t, err)
	}
	for _, c := range src.Companies {
		insert(mongodb.CompaniesCollection, c)
	}
	for _, w := range src.Warehouses {
		insert(mongodb.WarehousesCollection, w)
	}
	for _, c := range src.Carriers {
		insert(mongodb.CarriersCollection, c)
	}
	for _, v := range src.VehicleTypeMap {
		insert(mongodb.VehicleTypesCollection, v)
	}
	for _, b := range src.BodyTypes {
		insert(mongodb.BodyTypesCollection, b)
	}
}

func TestMongoRepositories(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("commit writes the whole change set", func(t *testing.T) {
		shipping := tu.NewShipping("s-1", "SH000001", domain.ShippingRequestSent, func(s *domain.Shipping) {
			s.PalletsCount = tu.Dec("12")
			s.BasicDeliveryCostWithoutVAT = tu.Dec("1200.50")
		})
		o1 := tu.NewOrder("o-1", "101", tu.WithPallets("7"), tu.InShipping(shipping))
		o2 := tu.NewOrder("o-2", "100", tu.WithPallets("5"), tu.InShipping(shipping))

		changes := domain.NewChangeSet("user-1", now)
		changes.TouchOrders(o1, o2)
		changes.TouchShipping(shipping)
		changes.SaveStat(&domain.CarrierRequestDatesStat{ID: "stat-1", ShippingID: "s-1", CarrierID: tu.CarrierID, SentAt: &now})
		changes.AddHistory("s-1", domain.MsgHistoryShippingCreated, "SH000001")
		changes.Notify(domain.Notification{
			Type:           domain.NotifyRequestToCarrier,
			ShippingID:     "s-1",
			ShippingNumber: "SH000001",
			CarrierID:      tu.CarrierID,
			OrderIDs:       []string{"o-1", "o-2"},
		})

		require.NoError(t, f.uow.Commit(ctx, changes))

		got, err := f.shippings.FindByID(ctx, "s-1")
		require.NoError(t, err)
		assert.Equal(t, domain.ShippingRequestSent, got.Status)
		assert.Equal(t, "1200.5", got.BasicDeliveryCostWithoutVAT.String())
		assert.True(t, now.Equal(got.UpdatedAt))

		members, err := f.orders.FindByShippingID(ctx, "s-1")
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, "100", members[0].OrderNumber, "members come back by order number")
		assert.Equal(t, "5", members[0].PalletsCount.String())

		stat, err := f.stats.Find(ctx, "s-1", tu.CarrierID)
		require.NoError(t, err)
		require.NotNil(t, stat)
		assert.True(t, now.Equal(*stat.SentAt))

		entries, err := f.history.ListByEntity(ctx, "s-1")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, []string{"SH000001"}, entries[0].Args)

		pending, err := f.uow.Outbox().FindUnpublished(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, cloudevents.RequestToCarrier, pending[0].EventType)
		assert.Equal(t, "tms.notifications", pending[0].Topic)
		event, err := pending[0].ToCloudEvent()
		require.NoError(t, err)
		assert.Equal(t, "s-1", event.ShippingID)
	})

	t.Run("stat upsert keeps one row per shipping and carrier", func(t *testing.T) {
		stat, err := f.stats.Find(ctx, "s-1", tu.CarrierID)
		require.NoError(t, err)
		confirmed := now.Add(time.Hour)
		stat.ConfirmedAt = &confirmed

		changes := domain.NewChangeSet("user-1", now)
		changes.SaveStat(stat)
		require.NoError(t, f.uow.Commit(ctx, changes))

		n, err := f.client.Collection(mongodb.StatsCollection).CountDocuments(ctx, map[string]string{"shippingId": "s-1"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		stat, err = f.stats.Find(ctx, "s-1", tu.CarrierID)
		require.NoError(t, err)
		assert.True(t, confirmed.Equal(*stat.ConfirmedAt))
		assert.True(t, now.Equal(*stat.SentAt))
	})

	t.Run("failed commit writes nothing", func(t *testing.T) {
		duplicate := tu.NewShipping("s-2", "SH000001", domain.ShippingCreated)
		order := tu.NewOrder("o-3", "102", tu.InShipping(duplicate))

		changes := domain.NewChangeSet("user-1", now)
		changes.TouchOrders(order)
		changes.TouchShipping(duplicate)

		require.Error(t, f.uow.Commit(ctx, changes), "shipping numbers are unique")

		_, err := f.orders.FindByID(ctx, "o-3")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
		_, err = f.shippings.FindByID(ctx, "s-2")
		assert.ErrorIs(t, err, domain.ErrShippingNotFound)
	})

	t.Run("shipping count seeds numbering", func(t *testing.T) {
		n, err := f.shippings.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("order lookups", func(t *testing.T) {
		found, err := f.orders.FindByIDs(ctx, []string{"o-1", "o-404"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "o-1", found[0].ID)

		none, err := f.orders.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("tariffs by date and tariffication", func(t *testing.T) {
		expired := tu.NewTariff("t-old", "900", func(tr *domain.Tariff) {
			tr.EffectiveDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
			tr.ExpirationDate = time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
		})
		ltl := tu.NewTariff("t-ltl", "1000", func(tr *domain.Tariff) { tr.TarifficationType = domain.TarifficationLtl })

		changes := domain.NewChangeSet("user-1", now)
		changes.SaveTariff(tu.NewTariff("t-ftl", "1500"))
		changes.SaveTariff(ltl)
		changes.SaveTariff(expired)
		require.NoError(t, f.uow.Commit(ctx, changes))

		active, err := f.tariffs.FindActive(ctx, now)
		require.NoError(t, err)
		var ids []string
		for _, tr := range active {
			ids = append(ids, tr.ID)
		}
		assert.Equal(t, []string{"t-ftl", "t-ltl"}, ids)

		byType, err := f.tariffs.FindByTariffication(ctx, domain.TarifficationLtl)
		require.NoError(t, err)
		require.Len(t, byType, 1)
		require.NotNil(t, byType[0].LtlRates[2])
		assert.Equal(t, "300", byType[0].LtlRates[2].String())

		_, err = f.tariffs.FindByID(ctx, "t-missing")
		assert.ErrorIs(t, err, domain.ErrTariffNotFound)
	})

	t.Run("dictionaries", func(t *testing.T) {
		seedDictionaries(t, f)

		company, err := f.dict.Company(ctx, tu.CompanyID)
		require.NoError(t, err)
		assert.Equal(t, "FMCG", company.PoolingProductType)

		vehicles, err := f.dict.VehicleTypes(ctx)
		require.NoError(t, err)
		require.Len(t, vehicles, 2)
		assert.Equal(t, tu.VehicleL, vehicles[0].ID)
		assert.Equal(t, int64(33), *vehicles[0].PalletsCount)

		_, err = f.dict.Carrier(ctx, "carrier-404")
		assert.ErrorIs(t, err, domain.ErrCarrierNotFound)
	})

	t.Run("empty change set is a no-op", func(t *testing.T) {
		require.NoError(t, f.uow.Commit(ctx, domain.NewChangeSet("user-1", now)))
	})
}
