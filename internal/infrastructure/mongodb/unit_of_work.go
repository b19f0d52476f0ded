package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/cloudevents"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/kafka"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/logging"
	pkgmongo "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/mongodb"
	"github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/outbox"
	outboxMongo "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/outbox/mongodb"
)

var notificationEventTypes = map[domain.NotificationType]string{
	domain.NotifyRequestToCarrier:         cloudevents.RequestToCarrier,
	domain.NotifyRejectShippingRequest:    cloudevents.RejectShippingRequest,
	domain.NotifyCancelShipping:           cloudevents.CancelShipping,
	domain.NotifyAddOrdersToShipping:      cloudevents.AddOrdersToShipping,
	domain.NotifyRemoveOrdersFromShipping: cloudevents.RemoveOrdersFromShipping,
}

// UnitOfWork implements domain.UnitOfWork. A change set is written in one
// transaction: orders, shippings, tariffs, carrier request stats, history
// and the outbox rows carrying its notifications.
type UnitOfWork struct {
	client    *pkgmongo.InstrumentedClient
	orders    *pkgmongo.InstrumentedCollection
	shippings *pkgmongo.InstrumentedCollection
	tariffs   *pkgmongo.InstrumentedCollection
	stats     *pkgmongo.InstrumentedCollection
	history   *pkgmongo.InstrumentedCollection
	outbox    *outboxMongo.OutboxRepository
	events    *cloudevents.EventFactory
	logger    *logging.Logger
}

// NewUnitOfWork creates a UnitOfWork
func NewUnitOfWork(client *pkgmongo.InstrumentedClient, events *cloudevents.EventFactory, logger *logging.Logger) *UnitOfWork {
	return &UnitOfWork{
		client:    client,
		orders:    client.Collection(OrdersCollection),
		shippings: client.Collection(ShippingsCollection),
		tariffs:   client.Collection(TariffsCollection),
		stats:     client.Collection(StatsCollection),
		history:   client.Collection(HistoryCollection),
		outbox:    outboxMongo.NewOutboxRepository(client.Database()),
		events:    events,
		logger:    logger.WithComponent("unit-of-work"),
	}
}

// Outbox exposes the outbox repository for the publisher
func (u *UnitOfWork) Outbox() *outboxMongo.OutboxRepository {
	return u.outbox
}

// Commit persists changes atomically. Nothing is written when it fails.
func (u *UnitOfWork) Commit(ctx context.Context, changes *domain.ChangeSet) error {
	if changes.IsEmpty() {
		return nil
	}

	events, err := u.outboxEvents(ctx, changes.Notifications())
	if err != nil {
		return err
	}

	err = u.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := u.orders.BulkWrite(sessCtx, replaceByID(changes.Orders(), func(o *domain.Order) string { return o.ID })); err != nil {
			return fmt.Errorf("failed to save orders: %w", err)
		}
		if err := u.shippings.BulkWrite(sessCtx, replaceByID(changes.Shippings(), func(s *domain.Shipping) string { return s.ID })); err != nil {
			return fmt.Errorf("failed to save shippings: %w", err)
		}
		if err := u.tariffs.BulkWrite(sessCtx, replaceByID(changes.Tariffs(), func(t *domain.Tariff) string { return t.ID })); err != nil {
			return fmt.Errorf("failed to save tariffs: %w", err)
		}
		if err := u.stats.BulkWrite(sessCtx, statUpserts(changes.Stats())); err != nil {
			return fmt.Errorf("failed to save carrier request stats: %w", err)
		}
		if err := u.history.InsertMany(sessCtx, historyDocs(changes.History())); err != nil {
			return fmt.Errorf("failed to save history: %w", err)
		}
		return u.outbox.SaveAll(sessCtx, events)
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	u.logger.Debug("Change set committed",
		"userId", changes.UserID,
		"orders", len(changes.Orders()),
		"shippings", len(changes.Shippings()),
		"notifications", len(events),
	)
	return nil
}

func (u *UnitOfWork) outboxEvents(ctx context.Context, notifications []domain.Notification) ([]*outbox.OutboxEvent, error) {
	events := make([]*outbox.OutboxEvent, 0, len(notifications))
	for _, n := range notifications {
		eventType, ok := notificationEventTypes[n.Type]
		if !ok {
			return nil, fmt.Errorf("unknown notification type %q", n.Type)
		}
		cloudEvent := u.events.CreateNotification(ctx, eventType, cloudevents.NotificationData{
			ShippingID:     n.ShippingID,
			ShippingNumber: n.ShippingNumber,
			CarrierID:      n.CarrierID,
			OrderIDs:       n.OrderIDs,
			Reason:         n.Reason,
		})
		event, err := outbox.NewOutboxEventFromCloudEvent(n.ShippingID, "Shipping", kafka.Topics.Notifications, cloudEvent)
		if err != nil {
			return nil, fmt.Errorf("failed to create outbox event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

func replaceByID[T any](docs []T, id func(T) string) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": id(doc)}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	return models
}

func statUpserts(stats []*domain.CarrierRequestDatesStat) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(stats))
	for _, stat := range stats {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"shippingId": stat.ShippingID, "carrierId": stat.CarrierID}).
			SetReplacement(stat).
			SetUpsert(true))
	}
	return models
}

func historyDocs(entries []domain.HistoryEntry) []interface{} {
	docs := make([]interface{}, len(entries))
	for i, e := range entries {
		docs[i] = e
	}
	return docs
}
