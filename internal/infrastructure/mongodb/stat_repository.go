package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	pkgmongo "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/mongodb"
)

// CarrierRequestStatRepository implements domain.CarrierRequestStatRepository
type CarrierRequestStatRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

func NewCarrierRequestStatRepository(client *pkgmongo.InstrumentedClient) *CarrierRequestStatRepository {
	return &CarrierRequestStatRepository{collection: client.Collection(StatsCollection)}
}

// Find returns nil without error when no request was sent to the carrier yet
func (r *CarrierRequestStatRepository) Find(ctx context.Context, shippingID, carrierID string) (*domain.CarrierRequestDatesStat, error) {
	var stat domain.CarrierRequestDatesStat
	err := r.collection.FindOne(ctx, bson.M{"shippingId": shippingID, "carrierId": carrierID}, &stat)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find carrier request stat: %w", err)
	}
	return &stat, nil
}

// HistoryRepository reads the append-only audit trail
type HistoryRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

func NewHistoryRepository(client *pkgmongo.InstrumentedClient) *HistoryRepository {
	return &HistoryRepository{collection: client.Collection(HistoryCollection)}
}

// ListByEntity returns the entries of one order or shipping, oldest first
func (r *HistoryRepository) ListByEntity(ctx context.Context, entityID string) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	opts := options.Find().SetSort(pkgmongo.SortAscending("createdAt"))
	if err := r.collection.FindAll(ctx, bson.M{"entityId": entityID}, &entries, opts); err != nil {
		return nil, fmt.Errorf("failed to list history of %s: %w", entityID, err)
	}
	return entries, nil
}
