package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	pkgmongo "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/mongodb"
)

// ShippingRepository implements domain.ShippingRepository using MongoDB
type ShippingRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

// NewShippingRepository creates a new ShippingRepository
func NewShippingRepository(client *pkgmongo.InstrumentedClient) *ShippingRepository {
	return &ShippingRepository{collection: client.Collection(ShippingsCollection)}
}

// FindByID retrieves a shipping; a missing one is domain.ErrShippingNotFound
func (r *ShippingRepository) FindByID(ctx context.Context, id string) (*domain.Shipping, error) {
	var shipping domain.Shipping
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}, &shipping); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrShippingNotFound, id)
		}
		return nil, fmt.Errorf("failed to find shipping %s: %w", id, err)
	}
	return &shipping, nil
}

// FindByIDs retrieves the shippings that exist among ids
func (r *ShippingRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Shipping, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var shippings []*domain.Shipping
	if err := r.collection.FindAll(ctx, bson.M{"_id": pkgmongo.In(ids)}, &shippings); err != nil {
		return nil, fmt.Errorf("failed to find shippings: %w", err)
	}
	return shippings, nil
}

// Count returns the number of shippings ever created. Shippings are never
// deleted, so this seeds the shipping number sequence.
func (r *ShippingRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count shippings: %w", err)
	}
	return n, nil
}
