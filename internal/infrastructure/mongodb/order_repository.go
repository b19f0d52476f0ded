package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	pkgmongo "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/mongodb"
)

// OrderRepository implements domain.OrderRepository using MongoDB
type OrderRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(client *pkgmongo.InstrumentedClient) *OrderRepository {
	return &OrderRepository{collection: client.Collection(OrdersCollection)}
}

// FindByID retrieves an order; a missing order is domain.ErrOrderNotFound
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}, &order); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to find order %s: %w", id, err)
	}
	return &order, nil
}

// FindByIDs retrieves the orders that exist among ids
func (r *OrderRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orders []*domain.Order
	if err := r.collection.FindAll(ctx, bson.M{"_id": pkgmongo.In(ids)}, &orders); err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	return orders, nil
}

// FindByShippingID retrieves the member orders of a shipping by order number
func (r *OrderRepository) FindByShippingID(ctx context.Context, shippingID string) ([]*domain.Order, error) {
	filter := bson.M{"shippingId": shippingID}
	opts := options.Find().SetSort(pkgmongo.SortAscending("orderNumber"))

	var orders []*domain.Order
	if err := r.collection.FindAll(ctx, filter, &orders, opts); err != nil {
		return nil, fmt.Errorf("failed to find orders of shipping %s: %w", shippingID, err)
	}
	return orders, nil
}
