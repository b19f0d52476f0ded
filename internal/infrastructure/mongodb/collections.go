package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pkgmongo "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/mongodb"
)

// Collection names
const (
	OrdersCollection       = "orders"
	ShippingsCollection    = "shippings"
	TariffsCollection      = "tariffs"
	StatsCollection        = "carrier_request_stats"
	HistoryCollection      = "history"
	CompaniesCollection    = "companies"
	WarehousesCollection   = "warehouses"
	CarriersCollection     = "carriers"
	VehicleTypesCollection = "vehicle_types"
	BodyTypesCollection    = "body_types"
)

// EnsureIndexes creates the indexes every repository relies on
func EnsureIndexes(ctx context.Context, client *pkgmongo.InstrumentedClient) error {
	indexes := map[string][]mongo.IndexModel{
		OrdersCollection: {
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}},
			{Keys: bson.D{{Key: "shippingId", Value: 1}, {Key: "orderNumber", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		ShippingsCollection: {
			{Keys: bson.D{{Key: "shippingNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		TariffsCollection: {
			{Keys: bson.D{{Key: "tarifficationType", Value: 1}}},
			{Keys: bson.D{{Key: "effectiveDate", Value: 1}, {Key: "expirationDate", Value: 1}}},
		},
		StatsCollection: {
			{
				Keys:    bson.D{{Key: "shippingId", Value: 1}, {Key: "carrierId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		HistoryCollection: {
			{Keys: bson.D{{Key: "entityId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if err := client.Collection(name).EnsureIndexes(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
