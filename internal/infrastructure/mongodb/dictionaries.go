package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	pkgmongo "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/mongodb"
)

// Dictionaries implements domain.Dictionaries over the reference collections.
// The core only reads them; they are maintained elsewhere.
type Dictionaries struct {
	companies    *pkgmongo.InstrumentedCollection
	warehouses   *pkgmongo.InstrumentedCollection
	carriers     *pkgmongo.InstrumentedCollection
	vehicleTypes *pkgmongo.InstrumentedCollection
	bodyTypes    *pkgmongo.InstrumentedCollection
}

// NewDictionaries creates the dictionary reader
func NewDictionaries(client *pkgmongo.InstrumentedClient) *Dictionaries {
	return &Dictionaries{
		companies:    client.Collection(CompaniesCollection),
		warehouses:   client.Collection(WarehousesCollection),
		carriers:     client.Collection(CarriersCollection),
		vehicleTypes: client.Collection(VehicleTypesCollection),
		bodyTypes:    client.Collection(BodyTypesCollection),
	}
}

func findOne[T any](ctx context.Context, c *pkgmongo.InstrumentedCollection, id string, missing error) (*T, error) {
	var out T
	if err := c.FindOne(ctx, bson.M{"_id": id}, &out); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", missing, id)
		}
		return nil, fmt.Errorf("failed to read %s %s: %w", c.Name(), id, err)
	}
	return &out, nil
}

func (d *Dictionaries) Company(ctx context.Context, id string) (*domain.Company, error) {
	return findOne[domain.Company](ctx, d.companies, id, domain.ErrCompanyNotFound)
}

func (d *Dictionaries) Warehouse(ctx context.Context, id string) (*domain.Warehouse, error) {
	return findOne[domain.Warehouse](ctx, d.warehouses, id, domain.ErrWarehouseNotFound)
}

func (d *Dictionaries) Carrier(ctx context.Context, id string) (*domain.Carrier, error) {
	return findOne[domain.Carrier](ctx, d.carriers, id, domain.ErrCarrierNotFound)
}

func (d *Dictionaries) VehicleType(ctx context.Context, id string) (*domain.VehicleType, error) {
	return findOne[domain.VehicleType](ctx, d.vehicleTypes, id, domain.ErrVehicleTypeNotFound)
}

func (d *Dictionaries) BodyType(ctx context.Context, id string) (*domain.BodyType, error) {
	return findOne[domain.BodyType](ctx, d.bodyTypes, id, domain.ErrBodyTypeNotFound)
}

// VehicleTypes lists every vehicle type ordered by id
func (d *Dictionaries) VehicleTypes(ctx context.Context) ([]*domain.VehicleType, error) {
	var out []*domain.VehicleType
	opts := options.Find().SetSort(pkgmongo.SortAscending("_id"))
	if err := d.vehicleTypes.FindAll(ctx, bson.M{}, &out, opts); err != nil {
		return nil, fmt.Errorf("failed to list vehicle types: %w", err)
	}
	return out, nil
}
