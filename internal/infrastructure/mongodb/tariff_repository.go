package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Muradin-Botashev/tms-lite-roust-sub001/internal/domain"
	pkgmongo "github.com/Muradin-Botashev/tms-lite-roust-sub001/pkg/mongodb"
)

// TariffRepository implements domain.TariffRepository using MongoDB
type TariffRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

// NewTariffRepository creates a new TariffRepository
func NewTariffRepository(client *pkgmongo.InstrumentedClient) *TariffRepository {
	return &TariffRepository{collection: client.Collection(TariffsCollection)}
}

// FindByID retrieves a tariff; a missing one is domain.ErrTariffNotFound
func (r *TariffRepository) FindByID(ctx context.Context, id string) (*domain.Tariff, error) {
	var tariff domain.Tariff
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}, &tariff); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTariffNotFound, id)
		}
		return nil, fmt.Errorf("failed to find tariff %s: %w", id, err)
	}
	return &tariff, nil
}

// FindActive returns tariffs whose effective range covers date, ordered by id
// so tie-breaking downstream stays deterministic
func (r *TariffRepository) FindActive(ctx context.Context, date time.Time) ([]*domain.Tariff, error) {
	filter := bson.M{
		"effectiveDate":  bson.M{"$lte": date},
		"expirationDate": bson.M{"$gte": date},
	}
	return r.find(ctx, filter)
}

// FindByTariffication returns every tariff of one tariffication type
func (r *TariffRepository) FindByTariffication(ctx context.Context, t domain.TarifficationType) ([]*domain.Tariff, error) {
	return r.find(ctx, bson.M{"tarifficationType": t})
}

func (r *TariffRepository) find(ctx context.Context, filter bson.M) ([]*domain.Tariff, error) {
	var tariffs []*domain.Tariff
	opts := options.Find().SetSort(pkgmongo.SortAscending("_id"))
	if err := r.collection.FindAll(ctx, filter, &tariffs, opts); err != nil {
		return nil, fmt.Errorf("failed to find tariffs: %w", err)
	}
	return tariffs, nil
}
