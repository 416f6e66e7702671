package reference

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/kruegge82/adressCorrector/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	collectionCities    = "cities"
	collectionStreets   = "streets"
	collectionDistricts = "districts"
)

// MongoRepository reads reference data from three MongoDB collections.
type MongoRepository struct {
	cities    *mongo.Collection
	streets   *mongo.Collection
	districts *mongo.Collection
	logger    *zap.Logger
}

// NewMongoRepository creates a repository on db and ensures its indexes.
func NewMongoRepository(db *mongo.Database, logger *zap.Logger) *MongoRepository {
	r := &MongoRepository{
		cities:    db.Collection(collectionCities),
		streets:   db.Collection(collectionStreets),
		districts: db.Collection(collectionDistricts),
		logger:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.EnsureIndexes(ctx); err != nil {
		logger.Warn("could not create reference indexes", zap.Error(err))
	}
	return r
}

// EnsureIndexes creates the lookup indexes of all collections.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		r.cities: {
			{Keys: bson.D{{Key: "postal_code", Value: 1}}},
			{Keys: bson.D{{Key: "region", Value: 1}}},
			{Keys: bson.D{{Key: "normalized_name", Value: 1}}},
		},
		r.streets: {
			{Keys: bson.D{{Key: "postal_code", Value: 1}, {Key: "name_key", Value: 1}}},
		},
		r.districts: {
			{Keys: bson.D{{Key: "postal_code", Value: 1}, {Key: "street_key", Value: 1}, {Key: "version", Value: -1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (r *MongoRepository) CitiesByPostalCode(ctx context.Context, postalCode string) ([]models.CityRecord, error) {
	return findAll[models.CityRecord](ctx, r.cities, bson.M{"postal_code": postalCode})
}

func (r *MongoRepository) CitiesByRegion(ctx context.Context, region string) ([]models.CityRecord, error) {
	return findAll[models.CityRecord](ctx, r.cities, bson.M{"region": region})
}

func (r *MongoRepository) CitiesByNamePrefix(ctx context.Context, prefix string, limit int) ([]models.CityRecord, error) {
	if prefix == "" {
		return nil, nil
	}
	filter := bson.M{"normalized_name": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	opts := options.Find().SetLimit(int64(limit))
	return findAll[models.CityRecord](ctx, r.cities, filter, opts)
}

func (r *MongoRepository) StreetsByPostalCode(ctx context.Context, postalCode string) ([]models.StreetRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version", Value: -1}})
	return findAll[models.StreetRecord](ctx, r.streets, bson.M{"postal_code": postalCode}, opts)
}

func (r *MongoRepository) DistrictByStreet(ctx context.Context, postalCode, streetKey string) (*models.DistrictRecord, error) {
	return r.findDistrict(ctx, bson.M{"postal_code": postalCode, "street_key": streetKey})
}

func (r *MongoRepository) DistrictByPostalCode(ctx context.Context, postalCode string) (*models.DistrictRecord, error) {
	return r.findDistrict(ctx, bson.M{"postal_code": postalCode, "street_key": "", "status": "active"})
}

func (r *MongoRepository) findDistrict(ctx context.Context, filter bson.M) (*models.DistrictRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	var d models.DistrictRecord
	if err := r.districts.FindOne(ctx, filter, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query districts: %w", err)
	}
	return &d, nil
}

// Seed replaces all reference collections with data.
func (r *MongoRepository) Seed(ctx context.Context, data models.Dataset) error {
	data = Prepare(data)
	if err := replaceAll(ctx, r.cities, data.Cities); err != nil {
		return err
	}
	if err := replaceAll(ctx, r.streets, data.Streets); err != nil {
		return err
	}
	if err := replaceAll(ctx, r.districts, data.Districts); err != nil {
		return err
	}
	r.logger.Info("seeded reference data",
		zap.Int("cities", len(data.Cities)),
		zap.Int("streets", len(data.Streets)),
		zap.Int("districts", len(data.Districts)))
	return nil
}

func replaceAll[T any](ctx context.Context, coll *mongo.Collection, records []T) error {
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear %s: %w", coll.Name(), err)
	}
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}
