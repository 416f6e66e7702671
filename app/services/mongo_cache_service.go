package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kruegge82/adressCorrector/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const addressCacheCollection = "address_cache"

// MongoCacheService keeps correction results in a MongoDB collection.
// Entries expire through a TTL index on created_at.
type MongoCacheService struct {
	collection *mongo.Collection
	ttl        time.Duration
	logger     *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMongoCacheService creates the service and its indexes.
func NewMongoCacheService(db *mongo.Database, ttl time.Duration, logger *zap.Logger) (*MongoCacheService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	collection := db.Collection(addressCacheCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{bson.E{Key: "status", Value: 1}},
		},
	}
	if ttl > 0 {
		indexModels = append(indexModels, mongo.IndexModel{
			Keys:    bson.D{bson.E{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl / time.Second)),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("cannot create address_cache indexes", zap.Error(err))
	}

	return &MongoCacheService{
		collection: collection,
		ttl:        ttl,
		logger:     logger,
	}, nil
}

func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.CorrectionResult, bool, error) {
	var entry models.AddressCache
	err := mcs.collection.FindOne(ctx, bson.M{"fingerprint": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		mcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query mongo cache: %w", err)
	}

	// The TTL monitor runs once a minute, so stale entries can still be read.
	if entry.IsExpired(mcs.ttl) {
		mcs.misses.Add(1)
		return nil, false, nil
	}

	mcs.hits.Add(1)
	go mcs.updateAccessStats(entry.ID)

	return &entry.Result, true, nil
}

func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.CorrectionResult) error {
	if result == nil {
		return nil
	}
	entry := models.NewAddressCache(key, *result)

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"fingerprint": key}, entry, opts); err != nil {
		mcs.logger.Error("mongo cache write failed", zap.Error(err), zap.String("fingerprint", key))
		return fmt.Errorf("write mongo cache: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"fingerprint": key}); err != nil {
		return fmt.Errorf("delete from mongo cache: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	res, err := mcs.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("clear mongo cache: %w", err)
	}
	mcs.hits.Store(0)
	mcs.misses.Store(0)
	mcs.logger.Info("mongo cache cleared", zap.Int64("deleted_count", res.DeletedCount))
	return nil
}

func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	count, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count mongo cache entries: %w", err)
	}
	hits, misses := mcs.hits.Load(), mcs.misses.Load()
	return &CacheStats{
		Backend:    "mongo",
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: count,
	}, nil
}

// Close is a no-op; the client belongs to the caller.
func (mcs *MongoCacheService) Close() error { return nil }

func (mcs *MongoCacheService) updateAccessStats(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		mcs.logger.Warn("cannot update cache access stats", zap.Error(err))
	}
}
