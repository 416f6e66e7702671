package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/internal/normalizer"
	ms "github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const batchSize = 1000

var reDocID = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// CitySearcher searches city names in a Meilisearch index.
type CitySearcher struct {
	client    ms.ServiceManager
	logger    *zap.Logger
	indexName string
}

// NewCitySearcher connects to Meilisearch and checks its health.
func NewCitySearcher(cfg SearchConfig, logger *zap.Logger) (*CitySearcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.IndexName == "" {
		cfg.IndexName = "cities"
	}
	return &CitySearcher{
		client:    client,
		logger:    logger,
		indexName: cfg.IndexName,
	}, nil
}

// Ping checks that Meilisearch answers.
func (cs *CitySearcher) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := cs.client.Health()
	return err
}

// SearchCities returns up to limit cities whose name resembles query.
func (cs *CitySearcher) SearchCities(ctx context.Context, query string, limit int) ([]models.CityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := &ms.SearchRequest{Limit: int64(limit)}
	start := time.Now()
	result, err := cs.client.Index(cs.indexName).Search(normalizer.Fold(query), req)
	if err != nil {
		return nil, fmt.Errorf("meilisearch city search: %w", err)
	}
	cities := parseHits(result.Hits)
	cs.logger.Debug("city search",
		zap.String("query", query),
		zap.Int("hits", len(cities)),
		zap.Duration("took", time.Since(start)))
	return cities, nil
}

func parseHits(hits []interface{}) []models.CityRecord {
	cities := make([]models.CityRecord, 0, len(hits))
	for _, hit := range hits {
		m, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		var c models.CityRecord
		if v, ok := m["name"].(string); ok {
			c.Name = v
		}
		if v, ok := m["postal_code"].(string); ok {
			c.PostalCode = v
		}
		if v, ok := m["normalized_name"].(string); ok {
			c.NormalizedName = v
		}
		if v, ok := m["region"].(string); ok {
			c.Region = v
		}
		if c.Name != "" {
			cities = append(cities, c)
		}
	}
	return cities
}

// CityDocuments converts city records into index documents with a stable id.
func CityDocuments(cities []models.CityRecord) []map[string]interface{} {
	docs := make([]map[string]interface{}, 0, len(cities))
	for _, c := range cities {
		folded := normalizer.Fold(c.Name)
		docs = append(docs, map[string]interface{}{
			"id":              reDocID.ReplaceAllString(c.PostalCode+"-"+folded, "_"),
			"name":            c.Name,
			"postal_code":     c.PostalCode,
			"normalized_name": folded,
			"region":          c.Region,
		})
	}
	return docs
}

// IndexCities configures the index and uploads cities in batches.
func (cs *CitySearcher) IndexCities(ctx context.Context, cities []models.CityRecord) error {
	if len(cities) == 0 {
		return errors.New("no cities to index")
	}
	index := cs.client.Index(cs.indexName)

	task, err := index.UpdateSettings(&ms.Settings{
		SearchableAttributes: []string{"normalized_name", "name"},
		FilterableAttributes: []string{"postal_code", "region"},
	})
	if err != nil {
		return fmt.Errorf("configure city index: %w", err)
	}
	if err := cs.waitForTask(ctx, task.TaskUID); err != nil {
		return err
	}

	docs := CityDocuments(cities)
	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))
		task, err := index.AddDocuments(docs[i:end], "id")
		if err != nil {
			return fmt.Errorf("add city documents %d-%d: %w", i, end, err)
		}
		cs.logger.Info("indexed city batch",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}
	return nil
}

func (cs *CitySearcher) waitForTask(ctx context.Context, uid int64) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		info, err := cs.client.GetTask(uid)
		if err != nil {
			return fmt.Errorf("check meilisearch task %d: %w", uid, err)
		}
		switch info.Status {
		case "succeeded":
			return nil
		case "failed", "canceled":
			return fmt.Errorf("meilisearch task %d ended with status %s", uid, info.Status)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
