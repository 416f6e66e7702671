// Package search wraps the Meilisearch city index used as a fuzzy fallback
// for city names that the reference store cannot resolve by postal code.
package search

import (
	"fmt"
	"net/http"
	"time"

	ms "github.com/meilisearch/meilisearch-go"
)

// SearchConfig configures the Meilisearch connection.
type SearchConfig struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// newClient applies cfg.Timeout to every request through the HTTP client.
func newClient(cfg SearchConfig) (ms.ServiceManager, error) {
	client := ms.New(cfg.Host,
		ms.WithAPIKey(cfg.APIKey),
		ms.WithCustomClient(&http.Client{Timeout: cfg.Timeout}))
	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("cannot reach meilisearch at %s: %w", cfg.Host, err)
	}
	return client, nil
}
