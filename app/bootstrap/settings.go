// Package bootstrap builds the service graph from configuration. It is shared
// by the HTTP server and the command line tool.
package bootstrap

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings is the infrastructure configuration read through viper.
type Settings struct {
	Port string
	Env  string

	CorrectorFile string

	ReferenceBackend string
	ReferenceFile    string
	LookupCacheSize  int

	MongoURL      string
	MongoDatabase string
	PostgresURL   string
	RedisURL      string

	MeiliURL   string
	MeiliKey   string
	MeiliIndex string

	CacheBackend string
	CacheL1Size  int
	CacheTTL     time.Duration

	RateLimit      float64
	Burst          int
	RequestTimeout time.Duration
	JobRetention   time.Duration
}

// LoadConfig reads config/app.yaml (or configFile when set) and the
// environment. APP_PORT overrides app.port and so on.
func LoadConfig(configFile string) Settings {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("app")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	}

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("corrector.file", "config/corrector.yaml")
	viper.SetDefault("reference.backend", "memory")
	viper.SetDefault("reference.file", "config/reference.sample.yaml")
	viper.SetDefault("reference.cache_size", 4096)
	viper.SetDefault("mongo.url", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "address_corrector")
	viper.SetDefault("postgres.url", "postgres://localhost:5432/address_corrector")
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("meilisearch.url", "")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("meilisearch.index", "cities")
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.l1_size", 10000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("http.rate_limit", 50.0)
	viper.SetDefault("http.burst", 100)
	viper.SetDefault("http.timeout", "1500ms")
	viper.SetDefault("jobs.retention", "1h")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: cannot read config file: %v", err)
	}

	return Settings{
		Port:             viper.GetString("app.port"),
		Env:              viper.GetString("app.env"),
		CorrectorFile:    viper.GetString("corrector.file"),
		ReferenceBackend: strings.ToLower(viper.GetString("reference.backend")),
		ReferenceFile:    viper.GetString("reference.file"),
		LookupCacheSize:  viper.GetInt("reference.cache_size"),
		MongoURL:         viper.GetString("mongo.url"),
		MongoDatabase:    viper.GetString("mongo.database"),
		PostgresURL:      viper.GetString("postgres.url"),
		RedisURL:         viper.GetString("redis.url"),
		MeiliURL:         viper.GetString("meilisearch.url"),
		MeiliKey:         viper.GetString("meilisearch.master_key"),
		MeiliIndex:       viper.GetString("meilisearch.index"),
		CacheBackend:     strings.ToLower(viper.GetString("cache.backend")),
		CacheL1Size:      viper.GetInt("cache.l1_size"),
		CacheTTL:         viper.GetDuration("cache.ttl"),
		RateLimit:        viper.GetFloat64("http.rate_limit"),
		Burst:            viper.GetInt("http.burst"),
		RequestTimeout:   viper.GetDuration("http.timeout"),
		JobRetention:     viper.GetDuration("jobs.retention"),
	}
}

// InitLogger builds a production logger when env is "production" and a
// development logger otherwise.
func InitLogger(env string) (*zap.Logger, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("cannot initialize logger: %w", err)
	}
	return logger, nil
}

// GetEnv returns the environment variable key or defaultValue when unset.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
