package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kruegge82/adressCorrector/app/models"
	"go.uber.org/zap"
)

// Schema creates the reference tables used by PostgresRepository.
const Schema = `
CREATE TABLE IF NOT EXISTS ref_cities (
	name            TEXT NOT NULL,
	postal_code     TEXT NOT NULL,
	normalized_name TEXT NOT NULL,
	region          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS ref_cities_postal_code ON ref_cities (postal_code);
CREATE INDEX IF NOT EXISTS ref_cities_region ON ref_cities (region);
CREATE INDEX IF NOT EXISTS ref_cities_normalized_name ON ref_cities (normalized_name text_pattern_ops);

CREATE TABLE IF NOT EXISTS ref_streets (
	current_name TEXT NOT NULL,
	old_name     TEXT,
	postal_code  TEXT NOT NULL,
	version      INTEGER NOT NULL DEFAULT 1,
	status       TEXT NOT NULL DEFAULT 'active',
	name_key     TEXT NOT NULL,
	old_name_key TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS ref_streets_postal_code ON ref_streets (postal_code);

CREATE TABLE IF NOT EXISTS ref_districts (
	name        TEXT NOT NULL,
	city        TEXT NOT NULL DEFAULT '',
	postal_code TEXT NOT NULL,
	street      TEXT NOT NULL DEFAULT '',
	street_key  TEXT NOT NULL DEFAULT '',
	version     INTEGER NOT NULL DEFAULT 1,
	status      TEXT NOT NULL DEFAULT 'active'
);
CREATE INDEX IF NOT EXISTS ref_districts_lookup ON ref_districts (postal_code, street_key, version DESC);
`

const (
	selectCities    = `SELECT name, postal_code, normalized_name, region FROM ref_cities`
	selectStreets   = `SELECT current_name, old_name, postal_code, version, status, name_key, old_name_key FROM ref_streets`
	selectDistricts = `SELECT name, city, postal_code, street, street_key, version, status FROM ref_districts`
)

// PostgresRepository reads reference data from PostgreSQL through a pgx pool.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresRepository opens a pool for databaseURL and checks connectivity.
func NewPostgresRepository(ctx context.Context, databaseURL string, logger *zap.Logger) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresRepository{pool: pool, logger: logger}, nil
}

// Ping checks that the database answers.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
}

// EnsureSchema creates the reference tables if they are missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create reference schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CitiesByPostalCode(ctx context.Context, postalCode string) ([]models.CityRecord, error) {
	return r.queryCities(ctx, selectCities+` WHERE postal_code = $1`, postalCode)
}

func (r *PostgresRepository) CitiesByRegion(ctx context.Context, region string) ([]models.CityRecord, error) {
	return r.queryCities(ctx, selectCities+` WHERE region = $1`, region)
}

func (r *PostgresRepository) CitiesByNamePrefix(ctx context.Context, prefix string, limit int) ([]models.CityRecord, error) {
	if prefix == "" {
		return nil, nil
	}
	return r.queryCities(ctx, selectCities+` WHERE starts_with(normalized_name, $1) ORDER BY length(name) LIMIT $2`, prefix, limit)
}

func (r *PostgresRepository) queryCities(ctx context.Context, sql string, args ...any) ([]models.CityRecord, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	var out []models.CityRecord
	for rows.Next() {
		var c models.CityRecord
		if err := rows.Scan(&c.Name, &c.PostalCode, &c.NormalizedName, &c.Region); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) StreetsByPostalCode(ctx context.Context, postalCode string) ([]models.StreetRecord, error) {
	rows, err := r.pool.Query(ctx, selectStreets+` WHERE postal_code = $1 ORDER BY version DESC`, postalCode)
	if err != nil {
		return nil, fmt.Errorf("query streets: %w", err)
	}
	defer rows.Close()

	var out []models.StreetRecord
	for rows.Next() {
		var s models.StreetRecord
		if err := rows.Scan(&s.CurrentName, &s.OldName, &s.PostalCode, &s.Version, &s.Status, &s.NameKey, &s.OldNameKey); err != nil {
			return nil, fmt.Errorf("scan street: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) DistrictByStreet(ctx context.Context, postalCode, streetKey string) (*models.DistrictRecord, error) {
	return r.queryDistrict(ctx, selectDistricts+` WHERE postal_code = $1 AND street_key = $2 ORDER BY version DESC LIMIT 1`, postalCode, streetKey)
}

func (r *PostgresRepository) DistrictByPostalCode(ctx context.Context, postalCode string) (*models.DistrictRecord, error) {
	return r.queryDistrict(ctx, selectDistricts+` WHERE postal_code = $1 AND street_key = '' AND status = 'active' ORDER BY version DESC LIMIT 1`, postalCode)
}

func (r *PostgresRepository) queryDistrict(ctx context.Context, sql string, args ...any) (*models.DistrictRecord, error) {
	var d models.DistrictRecord
	err := r.pool.QueryRow(ctx, sql, args...).Scan(&d.Name, &d.City, &d.PostalCode, &d.Street, &d.StreetKey, &d.Version, &d.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query district: %w", err)
	}
	return &d, nil
}

// Seed replaces the reference tables with data in one transaction.
func (r *PostgresRepository) Seed(ctx context.Context, data models.Dataset) error {
	data = Prepare(data)
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE ref_cities, ref_streets, ref_districts`); err != nil {
		return fmt.Errorf("truncate reference tables: %w", err)
	}

	batch := &pgx.Batch{}
	for _, c := range data.Cities {
		batch.Queue(`INSERT INTO ref_cities (name, postal_code, normalized_name, region) VALUES ($1, $2, $3, $4)`,
			c.Name, c.PostalCode, c.NormalizedName, c.Region)
	}
	for _, s := range data.Streets {
		batch.Queue(`INSERT INTO ref_streets (current_name, old_name, postal_code, version, status, name_key, old_name_key) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.CurrentName, s.OldName, s.PostalCode, s.Version, s.Status, s.NameKey, s.OldNameKey)
	}
	for _, d := range data.Districts {
		batch.Queue(`INSERT INTO ref_districts (name, city, postal_code, street, street_key, version, status) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			d.Name, d.City, d.PostalCode, d.Street, d.StreetKey, d.Version, d.Status)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert reference data: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	r.logger.Info("seeded reference data",
		zap.Int("cities", len(data.Cities)),
		zap.Int("streets", len(data.Streets)),
		zap.Int("districts", len(data.Districts)))
	return nil
}
