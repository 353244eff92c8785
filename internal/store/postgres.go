package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mobiletools/catalog-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// for tests.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	company_id   BIGSERIAL PRIMARY KEY,
	company_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS processors (
	processor_id   BIGSERIAL PRIMARY KEY,
	processor_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS regions (
	region_id   BIGSERIAL PRIMARY KEY,
	region_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS models (
	model_id         BIGSERIAL PRIMARY KEY,
	model_name       TEXT NOT NULL,
	company_id       BIGINT NOT NULL REFERENCES companies(company_id) ON DELETE CASCADE,
	processor_id     BIGINT REFERENCES processors(processor_id),
	mobile_weight    TEXT,
	ram              TEXT,
	front_camera     TEXT,
	back_camera      TEXT,
	battery_capacity TEXT,
	screen_size      TEXT,
	launched_year    INTEGER
);

CREATE TABLE IF NOT EXISTS prices (
	price_id  BIGSERIAL PRIMARY KEY,
	model_id  BIGINT NOT NULL REFERENCES models(model_id) ON DELETE CASCADE,
	region_id BIGINT NOT NULL REFERENCES regions(region_id),
	price     NUMERIC(12,2) NOT NULL,
	UNIQUE (model_id, region_id)
);

CREATE INDEX IF NOT EXISTS idx_models_company_id ON models(company_id);
CREATE INDEX IF NOT EXISTS idx_models_name_company ON models(model_name, company_id);
CREATE INDEX IF NOT EXISTS idx_prices_model_id ON prices(model_id);

INSERT INTO regions (region_name) VALUES
	('Pakistan'), ('India'), ('China'), ('USA'), ('Dubai')
ON CONFLICT (region_name) DO NOTHING;
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// withTx runs fn in one transaction, committing on success and rolling
// back on any error exit path.
func (s *PostgresStore) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	if err := fn(tx); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit tx")
}

// --- Companies ---

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]model.CompanyListItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.company_id, c.company_name, COUNT(m.model_id) AS models_count
		FROM companies c
		LEFT JOIN models m ON c.company_id = m.company_id
		GROUP BY c.company_id, c.company_name
		ORDER BY c.company_name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var items []model.CompanyListItem
	for rows.Next() {
		var it model.CompanyListItem
		if err := rows.Scan(&it.ID, &it.Name, &it.ModelsCount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

func (s *PostgresStore) AddCompany(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO companies (company_name) VALUES ($1) RETURNING company_id`,
			name,
		).Scan(&id)
		return eris.Wrapf(err, "postgres: insert company %q", name)
	})
	return id, err
}

func (s *PostgresStore) RenameCompany(ctx context.Context, id int64, name string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE companies SET company_name = $1 WHERE company_id = $2`, name, id)
		if err != nil {
			return eris.Wrapf(err, "postgres: rename company %d", id)
		}
		return checkTagAffected(tag, "company")
	})
}

func (s *PostgresStore) DeleteCompany(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM companies WHERE company_id = $1`, id)
		if err != nil {
			return eris.Wrapf(err, "postgres: delete company %d", id)
		}
		return checkTagAffected(tag, "company")
	})
}

// --- Models ---

const postgresModelListQuery = `
	SELECT
		m.model_id, m.model_name, c.company_name, pr.processor_name,
		m.mobile_weight, m.ram, m.front_camera, m.back_camera,
		m.battery_capacity, m.screen_size, m.launched_year,
		COUNT(DISTINCT p.region_id) AS price_regions
	FROM models m
	JOIN companies c ON m.company_id = c.company_id
	LEFT JOIN processors pr ON m.processor_id = pr.processor_id
	LEFT JOIN prices p ON m.model_id = p.model_id`

func (s *PostgresStore) ListModels(ctx context.Context, companyID *int64) ([]model.DeviceListItem, error) {
	query := postgresModelListQuery
	var args []any
	if companyID != nil {
		query += ` WHERE m.company_id = $1`
		args = append(args, *companyID)
	}
	query += ` GROUP BY m.model_id, c.company_name, pr.processor_name
		ORDER BY c.company_name, m.model_name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list models")
	}
	defer rows.Close()

	var items []model.DeviceListItem
	for rows.Next() {
		var it model.DeviceListItem
		if err := rows.Scan(
			&it.ID, &it.Name, &it.CompanyName, &it.ProcessorName,
			&it.MobileWeight, &it.RAM, &it.FrontCamera, &it.BackCamera,
			&it.BatteryCapacity, &it.ScreenSize, &it.LaunchedYear,
			&it.PriceRegions,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan model")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "postgres: list models iterate")
}

func (s *PostgresStore) GetModel(ctx context.Context, id int64) (*model.Device, error) {
	var d model.Device
	err := s.pool.QueryRow(ctx, `
		SELECT
			m.model_id, m.model_name, m.company_id, c.company_name,
			m.processor_id, pr.processor_name, m.mobile_weight, m.ram,
			m.front_camera, m.back_camera, m.battery_capacity,
			m.screen_size, m.launched_year
		FROM models m
		JOIN companies c ON m.company_id = c.company_id
		LEFT JOIN processors pr ON m.processor_id = pr.processor_id
		WHERE m.model_id = $1`, id,
	).Scan(
		&d.ID, &d.Name, &d.CompanyID, &d.CompanyName,
		&d.ProcessorID, &d.ProcessorName, &d.MobileWeight, &d.RAM,
		&d.FrontCamera, &d.BackCamera, &d.BatteryCapacity,
		&d.ScreenSize, &d.LaunchedYear,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get model %d", id)
	}
	return &d, nil
}

func (s *PostgresStore) AddModel(ctx context.Context, in model.DeviceInput) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		processorID, err := getOrCreateProcessorPostgres(ctx, tx, in.ProcessorName)
		if err != nil {
			return err
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO models
				(model_name, company_id, processor_id, mobile_weight, ram,
				 front_camera, back_camera, battery_capacity, screen_size, launched_year)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING model_id`,
			in.Name, in.CompanyID, processorID, in.MobileWeight, in.RAM,
			in.FrontCamera, in.BackCamera, in.BatteryCapacity, in.ScreenSize, in.LaunchedYear,
		).Scan(&id)
		return eris.Wrapf(err, "postgres: insert model %q", in.Name)
	})
	return id, err
}

func (s *PostgresStore) UpdateModel(ctx context.Context, id int64, in model.DeviceInput) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		processorID, err := getOrCreateProcessorPostgres(ctx, tx, in.ProcessorName)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE models SET
				model_name = $1, company_id = $2, processor_id = $3,
				mobile_weight = $4, ram = $5, front_camera = $6, back_camera = $7,
				battery_capacity = $8, screen_size = $9, launched_year = $10
			WHERE model_id = $11`,
			in.Name, in.CompanyID, processorID, in.MobileWeight, in.RAM,
			in.FrontCamera, in.BackCamera, in.BatteryCapacity, in.ScreenSize,
			in.LaunchedYear, id,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: update model %d", id)
		}
		return checkTagAffected(tag, "model")
	})
}

func (s *PostgresStore) DeleteModel(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM models WHERE model_id = $1`, id)
		if err != nil {
			return eris.Wrapf(err, "postgres: delete model %d", id)
		}
		return checkTagAffected(tag, "model")
	})
}

func (s *PostgresStore) SearchModels(ctx context.Context, query string) ([]model.SearchResult, error) {
	pattern := "%" + query + "%"
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT
			m.model_id, m.model_name, c.company_name,
			m.ram, m.battery_capacity, m.launched_year
		FROM models m
		JOIN companies c ON m.company_id = c.company_id
		WHERE
			m.model_name ILIKE $1 OR
			c.company_name ILIKE $1 OR
			m.ram ILIKE $1 OR
			m.battery_capacity ILIKE $1
		ORDER BY c.company_name, m.model_name
		LIMIT 100`,
		pattern)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search models")
	}
	defer rows.Close()

	var results []model.SearchResult
	for rows.Next() {
		var r model.SearchResult
		if err := rows.Scan(&r.ID, &r.Name, &r.CompanyName, &r.RAM, &r.BatteryCapacity, &r.LaunchedYear); err != nil {
			return nil, eris.Wrap(err, "postgres: scan search result")
		}
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "postgres: search models iterate")
}

// --- Prices ---

func (s *PostgresStore) ListModelPrices(ctx context.Context, modelID int64) ([]model.PriceListItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.price_id, p.model_id, p.region_id, r.region_name, p.price
		FROM prices p
		JOIN regions r ON p.region_id = r.region_id
		WHERE p.model_id = $1
		ORDER BY r.region_name`, modelID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list prices for model %d", modelID)
	}
	defer rows.Close()

	var items []model.PriceListItem
	for rows.Next() {
		var it model.PriceListItem
		if err := rows.Scan(&it.ID, &it.ModelID, &it.RegionID, &it.RegionName, &it.Amount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan price")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "postgres: list prices iterate")
}

func (s *PostgresStore) UpsertPrice(ctx context.Context, modelID, regionID int64, amount float64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO prices (model_id, region_id, price)
			VALUES ($1, $2, $3)
			ON CONFLICT (model_id, region_id)
			DO UPDATE SET price = EXCLUDED.price`,
			modelID, regionID, amount)
		return eris.Wrapf(err, "postgres: upsert price for model %d region %d", modelID, regionID)
	})
}

func (s *PostgresStore) DeletePrice(ctx context.Context, priceID int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM prices WHERE price_id = $1`, priceID)
		if err != nil {
			return eris.Wrapf(err, "postgres: delete price %d", priceID)
		}
		return checkTagAffected(tag, "price")
	})
}

// --- Reference data ---

func (s *PostgresStore) ListRegions(ctx context.Context) ([]model.Region, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT region_id, region_name FROM regions ORDER BY region_name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list regions")
	}
	defer rows.Close()

	var regions []model.Region
	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan region")
		}
		regions = append(regions, r)
	}
	return regions, eris.Wrap(rows.Err(), "postgres: list regions iterate")
}

func (s *PostgresStore) ListProcessors(ctx context.Context) ([]model.Processor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT processor_id, processor_name FROM processors ORDER BY processor_name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list processors")
	}
	defer rows.Close()

	var procs []model.Processor
	for rows.Next() {
		var p model.Processor
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan processor")
		}
		procs = append(procs, p)
	}
	return procs, eris.Wrap(rows.Err(), "postgres: list processors iterate")
}

func (s *PostgresStore) GetOrCreateProcessor(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		pid, err := getOrCreateProcessorPostgres(ctx, tx, &name)
		if err != nil {
			return err
		}
		if pid == nil {
			return eris.New("postgres: processor name is empty")
		}
		id = *pid
		return nil
	})
	return id, err
}

func getOrCreateProcessorPostgres(ctx context.Context, tx pgx.Tx, name *string) (*int64, error) {
	if name == nil || *name == "" {
		return nil, nil
	}
	var id int64
	err := tx.QueryRow(ctx,
		`SELECT processor_id FROM processors WHERE processor_name = $1`, *name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx,
			`INSERT INTO processors (processor_name) VALUES ($1) RETURNING processor_id`, *name).Scan(&id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get or create processor %q", *name)
	}
	return &id, nil
}

// --- Analytics ---

func (s *PostgresStore) PriceStatistics(ctx context.Context) ([]model.RegionStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			r.region_name,
			COUNT(p.price_id) AS models_count,
			AVG(p.price)::float8 AS avg_price,
			MIN(p.price)::float8 AS min_price,
			MAX(p.price)::float8 AS max_price
		FROM prices p
		JOIN regions r ON p.region_id = r.region_id
		GROUP BY r.region_name
		ORDER BY avg_price DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: price statistics")
	}
	defer rows.Close()

	var stats []model.RegionStats
	for rows.Next() {
		var st model.RegionStats
		if err := rows.Scan(&st.RegionName, &st.ModelsCount, &st.AvgPrice, &st.MinPrice, &st.MaxPrice); err != nil {
			return nil, eris.Wrap(err, "postgres: scan region stats")
		}
		stats = append(stats, st)
	}
	return stats, eris.Wrap(rows.Err(), "postgres: price statistics iterate")
}

// helpers

func checkTagAffected(tag pgconn.CommandTag, entity string) error {
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "%s", entity)
	}
	return nil
}
