package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mobiletools/catalog-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path. Pragmas ride on the
// DSN so they apply to every pooled connection; foreign_keys must be on or
// the cascade deletes silently stop working.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	company_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	company_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS processors (
	processor_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	processor_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS regions (
	region_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	region_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS models (
	model_id         INTEGER PRIMARY KEY AUTOINCREMENT,
	model_name       TEXT NOT NULL,
	company_id       INTEGER NOT NULL REFERENCES companies(company_id) ON DELETE CASCADE,
	processor_id     INTEGER REFERENCES processors(processor_id),
	mobile_weight    TEXT,
	ram              TEXT,
	front_camera     TEXT,
	back_camera      TEXT,
	battery_capacity TEXT,
	screen_size      TEXT,
	launched_year    INTEGER
);

CREATE TABLE IF NOT EXISTS prices (
	price_id  INTEGER PRIMARY KEY AUTOINCREMENT,
	model_id  INTEGER NOT NULL REFERENCES models(model_id) ON DELETE CASCADE,
	region_id INTEGER NOT NULL REFERENCES regions(region_id),
	price     REAL NOT NULL,
	UNIQUE (model_id, region_id)
);

CREATE INDEX IF NOT EXISTS idx_models_company_id ON models(company_id);
CREATE INDEX IF NOT EXISTS idx_models_name_company ON models(model_name, company_id);
CREATE INDEX IF NOT EXISTS idx_prices_model_id ON prices(model_id);

INSERT OR IGNORE INTO regions (region_name) VALUES
	('Pakistan'), ('India'), ('China'), ('USA'), ('Dubai');
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// withTx runs fn in one transaction, committing on success and rolling
// back on any error exit path.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit tx")
}

// --- Companies ---

func (s *SQLiteStore) ListCompanies(ctx context.Context) ([]model.CompanyListItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.company_id, c.company_name, COUNT(m.model_id) AS models_count
		FROM companies c
		LEFT JOIN models m ON c.company_id = m.company_id
		GROUP BY c.company_id, c.company_name
		ORDER BY c.company_name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var items []model.CompanyListItem
	for rows.Next() {
		var it model.CompanyListItem
		if err := rows.Scan(&it.ID, &it.Name, &it.ModelsCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

func (s *SQLiteStore) AddCompany(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO companies (company_name) VALUES (?) RETURNING company_id`,
			name,
		).Scan(&id)
		return eris.Wrapf(err, "sqlite: insert company %q", name)
	})
	return id, err
}

func (s *SQLiteStore) RenameCompany(ctx context.Context, id int64, name string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE companies SET company_name = ? WHERE company_id = ?`, name, id)
		if err != nil {
			return eris.Wrapf(err, "sqlite: rename company %d", id)
		}
		return checkRowsAffected(res, "company")
	})
}

func (s *SQLiteStore) DeleteCompany(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM companies WHERE company_id = ?`, id)
		if err != nil {
			return eris.Wrapf(err, "sqlite: delete company %d", id)
		}
		return checkRowsAffected(res, "company")
	})
}

// --- Models ---

const sqliteModelListQuery = `
	SELECT
		m.model_id, m.model_name, c.company_name, pr.processor_name,
		m.mobile_weight, m.ram, m.front_camera, m.back_camera,
		m.battery_capacity, m.screen_size, m.launched_year,
		COUNT(DISTINCT p.region_id) AS price_regions
	FROM models m
	JOIN companies c ON m.company_id = c.company_id
	LEFT JOIN processors pr ON m.processor_id = pr.processor_id
	LEFT JOIN prices p ON m.model_id = p.model_id`

func (s *SQLiteStore) ListModels(ctx context.Context, companyID *int64) ([]model.DeviceListItem, error) {
	query := sqliteModelListQuery
	var args []any
	if companyID != nil {
		query += ` WHERE m.company_id = ?`
		args = append(args, *companyID)
	}
	query += ` GROUP BY m.model_id, c.company_name, pr.processor_name
		ORDER BY c.company_name, m.model_name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list models")
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
			return nil, eris.Wrap(err, "sqlite: scan model")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: list models iterate")
}

func (s *SQLiteStore) GetModel(ctx context.Context, id int64) (*model.Device, error) {
	var d model.Device
	err := s.db.QueryRowContext(ctx, `
		SELECT
			m.model_id, m.model_name, m.company_id, c.company_name,
			m.processor_id, pr.processor_name, m.mobile_weight, m.ram,
			m.front_camera, m.back_camera, m.battery_capacity,
			m.screen_size, m.launched_year
		FROM models m
		JOIN companies c ON m.company_id = c.company_id
		LEFT JOIN processors pr ON m.processor_id = pr.processor_id
		WHERE m.model_id = ?`, id,
	).Scan(
		&d.ID, &d.Name, &d.CompanyID, &d.CompanyName,
		&d.ProcessorID, &d.ProcessorName, &d.MobileWeight, &d.RAM,
		&d.FrontCamera, &d.BackCamera, &d.BatteryCapacity,
		&d.ScreenSize, &d.LaunchedYear,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get model %d", id)
	}
	return &d, nil
}

func (s *SQLiteStore) AddModel(ctx context.Context, in model.DeviceInput) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		processorID, err := getOrCreateProcessorSQLite(ctx, tx, in.ProcessorName)
		if err != nil {
			return err
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO models
				(model_name, company_id, processor_id, mobile_weight, ram,
				 front_camera, back_camera, battery_capacity, screen_size, launched_year)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING model_id`,
			in.Name, in.CompanyID, processorID, in.MobileWeight, in.RAM,
			in.FrontCamera, in.BackCamera, in.BatteryCapacity, in.ScreenSize, in.LaunchedYear,
		).Scan(&id)
		return eris.Wrapf(err, "sqlite: insert model %q", in.Name)
	})
	return id, err
}

func (s *SQLiteStore) UpdateModel(ctx context.Context, id int64, in model.DeviceInput) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		processorID, err := getOrCreateProcessorSQLite(ctx, tx, in.ProcessorName)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE models SET
				model_name = ?, company_id = ?, processor_id = ?,
				mobile_weight = ?, ram = ?, front_camera = ?, back_camera = ?,
				battery_capacity = ?, screen_size = ?, launched_year = ?
			WHERE model_id = ?`,
			in.Name, in.CompanyID, processorID, in.MobileWeight, in.RAM,
			in.FrontCamera, in.BackCamera, in.BatteryCapacity, in.ScreenSize,
			in.LaunchedYear, id,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: update model %d", id)
		}
		return checkRowsAffected(res, "model")
	})
}

func (s *SQLiteStore) DeleteModel(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM models WHERE model_id = ?`, id)
		if err != nil {
			return eris.Wrapf(err, "sqlite: delete model %d", id)
		}
		return checkRowsAffected(res, "model")
	})
}

func (s *SQLiteStore) SearchModels(ctx context.Context, query string) ([]model.SearchResult, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT
			m.model_id, m.model_name, c.company_name,
			m.ram, m.battery_capacity, m.launched_year
		FROM models m
		JOIN companies c ON m.company_id = c.company_id
		WHERE
			LOWER(m.model_name) LIKE LOWER(?) OR
			LOWER(c.company_name) LIKE LOWER(?) OR
			LOWER(m.ram) LIKE LOWER(?) OR
			LOWER(m.battery_capacity) LIKE LOWER(?)
		ORDER BY c.company_name, m.model_name
		LIMIT 100`,
		pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search models")
	}
	defer rows.Close()

	var results []model.SearchResult
	for rows.Next() {
		var r model.SearchResult
		if err := rows.Scan(&r.ID, &r.Name, &r.CompanyName, &r.RAM, &r.BatteryCapacity, &r.LaunchedYear); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan search result")
		}
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: search models iterate")
}

// --- Prices ---

func (s *SQLiteStore) ListModelPrices(ctx context.Context, modelID int64) ([]model.PriceListItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.price_id, p.model_id, p.region_id, r.region_name, p.price
		FROM prices p
		JOIN regions r ON p.region_id = r.region_id
		WHERE p.model_id = ?
		ORDER BY r.region_name`, modelID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list prices for model %d", modelID)
	}
	defer rows.Close()

	var items []model.PriceListItem
	for rows.Next() {
		var it model.PriceListItem
		if err := rows.Scan(&it.ID, &it.ModelID, &it.RegionID, &it.RegionName, &it.Amount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan price")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: list prices iterate")
}

func (s *SQLiteStore) UpsertPrice(ctx context.Context, modelID, regionID int64, amount float64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prices (model_id, region_id, price)
			VALUES (?, ?, ?)
			ON CONFLICT (model_id, region_id)
			DO UPDATE SET price = excluded.price`,
			modelID, regionID, amount)
		return eris.Wrapf(err, "sqlite: upsert price for model %d region %d", modelID, regionID)
	})
}

func (s *SQLiteStore) DeletePrice(ctx context.Context, priceID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE price_id = ?`, priceID)
		if err != nil {
			return eris.Wrapf(err, "sqlite: delete price %d", priceID)
		}
		return checkRowsAffected(res, "price")
	})
}

// --- Reference data ---

func (s *SQLiteStore) ListRegions(ctx context.Context) ([]model.Region, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT region_id, region_name FROM regions ORDER BY region_name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list regions")
	}
	defer rows.Close()

	var regions []model.Region
	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan region")
		}
		regions = append(regions, r)
	}
	return regions, eris.Wrap(rows.Err(), "sqlite: list regions iterate")
}

func (s *SQLiteStore) ListProcessors(ctx context.Context) ([]model.Processor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT processor_id, processor_name FROM processors ORDER BY processor_name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list processors")
	}
	defer rows.Close()

	var procs []model.Processor
	for rows.Next() {
		var p model.Processor
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan processor")
		}
		procs = append(procs, p)
	}
	return procs, eris.Wrap(rows.Err(), "sqlite: list processors iterate")
}

func (s *SQLiteStore) GetOrCreateProcessor(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		pid, err := getOrCreateProcessorSQLite(ctx, tx, &name)
		if err != nil {
			return err
		}
		if pid == nil {
			return eris.New("sqlite: processor name is empty")
		}
		id = *pid
		return nil
	})
	return id, err
}

// getOrCreateProcessorSQLite resolves a processor name to its id inside tx,
// inserting a reference row on first sight. A nil or empty name resolves to
// no processor.
func getOrCreateProcessorSQLite(ctx context.Context, tx *sql.Tx, name *string) (*int64, error) {
	if name == nil || *name == "" {
		return nil, nil
	}
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT processor_id FROM processors WHERE processor_name = ?`, *name).Scan(&id)
	if err == sql.ErrNoRows {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO processors (processor_name) VALUES (?) RETURNING processor_id`, *name).Scan(&id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get or create processor %q", *name)
	}
	return &id, nil
}

// --- Analytics ---

func (s *SQLiteStore) PriceStatistics(ctx context.Context) ([]model.RegionStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			r.region_name,
			COUNT(p.price_id) AS models_count,
			AVG(p.price) AS avg_price,
			MIN(p.price) AS min_price,
			MAX(p.price) AS max_price
		FROM prices p
		JOIN regions r ON p.region_id = r.region_id
		GROUP BY r.region_name
		ORDER BY avg_price DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: price statistics")
	}
	defer rows.Close()

	var stats []model.RegionStats
	for rows.Next() {
		var st model.RegionStats
		if err := rows.Scan(&st.RegionName, &st.ModelsCount, &st.AvgPrice, &st.MinPrice, &st.MaxPrice); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan region stats")
		}
		stats = append(stats, st)
	}
	return stats, eris.Wrap(rows.Err(), "sqlite: price statistics iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s", entity)
	}
	return nil
}
