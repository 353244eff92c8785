package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"

	"github.com/mobiletools/catalog-cli/internal/model"
)

// sqliteImportTx implements ImportTx over a database/sql transaction, using
// SQLite savepoints for per-row scoping.
type sqliteImportTx struct {
	db *sql.DB
	tx *sql.Tx
}

func (s *SQLiteStore) BeginImport(ctx context.Context) (ImportTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin import tx")
	}
	return &sqliteImportTx{db: s.db, tx: tx}, nil
}

func (t *sqliteImportTx) Regions(ctx context.Context) ([]model.Region, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT region_id, region_name FROM regions ORDER BY region_name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: import regions")
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
	return regions, eris.Wrap(rows.Err(), "sqlite: import regions iterate")
}

func (t *sqliteImportTx) FindCompany(ctx context.Context, name string) (int64, bool, error) {
	return t.findID(ctx,
		`SELECT company_id FROM companies WHERE company_name = ?`, name)
}

func (t *sqliteImportTx) InsertCompany(ctx context.Context, name string) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO companies (company_name) VALUES (?) RETURNING company_id`, name).Scan(&id)
	return id, eris.Wrapf(err, "sqlite: import insert company %q", name)
}

func (t *sqliteImportTx) FindProcessor(ctx context.Context, name string) (int64, bool, error) {
	return t.findID(ctx,
		`SELECT processor_id FROM processors WHERE processor_name = ?`, name)
}

func (t *sqliteImportTx) InsertProcessor(ctx context.Context, name string) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO processors (processor_name) VALUES (?) RETURNING processor_id`, name).Scan(&id)
	return id, eris.Wrapf(err, "sqlite: import insert processor %q", name)
}

func (t *sqliteImportTx) FindModel(ctx context.Context, name string, companyID int64) (int64, bool, error) {
	return t.findID(ctx,
		`SELECT model_id FROM models WHERE model_name = ? AND company_id = ?`, name, companyID)
}

func (t *sqliteImportTx) InsertModel(ctx context.Context, in model.DeviceInput, processorID *int64) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO models
			(model_name, company_id, processor_id, mobile_weight, ram,
			 front_camera, back_camera, battery_capacity, screen_size, launched_year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING model_id`,
		in.Name, in.CompanyID, processorID, in.MobileWeight, in.RAM,
		in.FrontCamera, in.BackCamera, in.BatteryCapacity, in.ScreenSize, in.LaunchedYear,
	).Scan(&id)
	return id, eris.Wrapf(err, "sqlite: import insert model %q", in.Name)
}

func (t *sqliteImportTx) PriceExists(ctx context.Context, modelID, regionID int64) (bool, error) {
	_, found, err := t.findID(ctx,
		`SELECT price_id FROM prices WHERE model_id = ? AND region_id = ?`, modelID, regionID)
	return found, err
}

func (t *sqliteImportTx) InsertPrice(ctx context.Context, modelID, regionID int64, amount float64) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO prices (model_id, region_id, price) VALUES (?, ?, ?)`,
		modelID, regionID, amount)
	return eris.Wrapf(err, "sqlite: import insert price for model %d region %d", modelID, regionID)
}

func (t *sqliteImportTx) BeginRow(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx, `SAVEPOINT import_row`)
	return eris.Wrap(err, "sqlite: savepoint")
}

func (t *sqliteImportTx) CommitRow(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx, `RELEASE SAVEPOINT import_row`)
	return eris.Wrap(err, "sqlite: release savepoint")
}

func (t *sqliteImportTx) RollbackRow(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT import_row`); err != nil {
		return eris.Wrap(err, "sqlite: rollback to savepoint")
	}
	_, err := t.tx.ExecContext(ctx, `RELEASE SAVEPOINT import_row`)
	return eris.Wrap(err, "sqlite: release savepoint")
}

// Flush durably commits everything accumulated so far and opens a fresh
// transaction for the rows that follow.
func (t *sqliteImportTx) Flush(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: flush commit")
	}
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: flush begin")
	}
	t.tx = tx
	return nil
}

func (t *sqliteImportTx) Commit(context.Context) error {
	return eris.Wrap(t.tx.Commit(), "sqlite: import commit")
}

func (t *sqliteImportTx) Rollback(context.Context) error {
	return eris.Wrap(t.tx.Rollback(), "sqlite: import rollback")
}

func (t *sqliteImportTx) findID(ctx context.Context, query string, args ...any) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, eris.Wrap(err, "sqlite: import lookup")
	}
	return id, true, nil
}
