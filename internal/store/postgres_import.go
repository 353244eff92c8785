package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/mobiletools/catalog-cli/internal/model"
)

// pgImportTx implements ImportTx over a pgx transaction. Row scoping uses
// pgx pseudo-nested transactions, which map to savepoints on the wire.
type pgImportTx struct {
	pool Pool
	tx   pgx.Tx
	row  pgx.Tx // active row savepoint, nil between rows
}

func (s *PostgresStore) BeginImport(ctx context.Context) (ImportTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin import tx")
	}
	return &pgImportTx{pool: s.pool, tx: tx}, nil
}

// q returns the innermost active transaction.
func (t *pgImportTx) q() pgx.Tx {
	if t.row != nil {
		return t.row
	}
	return t.tx
}

func (t *pgImportTx) Regions(ctx context.Context) ([]model.Region, error) {
	rows, err := t.q().Query(ctx,
		`SELECT region_id, region_name FROM regions ORDER BY region_name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: import regions")
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
	return regions, eris.Wrap(rows.Err(), "postgres: import regions iterate")
}

func (t *pgImportTx) FindCompany(ctx context.Context, name string) (int64, bool, error) {
	return t.findID(ctx,
		`SELECT company_id FROM companies WHERE company_name = $1`, name)
}

func (t *pgImportTx) InsertCompany(ctx context.Context, name string) (int64, error) {
	var id int64
	err := t.q().QueryRow(ctx,
		`INSERT INTO companies (company_name) VALUES ($1) RETURNING company_id`, name).Scan(&id)
	return id, eris.Wrapf(err, "postgres: import insert company %q", name)
}

func (t *pgImportTx) FindProcessor(ctx context.Context, name string) (int64, bool, error) {
	return t.findID(ctx,
		`SELECT processor_id FROM processors WHERE processor_name = $1`, name)
}

func (t *pgImportTx) InsertProcessor(ctx context.Context, name string) (int64, error) {
	var id int64
	err := t.q().QueryRow(ctx,
		`INSERT INTO processors (processor_name) VALUES ($1) RETURNING processor_id`, name).Scan(&id)
	return id, eris.Wrapf(err, "postgres: import insert processor %q", name)
}

func (t *pgImportTx) FindModel(ctx context.Context, name string, companyID int64) (int64, bool, error) {
	return t.findID(ctx,
		`SELECT model_id FROM models WHERE model_name = $1 AND company_id = $2`, name, companyID)
}

func (t *pgImportTx) InsertModel(ctx context.Context, in model.DeviceInput, processorID *int64) (int64, error) {
	var id int64
	err := t.q().QueryRow(ctx, `
		INSERT INTO models
			(model_name, company_id, processor_id, mobile_weight, ram,
			 front_camera, back_camera, battery_capacity, screen_size, launched_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING model_id`,
		in.Name, in.CompanyID, processorID, in.MobileWeight, in.RAM,
		in.FrontCamera, in.BackCamera, in.BatteryCapacity, in.ScreenSize, in.LaunchedYear,
	).Scan(&id)
	return id, eris.Wrapf(err, "postgres: import insert model %q", in.Name)
}

func (t *pgImportTx) PriceExists(ctx context.Context, modelID, regionID int64) (bool, error) {
	_, found, err := t.findID(ctx,
		`SELECT price_id FROM prices WHERE model_id = $1 AND region_id = $2`, modelID, regionID)
	return found, err
}

func (t *pgImportTx) InsertPrice(ctx context.Context, modelID, regionID int64, amount float64) error {
	_, err := t.q().Exec(ctx,
		`INSERT INTO prices (model_id, region_id, price) VALUES ($1, $2, $3)`,
		modelID, regionID, amount)
	return eris.Wrapf(err, "postgres: import insert price for model %d region %d", modelID, regionID)
}

func (t *pgImportTx) BeginRow(ctx context.Context) error {
	inner, err := t.tx.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin row savepoint")
	}
	t.row = inner
	return nil
}

func (t *pgImportTx) CommitRow(ctx context.Context) error {
	err := t.row.Commit(ctx)
	t.row = nil
	return eris.Wrap(err, "postgres: commit row savepoint")
}

func (t *pgImportTx) RollbackRow(ctx context.Context) error {
	err := t.row.Rollback(ctx)
	t.row = nil
	return eris.Wrap(err, "postgres: rollback row savepoint")
}

// Flush durably commits everything accumulated so far and opens a fresh
// transaction for the rows that follow.
func (t *pgImportTx) Flush(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: flush commit")
	}
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: flush begin")
	}
	t.tx = tx
	return nil
}

func (t *pgImportTx) Commit(ctx context.Context) error {
	return eris.Wrap(t.tx.Commit(ctx), "postgres: import commit")
}

func (t *pgImportTx) Rollback(ctx context.Context) error {
	return eris.Wrap(t.tx.Rollback(ctx), "postgres: import rollback")
}

func (t *pgImportTx) findID(ctx context.Context, query string, args ...any) (int64, bool, error) {
	var id int64
	err := t.q().QueryRow(ctx, query, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, eris.Wrap(err, "postgres: import lookup")
	}
	return id, true, nil
}
