// Package store is the query-execution facade over the catalog schema.
// Every mutating operation runs in its own transaction: commit on success,
// rollback before the error propagates on any failure. The bulk importer
// gets a long-lived session through BeginImport instead.
package store

import (
	"context"

	"github.com/mobiletools/catalog-cli/internal/model"
)

// Store defines the persistence interface for the device catalog.
type Store interface {
	// Companies
	ListCompanies(ctx context.Context) ([]model.CompanyListItem, error)
	AddCompany(ctx context.Context, name string) (int64, error)
	RenameCompany(ctx context.Context, id int64, name string) error
	DeleteCompany(ctx context.Context, id int64) error

	// Models
	ListModels(ctx context.Context, companyID *int64) ([]model.DeviceListItem, error)
	GetModel(ctx context.Context, id int64) (*model.Device, error)
	AddModel(ctx context.Context, in model.DeviceInput) (int64, error)
	UpdateModel(ctx context.Context, id int64, in model.DeviceInput) error
	DeleteModel(ctx context.Context, id int64) error
	SearchModels(ctx context.Context, query string) ([]model.SearchResult, error)

	// Prices
	ListModelPrices(ctx context.Context, modelID int64) ([]model.PriceListItem, error)
	UpsertPrice(ctx context.Context, modelID, regionID int64, amount float64) error
	DeletePrice(ctx context.Context, priceID int64) error

	// Reference data
	ListRegions(ctx context.Context) ([]model.Region, error)
	ListProcessors(ctx context.Context) ([]model.Processor, error)
	GetOrCreateProcessor(ctx context.Context, name string) (int64, error)

	// Analytics
	PriceStatistics(ctx context.Context) ([]model.RegionStats, error)

	// Import
	BeginImport(ctx context.Context) (ImportTx, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ImportTx is a long-lived write session for the bulk importer. Rows are
// scoped with BeginRow/CommitRow/RollbackRow (savepoints), so a failed row
// rolls back alone while earlier rows in the batch survive. Flush durably
// commits accumulated work and opens a fresh transaction.
type ImportTx interface {
	Regions(ctx context.Context) ([]model.Region, error)

	FindCompany(ctx context.Context, name string) (int64, bool, error)
	InsertCompany(ctx context.Context, name string) (int64, error)
	FindProcessor(ctx context.Context, name string) (int64, bool, error)
	InsertProcessor(ctx context.Context, name string) (int64, error)
	FindModel(ctx context.Context, name string, companyID int64) (int64, bool, error)
	InsertModel(ctx context.Context, in model.DeviceInput, processorID *int64) (int64, error)
	PriceExists(ctx context.Context, modelID, regionID int64) (bool, error)
	InsertPrice(ctx context.Context, modelID, regionID int64, amount float64) error

	BeginRow(ctx context.Context) error
	CommitRow(ctx context.Context) error
	RollbackRow(ctx context.Context) error

	Flush(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
