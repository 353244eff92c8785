package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobiletools/catalog-cli/internal/model"
)

func TestSQLiteImport_RowRollbackIsolation(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	tx, err := st.BeginImport(ctx)
	require.NoError(t, err)

	companyID, err := tx.InsertCompany(ctx, "Acme")
	require.NoError(t, err)

	// First row commits its savepoint.
	require.NoError(t, tx.BeginRow(ctx))
	x1, err := tx.InsertModel(ctx, model.DeviceInput{Name: "X1", CompanyID: companyID}, nil)
	require.NoError(t, err)
	require.NoError(t, tx.CommitRow(ctx))

	// Second row rolls back; only its own writes must disappear.
	require.NoError(t, tx.BeginRow(ctx))
	_, err = tx.InsertModel(ctx, model.DeviceInput{Name: "X2", CompanyID: companyID}, nil)
	require.NoError(t, err)
	require.NoError(t, tx.RollbackRow(ctx))

	_, found, err := tx.FindModel(ctx, "X1", companyID)
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = tx.FindModel(ctx, "X2", companyID)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, tx.Commit(ctx))

	// X1 survived the rollback of X2 and the final commit.
	d, err := st.GetModel(ctx, x1)
	require.NoError(t, err)
	assert.Equal(t, "X1", d.Name)
}

func TestSQLiteImport_FlushKeepsSessionUsable(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	tx, err := st.BeginImport(ctx)
	require.NoError(t, err)

	companyID, err := tx.InsertCompany(ctx, "Acme")
	require.NoError(t, err)

	require.NoError(t, tx.Flush(ctx))

	// The company is durable now, visible outside the session.
	companies, err := st.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 1)

	// And the session keeps writing after the flush.
	require.NoError(t, tx.BeginRow(ctx))
	_, err = tx.InsertModel(ctx, model.DeviceInput{Name: "X1", CompanyID: companyID}, nil)
	require.NoError(t, err)
	require.NoError(t, tx.CommitRow(ctx))
	require.NoError(t, tx.Commit(ctx))

	models, err := st.ListModels(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, models, 1)
}

func TestSQLiteImport_RollbackDiscardsUnflushed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	tx, err := st.BeginImport(ctx)
	require.NoError(t, err)

	_, err = tx.InsertCompany(ctx, "Doomed")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	companies, err := st.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Empty(t, companies)
}

func TestSQLiteImport_PriceExists(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	tx, err := st.BeginImport(ctx)
	require.NoError(t, err)

	regions, err := tx.Regions(ctx)
	require.NoError(t, err)
	require.Len(t, regions, 5)
	regionID := regions[0].ID

	companyID, err := tx.InsertCompany(ctx, "Acme")
	require.NoError(t, err)
	modelID, err := tx.InsertModel(ctx, model.DeviceInput{Name: "X1", CompanyID: companyID}, nil)
	require.NoError(t, err)

	exists, err := tx.PriceExists(ctx, modelID, regionID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, tx.InsertPrice(ctx, modelID, regionID, 499.99))

	exists, err = tx.PriceExists(ctx, modelID, regionID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, tx.Commit(ctx))
}
