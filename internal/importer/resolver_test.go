package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobiletools/catalog-cli/internal/model"
	"github.com/mobiletools/catalog-cli/internal/store"
)

// fakeImportTx counts lookups and inserts so the tests can observe cache
// hits. Only the reference-data methods carry real behavior.
type fakeImportTx struct {
	companies  map[string]int64
	processors map[string]int64
	nextID     int64

	companyLookups   int
	processorLookups int
	inserts          int
}

func newFakeImportTx() *fakeImportTx {
	return &fakeImportTx{
		companies:  make(map[string]int64),
		processors: make(map[string]int64),
		nextID:     1,
	}
}

func (f *fakeImportTx) FindCompany(_ context.Context, name string) (int64, bool, error) {
	f.companyLookups++
	id, ok := f.companies[name]
	return id, ok, nil
}

func (f *fakeImportTx) InsertCompany(_ context.Context, name string) (int64, error) {
	f.inserts++
	id := f.nextID
	f.nextID++
	f.companies[name] = id
	return id, nil
}

func (f *fakeImportTx) FindProcessor(_ context.Context, name string) (int64, bool, error) {
	f.processorLookups++
	id, ok := f.processors[name]
	return id, ok, nil
}

func (f *fakeImportTx) InsertProcessor(_ context.Context, name string) (int64, error) {
	f.inserts++
	id := f.nextID
	f.nextID++
	f.processors[name] = id
	return id, nil
}

func (f *fakeImportTx) Regions(context.Context) ([]model.Region, error) { return nil, nil }
func (f *fakeImportTx) FindModel(context.Context, string, int64) (int64, bool, error) {
	return 0, false, nil
}
func (f *fakeImportTx) InsertModel(context.Context, model.DeviceInput, *int64) (int64, error) {
	return 0, nil
}
func (f *fakeImportTx) PriceExists(context.Context, int64, int64) (bool, error) { return false, nil }

func (f *fakeImportTx) InsertPrice(context.Context, int64, int64, float64) error { return nil }

func (f *fakeImportTx) BeginRow(context.Context) error { return nil }

func (f *fakeImportTx) CommitRow(context.Context) error { return nil }

func (f *fakeImportTx) RollbackRow(context.Context) error { return nil }

func (f *fakeImportTx) Flush(context.Context) error { return nil }

func (f *fakeImportTx) Commit(context.Context) error { return nil }

func (f *fakeImportTx) Rollback(context.Context) error { return nil }

var _ store.ImportTx = (*fakeImportTx)(nil)

func TestResolver_Company_CachesAfterFirstResolve(t *testing.T) {
	r := newResolver()
	tx := newFakeImportTx()
	ctx := context.Background()

	first, err := r.Company(ctx, tx, "Acme")
	require.NoError(t, err)

	// Second resolve must come from the cache, no store round trip.
	second, err := r.Company(ctx, tx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, tx.companyLookups)
	assert.Equal(t, 1, tx.inserts)
	assert.Equal(t, 1, r.Companies())
}

func TestResolver_Company_FindsExisting(t *testing.T) {
	r := newResolver()
	tx := newFakeImportTx()
	tx.companies["Acme"] = 42
	ctx := context.Background()

	id, err := r.Company(ctx, tx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, 0, tx.inserts)
}

func TestResolver_Company_EmptyName(t *testing.T) {
	r := newResolver()
	tx := newFakeImportTx()

	_, err := r.Company(context.Background(), tx, "")
	require.Error(t, err)
	assert.Equal(t, 0, tx.companyLookups)
}

func TestResolver_Processor_EmptyNameIsNil(t *testing.T) {
	r := newResolver()
	tx := newFakeImportTx()

	id, err := r.Processor(context.Background(), tx, "")
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Equal(t, 0, tx.processorLookups)
	assert.Equal(t, 0, r.Processors())
}

func TestResolver_Processor_CachesAfterFirstResolve(t *testing.T) {
	r := newResolver()
	tx := newFakeImportTx()
	ctx := context.Background()

	first, err := r.Processor(ctx, tx, "Octa X1")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := r.Processor(ctx, tx, "Octa X1")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, tx.processorLookups)
	assert.Equal(t, 1, r.Processors())
}

func TestResolver_ExactMatchPolicy(t *testing.T) {
	r := newResolver()
	tx := newFakeImportTx()
	ctx := context.Background()

	a, err := r.Company(ctx, tx, "Acme")
	require.NoError(t, err)
	b, err := r.Company(ctx, tx, "acme")
	require.NoError(t, err)

	// Casing variants are distinct names on purpose.
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Companies())
}
