package importer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mobiletools/catalog-cli/internal/store"
)

// Resolver deduplicates company and processor names against the store,
// memoizing ids for the lifetime of one import run. Matching is exact:
// casing and whitespace variants produce distinct reference rows, which is
// the normalization policy, not an oversight.
type Resolver struct {
	companies  map[string]int64
	processors map[string]int64
}

func newResolver() *Resolver {
	return &Resolver{
		companies:  make(map[string]int64),
		processors: make(map[string]int64),
	}
}

// Company returns the id for a company name, inserting a reference row on
// first sight. The name is required.
func (r *Resolver) Company(ctx context.Context, tx store.ImportTx, name string) (int64, error) {
	if name == "" {
		return 0, eris.New("import: missing company name")
	}
	if id, ok := r.companies[name]; ok {
		return id, nil
	}

	id, found, err := tx.FindCompany(ctx, name)
	if err != nil {
		return 0, err
	}
	if !found {
		id, err = tx.InsertCompany(ctx, name)
		if err != nil {
			return 0, err
		}
		zap.L().Info("added company", zap.String("name", name))
	}

	r.companies[name] = id
	return id, nil
}

// Processor returns the id for a processor name, inserting a reference row
// on first sight. An empty name short-circuits to no processor without
// touching the store.
func (r *Resolver) Processor(ctx context.Context, tx store.ImportTx, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	if id, ok := r.processors[name]; ok {
		return &id, nil
	}

	id, found, err := tx.FindProcessor(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		id, err = tx.InsertProcessor(ctx, name)
		if err != nil {
			return nil, err
		}
		zap.L().Info("added processor", zap.String("name", name))
	}

	r.processors[name] = id
	return &id, nil
}

// Companies reports how many distinct company names this run touched.
func (r *Resolver) Companies() int { return len(r.companies) }

// Processors reports how many distinct processor names this run touched.
func (r *Resolver) Processors() int { return len(r.processors) }
