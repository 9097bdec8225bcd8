package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"colident/internal/catalog"
	dbstore "colident/internal/db/dbstore"
	"colident/internal/db/mapper"
	"colident/internal/domain"
)

const defaultRehydrateConcurrency = 4

// TableRepo stores table metadata. Writes go through the single-connection
// write pool; reads use the read pool.
type TableRepo struct {
	w           *dbstore.Queries
	r           *dbstore.Queries
	concurrency int
}

// NewTableRepo creates a TableRepo. concurrency bounds how many rows List
// rehydrates at once; values below one use the default.
func NewTableRepo(writeDB, readDB *sql.DB, concurrency int) *TableRepo {
	if readDB == nil {
		readDB = writeDB
	}
	if concurrency < 1 {
		concurrency = defaultRehydrateConcurrency
	}
	return &TableRepo{
		w:           dbstore.New(writeDB),
		r:           dbstore.New(readDB),
		concurrency: concurrency,
	}
}

// Save inserts or replaces the table's row, keyed by table id.
func (r *TableRepo) Save(ctx context.Context, m *catalog.TableMeta) error {
	p, err := mapper.TableToDB(m)
	if err != nil {
		return err
	}
	if err := r.w.UpsertCatalogTable(ctx, p); err != nil {
		var conflict *domain.ConflictError
		if errors.As(mapDBError(err), &conflict) {
			return domain.ErrConflict("table %s already exists", m.QualifiedName())
		}
		return fmt.Errorf("save table %s: %w", m.QualifiedName(), err)
	}
	return nil
}

// Get loads one table by database and name, ignoring case.
func (r *TableRepo) Get(ctx context.Context, db, table string) (*catalog.TableMeta, error) {
	row, err := r.r.GetCatalogTableByName(ctx, dbstore.GetCatalogTableByNameParams{
		DbName:    db,
		TableName: table,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("table %s.%s not found", db, table)
		}
		return nil, mapDBError(err)
	}
	return mapper.TableFromDB(row)
}

// List loads every table. Rows are rehydrated concurrently since each one
// parses and rebinds its partition expressions.
func (r *TableRepo) List(ctx context.Context) ([]*catalog.TableMeta, error) {
	rows, err := r.r.ListCatalogTables(ctx)
	if err != nil {
		return nil, mapDBError(err)
	}

	out := make([]*catalog.TableMeta, len(rows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := mapper.TableFromDB(row)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the table with the given id.
func (r *TableRepo) Delete(ctx context.Context, id string) error {
	n, err := r.w.DeleteCatalogTable(ctx, id)
	if err != nil {
		return mapDBError(err)
	}
	if n == 0 {
		return domain.ErrNotFound("table %s not found", id)
	}
	return nil
}
