package dbstore

import (
	"context"
	"database/sql"
)

const catalogTableColumns = `id, db_name, table_name, is_mv, columns_json, partition_json, distribution_json, created_at, updated_at`

const upsertCatalogTable = `INSERT INTO catalog_tables (` + catalogTableColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    db_name = excluded.db_name,
    table_name = excluded.table_name,
    is_mv = excluded.is_mv,
    columns_json = excluded.columns_json,
    partition_json = excluded.partition_json,
    distribution_json = excluded.distribution_json,
    updated_at = excluded.updated_at`

// UpsertCatalogTableParams are the values written by UpsertCatalogTable.
type UpsertCatalogTableParams struct {
	ID               string
	DbName           string
	TableName        string
	IsMv             int64
	ColumnsJson      string
	PartitionJson    sql.NullString
	DistributionJson sql.NullString
	CreatedAt        string
	UpdatedAt        string
}

// UpsertCatalogTable inserts a table row or replaces the row with the same id.
// created_at is kept from the first insert.
func (q *Queries) UpsertCatalogTable(ctx context.Context, arg UpsertCatalogTableParams) error {
	_, err := q.db.ExecContext(ctx, upsertCatalogTable,
		arg.ID,
		arg.DbName,
		arg.TableName,
		arg.IsMv,
		arg.ColumnsJson,
		arg.PartitionJson,
		arg.DistributionJson,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getCatalogTableByName = `SELECT ` + catalogTableColumns + ` FROM catalog_tables
WHERE db_name = ? COLLATE NOCASE AND table_name = ? COLLATE NOCASE`

// GetCatalogTableByNameParams selects a table by database and name.
type GetCatalogTableByNameParams struct {
	DbName    string
	TableName string
}

// GetCatalogTableByName returns sql.ErrNoRows when no table matches.
func (q *Queries) GetCatalogTableByName(ctx context.Context, arg GetCatalogTableByNameParams) (CatalogTable, error) {
	row := q.db.QueryRowContext(ctx, getCatalogTableByName, arg.DbName, arg.TableName)
	var i CatalogTable
	err := scanCatalogTable(row, &i)
	return i, err
}

const listCatalogTables = `SELECT ` + catalogTableColumns + ` FROM catalog_tables
ORDER BY db_name COLLATE NOCASE, table_name COLLATE NOCASE`

// ListCatalogTables returns every table ordered by database and name.
func (q *Queries) ListCatalogTables(ctx context.Context) ([]CatalogTable, error) {
	rows, err := q.db.QueryContext(ctx, listCatalogTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CatalogTable
	for rows.Next() {
		var i CatalogTable
		if err := scanCatalogTable(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteCatalogTable = `DELETE FROM catalog_tables WHERE id = ?`

// DeleteCatalogTable removes a table row and reports how many rows went.
func (q *Queries) DeleteCatalogTable(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCatalogTable, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCatalogTable(s scanner, i *CatalogTable) error {
	return s.Scan(
		&i.ID,
		&i.DbName,
		&i.TableName,
		&i.IsMv,
		&i.ColumnsJson,
		&i.PartitionJson,
		&i.DistributionJson,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}
