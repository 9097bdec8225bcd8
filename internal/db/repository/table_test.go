package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colident/internal/catalog"
	internaldb "colident/internal/db"
	"colident/internal/domain"
)

func setupTableRepo(t *testing.T) *TableRepo {
	t.Helper()
	ms := internaldb.OpenTestMetastore(t)
	return NewTableRepo(ms.Write, ms.Read, 2)
}

func ordersDef(name string) catalog.TableDef {
	return catalog.TableDef{
		DB:   "sales",
		Name: name,
		Columns: []catalog.ColumnDef{
			{Name: "id", Type: "BIGINT"},
			{Name: "dt", Type: "DATE"},
		},
		PartitionBy:   []string{"date_trunc('day', " + name + ".dt)"},
		DistributedBy: []string{"id"},
		Buckets:       4,
	}
}

func TestTableRepo_SaveAndGet(t *testing.T) {
	repo := setupTableRepo(t)
	ctx := context.Background()

	m, err := catalog.NewTableMeta(ordersDef("orders"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, m))

	got, err := repo.Get(ctx, "SALES", "Orders")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, "date_trunc('day', orders.dt)", *got.Partition.SerializedExprs()[0].SQL)

	_, err = repo.Get(ctx, "sales", "missing")
	var notFound *domain.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestTableRepo_RenamesPersist(t *testing.T) {
	repo := setupTableRepo(t)
	ctx := context.Background()
	c := catalog.New(slog.New(slog.NewTextHandler(io.Discard, nil)))

	m, err := c.CreateTable(ordersDef("orders"))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, m))

	m, err = c.RenameColumn("sales", "orders", "dt", "order_date")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, m))
	m, err = c.RenameTable("sales", "orders", "", "orders_v2")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, m))

	_, err = repo.Get(ctx, "sales", "orders")
	require.Error(t, err)

	got, err := repo.Get(ctx, "sales", "orders_v2")
	require.NoError(t, err)
	assert.Equal(t, "date_trunc('day', orders_v2.dt)", *got.Partition.SerializedExprs()[0].SQL)

	ddl, err := got.CreateTableSQL()
	require.NoError(t, err)
	assert.Contains(t, ddl, "PARTITION BY date_trunc('day', `orders_v2`.`order_date`)")
}

func TestTableRepo_SaveConflict(t *testing.T) {
	repo := setupTableRepo(t)
	ctx := context.Background()

	a, err := catalog.NewTableMeta(ordersDef("orders"))
	require.NoError(t, err)
	b, err := catalog.NewTableMeta(ordersDef("orders"))
	require.NoError(t, err)
	b.DB = "Sales"

	require.NoError(t, repo.Save(ctx, a))
	err = repo.Save(ctx, b)
	var conflict *domain.ConflictError
	assert.True(t, errors.As(err, &conflict), "got %v", err)
}

func TestTableRepo_ListAndDelete(t *testing.T) {
	repo := setupTableRepo(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 6; i++ {
		m, err := catalog.NewTableMeta(ordersDef(fmt.Sprintf("t%d", i)))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, m))
		ids = append(ids, m.ID)
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 6)
	for i, m := range all {
		assert.Equal(t, fmt.Sprintf("t%d", i), m.Name)
		require.NotNil(t, m.Partition)
	}

	require.NoError(t, repo.Delete(ctx, ids[0]))
	var notFound *domain.NotFoundError
	assert.True(t, errors.As(repo.Delete(ctx, ids[0]), &notFound))

	all, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestTableRepo_ListRejectsCorruptRow(t *testing.T) {
	ms := internaldb.OpenTestMetastore(t)
	repo := NewTableRepo(ms.Write, ms.Read, 0)
	ctx := context.Background()

	_, err := ms.Write.Exec(`INSERT INTO catalog_tables
		(id, db_name, table_name, columns_json, partition_json, created_at, updated_at)
		VALUES ('x', 'db', 't', '[{"name":"a","id":"a","type":"INT"}]',
		'{"type":"RANGE","partitionColumns":["a"],"partitionExprs":[{"expr":"a +"}]}', '', '')`)
	require.NoError(t, err)

	_, err = repo.List(ctx)
	var parseErr *domain.ParseError
	assert.True(t, errors.As(err, &parseErr), "got %v", err)
}
