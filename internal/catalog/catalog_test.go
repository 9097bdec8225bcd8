package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"colident/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ordersDef() TableDef {
	return TableDef{
		DB:   "sales",
		Name: "orders",
		Columns: []ColumnDef{
			{Name: "id", Type: "BIGINT"},
			{Name: "customer", Type: "VARCHAR(64)"},
			{Name: "dt", Type: "DATE"},
		},
		PartitionBy:   []string{"date_trunc('day', orders.dt)"},
		DistributedBy: []string{"id"},
		Buckets:       10,
	}
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New(testLogger())
	_, err := c.CreateTable(ordersDef())
	require.NoError(t, err)
	return c
}

func TestNewTableMeta(t *testing.T) {
	meta, err := NewTableMeta(ordersDef())
	require.NoError(t, err)

	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, []string{"id", "customer", "dt"}, meta.Columns.Names())
	assert.Equal(t, "dt", meta.Columns[2].ID.String())

	require.NotNil(t, meta.Partition)
	assert.True(t, meta.Partition.IsAutomaticPartition())
	assert.Equal(t, "date_trunc('day', orders.dt)", *meta.Partition.SerializedExprs()[0].SQL)

	require.NotNil(t, meta.Distribution)
	assert.Equal(t, 10, meta.Distribution.BucketNum())
}

func TestNewTableMeta_PlainColumnPartitionIsRange(t *testing.T) {
	def := ordersDef()
	def.PartitionBy = []string{"dt"}
	meta, err := NewTableMeta(def)
	require.NoError(t, err)
	assert.Equal(t, PartitionRange, meta.Partition.Type())
}

func TestNewTableMeta_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TableDef)
		target interface{}
	}{
		{"empty_db", func(d *TableDef) { d.DB = "" }, new(*domain.ValidationError)},
		{"dotted_name", func(d *TableDef) { d.Name = "a.b" }, new(*domain.ValidationError)},
		{"no_columns", func(d *TableDef) { d.Columns = nil }, new(*domain.ValidationError)},
		{"duplicate_column", func(d *TableDef) { d.Columns = append(d.Columns, ColumnDef{Name: "ID"}) }, new(*domain.ConflictError)},
		{"unknown_partition_column", func(d *TableDef) { d.PartitionBy = []string{"date_trunc('day', nope)"} }, new(*domain.LookupError)},
		{"bad_partition_text", func(d *TableDef) { d.PartitionBy = []string{"date_trunc("} }, new(*domain.ParseError)},
		{"partition_without_column", func(d *TableDef) { d.PartitionBy = []string{"now()"} }, new(*domain.ValidationError)},
		{"unknown_distribution_column", func(d *TableDef) { d.DistributedBy = []string{"nope"} }, new(*domain.LookupError)},
		{"negative_buckets", func(d *TableDef) { d.Buckets = -1 }, new(*domain.ValidationError)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := ordersDef()
			tc.mutate(&def)
			meta, err := NewTableMeta(def)
			require.Error(t, err)
			assert.Nil(t, meta)
			assert.True(t, errors.As(err, tc.target), "got %v", err)
		})
	}
}

func TestCatalog_CreateDuplicate(t *testing.T) {
	c := newTestCatalog(t)
	def := ordersDef()
	def.DB = "SALES"
	_, err := c.CreateTable(def)
	var conflict *domain.ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestCatalog_GetReturnsSnapshot(t *testing.T) {
	c := newTestCatalog(t)
	snap, err := c.Get("sales", "orders")
	require.NoError(t, err)

	snap.Columns[0].Name = "mutated"
	require.NoError(t, snap.Distribution.SetBucketNum(99))

	again, err := c.Get("sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, "id", again.Columns[0].Name)
	assert.Equal(t, 10, again.Distribution.BucketNum())

	_, err = c.Get("sales", "missing")
	var notFound *domain.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestCatalog_ShowCreateTable(t *testing.T) {
	c := newTestCatalog(t)
	got, err := c.ShowCreateTable("sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE `sales`.`orders` (\n"+
		"  `id` BIGINT,\n"+
		"  `customer` VARCHAR(64),\n"+
		"  `dt` DATE\n"+
		")\n"+
		"PARTITION BY date_trunc('day', `orders`.`dt`)\n"+
		"DISTRIBUTED BY HASH(`id`) BUCKETS 10", got)
}

func TestCatalog_ShowCreateMaterializedView(t *testing.T) {
	c := New(testLogger())
	def := ordersDef()
	def.Name = "daily"
	def.MaterializedView = true
	def.PartitionBy = []string{"date_trunc('day', daily.dt)"}
	_, err := c.CreateTable(def)
	require.NoError(t, err)

	got, err := c.ShowCreateTable("sales", "daily")
	require.NoError(t, err)
	assert.Contains(t, got, "CREATE MATERIALIZED VIEW `sales`.`daily` (")
	assert.Contains(t, got, "PARTITION BY (date_trunc('day', `dt`))")
}

func TestCatalog_RenameColumn(t *testing.T) {
	c := newTestCatalog(t)
	before, err := c.Get("sales", "orders")
	require.NoError(t, err)

	meta, err := c.RenameColumn("sales", "orders", "dt", "order_date")
	require.NoError(t, err)
	assert.Equal(t, before.Partition.SerializedExprs(), meta.Partition.SerializedExprs())

	_, err = c.RenameColumn("sales", "orders", "id", "order_id")
	require.NoError(t, err)

	got, err := c.ShowCreateTable("sales", "orders")
	require.NoError(t, err)
	assert.Contains(t, got, "PARTITION BY date_trunc('day', `orders`.`order_date`)")
	assert.Contains(t, got, "DISTRIBUTED BY HASH(`order_id`) BUCKETS 10")

	// The earlier snapshot still shows the old names.
	old, err := before.CreateTableSQL()
	require.NoError(t, err)
	assert.Contains(t, old, "`orders`.`dt`")

	_, err = c.RenameColumn("sales", "orders", "customer", "ORDER_ID")
	var conflict *domain.ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestCatalog_RenameTable(t *testing.T) {
	c := newTestCatalog(t)

	meta, err := c.RenameTable("sales", "orders", "", "orders_v2")
	require.NoError(t, err)
	assert.Equal(t, "sales.orders_v2", meta.QualifiedName())
	assert.Equal(t, "date_trunc('day', orders_v2.dt)", *meta.Partition.SerializedExprs()[0].SQL)

	_, err = c.Get("sales", "orders")
	var notFound *domain.NotFoundError
	assert.True(t, errors.As(err, &notFound))

	meta, err = c.RenameTable("sales", "orders_v2", "archive", "orders")
	require.NoError(t, err)
	assert.Equal(t, "archive.orders", meta.QualifiedName())
	assert.Equal(t, "date_trunc('day', archive.orders.dt)", *meta.Partition.SerializedExprs()[0].SQL)

	got, err := c.ShowCreateTable("archive", "orders")
	require.NoError(t, err)
	assert.Contains(t, got, "PARTITION BY date_trunc('day', `archive`.`orders`.`dt`)")
}

func TestCatalog_RenameTableConflict(t *testing.T) {
	c := newTestCatalog(t)
	def := ordersDef()
	def.Name = "other"
	def.PartitionBy = nil
	_, err := c.CreateTable(def)
	require.NoError(t, err)

	_, err = c.RenameTable("sales", "other", "", "orders")
	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict))

	// The failed rename left both tables in place.
	assert.Len(t, c.List(), 2)

	_, err = c.RenameTable("sales", "other", "", "")
	var validation *domain.ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestCatalog_DropColumnGuard(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		column string
		target interface{}
	}{
		{"dt", new(*domain.ConflictError)},
		{"ID", new(*domain.ConflictError)},
		{"nope", new(*domain.NotFoundError)},
	}
	for _, tc := range tests {
		_, err := c.DropColumn("sales", "orders", tc.column)
		assert.True(t, errors.As(err, tc.target), "column %s: %v", tc.column, err)
	}

	meta, err := c.DropColumn("sales", "orders", "customer")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "dt"}, meta.Columns.Names())
}

func TestCatalog_DropTableAndLoad(t *testing.T) {
	c := newTestCatalog(t)
	metas := c.List()
	require.NoError(t, c.DropTable("sales", "orders"))
	assert.Empty(t, c.List())

	var notFound *domain.NotFoundError
	assert.True(t, errors.As(c.DropTable("sales", "orders"), &notFound))

	c.Load(metas)
	_, err := c.Get("sales", "orders")
	require.NoError(t, err)
}

func TestCatalog_ConcurrentReadersDuringRenames(t *testing.T) {
	c := newTestCatalog(t)
	allowed := map[string]bool{
		"PARTITION BY date_trunc('day', `orders`.`dt`)":   true,
		"PARTITION BY date_trunc('day', `orders`.`dt_x`)": true,
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		for i := 0; i < 50; i++ {
			if _, err := c.RenameColumn("sales", "orders", "dt", "dt_x"); err != nil {
				return err
			}
			if _, err := c.RenameColumn("sales", "orders", "dt_x", "dt"); err != nil {
				return err
			}
		}
		return nil
	})
	for r := 0; r < 8; r++ {
		g.Go(func() error {
			for i := 0; i < 50 && ctx.Err() == nil; i++ {
				meta, err := c.Get("sales", "orders")
				if err != nil {
					return err
				}
				clause, err := meta.Partition.ToSQL(meta.Table())
				if err != nil {
					return err
				}
				if !allowed[clause] {
					return fmt.Errorf("unexpected clause %q", clause)
				}
				if got := *meta.Partition.SerializedExprs()[0].SQL; got != "date_trunc('day', orders.dt)" {
					return fmt.Errorf("serialized text changed: %q", got)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
