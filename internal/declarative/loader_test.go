package declarative

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colident/internal/catalog"
)

const ordersYAML = `apiVersion: colident/v1
kind: Table
metadata:
  database: sales
  name: orders
spec:
  columns:
    - {name: id, type: BIGINT}
    - {name: customer, type: VARCHAR(64)}
    - {name: dt, type: DATE}
  partitionBy:
    - "date_trunc('day', dt)"
  distributedBy:
    columns: [id]
    buckets: 10
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.yaml", ordersYAML)

	docs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "sales.orders", docs[0].QualifiedName())

	def := docs[0].TableDef()
	assert.Equal(t, catalog.TableDef{
		DB:   "sales",
		Name: "orders",
		Columns: []catalog.ColumnDef{
			{Name: "id", Type: "BIGINT"},
			{Name: "customer", Type: "VARCHAR(64)"},
			{Name: "dt", Type: "DATE"},
		},
		PartitionBy:   []string{"date_trunc('day', dt)"},
		DistributedBy: []string{"id"},
		Buckets:       10,
	}, def)

	meta, err := catalog.NewTableMeta(def)
	require.NoError(t, err)
	assert.True(t, meta.Partition.IsAutomaticPartition())
}

func TestLoadFile_MultipleDocuments(t *testing.T) {
	mv := `apiVersion: colident/v1
kind: Table
metadata: {database: sales, name: daily}
spec:
  materializedView: true
  columns: [{name: dt, type: DATE}]
  partitionBy: [dt]
`
	path := writeFile(t, t.TempDir(), "all.yaml", ordersYAML+"---\n"+mv)

	docs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.True(t, docs[1].Spec.MaterializedView)
	assert.Nil(t, docs[1].Spec.DistributedBy)
	assert.Empty(t, docs[1].TableDef().DistributedBy)
}

func TestLoadFile_UnknownField(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", ordersYAML+"  owner: alice\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner")

	docs, err := LoadFileWithOptions(path, LoadOptions{AllowUnknownFields: true})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty", "", "no documents"},
		{"api_version", "apiVersion: v9\nkind: Table\n", "unsupported apiVersion"},
		{"kind", "apiVersion: colident/v1\nkind: View\n", "unexpected kind"},
		{"malformed", "apiVersion: [\n", "parse"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "x.yaml", tc.content)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yml", `apiVersion: colident/v1
kind: Table
metadata: {database: sales, name: customers}
spec:
  columns: [{name: id, type: BIGINT}]
`)
	writeFile(t, dir, "a.yaml", ordersYAML)
	writeFile(t, dir, "notes.txt", "ignored")

	docs, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "orders", docs[0].Metadata.Name)
	assert.Equal(t, "customers", docs[1].Metadata.Name)

	writeFile(t, dir, "c.yaml", ordersYAML)
	_, err = LoadDirectory(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate table")

	_, err = LoadDirectory(filepath.Join(dir, "a.yaml"))
	assert.Error(t, err)
}
