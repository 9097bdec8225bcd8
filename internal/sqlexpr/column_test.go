package sqlexpr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colident/internal/columnid"
	"colident/internal/domain"
)

type fakeResolver struct {
	name string
	cols map[string]string // id -> display name
}

func (f fakeResolver) ColumnName(id columnid.ID) (string, bool) {
	name, ok := f.cols[id.String()]
	return name, ok
}

func (f fakeResolver) String() string { return f.name }

func TestColumnRef_Binding(t *testing.T) {
	byName := NameRef("k1")
	name, ok := byName.Name()
	assert.True(t, ok)
	assert.Equal(t, "k1", name)
	_, ok = byName.ID()
	assert.False(t, ok)

	byID := IDRef(columnid.New("c1"))
	id, ok := byID.ID()
	assert.True(t, ok)
	assert.Equal(t, "c1", id.String())
	_, ok = byID.Name()
	assert.False(t, ok)
}

func TestColumnRef_QualifiedCopies(t *testing.T) {
	q := &TableName{DB: "db1", Table: "t1"}
	orig := NameRef("k1")
	got := orig.Qualified(q)

	q.Table = "changed"
	assert.Nil(t, orig.Qualifier)
	assert.Equal(t, "db1.t1", got.Qualifier.String())
}

func TestTableName_String(t *testing.T) {
	assert.Equal(t, "t1", TableName{Table: "t1"}.String())
	assert.Equal(t, "db1.t1", TableName{DB: "db1", Table: "t1"}.String())
}

func TestDeferredColumnRef_DisplayName(t *testing.T) {
	ref := NewDeferredColumnRef(columnid.New("c1"))

	_, err := ref.DisplayName()
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "table not set")

	table := fakeResolver{name: "db1.t1", cols: map[string]string{"c1": "k1"}}
	ref.SetTable(table)
	name, err := ref.DisplayName()
	require.NoError(t, err)
	assert.Equal(t, "k1", name)

	// A rename in the table is observed on the next read.
	table.cols["c1"] = "k1_renamed"
	name, err = ref.DisplayName()
	require.NoError(t, err)
	assert.Equal(t, "k1_renamed", name)

	delete(table.cols, "c1")
	_, err = ref.DisplayName()
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "identifier not found in table")
	assert.Contains(t, err.Error(), "db1.t1")
}

func TestDeferredColumnRef_SetTableLastWriteWins(t *testing.T) {
	ref := NewDeferredColumnRef(columnid.New("c1"))
	ref.SetTable(fakeResolver{name: "a", cols: map[string]string{"c1": "x"}})
	ref.SetTable(fakeResolver{name: "b", cols: map[string]string{"c1": "y"}})

	name, err := ref.DisplayName()
	require.NoError(t, err)
	assert.Equal(t, "y", name)
	assert.Equal(t, "b", ref.Table().String())
}

func TestDeferredColumnRef_Copy(t *testing.T) {
	table := fakeResolver{name: "t", cols: map[string]string{"c1": "k1"}}
	ref := NewDeferredColumnRef(columnid.New("c1"))
	ref.Qualifier = &TableName{Table: "t"}
	ref.SetTable(table)

	cp := CopyDeferredColumnRef(ref)
	assert.Equal(t, ref.ID(), cp.ID())
	assert.Equal(t, table, cp.Table())

	cp.Qualifier.Table = "other"
	assert.Equal(t, "t", ref.Qualifier.Table)
}

func TestDeferredColumnRef_EqualAndKey(t *testing.T) {
	a := NewDeferredColumnRef(columnid.New("C1"))
	b := NewDeferredColumnRef(columnid.New("c1"))
	c := NewDeferredColumnRef(columnid.New("c2"))

	b.SetTable(fakeResolver{name: "t"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())

	var nilRef *DeferredColumnRef
	assert.False(t, a.Equal(nilRef))
	assert.True(t, nilRef.Equal(nil))
}
