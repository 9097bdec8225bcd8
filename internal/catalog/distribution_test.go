package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colident/internal/columnid"
	"colident/internal/domain"
	"colident/internal/schema"
)

func TestHashDistributionInfo_OrderPreserved(t *testing.T) {
	c1 := &schema.Column{Name: "k1", ID: columnid.New("c1")}
	c2 := &schema.Column{Name: "k2", ID: columnid.New("c2")}
	// The backing schema stores the columns in the opposite order.
	tbl := &schema.Table{Columns: schema.Columns{c2, c1}}

	d, err := NewHashDistributionInfo(10, []*schema.Column{c1, c2})
	require.NoError(t, err)

	want := columnid.FromStrings([]string{"c1", "c2"})
	assert.Equal(t, want, d.DistributionColumns())
	assert.Equal(t, 10, d.BucketNum())

	cp := d.Copy()
	assert.Equal(t, want, cp.DistributionColumns())
	assert.Equal(t, 10, cp.BucketNum())
	assert.True(t, d.Equal(cp))

	require.NoError(t, cp.SetBucketNum(4))
	assert.Equal(t, 10, d.BucketNum())
	assert.False(t, d.Equal(cp))

	sql, err := d.ToSQL(tbl)
	require.NoError(t, err)
	assert.Equal(t, "DISTRIBUTED BY HASH(`k1`, `k2`) BUCKETS 10", sql)
}

func TestHashDistributionInfo_ReturnedSliceIsACopy(t *testing.T) {
	d, err := NewHashDistributionInfoFromIDs(3, columnid.FromStrings([]string{"c1"}))
	require.NoError(t, err)
	cols := d.DistributionColumns()
	cols[0] = columnid.New("zz")
	assert.Equal(t, "c1", d.DistributionColumns()[0].String())
}

func TestHashDistributionInfo_FollowsRename(t *testing.T) {
	tbl := testSchema(false)
	d, err := NewHashDistributionInfo(0, []*schema.Column{tbl.Columns[1]})
	require.NoError(t, err)

	sql, err := d.ToSQL(tbl)
	require.NoError(t, err)
	assert.Equal(t, "DISTRIBUTED BY HASH(`name`)", sql)

	_, err = tbl.RenameColumn("name", "full_name")
	require.NoError(t, err)

	key, err := d.DistributionKey(tbl)
	require.NoError(t, err)
	assert.Equal(t, "`full_name`", key)

	desc, err := d.ToDistributionDesc(tbl)
	require.NoError(t, err)
	assert.Equal(t, DistributionDesc{Type: "HASH", BucketNum: 0, Columns: []string{"full_name"}}, desc)
}

func TestHashDistributionInfo_UnknownIdentifier(t *testing.T) {
	d, err := NewHashDistributionInfoFromIDs(2, columnid.FromStrings([]string{"c1", "c9"}))
	require.NoError(t, err)

	_, err = d.ToSQL(testSchema(false))
	var lookupErr *domain.LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Contains(t, err.Error(), "c9")
}

func TestHashDistributionInfo_Validation(t *testing.T) {
	_, err := NewHashDistributionInfoFromIDs(-1, columnid.FromStrings([]string{"c1"}))
	var validation *domain.ValidationError
	assert.True(t, errors.As(err, &validation))

	_, err = NewHashDistributionInfo(8, nil)
	assert.True(t, errors.As(err, &validation))

	d, err := NewHashDistributionInfoFromIDs(1, columnid.FromStrings([]string{"c1"}))
	require.NoError(t, err)
	assert.Error(t, d.SetBucketNum(-5))
	assert.Equal(t, 1, d.BucketNum())
	assert.True(t, d.SupportColocate())
}

func TestHashDistributionInfo_JSON(t *testing.T) {
	d, err := NewHashDistributionInfoFromIDs(10, columnid.FromStrings([]string{"c1", "c2"}))
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"HASH","colNames":["c1","c2"],"bucketNum":10}`, string(data))

	var loaded HashDistributionInfo
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.True(t, d.Equal(&loaded))

	err = json.Unmarshal([]byte(`{"type":"RANDOM","colNames":["c1"],"bucketNum":1}`), &loaded)
	require.Error(t, err)
}

func TestHashDistributionInfo_String(t *testing.T) {
	d, err := NewHashDistributionInfoFromIDs(10, columnid.FromStrings([]string{"c1", "c2"}))
	require.NoError(t, err)
	assert.Equal(t, "type: HASH; distribution columns: [c1, c2]; bucket num: 10", d.String())
}
