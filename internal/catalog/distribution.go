package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"colident/internal/columnid"
	"colident/internal/domain"
	"colident/internal/schema"
	"colident/internal/sqlexpr"
)

const distributionTypeHash = "HASH"

// DistributionDesc is the name-resolved form of a distribution, as written in
// DDL.
type DistributionDesc struct {
	Type      string   `json:"type"`
	BucketNum int      `json:"bucketNum"`
	Columns   []string `json:"columns"`
}

// HashDistributionInfo distributes rows by hashing an ordered list of
// columns into a number of buckets. It stores identifiers only, so column
// renames are visible without touching it. A bucket count of zero means the
// count is chosen automatically.
type HashDistributionInfo struct {
	columns   []columnid.ID
	bucketNum int
}

// NewHashDistributionInfo distributes by the given columns, in order.
func NewHashDistributionInfo(bucketNum int, columns []*schema.Column) (*HashDistributionInfo, error) {
	ids := make([]columnid.ID, len(columns))
	for i, col := range columns {
		ids[i] = col.ID
	}
	return NewHashDistributionInfoFromIDs(bucketNum, ids)
}

// NewHashDistributionInfoFromIDs is used when rehydrating persisted
// metadata.
func NewHashDistributionInfoFromIDs(bucketNum int, ids []columnid.ID) (*HashDistributionInfo, error) {
	if bucketNum < 0 {
		return nil, domain.ErrValidation("bucket count cannot be negative: %d", bucketNum)
	}
	if len(ids) == 0 {
		return nil, domain.ErrValidation("hash distribution requires at least one column")
	}
	return &HashDistributionInfo{
		columns:   append([]columnid.ID(nil), ids...),
		bucketNum: bucketNum,
	}, nil
}

// DistributionColumns returns a copy of the column identifiers in order.
func (d *HashDistributionInfo) DistributionColumns() []columnid.ID {
	return append([]columnid.ID(nil), d.columns...)
}

// BucketNum returns the bucket count.
func (d *HashDistributionInfo) BucketNum() int { return d.bucketNum }

// SetBucketNum changes the bucket count.
func (d *HashDistributionInfo) SetBucketNum(n int) error {
	if n < 0 {
		return domain.ErrValidation("bucket count cannot be negative: %d", n)
	}
	d.bucketNum = n
	return nil
}

// SupportColocate reports whether tables with this distribution can be
// colocated.
func (d *HashDistributionInfo) SupportColocate() bool { return true }

func (d *HashDistributionInfo) resolve(lookup schema.IDLookup) ([]*schema.Column, error) {
	cols := make([]*schema.Column, len(d.columns))
	for i, id := range d.columns {
		col, ok := lookup.ColumnByID(id)
		if !ok {
			return nil, domain.ErrLookup("unknown column identifier %s in distribution", id)
		}
		cols[i] = col
	}
	return cols, nil
}

// DistributionKey renders the backquoted current column names.
func (d *HashDistributionInfo) DistributionKey(lookup schema.IDLookup) (string, error) {
	cols, err := d.resolve(lookup)
	if err != nil {
		return "", err
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = sqlexpr.QuoteIdent(col.Name)
	}
	return strings.Join(names, ", "), nil
}

// ToDistributionDesc resolves the distribution against the current schema.
func (d *HashDistributionInfo) ToDistributionDesc(lookup schema.IDLookup) (DistributionDesc, error) {
	cols, err := d.resolve(lookup)
	if err != nil {
		return DistributionDesc{}, err
	}
	return DistributionDesc{
		Type:      distributionTypeHash,
		BucketNum: d.bucketNum,
		Columns:   schema.Columns(cols).Names(),
	}, nil
}

// ToSQL renders the DISTRIBUTED BY clause.
func (d *HashDistributionInfo) ToSQL(lookup schema.IDLookup) (string, error) {
	key, err := d.DistributionKey(lookup)
	if err != nil {
		return "", err
	}
	out := "DISTRIBUTED BY HASH(" + key + ")"
	if d.bucketNum > 0 {
		out += fmt.Sprintf(" BUCKETS %d", d.bucketNum)
	}
	return out, nil
}

// Copy returns an independent descriptor.
func (d *HashDistributionInfo) Copy() *HashDistributionInfo {
	return &HashDistributionInfo{
		columns:   d.DistributionColumns(),
		bucketNum: d.bucketNum,
	}
}

// Equal compares bucket count and identifiers, not resolved names.
func (d *HashDistributionInfo) Equal(other *HashDistributionInfo) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.bucketNum == other.bucketNum && slices.Equal(d.columns, other.columns)
}

// References reports whether the distribution uses id.
func (d *HashDistributionInfo) References(id columnid.ID) bool {
	return slices.ContainsFunc(d.columns, id.EqualFold)
}

func (d *HashDistributionInfo) String() string {
	s := fmt.Sprintf("type: %s; distribution columns: [%s]", distributionTypeHash,
		strings.Join(columnid.Strings(d.columns), ", "))
	if d.bucketNum > 0 {
		s += fmt.Sprintf("; bucket num: %d", d.bucketNum)
	}
	return s
}

type hashDistributionJSON struct {
	Type      string        `json:"type"`
	ColNames  []columnid.ID `json:"colNames"`
	BucketNum int           `json:"bucketNum"`
}

// MarshalJSON implements json.Marshaler.
func (d *HashDistributionInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(hashDistributionJSON{
		Type:      distributionTypeHash,
		ColNames:  d.columns,
		BucketNum: d.bucketNum,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *HashDistributionInfo) UnmarshalJSON(data []byte) error {
	var raw hashDistributionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode distribution info: %w", err)
	}
	if raw.Type != distributionTypeHash {
		return domain.ErrValidation("unsupported distribution type %q", raw.Type)
	}
	loaded, err := NewHashDistributionInfoFromIDs(raw.BucketNum, raw.ColNames)
	if err != nil {
		return err
	}
	*d = *loaded
	return nil
}
