package sqlexpr

import (
	"strings"

	"colident/internal/columnid"
	"colident/internal/domain"
)

// TableName qualifies a column reference. It is carried for rendering only
// and never participates in column resolution.
type TableName struct {
	DB    string // optional database
	Table string
}

// String returns db.table, or table when no database is set.
func (t TableName) String() string {
	if t.DB == "" {
		return t.Table
	}
	return t.DB + "." + t.Table
}

// Binding is how a column reference names its column: exactly one of
// ByName or ByID.
type Binding interface {
	binding()
}

// ByName binds a column reference to the column's current display name.
type ByName struct {
	Name string
}

func (ByName) binding() {}

// ByID binds a column reference to the column's stable identifier.
type ByID struct {
	ID columnid.ID
}

func (ByID) binding() {}

// ColumnRef represents a column reference, optionally qualified.
type ColumnRef struct {
	Qualifier *TableName
	Binding   Binding
}

func (*ColumnRef) node()     {}
func (*ColumnRef) exprNode() {}

// NameRef returns an unqualified reference bound to a display name.
func NameRef(name string) *ColumnRef {
	return &ColumnRef{Binding: ByName{Name: name}}
}

// IDRef returns an unqualified reference bound to an identifier.
func IDRef(id columnid.ID) *ColumnRef {
	return &ColumnRef{Binding: ByID{ID: id}}
}

// Name returns the display name if the reference is name-bound.
func (c *ColumnRef) Name() (string, bool) {
	b, ok := c.Binding.(ByName)
	return b.Name, ok
}

// ID returns the identifier if the reference is identifier-bound.
func (c *ColumnRef) ID() (columnid.ID, bool) {
	b, ok := c.Binding.(ByID)
	return b.ID, ok
}

// Qualified returns a copy of c carrying qualifier q.
func (c *ColumnRef) Qualified(q *TableName) *ColumnRef {
	out := c.copy()
	out.Qualifier = copyQualifier(q)
	return out
}

func (c *ColumnRef) copy() *ColumnRef {
	return &ColumnRef{Qualifier: copyQualifier(c.Qualifier), Binding: c.Binding}
}

func copyQualifier(q *TableName) *TableName {
	if q == nil {
		return nil
	}
	cp := *q
	return &cp
}

// ColumnResolver maps identifiers to current display names. It is the table
// context a DeferredColumnRef resolves against.
type ColumnResolver interface {
	ColumnName(id columnid.ID) (string, bool)
	String() string
}

// DeferredColumnRef is a column reference bound to an identifier whose
// display name is looked up on demand against an attached table.
//
// SetTable may be called again to reuse the node in another context; it is
// not safe to call SetTable concurrently with DisplayName.
type DeferredColumnRef struct {
	Qualifier *TableName
	id        columnid.ID
	table     ColumnResolver
}

func (*DeferredColumnRef) node()     {}
func (*DeferredColumnRef) exprNode() {}

// NewDeferredColumnRef returns a reference to id with no table attached.
func NewDeferredColumnRef(id columnid.ID) *DeferredColumnRef {
	return &DeferredColumnRef{id: id}
}

// CopyDeferredColumnRef copies other, including its attached table.
func CopyDeferredColumnRef(other *DeferredColumnRef) *DeferredColumnRef {
	return &DeferredColumnRef{
		Qualifier: copyQualifier(other.Qualifier),
		id:        other.id,
		table:     other.table,
	}
}

// ID returns the referenced column identifier.
func (d *DeferredColumnRef) ID() columnid.ID {
	return d.id
}

// SetTable attaches the resolution context. Last write wins.
func (d *DeferredColumnRef) SetTable(t ColumnResolver) {
	d.table = t
}

// Table returns the attached resolution context, or nil.
func (d *DeferredColumnRef) Table() ColumnResolver {
	return d.table
}

// DisplayName resolves the current display name of the referenced column.
func (d *DeferredColumnRef) DisplayName() (string, error) {
	if d.table == nil {
		return "", domain.ErrConfiguration("table not set for deferred column reference %s", d.id)
	}
	name, ok := d.table.ColumnName(d.id)
	if !ok {
		return "", domain.ErrConfiguration("identifier not found in table: column id %s, table %s", d.id, d.table)
	}
	return name, nil
}

// Equal compares identifiers case-insensitively; the attached table and the
// resolved name are ignored.
func (d *DeferredColumnRef) Equal(other *DeferredColumnRef) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.id.EqualFold(other.id)
}

// Key is a hash key consistent with Equal.
func (d *DeferredColumnRef) Key() string {
	return strings.ToLower(d.id.String())
}
