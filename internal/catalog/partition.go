package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"colident/internal/colbind"
	"colident/internal/columnid"
	"colident/internal/domain"
	"colident/internal/schema"
	"colident/internal/sqlexpr"
)

// PartitionType tags how a table is partitioned.
type PartitionType int

// Partition types.
const (
	PartitionUnpartitioned PartitionType = iota
	PartitionRange
	PartitionList
	PartitionExprRange
)

var partitionTypeNames = map[PartitionType]string{
	PartitionUnpartitioned: "UNPARTITIONED",
	PartitionRange:         "RANGE",
	PartitionList:          "LIST",
	PartitionExprRange:     "EXPR_RANGE",
}

func (t PartitionType) String() string {
	if name, ok := partitionTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PartitionType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t PartitionType) MarshalText() ([]byte, error) {
	name, ok := partitionTypeNames[t]
	if !ok {
		return nil, domain.ErrValidation("unknown partition type %d", int(t))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PartitionType) UnmarshalText(text []byte) error {
	for typ, name := range partitionTypeNames {
		if strings.EqualFold(name, string(text)) {
			*t = typ
			return nil
		}
	}
	return domain.ErrValidation("unknown partition type %q", string(text))
}

// ExprPartitionInfo holds one binder per partition column. Partition
// columns are kept by identifier only; names come from the schema at read
// time. The binder list is only ever replaced as a whole.
type ExprPartitionInfo struct {
	typ       PartitionType
	binders   []*colbind.Binder
	columnIDs []columnid.ID
}

// NewExprPartitionInfo requires exactly one binder per partition column and
// at least one column. A nil binder marks a column without an expression.
func NewExprPartitionInfo(binders []*colbind.Binder, columns schema.Columns, typ PartitionType) (*ExprPartitionInfo, error) {
	ids := make([]columnid.ID, len(columns))
	for i, col := range columns {
		ids[i] = col.ID
	}
	return newExprPartitionInfo(binders, ids, typ)
}

func newExprPartitionInfo(binders []*colbind.Binder, ids []columnid.ID, typ PartitionType) (*ExprPartitionInfo, error) {
	if len(binders) == 0 || len(binders) != len(ids) {
		return nil, domain.ErrValidation(
			"partition expressions and columns must be non-empty and equal in number: %d expressions, %d columns",
			len(binders), len(ids))
	}
	return &ExprPartitionInfo{
		typ:       typ,
		binders:   append([]*colbind.Binder(nil), binders...),
		columnIDs: append([]columnid.ID(nil), ids...),
	}, nil
}

// Type returns the partition type tag.
func (p *ExprPartitionInfo) Type() PartitionType { return p.typ }

// IsAutomaticPartition reports whether partitions are created on demand from
// the expression.
func (p *ExprPartitionInfo) IsAutomaticPartition() bool {
	return p.typ == PartitionExprRange
}

// Len returns the number of partition columns.
func (p *ExprPartitionInfo) Len() int { return len(p.binders) }

// Binders returns a copy of the binder list.
func (p *ExprPartitionInfo) Binders() []*colbind.Binder {
	return append([]*colbind.Binder(nil), p.binders...)
}

// PartitionColumnIDs returns a copy of the partition column identifiers.
func (p *ExprPartitionInfo) PartitionColumnIDs() []columnid.ID {
	return append([]columnid.ID(nil), p.columnIDs...)
}

// PartitionColumns resolves the partition columns in the current schema.
func (p *ExprPartitionInfo) PartitionColumns(lookup schema.IDLookup) (schema.Columns, error) {
	out := make(schema.Columns, len(p.columnIDs))
	for i, id := range p.columnIDs {
		col, ok := lookup.ColumnByID(id)
		if !ok {
			return nil, domain.ErrLookup("unknown column identifier %s", id)
		}
		out[i] = col
	}
	return out, nil
}

// Copy returns a descriptor that can be modified independently of p.
func (p *ExprPartitionInfo) Copy() *ExprPartitionInfo {
	return &ExprPartitionInfo{
		typ:       p.typ,
		binders:   p.Binders(),
		columnIDs: p.PartitionColumnIDs(),
	}
}

// PartitionExprs resolves every expression against the current schema. A
// nil binder yields a nil expression at the same position.
func (p *ExprPartitionInfo) PartitionExprs(lookup schema.IDLookup) ([]sqlexpr.Expr, error) {
	out := make([]sqlexpr.Expr, len(p.binders))
	for i, b := range p.binders {
		if b == nil {
			continue
		}
		e, err := b.ResolveNames(lookup)
		if err != nil {
			return nil, fmt.Errorf("resolve partition expression %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

// DeferredPartitionExprs returns expressions whose column names resolve
// lazily against t.
func (p *ExprPartitionInfo) DeferredPartitionExprs(t sqlexpr.ColumnResolver) []sqlexpr.Expr {
	out := make([]sqlexpr.Expr, len(p.binders))
	for i, b := range p.binders {
		if b != nil {
			out[i] = b.Deferred(t)
		}
	}
	return out
}

// ToSQL renders the PARTITION BY clause for t. Materialized views use a
// parenthesized, comma-joined list in which a function call's first column
// argument loses its qualifier; other tables use a flat ", " list.
func (p *ExprPartitionInfo) ToSQL(t *schema.Table) (string, error) {
	exprs, err := p.PartitionExprs(t)
	if err != nil {
		return "", err
	}

	items := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if t.IsMaterializedView {
			e, err = mvPartitionItem(e)
			if err != nil {
				return "", err
			}
		}
		s, err := sqlexpr.Format(e, sqlexpr.RenderNames)
		if err != nil {
			return "", err
		}
		items = append(items, s)
	}

	if t.IsMaterializedView {
		return "PARTITION BY (" + strings.Join(items, ",") + ")", nil
	}
	return "PARTITION BY " + strings.Join(items, ", "), nil
}

func mvPartitionItem(e sqlexpr.Expr) (sqlexpr.Expr, error) {
	switch n := e.(type) {
	case *sqlexpr.ColumnRef:
		name, _ := n.Name()
		return sqlexpr.NameRef(name), nil
	case *sqlexpr.FuncCall:
		kids := sqlexpr.Children(n)
		for i, kid := range kids {
			if col, ok := kid.(*sqlexpr.ColumnRef); ok {
				name, _ := col.Name()
				kids[i] = sqlexpr.NameRef(name)
				break
			}
		}
		return sqlexpr.WithChildren(n, kids)
	default:
		return e, nil
	}
}

// RenameTable points every qualified column reference at newTable, and at
// db when db is non-empty. The binder list is replaced as a whole.
func (p *ExprPartitionInfo) RenameTable(db, newTable string) error {
	if newTable == "" {
		return domain.ErrValidation("new table name cannot be empty")
	}
	renamed := make([]*colbind.Binder, len(p.binders))
	for i, b := range p.binders {
		if b != nil {
			renamed[i] = b.RenameQualifier(db, newTable)
		}
	}
	p.binders = renamed
	return nil
}

// References reports whether any expression references id.
func (p *ExprPartitionInfo) References(id columnid.ID) bool {
	for _, b := range p.binders {
		if b != nil && b.References(id) {
			return true
		}
	}
	for _, col := range p.columnIDs {
		if col.EqualFold(id) {
			return true
		}
	}
	return false
}

// SerializedExprs returns the canonical text of every expression, with the
// absent marker for nil binders.
func (p *ExprPartitionInfo) SerializedExprs() []colbind.SerializedExpr {
	out := make([]colbind.SerializedExpr, len(p.binders))
	for i, b := range p.binders {
		out[i] = colbind.NewSerializedExpr(b)
	}
	return out
}

type exprPartitionJSON struct {
	Type             PartitionType            `json:"type"`
	PartitionColumns []columnid.ID            `json:"partitionColumns"`
	PartitionExprs   []colbind.SerializedExpr `json:"partitionExprs"`
}

// MarshalJSON serializes every binder to its canonical text.
func (p *ExprPartitionInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(exprPartitionJSON{
		Type:             p.typ,
		PartitionColumns: p.columnIDs,
		PartitionExprs:   p.SerializedExprs(),
	})
}

// UnmarshalJSON rebinds every stored expression in order. Absent entries
// stay nil at their position.
func (p *ExprPartitionInfo) UnmarshalJSON(data []byte) error {
	var raw exprPartitionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode partition info: %w", err)
	}

	binders := make([]*colbind.Binder, len(raw.PartitionExprs))
	for i, s := range raw.PartitionExprs {
		b, err := s.Deserialize()
		if err != nil {
			return fmt.Errorf("partition expression %d: %w", i, err)
		}
		binders[i] = b
	}

	loaded, err := newExprPartitionInfo(binders, raw.PartitionColumns, raw.Type)
	if err != nil {
		return err
	}
	*p = *loaded
	return nil
}
