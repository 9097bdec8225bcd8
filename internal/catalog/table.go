package catalog

import (
	"fmt"
	"strings"
	"time"

	"colident/internal/colbind"
	"colident/internal/domain"
	"colident/internal/schema"
	"colident/internal/sqlexpr"
)

// TableMeta is the catalog's metadata for one table or materialized view.
// Partition and Distribution are nil when the table has none.
type TableMeta struct {
	ID                 string
	DB                 string
	Name               string
	IsMaterializedView bool
	Columns            schema.Columns
	Partition          *ExprPartitionInfo
	Distribution       *HashDistributionInfo
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Table returns the schema view of m. It shares m's columns.
func (m *TableMeta) Table() *schema.Table {
	return &schema.Table{
		ID:                 m.ID,
		DB:                 m.DB,
		Name:               m.Name,
		IsMaterializedView: m.IsMaterializedView,
		Columns:            m.Columns,
	}
}

// QualifiedName returns db.table.
func (m *TableMeta) QualifiedName() string {
	return m.DB + "." + m.Name
}

// Copy returns a deep copy whose descriptors can be replaced or modified
// without affecting m.
func (m *TableMeta) Copy() *TableMeta {
	cp := *m
	cp.Columns = m.Columns.Copy()
	if m.Partition != nil {
		cp.Partition = m.Partition.Copy()
	}
	if m.Distribution != nil {
		cp.Distribution = m.Distribution.Copy()
	}
	return &cp
}

// ColumnDef declares a column in a TableDef.
type ColumnDef struct {
	Name string
	Type string
}

// TableDef is a CREATE TABLE request with expressions as SQL text over
// display names.
type TableDef struct {
	DB               string
	Name             string
	MaterializedView bool
	Columns          []ColumnDef
	PartitionBy      []string
	DistributedBy    []string
	Buckets          int
}

// NewTableMeta builds metadata for a new table. Column identifiers are
// derived from the initial names, and since nothing can have been renamed
// yet the partition expressions are bound literally.
func NewTableMeta(def TableDef) (*TableMeta, error) {
	if err := ValidateName(def.DB); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := ValidateName(def.Name); err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	if len(def.Columns) == 0 {
		return nil, domain.ErrValidation("table %s.%s has no columns", def.DB, def.Name)
	}

	tbl := &schema.Table{DB: def.DB, Name: def.Name, IsMaterializedView: def.MaterializedView}
	for _, cd := range def.Columns {
		if _, err := tbl.AddColumn(cd.Name, cd.Type); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	meta := &TableMeta{
		ID:                 domain.NewID(),
		DB:                 def.DB,
		Name:               def.Name,
		IsMaterializedView: def.MaterializedView,
		Columns:            tbl.Columns,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if len(def.PartitionBy) > 0 {
		part, err := buildPartition(tbl, def.PartitionBy)
		if err != nil {
			return nil, err
		}
		meta.Partition = part
	}

	if len(def.DistributedBy) > 0 {
		cols := make([]*schema.Column, len(def.DistributedBy))
		for i, name := range def.DistributedBy {
			col, ok := tbl.ColumnByName(name)
			if !ok {
				return nil, domain.ErrLookup("unknown column name %q in distribution", name)
			}
			cols[i] = col
		}
		dist, err := NewHashDistributionInfo(def.Buckets, cols)
		if err != nil {
			return nil, err
		}
		meta.Distribution = dist
	}

	return meta, nil
}

func buildPartition(tbl *schema.Table, texts []string) (*ExprPartitionInfo, error) {
	binders := make([]*colbind.Binder, len(texts))
	columns := make(schema.Columns, len(texts))
	typ := PartitionRange

	for i, text := range texts {
		e, err := sqlexpr.ParseExpr(text)
		if err != nil {
			return nil, domain.ErrParse(err, "invalid partition expression %q", text)
		}
		if _, ok := e.(*sqlexpr.ColumnRef); !ok {
			typ = PartitionExprRange
		}

		b := colbind.BindLiteral(e)
		// Literal binding trusts the names, so prove they exist.
		if _, err := b.ResolveNames(tbl); err != nil {
			return nil, fmt.Errorf("partition expression %q: %w", text, err)
		}
		ids := b.ColumnIDs()
		if len(ids) == 0 {
			return nil, domain.ErrValidation("partition expression %q references no column", text)
		}
		col, _ := tbl.ColumnByID(ids[0])
		binders[i] = b
		columns[i] = col
	}

	return NewExprPartitionInfo(binders, columns, typ)
}

// CreateTableSQL renders the table's DDL with current column names.
func (m *TableMeta) CreateTableSQL() (string, error) {
	tbl := m.Table()

	var b strings.Builder
	if m.IsMaterializedView {
		b.WriteString("CREATE MATERIALIZED VIEW ")
	} else {
		b.WriteString("CREATE TABLE ")
	}
	b.WriteString(sqlexpr.QuoteIdent(m.DB) + "." + sqlexpr.QuoteIdent(m.Name) + " (\n")
	for i, col := range m.Columns {
		b.WriteString("  " + sqlexpr.QuoteIdent(col.Name))
		if col.Type != "" {
			b.WriteString(" " + col.Type)
		}
		if i < len(m.Columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")

	if m.Partition != nil {
		clause, err := m.Partition.ToSQL(tbl)
		if err != nil {
			return "", err
		}
		b.WriteString("\n" + clause)
	}
	if m.Distribution != nil {
		clause, err := m.Distribution.ToSQL(tbl)
		if err != nil {
			return "", err
		}
		b.WriteString("\n" + clause)
	}
	return b.String(), nil
}

// ValidateName checks a database or table name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrValidation("name cannot be empty")
	}
	if strings.ContainsAny(name, ".`") {
		return domain.ErrValidation("name %q cannot contain '.' or '`'", name)
	}
	if len(name) > 256 {
		return domain.ErrValidation("name exceeds 256 characters")
	}
	return nil
}
