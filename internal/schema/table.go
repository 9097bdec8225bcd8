package schema

import (
	"strings"

	"colident/internal/columnid"
	"colident/internal/domain"
	"colident/internal/sqlexpr"
)

// Table is the schema of one table. It satisfies NameLookup, IDLookup and
// sqlexpr.ColumnResolver.
type Table struct {
	ID                 string  `json:"id"`
	DB                 string  `json:"db"`
	Name               string  `json:"name"`
	IsMaterializedView bool    `json:"is_materialized_view"`
	Columns            Columns `json:"columns"`
}

var _ sqlexpr.ColumnResolver = (*Table)(nil)

// String returns db.table.
func (t *Table) String() string {
	return t.QualifiedName().String()
}

// QualifiedName returns the table's name as an expression qualifier.
func (t *Table) QualifiedName() sqlexpr.TableName {
	return sqlexpr.TableName{DB: t.DB, Table: t.Name}
}

// ColumnByName implements NameLookup.
func (t *Table) ColumnByName(name string) (*Column, bool) {
	return t.Columns.ColumnByName(name)
}

// ColumnByID implements IDLookup.
func (t *Table) ColumnByID(id columnid.ID) (*Column, bool) {
	return t.Columns.ColumnByID(id)
}

// ColumnName returns the current display name of the column with id.
func (t *Table) ColumnName(id columnid.ID) (string, bool) {
	col, ok := t.ColumnByID(id)
	if !ok {
		return "", false
	}
	return col.Name, true
}

// Copy returns a deep copy.
func (t *Table) Copy() *Table {
	cp := *t
	cp.Columns = t.Columns.Copy()
	return &cp
}

// AddColumn appends a column whose identifier is derived from its initial
// name. The identifier must not collide with an existing one.
func (t *Table) AddColumn(name, typ string) (*Column, error) {
	if err := ValidateColumnName(name); err != nil {
		return nil, err
	}
	if _, ok := t.ColumnByName(name); ok {
		return nil, domain.ErrConflict("column %q already exists in %s", name, t)
	}
	id := columnid.New(name)
	if _, ok := t.ColumnByID(id); ok {
		return nil, domain.ErrConflict("column identifier %s already in use in %s", id, t)
	}
	col := &Column{Name: name, ID: id, Type: typ}
	t.Columns = append(t.Columns, col)
	return col, nil
}

// RenameColumn changes a column's display name. The identifier is kept.
func (t *Table) RenameColumn(oldName, newName string) (*Column, error) {
	if err := ValidateColumnName(newName); err != nil {
		return nil, err
	}
	col, ok := t.ColumnByName(oldName)
	if !ok {
		return nil, domain.ErrNotFound("column %q not found in %s", oldName, t)
	}
	if other, ok := t.ColumnByName(newName); ok && other != col {
		return nil, domain.ErrConflict("column %q already exists in %s", newName, t)
	}
	col.Name = newName
	return col, nil
}

// DropColumn removes the named column and returns it.
func (t *Table) DropColumn(name string) (*Column, error) {
	for i, col := range t.Columns {
		if strings.EqualFold(col.Name, name) {
			t.Columns = append(t.Columns[:i:i], t.Columns[i+1:]...)
			return col, nil
		}
	}
	return nil, domain.ErrNotFound("column %q not found in %s", name, t)
}

// ValidateColumnName rejects names the catalog cannot store.
func ValidateColumnName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrValidation("column name cannot be empty")
	}
	if len(name) > 1024 {
		return domain.ErrValidation("column name %q exceeds 1024 characters", name[:32]+"...")
	}
	return nil
}
