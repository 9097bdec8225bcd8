// Package schema holds the logical column model and the two lookup
// directions the identity layer resolves against: display name to column
// and column identifier to column.
package schema

import (
	"strings"

	"colident/internal/columnid"
)

// Column is a logical column. Name is the mutable display name; ID is
// assigned once at creation and never changes.
type Column struct {
	Name string      `json:"name"`
	ID   columnid.ID `json:"id"`
	Type string      `json:"type"`
}

// NameLookup resolves a display name to a column.
type NameLookup interface {
	ColumnByName(name string) (*Column, bool)
}

// IDLookup resolves a column identifier to a column.
type IDLookup interface {
	ColumnByID(id columnid.ID) (*Column, bool)
}

// NameMap is the map-keyed name lookup. An exact key hit wins; otherwise
// keys are matched case-insensitively.
type NameMap map[string]*Column

// ColumnByName implements NameLookup.
func (m NameMap) ColumnByName(name string) (*Column, bool) {
	if col, ok := m[name]; ok && col != nil {
		return col, true
	}
	for key, col := range m {
		if col != nil && strings.EqualFold(key, name) {
			return col, true
		}
	}
	return nil, false
}

// IDMap is the map-keyed identifier lookup. An exact key hit wins;
// otherwise keys are matched case-insensitively.
type IDMap map[columnid.ID]*Column

// ColumnByID implements IDLookup.
func (m IDMap) ColumnByID(id columnid.ID) (*Column, bool) {
	if col, ok := m[id]; ok && col != nil {
		return col, true
	}
	for key, col := range m {
		if col != nil && key.EqualFold(id) {
			return col, true
		}
	}
	return nil, false
}

// Columns is the list-keyed form of both lookups. It is scanned linearly;
// exact matches are preferred over case-insensitive ones.
type Columns []*Column

// ColumnByName implements NameLookup.
func (cs Columns) ColumnByName(name string) (*Column, bool) {
	var folded *Column
	for _, col := range cs {
		if col == nil {
			continue
		}
		if col.Name == name {
			return col, true
		}
		if folded == nil && strings.EqualFold(col.Name, name) {
			folded = col
		}
	}
	return folded, folded != nil
}

// ColumnByID implements IDLookup.
func (cs Columns) ColumnByID(id columnid.ID) (*Column, bool) {
	var folded *Column
	for _, col := range cs {
		if col == nil {
			continue
		}
		if col.ID == id {
			return col, true
		}
		if folded == nil && col.ID.EqualFold(id) {
			folded = col
		}
	}
	return folded, folded != nil
}

// NameMap indexes the columns by display name.
func (cs Columns) NameMap() NameMap {
	m := make(NameMap, len(cs))
	for _, col := range cs {
		m[col.Name] = col
	}
	return m
}

// IDMap indexes the columns by identifier.
func (cs Columns) IDMap() IDMap {
	m := make(IDMap, len(cs))
	for _, col := range cs {
		m[col.ID] = col
	}
	return m
}

// Copy returns an independent copy of the list and of every column.
func (cs Columns) Copy() Columns {
	if cs == nil {
		return nil
	}
	out := make(Columns, len(cs))
	for i, col := range cs {
		cp := *col
		out[i] = &cp
	}
	return out
}

// Names returns the display names in column order.
func (cs Columns) Names() []string {
	out := make([]string, len(cs))
	for i, col := range cs {
		out[i] = col.Name
	}
	return out
}
