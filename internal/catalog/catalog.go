// Package catalog holds table metadata and the descriptors whose persisted
// expressions must survive table and column renames: the partition
// expression descriptor and the hash distribution descriptor.
package catalog

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"colident/internal/domain"
)

// Catalog is the in-memory table registry. All writes are serialized by a
// single metadata lock; a write replaces a table's metadata as a whole, so a
// value handed out by Get is never modified afterwards.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*TableMeta
	logger *slog.Logger
}

// New creates an empty catalog.
func New(logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		tables: make(map[string]*TableMeta),
		logger: logger,
	}
}

func tableKey(db, table string) string {
	return strings.ToLower(db) + "." + strings.ToLower(table)
}

// Load replaces the catalog contents, e.g. with tables read from the
// metastore.
func (c *Catalog) Load(metas []*TableMeta) {
	tables := make(map[string]*TableMeta, len(metas))
	for _, m := range metas {
		tables[tableKey(m.DB, m.Name)] = m
	}

	c.mu.Lock()
	c.tables = tables
	c.mu.Unlock()
	c.logger.Info("catalog loaded", "tables", len(tables))
}

// CreateTable registers a new table.
func (c *Catalog) CreateTable(def TableDef) (*TableMeta, error) {
	meta, err := NewTableMeta(def)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := tableKey(meta.DB, meta.Name)
	if _, ok := c.tables[key]; ok {
		return nil, domain.ErrConflict("table %s already exists", meta.QualifiedName())
	}
	c.tables[key] = meta
	c.logger.Info("table created", "table", meta.QualifiedName(), "columns", len(meta.Columns))
	return meta.Copy(), nil
}

// Put registers or replaces a table's metadata as-is.
func (c *Catalog) Put(meta *TableMeta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[tableKey(meta.DB, meta.Name)] = meta.Copy()
}

// Get returns a snapshot of a table's metadata.
func (c *Catalog) Get(db, table string) (*TableMeta, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	meta, ok := c.tables[tableKey(db, table)]
	if !ok {
		return nil, domain.ErrNotFound("table %s.%s not found", db, table)
	}
	return meta.Copy(), nil
}

// List returns snapshots of all tables ordered by database and name.
func (c *Catalog) List() []*TableMeta {
	c.mu.RLock()
	out := make([]*TableMeta, 0, len(c.tables))
	for _, m := range c.tables {
		out = append(out, m.Copy())
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return tableKey(out[i].DB, out[i].Name) < tableKey(out[j].DB, out[j].Name)
	})
	return out
}

// update runs fn on a private copy of the named table and installs the
// copy if fn succeeds.
func (c *Catalog) update(db, table string, fn func(m *TableMeta) error) (*TableMeta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := tableKey(db, table)
	cur, ok := c.tables[key]
	if !ok {
		return nil, domain.ErrNotFound("table %s.%s not found", db, table)
	}

	next := cur.Copy()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()

	newKey := tableKey(next.DB, next.Name)
	if newKey != key {
		if _, exists := c.tables[newKey]; exists {
			return nil, domain.ErrConflict("table %s already exists", next.QualifiedName())
		}
		delete(c.tables, key)
	}
	c.tables[newKey] = next
	return next.Copy(), nil
}

// RenameColumn changes a column's display name. Descriptors are not touched:
// they reference the column by identifier.
func (c *Catalog) RenameColumn(db, table, oldName, newName string) (*TableMeta, error) {
	meta, err := c.update(db, table, func(m *TableMeta) error {
		tbl := m.Table()
		if _, err := tbl.RenameColumn(oldName, newName); err != nil {
			return err
		}
		m.Columns = tbl.Columns
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("column renamed", "table", meta.QualifiedName(), "old", oldName, "new", newName)
	return meta, nil
}

// RenameTable moves a table to newDB.newName, keeping the database when
// newDB is empty. Qualified references in partition expressions follow.
func (c *Catalog) RenameTable(db, table, newDB, newName string) (*TableMeta, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}
	if newDB != "" {
		if err := ValidateName(newDB); err != nil {
			return nil, err
		}
	}

	meta, err := c.update(db, table, func(m *TableMeta) error {
		if m.Partition != nil {
			if err := m.Partition.RenameTable(newDB, newName); err != nil {
				return err
			}
		}
		if newDB != "" {
			m.DB = newDB
		}
		m.Name = newName
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("table renamed", "from", db+"."+table, "to", meta.QualifiedName())
	return meta, nil
}

// DropColumn removes a column no descriptor depends on.
func (c *Catalog) DropColumn(db, table, column string) (*TableMeta, error) {
	meta, err := c.update(db, table, func(m *TableMeta) error {
		tbl := m.Table()
		col, ok := tbl.ColumnByName(column)
		if !ok {
			return domain.ErrNotFound("column %q not found in %s", column, m.QualifiedName())
		}
		if m.Partition != nil && m.Partition.References(col.ID) {
			return domain.ErrConflict("column %q is used by the partition expression of %s", col.Name, m.QualifiedName())
		}
		if m.Distribution != nil && m.Distribution.References(col.ID) {
			return domain.ErrConflict("column %q is a distribution column of %s", col.Name, m.QualifiedName())
		}
		if len(m.Columns) == 1 {
			return domain.ErrValidation("cannot drop the last column of %s", m.QualifiedName())
		}
		if _, err := tbl.DropColumn(col.Name); err != nil {
			return err
		}
		m.Columns = tbl.Columns
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("column dropped", "table", meta.QualifiedName(), "column", column)
	return meta, nil
}

// DropTable removes a table.
func (c *Catalog) DropTable(db, table string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := tableKey(db, table)
	if _, ok := c.tables[key]; !ok {
		return domain.ErrNotFound("table %s.%s not found", db, table)
	}
	delete(c.tables, key)
	c.logger.Info("table dropped", "table", db+"."+table)
	return nil
}

// ShowCreateTable renders the table's DDL using current column names.
func (c *Catalog) ShowCreateTable(db, table string) (string, error) {
	meta, err := c.Get(db, table)
	if err != nil {
		return "", err
	}
	return meta.CreateTableSQL()
}
