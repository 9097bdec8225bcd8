// Package colbind converts expressions between their display-name form and
// their column-identifier form, and serializes the identifier form to the
// canonical text stored in catalog metadata.
//
// A Binder is immutable. Every operation clones the tree it reads and
// returns a new value, so a Binder held by shared catalog metadata can be
// used by any number of concurrent readers.
package colbind

import (
	"fmt"

	"colident/internal/columnid"
	"colident/internal/domain"
	"colident/internal/schema"
	"colident/internal/sqlexpr"
)

// Binder owns an expression tree whose column references are all bound to
// identifiers.
type Binder struct {
	expr sqlexpr.Expr
}

// BindNames binds every column reference in e to the identifier of the
// column its display name resolves to in lookup. Any unknown name fails the
// whole bind.
func BindNames(lookup schema.NameLookup, e sqlexpr.Expr) (*Binder, error) {
	out, err := sqlexpr.RewriteLeaves(e, func(leaf sqlexpr.Expr) (sqlexpr.Expr, error) {
		switch ref := leaf.(type) {
		case *sqlexpr.ColumnRef:
			name, ok := ref.Name()
			if !ok {
				// already identifier-bound
				return ref, nil
			}
			col, ok := lookup.ColumnByName(name)
			if !ok {
				return nil, domain.ErrLookup("unknown column name %q", name)
			}
			return &sqlexpr.ColumnRef{Qualifier: ref.Qualifier, Binding: sqlexpr.ByID{ID: col.ID}}, nil
		case *sqlexpr.DeferredColumnRef:
			return idRef(ref), nil
		default:
			return nil, fmt.Errorf("unexpected leaf %T", leaf)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Binder{expr: out}, nil
}

// BindLiteral binds every column reference to an identifier spelled like
// its current display name. It is only correct for tables whose columns
// have never been renamed, i.e. at creation.
func BindLiteral(e sqlexpr.Expr) *Binder {
	return &Binder{expr: literalIDs(e)}
}

// Deserialize parses canonical text. Column tokens in the text are already
// identifiers and are bound without lookup.
func Deserialize(text string) (*Binder, error) {
	e, err := sqlexpr.ParseExpr(text)
	if err != nil {
		return nil, domain.ErrParse(err, "cannot deserialize expression %q", text)
	}
	return &Binder{expr: literalIDs(e)}, nil
}

func literalIDs(e sqlexpr.Expr) sqlexpr.Expr {
	out, err := sqlexpr.RewriteLeaves(e, func(leaf sqlexpr.Expr) (sqlexpr.Expr, error) {
		switch ref := leaf.(type) {
		case *sqlexpr.ColumnRef:
			if name, ok := ref.Name(); ok {
				return &sqlexpr.ColumnRef{Qualifier: ref.Qualifier, Binding: sqlexpr.ByID{ID: columnid.New(name)}}, nil
			}
			return ref, nil
		case *sqlexpr.DeferredColumnRef:
			return idRef(ref), nil
		default:
			return leaf, nil
		}
	})
	if err != nil {
		panic(fmt.Sprintf("colbind: literal bind failed: %v", err))
	}
	return out
}

func idRef(ref *sqlexpr.DeferredColumnRef) *sqlexpr.ColumnRef {
	return &sqlexpr.ColumnRef{Qualifier: ref.Qualifier, Binding: sqlexpr.ByID{ID: ref.ID()}}
}

// ResolveNames returns a new name-bound tree carrying the current display
// names from lookup. Any unknown identifier fails the whole resolve.
func (b *Binder) ResolveNames(lookup schema.IDLookup) (sqlexpr.Expr, error) {
	return sqlexpr.RewriteColumns(b.expr, func(ref *sqlexpr.ColumnRef) (sqlexpr.Expr, error) {
		id, _ := ref.ID()
		col, ok := lookup.ColumnByID(id)
		if !ok {
			return nil, domain.ErrLookup("unknown column identifier %s", id)
		}
		return &sqlexpr.ColumnRef{Qualifier: ref.Qualifier, Binding: sqlexpr.ByName{Name: col.Name}}, nil
	})
}

// Deferred returns a new tree whose column references resolve their display
// names lazily against t.
func (b *Binder) Deferred(t sqlexpr.ColumnResolver) sqlexpr.Expr {
	out, _ := sqlexpr.RewriteColumns(b.expr, func(ref *sqlexpr.ColumnRef) (sqlexpr.Expr, error) {
		id, _ := ref.ID()
		d := sqlexpr.NewDeferredColumnRef(id)
		d.Qualifier = ref.Qualifier
		d.SetTable(t)
		return d, nil
	})
	return out
}

// Serialize renders the canonical identifier text. Qualified references are
// written as qualifier.identifier.
func (b *Binder) Serialize() string {
	text, err := sqlexpr.Format(b.expr, sqlexpr.RenderIDs)
	if err != nil {
		panic(fmt.Sprintf("colbind: binder holds an unrenderable tree: %v", err))
	}
	return text
}

// String implements fmt.Stringer.
func (b *Binder) String() string {
	if b == nil {
		return "<nil>"
	}
	return b.Serialize()
}

// Equal compares trees node for node. Identifiers compare exactly.
func (b *Binder) Equal(other *Binder) bool {
	if b == nil || other == nil {
		return b == other
	}
	return sqlexpr.Equal(b.expr, other.expr)
}

// RenameQualifier rewrites every qualified reference to point at table, and
// at db when db is non-empty. Identifiers and unqualified references are
// untouched.
func (b *Binder) RenameQualifier(db, table string) *Binder {
	out, _ := sqlexpr.RewriteColumns(b.expr, func(ref *sqlexpr.ColumnRef) (sqlexpr.Expr, error) {
		if ref.Qualifier != nil {
			ref.Qualifier.Table = table
			if db != "" {
				ref.Qualifier.DB = db
			}
		}
		return ref, nil
	})
	return &Binder{expr: out}
}

// ColumnIDs returns the referenced identifiers in tree order, duplicates
// included.
func (b *Binder) ColumnIDs() []columnid.ID {
	refs := sqlexpr.ColumnRefs(b.expr)
	ids := make([]columnid.ID, 0, len(refs))
	for _, ref := range refs {
		id, _ := ref.ID()
		ids = append(ids, id)
	}
	return ids
}

// References reports whether the tree references id, case-insensitively.
func (b *Binder) References(id columnid.ID) bool {
	for _, ref := range b.ColumnIDs() {
		if ref.EqualFold(id) {
			return true
		}
	}
	return false
}
