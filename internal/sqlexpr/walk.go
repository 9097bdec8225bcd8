package sqlexpr

import (
	"fmt"
	"strings"
)

// Tree helpers. Every rewrite builds a new tree; inputs are never mutated,
// so trees stored in shared catalog metadata can be read concurrently.

// Children returns the direct children of e in evaluation order.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *BinaryExpr:
		return []Expr{n.Left, n.Right}
	case *UnaryExpr:
		return []Expr{n.Expr}
	case *ParenExpr:
		return []Expr{n.Expr}
	case *FuncCall:
		return append([]Expr(nil), n.Args...)
	case *CaseExpr:
		var out []Expr
		if n.Operand != nil {
			out = append(out, n.Operand)
		}
		for _, w := range n.Whens {
			out = append(out, w.Condition, w.Result)
		}
		if n.Else != nil {
			out = append(out, n.Else)
		}
		return out
	case *CastExpr:
		return []Expr{n.Expr}
	case *InExpr:
		return append([]Expr{n.Expr}, n.Values...)
	case *BetweenExpr:
		return []Expr{n.Expr, n.Low, n.High}
	case *IsNullExpr:
		return []Expr{n.Expr}
	case *LikeExpr:
		return []Expr{n.Expr, n.Pattern}
	case *IntervalExpr:
		return []Expr{n.Value}
	default:
		// Literal, ColumnRef, DeferredColumnRef
		return nil
	}
}

// WithChildren returns a shallow copy of e with its children replaced.
// children must have the length Children(e) returns.
func WithChildren(e Expr, children []Expr) (Expr, error) {
	if want := len(Children(e)); len(children) != want {
		return nil, fmt.Errorf("%T expects %d children, got %d", e, want, len(children))
	}

	switch n := e.(type) {
	case *BinaryExpr:
		return &BinaryExpr{Left: children[0], Op: n.Op, Right: children[1]}, nil
	case *UnaryExpr:
		return &UnaryExpr{Op: n.Op, Expr: children[0]}, nil
	case *ParenExpr:
		return &ParenExpr{Expr: children[0]}, nil
	case *FuncCall:
		return &FuncCall{Name: n.Name, Distinct: n.Distinct, Star: n.Star, Args: children}, nil
	case *CaseExpr:
		out := &CaseExpr{}
		i := 0
		if n.Operand != nil {
			out.Operand = children[i]
			i++
		}
		out.Whens = make([]WhenClause, len(n.Whens))
		for w := range n.Whens {
			out.Whens[w] = WhenClause{Condition: children[i], Result: children[i+1]}
			i += 2
		}
		if n.Else != nil {
			out.Else = children[i]
		}
		return out, nil
	case *CastExpr:
		return &CastExpr{Expr: children[0], TypeName: n.TypeName}, nil
	case *InExpr:
		return &InExpr{Expr: children[0], Not: n.Not, Values: children[1:]}, nil
	case *BetweenExpr:
		return &BetweenExpr{Expr: children[0], Not: n.Not, Low: children[1], High: children[2]}, nil
	case *IsNullExpr:
		return &IsNullExpr{Expr: children[0], Not: n.Not}, nil
	case *LikeExpr:
		return &LikeExpr{Expr: children[0], Not: n.Not, Pattern: children[1], Regexp: n.Regexp}, nil
	case *IntervalExpr:
		return &IntervalExpr{Value: children[0], Unit: n.Unit}, nil
	case *Literal:
		cp := *n
		return &cp, nil
	case *ColumnRef:
		return n.copy(), nil
	case *DeferredColumnRef:
		return CopyDeferredColumnRef(n), nil
	default:
		return nil, fmt.Errorf("unsupported expression node %T", e)
	}
}

// RewriteColumns returns a new tree in which every ColumnRef leaf is
// replaced by fn's result. fn receives a private copy of the leaf. The first
// error aborts the rewrite and no tree is returned. Deferred references are
// copied unchanged.
func RewriteColumns(e Expr, fn func(*ColumnRef) (Expr, error)) (Expr, error) {
	return RewriteLeaves(e, func(leaf Expr) (Expr, error) {
		if col, ok := leaf.(*ColumnRef); ok {
			return fn(col)
		}
		return leaf, nil
	})
}

// RewriteLeaves is RewriteColumns over both column-reference variants. fn
// receives a private copy of each *ColumnRef or *DeferredColumnRef leaf.
func RewriteLeaves(e Expr, fn func(Expr) (Expr, error)) (Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch leaf := e.(type) {
	case *ColumnRef:
		return fn(leaf.copy())
	case *DeferredColumnRef:
		return fn(CopyDeferredColumnRef(leaf))
	}

	kids := Children(e)
	if len(kids) == 0 {
		return WithChildren(e, nil)
	}
	rewritten := make([]Expr, len(kids))
	for i, kid := range kids {
		out, err := RewriteLeaves(kid, fn)
		if err != nil {
			return nil, err
		}
		rewritten[i] = out
	}
	return WithChildren(e, rewritten)
}

// Clone returns a deep copy of e. Deferred references keep their attached
// table.
func Clone(e Expr) Expr {
	out, err := RewriteColumns(e, func(c *ColumnRef) (Expr, error) { return c, nil })
	if err != nil {
		// Only reachable for node kinds outside this package's closed set.
		panic(err)
	}
	return out
}

// Walk visits e in pre-order. Returning false from fn skips that node's
// children.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, kid := range Children(e) {
		Walk(kid, fn)
	}
}

// ColumnRefs returns the column-reference leaves of e in tree order.
func ColumnRefs(e Expr) []*ColumnRef {
	var refs []*ColumnRef
	Walk(e, func(n Expr) bool {
		if col, ok := n.(*ColumnRef); ok {
			refs = append(refs, col)
		}
		return true
	})
	return refs
}

// Equal reports structural equality. Identifier bindings compare exactly;
// deferred references compare identifiers case-insensitively.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !shallowEqual(a, b) {
		return false
	}
	ak, bk := Children(a), Children(b)
	if len(ak) != len(bk) {
		return false
	}
	for i := range ak {
		if !Equal(ak[i], bk[i]) {
			return false
		}
	}
	return true
}

func shallowEqual(a, b Expr) bool {
	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)
		return ok && x.Type == y.Type && x.Value == y.Value
	case *ColumnRef:
		y, ok := b.(*ColumnRef)
		return ok && qualifierEqual(x.Qualifier, y.Qualifier) && x.Binding == y.Binding
	case *DeferredColumnRef:
		y, ok := b.(*DeferredColumnRef)
		return ok && x.Equal(y)
	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)
		return ok && x.Op == y.Op
	case *UnaryExpr:
		y, ok := b.(*UnaryExpr)
		return ok && x.Op == y.Op
	case *ParenExpr:
		_, ok := b.(*ParenExpr)
		return ok
	case *FuncCall:
		y, ok := b.(*FuncCall)
		return ok && strings.EqualFold(x.Name, y.Name) && x.Distinct == y.Distinct && x.Star == y.Star
	case *CaseExpr:
		y, ok := b.(*CaseExpr)
		return ok && (x.Operand == nil) == (y.Operand == nil) &&
			len(x.Whens) == len(y.Whens) && (x.Else == nil) == (y.Else == nil)
	case *CastExpr:
		y, ok := b.(*CastExpr)
		return ok && strings.EqualFold(x.TypeName, y.TypeName)
	case *InExpr:
		y, ok := b.(*InExpr)
		return ok && x.Not == y.Not
	case *BetweenExpr:
		y, ok := b.(*BetweenExpr)
		return ok && x.Not == y.Not
	case *IsNullExpr:
		y, ok := b.(*IsNullExpr)
		return ok && x.Not == y.Not
	case *LikeExpr:
		y, ok := b.(*LikeExpr)
		return ok && x.Not == y.Not && x.Regexp == y.Regexp
	case *IntervalExpr:
		y, ok := b.(*IntervalExpr)
		return ok && strings.EqualFold(x.Unit, y.Unit)
	default:
		return false
	}
}

func qualifierEqual(a, b *TableName) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func isUnary(e Expr) bool {
	_, ok := e.(*UnaryExpr)
	return ok
}
