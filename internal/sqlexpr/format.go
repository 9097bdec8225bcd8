package sqlexpr

import (
	"regexp"
	"strings"

	"colident/internal/domain"
)

// LeafPolicy selects how column references are rendered.
type LeafPolicy int

const (
	// RenderNames writes backquoted display names. It is the user-facing
	// form. Identifier-bound references cannot be rendered this way.
	RenderNames LeafPolicy = iota
	// RenderIDs writes identifier tokens, never display names. It is the
	// only form written to durable metadata.
	RenderIDs
)

// Format renders an expression. The output is flat (no pretty-printing).
func Format(e Expr, policy LeafPolicy) (string, error) {
	f := &formatter{policy: policy}
	f.formatExpr(e)
	if f.err != nil {
		return "", f.err
	}
	return strings.TrimSpace(f.buf.String()), nil
}

// formatter is a simple SQL string builder carrying the leaf policy and the
// first error hit while rendering.
type formatter struct {
	buf    strings.Builder
	policy LeafPolicy
	err    error
}

func (f *formatter) write(s string) {
	f.buf.WriteString(s)
}

func (f *formatter) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// plainIdentRe matches identifiers that re-lex as a single bare token.
var plainIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QuoteIdent unconditionally backquotes an identifier.
// Internal backquotes are escaped by doubling.
func QuoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// quoteIfNeeded leaves plain, non-keyword identifiers bare and backquotes
// everything else, so identifier text stays canonical and re-parseable.
func quoteIfNeeded(s string) string {
	if plainIdentRe.MatchString(s) && !isKeyword(lookupKeyword(strings.ToLower(s))) {
		return s
	}
	return QuoteIdent(s)
}

// commaSep writes items separated by ", ".
func (f *formatter) commaSep(n int, fn func(i int)) {
	for i := 0; i < n; i++ {
		if i > 0 {
			f.write(", ")
		}
		fn(i)
	}
}

// formatExpr dispatches expression formatting by type.
func (f *formatter) formatExpr(e Expr) {
	if e == nil || f.err != nil {
		return
	}

	switch expr := e.(type) {
	case *Literal:
		f.formatLiteral(expr)
	case *ColumnRef:
		f.formatColumnRef(expr)
	case *DeferredColumnRef:
		f.formatDeferredColumnRef(expr)
	case *BinaryExpr:
		f.formatExpr(expr.Left)
		f.write(" " + operatorString(expr.Op) + " ")
		f.formatExpr(expr.Right)
	case *UnaryExpr:
		f.formatUnaryExpr(expr)
	case *ParenExpr:
		f.write("(")
		f.formatExpr(expr.Expr)
		f.write(")")
	case *FuncCall:
		f.formatFuncCall(expr)
	case *CaseExpr:
		f.formatCaseExpr(expr)
	case *CastExpr:
		f.write("CAST(")
		f.formatExpr(expr.Expr)
		f.write(" AS " + expr.TypeName + ")")
	case *InExpr:
		f.formatInExpr(expr)
	case *BetweenExpr:
		f.formatExpr(expr.Expr)
		if expr.Not {
			f.write(" NOT")
		}
		f.write(" BETWEEN ")
		f.formatExpr(expr.Low)
		f.write(" AND ")
		f.formatExpr(expr.High)
	case *IsNullExpr:
		f.formatExpr(expr.Expr)
		if expr.Not {
			f.write(" IS NOT NULL")
		} else {
			f.write(" IS NULL")
		}
	case *LikeExpr:
		f.formatLikeExpr(expr)
	case *IntervalExpr:
		f.write("INTERVAL ")
		f.formatExpr(expr.Value)
		f.write(" " + expr.Unit)
	default:
		f.fail(domain.ErrConfiguration("cannot render expression node %T", e))
	}
}

func (f *formatter) formatLiteral(lit *Literal) {
	switch lit.Type {
	case LiteralString:
		f.write("'")
		f.write(strings.ReplaceAll(lit.Value, "'", "''"))
		f.write("'")
	case LiteralBool:
		f.write(strings.ToUpper(lit.Value))
	case LiteralNull:
		f.write("NULL")
	default:
		f.write(lit.Value)
	}
}

func (f *formatter) formatColumnRef(col *ColumnRef) {
	switch b := col.Binding.(type) {
	case ByName:
		if f.policy != RenderNames {
			f.fail(domain.ErrConfiguration("column %q is name-bound and cannot be rendered as an identifier", b.Name))
			return
		}
		f.writeQualifier(col.Qualifier)
		f.write(QuoteIdent(b.Name))
	case ByID:
		if f.policy != RenderIDs {
			f.fail(domain.ErrConfiguration("column id %s is identifier-bound and cannot be rendered as a name", b.ID))
			return
		}
		f.writeQualifier(col.Qualifier)
		f.write(quoteIfNeeded(b.ID.String()))
	default:
		f.fail(domain.ErrConfiguration("column reference has no binding"))
	}
}

func (f *formatter) formatDeferredColumnRef(col *DeferredColumnRef) {
	f.writeQualifier(col.Qualifier)
	if f.policy == RenderIDs {
		f.write(quoteIfNeeded(col.id.String()))
		return
	}
	name, err := col.DisplayName()
	if err != nil {
		f.fail(err)
		return
	}
	f.write(QuoteIdent(name))
}

// writeQualifier writes "db.table." or "table." for a qualified reference.
func (f *formatter) writeQualifier(q *TableName) {
	if q == nil {
		return
	}
	quote := QuoteIdent
	if f.policy == RenderIDs {
		quote = quoteIfNeeded
	}
	if q.DB != "" {
		f.write(quote(q.DB))
		f.write(".")
	}
	f.write(quote(q.Table))
	f.write(".")
}

// operatorString returns the SQL string for a token type used as an operator.
func operatorString(op TokenType) string {
	if name, ok := tokenNames[op]; ok {
		return name
	}
	return "?"
}

func (f *formatter) formatUnaryExpr(expr *UnaryExpr) {
	switch {
	case expr.Op == TOKEN_NOT:
		f.write("NOT ")
	case isUnary(expr.Expr):
		// "- -x" must not collapse into a "--" line comment.
		f.write(operatorString(expr.Op) + " ")
	default:
		f.write(operatorString(expr.Op))
	}
	f.formatExpr(expr.Expr)
}

func (f *formatter) formatFuncCall(fn *FuncCall) {
	// Function names are written unquoted in original case
	f.write(fn.Name)
	f.write("(")
	if fn.Distinct {
		f.write("DISTINCT ")
	}
	if fn.Star {
		f.write("*")
	} else {
		f.commaSep(len(fn.Args), func(i int) {
			f.formatExpr(fn.Args[i])
		})
	}
	f.write(")")
}

func (f *formatter) formatCaseExpr(c *CaseExpr) {
	f.write("CASE")
	if c.Operand != nil {
		f.write(" ")
		f.formatExpr(c.Operand)
	}
	for _, w := range c.Whens {
		f.write(" WHEN ")
		f.formatExpr(w.Condition)
		f.write(" THEN ")
		f.formatExpr(w.Result)
	}
	if c.Else != nil {
		f.write(" ELSE ")
		f.formatExpr(c.Else)
	}
	f.write(" END")
}

func (f *formatter) formatInExpr(in *InExpr) {
	f.formatExpr(in.Expr)
	if in.Not {
		f.write(" NOT")
	}
	f.write(" IN (")
	f.commaSep(len(in.Values), func(i int) {
		f.formatExpr(in.Values[i])
	})
	f.write(")")
}

func (f *formatter) formatLikeExpr(like *LikeExpr) {
	f.formatExpr(like.Expr)
	if like.Not {
		f.write(" NOT")
	}
	if like.Regexp {
		f.write(" REGEXP ")
	} else {
		f.write(" LIKE ")
	}
	f.formatExpr(like.Pattern)
}
