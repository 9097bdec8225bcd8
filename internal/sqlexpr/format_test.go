package sqlexpr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colident/internal/columnid"
	"colident/internal/domain"
)

// bindAsIDs rebinds every name leaf to an identifier spelled like the name.
func bindAsIDs(t *testing.T, e Expr) Expr {
	t.Helper()
	out, err := RewriteColumns(e, func(c *ColumnRef) (Expr, error) {
		name, _ := c.Name()
		return &ColumnRef{Qualifier: c.Qualifier, Binding: ByID{ID: columnid.New(name)}}, nil
	})
	require.NoError(t, err)
	return out
}

func TestFormat_RenderNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"arith", "a + 1", "`a` + 1"},
		{"function", "date_trunc('day', dt)", "date_trunc('day', `dt`)"},
		{"not_in", "x not in (1, 2)", "`x` NOT IN (1, 2)"},
		{"between", "x between 1 and 10", "`x` BETWEEN 1 AND 10"},
		{"cast", "CAST(k AS decimal(10, 2))", "CAST(`k` AS DECIMAL(10,2))"},
		{"ne_normalized", "a <> b", "`a` != `b`"},
		{"not_is_null", "NOT a is null", "NOT `a` IS NULL"},
		{"double_negation", "- -1", "- -1"},
		{"interval", "interval 1 day", "INTERVAL 1 DAY"},
		{"qualified", "t.a = 'x'", "`t`.`a` = 'x'"},
		{"bools", "true AND null", "TRUE AND NULL"},
		{"escaped_string", "s = 'it''s'", "`s` = 'it''s'"},
		{"escaped_ident", "`a``b` > 0", "`a``b` > 0"},
		{"case", "case when a > 1 then 'x' else 'y' end", "CASE WHEN `a` > 1 THEN 'x' ELSE 'y' END"},
		{"paren", "(a + b) * 2", "(`a` + `b`) * 2"},
		{"count_star", "count(*)", "count(*)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := ParseExpr(tc.input)
			require.NoError(t, err)
			got, err := Format(expr, RenderNames)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			// Output must re-parse to the same tree.
			again, err := ParseExpr(got)
			require.NoError(t, err)
			assert.True(t, Equal(expr, again), "reparsed %q", got)
		})
	}
}

func TestFormat_RenderIDs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "a + 1", "a + 1"},
		{"keyword_id_quoted", "`end` = 1", "`end` = 1"},
		{"space_quoted", "`my col` > 0", "`my col` > 0"},
		{"function", "date_trunc('day', dt)", "date_trunc('day', dt)"},
		{"qualified", "db1.t1.k1", "db1.t1.k1"},
		{"digit_leading", "`1x` = 1", "`1x` = 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := ParseExpr(tc.input)
			require.NoError(t, err)
			got, err := Format(bindAsIDs(t, expr), RenderIDs)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormat_PolicyMismatch(t *testing.T) {
	var cfgErr *domain.ConfigurationError

	_, err := Format(NameRef("a"), RenderIDs)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))

	_, err = Format(IDRef(columnid.New("c1")), RenderNames)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))

	_, err = Format(&ColumnRef{}, RenderNames)
	require.Error(t, err)
}

func TestFormat_ErrorInsideTree(t *testing.T) {
	expr := &BinaryExpr{Left: NameRef("a"), Op: TOKEN_PLUS, Right: IDRef(columnid.New("c2"))}
	got, err := Format(expr, RenderNames)
	require.Error(t, err)
	assert.Empty(t, got)
}

func TestFormat_DeferredColumnRef(t *testing.T) {
	table := fakeResolver{name: "db1.t1", cols: map[string]string{"c1": "k1"}}
	ref := NewDeferredColumnRef(columnid.New("c1"))

	got, err := Format(ref, RenderIDs)
	require.NoError(t, err)
	assert.Equal(t, "c1", got)

	_, err = Format(ref, RenderNames)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table not set")

	ref.SetTable(table)
	got, err = Format(ref, RenderNames)
	require.NoError(t, err)
	assert.Equal(t, "`k1`", got)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`a`", QuoteIdent("a"))
	assert.Equal(t, "`a``b`", QuoteIdent("a`b"))
	assert.Equal(t, "``", QuoteIdent(""))
}
