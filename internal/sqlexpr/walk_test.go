package sqlexpr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colident/internal/columnid"
)

func mustParse(t *testing.T, input string) Expr {
	t.Helper()
	expr, err := ParseExpr(input)
	require.NoError(t, err)
	return expr
}

func refNames(refs []*ColumnRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		name, _ := r.Name()
		out = append(out, name)
	}
	return out
}

func TestColumnRefs_TreeOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"binary", "a + b", []string{"a", "b"}},
		{"function", "date_trunc('day', dt)", []string{"dt"}},
		{"case", "CASE k WHEN a THEN b ELSE c END", []string{"k", "a", "b", "c"}},
		{"in", "x IN (y, 1, z)", []string{"x", "y", "z"}},
		{"literal_only", "1 + 2", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, refNames(ColumnRefs(mustParse(t, tc.input))))
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	orig := mustParse(t, "t.a + f(b, 1)")
	cp := Clone(orig)
	require.True(t, Equal(orig, cp))

	cp.(*BinaryExpr).Left.(*ColumnRef).Qualifier.Table = "changed"
	cp.(*BinaryExpr).Right.(*FuncCall).Args[1].(*Literal).Value = "2"

	assert.Equal(t, "t", orig.(*BinaryExpr).Left.(*ColumnRef).Qualifier.Table)
	assert.Equal(t, "1", orig.(*BinaryExpr).Right.(*FuncCall).Args[1].(*Literal).Value)
	assert.False(t, Equal(orig, cp))
}

func TestRewriteColumns_DoesNotMutateInput(t *testing.T) {
	orig := mustParse(t, "a BETWEEN b AND c")
	before, err := Format(orig, RenderNames)
	require.NoError(t, err)

	out, err := RewriteColumns(orig, func(c *ColumnRef) (Expr, error) {
		name, _ := c.Name()
		return IDRef(columnid.New("id_" + name)), nil
	})
	require.NoError(t, err)

	after, err := Format(orig, RenderNames)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	got, err := Format(out, RenderIDs)
	require.NoError(t, err)
	assert.Equal(t, "id_a BETWEEN id_b AND id_c", got)
}

func TestRewriteColumns_Error(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	out, err := RewriteColumns(mustParse(t, "a + b + c"), func(c *ColumnRef) (Expr, error) {
		calls++
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, out)
	assert.Equal(t, 1, calls)
}

func TestRewriteColumns_Nil(t *testing.T) {
	out, err := RewriteColumns(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestWithChildren_ArityMismatch(t *testing.T) {
	_, err := WithChildren(mustParse(t, "a + b"), []Expr{NameRef("x")})
	require.Error(t, err)
}

func TestWithChildren_CaseLayout(t *testing.T) {
	orig := mustParse(t, "CASE WHEN a THEN 1 ELSE 2 END").(*CaseExpr)
	kids := Children(orig)
	require.Len(t, kids, 3)

	out, err := WithChildren(orig, []Expr{NameRef("x"), NameRef("y"), NameRef("z")})
	require.NoError(t, err)
	c := out.(*CaseExpr)
	assert.Nil(t, c.Operand)
	assert.Equal(t, NameRef("x"), c.Whens[0].Condition)
	assert.Equal(t, NameRef("y"), c.Whens[0].Result)
	assert.Equal(t, NameRef("z"), c.Else)
}

func TestWalk_SkipChildren(t *testing.T) {
	var visited int
	Walk(mustParse(t, "f(a, b) + c"), func(e Expr) bool {
		visited++
		_, isFunc := e.(*FuncCall)
		return !isFunc
	})
	// BinaryExpr, FuncCall, c
	assert.Equal(t, 3, visited)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same", "a + 1", "a + 1", true},
		{"func_name_case", "DATE_TRUNC('day', a)", "date_trunc('day', a)", true},
		{"different_op", "a + 1", "a - 1", false},
		{"different_column", "a + 1", "b + 1", false},
		{"column_case_matters", "a", "A", false},
		{"qualifier_differs", "t.a", "a", false},
		{"not_flag", "a IN (1)", "a NOT IN (1)", false},
		{"cast_type_case", "CAST(a AS int)", "CAST(a AS INT)", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Equal(mustParse(t, tc.a), mustParse(t, tc.b)))
		})
	}
}

func TestEqual_DeferredRefsFoldCase(t *testing.T) {
	a := NewDeferredColumnRef(columnid.New("C1"))
	b := NewDeferredColumnRef(columnid.New("c1"))
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, IDRef(columnid.New("c1"))))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(a, nil))
}
