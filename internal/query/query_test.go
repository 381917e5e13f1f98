package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleTag(t *testing.T) {
	expr, err := Parse("kick")
	require.NoError(t, err)
	require.IsType(t, &Tag{}, expr)
	assert.Equal(t, "kick", expr.(*Tag).Name)
}

func TestParseEmptyQueryMatchesAll(t *testing.T) {
	for _, input := range []string{"", "   ", "\t"} {
		expr, err := Parse(input)
		require.NoError(t, err)
		assert.Nil(t, expr)
		assert.Equal(t, "1=1", ToWhereClause(expr))
	}
}

func TestParseAndOr(t *testing.T) {
	expr, err := Parse("a b ~e inpath:1 | d e inpath:0")
	require.NoError(t, err)

	or, ok := expr.(*Or)
	require.True(t, ok, "top level should be the OR")

	// Left group: ((a AND b) AND ~e) AND inpath:1
	left, ok := or.Left.(*And)
	require.True(t, ok)
	assert.IsType(t, &InPath{}, left.Right)

	// Right group: (d AND e) AND inpath:0
	right, ok := or.Right.(*And)
	require.True(t, ok)
	assert.IsType(t, &InPath{}, right.Right)

	assert.Equal(t, []string{"a", "b", "e", "d", "e"}, Tags(expr))
}

func TestParseNegation(t *testing.T) {
	expr, err := Parse("~loop")
	require.NoError(t, err)
	not, ok := expr.(*Not)
	require.True(t, ok)
	assert.Equal(t, "loop", not.Expr.(*Tag).Name)

	// Double negation cancels
	expr, err = Parse("~~loop")
	require.NoError(t, err)
	assert.IsType(t, &Tag{}, expr)
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"kick |", "| kick", "~", "inpath:", "kick ~ snare"} {
		_, err := Parse(input)
		assert.ErrorIs(t, err, ErrEmptyTerm, "input %q", input)
	}
}

func TestWalkVisitsEveryNode(t *testing.T) {
	expr, err := Parse("a ~b | inpath:x")
	require.NoError(t, err)

	var count int
	Walk(expr, func(Expr) { count++ })
	// Or, And, Tag(a), Not, Tag(b), InPath(x)
	assert.Equal(t, 6, count)
}

func TestToWhereClauseTag(t *testing.T) {
	clause := ToWhereClause(&Tag{Name: "kick"})
	assert.Equal(t, `id IN (SELECT rowid FROM items_fts WHERE items_fts MATCH 'tags:"kick"')`, clause)
}

func TestToWhereClauseInPath(t *testing.T) {
	clause := ToWhereClause(&InPath{Path: "res/audio/"})
	assert.Equal(t, `path LIKE '%res/audio/%' ESCAPE '\'`, clause)
}

func TestToWhereClauseComposite(t *testing.T) {
	expr, err := Parse("kick ~loop | inpath:drums/")
	require.NoError(t, err)

	clause := ToWhereClause(expr)
	assert.Contains(t, clause, `MATCH 'tags:"kick"'`)
	assert.Contains(t, clause, `NOT (id IN`)
	assert.Contains(t, clause, `path LIKE '%drums/%'`)
	assert.Contains(t, clause, " OR ")
}

func TestEscapeFTS5String(t *testing.T) {
	assert.Equal(t, `plain`, EscapeFTS5String("plain"))
	assert.Equal(t, `say ""hi""`, EscapeFTS5String(`say "hi"`))
}

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, `plain`, EscapeLikePattern("plain", '\\'))
	assert.Equal(t, `100\%`, EscapeLikePattern("100%", '\\'))
	assert.Equal(t, `a\_b`, EscapeLikePattern("a_b", '\\'))
	assert.Equal(t, `c:\\dir`, EscapeLikePattern(`c:\dir`, '\\'))
	assert.Equal(t, `it''s`, EscapeLikePattern("it's", '\\'))
}

func TestTagEscapingInWhereClause(t *testing.T) {
	clause := ToWhereClause(&Tag{Name: `we"ird`})
	assert.Contains(t, clause, `tags:"we""ird"`)

	// Single quotes must not terminate the SQL string literal
	clause = ToWhereClause(&Tag{Name: "don't"})
	assert.Contains(t, clause, `don''t`)
}
