package query

import (
	"fmt"
	"strings"
)

// ToWhereClause compiles expr into a SQL predicate over the items table.
// Tag leaves become FTS5 subqueries against items_fts, InPath leaves become
// LIKE patterns; all values are escaped inline. A nil expr matches everything.
func ToWhereClause(expr Expr) string {
	if expr == nil {
		return "1=1"
	}
	switch v := expr.(type) {
	case *And:
		return fmt.Sprintf("(%s AND %s)", ToWhereClause(v.Left), ToWhereClause(v.Right))
	case *Or:
		return fmt.Sprintf("(%s OR %s)", ToWhereClause(v.Left), ToWhereClause(v.Right))
	case *Not:
		return fmt.Sprintf("NOT (%s)", ToWhereClause(v.Expr))
	case *Tag:
		match := fmt.Sprintf(`tags:"%s"`, EscapeFTS5String(v.Name))
		return fmt.Sprintf(
			`id IN (SELECT rowid FROM items_fts WHERE items_fts MATCH '%s')`,
			strings.ReplaceAll(match, "'", "''"))
	case *InPath:
		return fmt.Sprintf(`path LIKE '%%%s%%' ESCAPE '\'`,
			EscapeLikePattern(v.Path, '\\'))
	default:
		return "1=1"
	}
}
