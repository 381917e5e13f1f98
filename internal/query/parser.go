package query

import (
	"errors"
	"strings"
)

// ErrEmptyTerm is returned for dangling operators, e.g. `kick |` or a bare `~`
var ErrEmptyTerm = errors.New("query term is empty")

const inPathPrefix = "inpath:"

// Parse turns a query string into an expression tree.
//
// Whitespace between terms means AND, `|` means OR (binding looser than AND),
// a `~` prefix negates a term, and `inpath:frag` matches the item path
// instead of its tags:
//
//	kick snare ~loop inpath:res/audio/ | pad
//
// An empty or all-whitespace query yields a nil expression (match all).
func Parse(input string) (Expr, error) {
	groups := strings.Split(input, "|")

	var root Expr
	for _, group := range groups {
		fields := strings.Fields(group)
		if len(fields) == 0 {
			if strings.TrimSpace(input) == "" {
				return nil, nil
			}
			return nil, ErrEmptyTerm
		}

		var groupExpr Expr
		for _, field := range fields {
			term, err := parseTerm(field)
			if err != nil {
				return nil, err
			}
			if groupExpr == nil {
				groupExpr = term
			} else {
				groupExpr = &And{Left: groupExpr, Right: term}
			}
		}

		if root == nil {
			root = groupExpr
		} else {
			root = &Or{Left: root, Right: groupExpr}
		}
	}

	return root, nil
}

func parseTerm(field string) (Expr, error) {
	negated := false
	for strings.HasPrefix(field, "~") {
		negated = !negated
		field = field[1:]
	}
	if field == "" {
		return nil, ErrEmptyTerm
	}

	var expr Expr
	if rest, ok := strings.CutPrefix(field, inPathPrefix); ok {
		if rest == "" {
			return nil, ErrEmptyTerm
		}
		expr = &InPath{Path: rest}
	} else {
		expr = &Tag{Name: field}
	}

	if negated {
		return &Not{Expr: expr}, nil
	}
	return expr, nil
}
