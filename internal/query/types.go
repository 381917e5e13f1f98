package query

// Expr is the closed set of query expression nodes. Leaves are Tag (matches
// against the indexed tag list) and InPath (matches against the item path);
// And/Or/Not combine them.
type Expr interface {
	isExpr()
}

// And represents conjunction of two terms: `a b`
type And struct {
	Left, Right Expr
}

// Or represents disjunction of two terms: `a | b`
type Or struct {
	Left, Right Expr
}

// Not represents negation of an expression: `~a`
type Not struct {
	Expr Expr
}

// Tag matches items carrying the named tag, e.g. `kick`
type Tag struct {
	Name string
}

// InPath matches items whose path contains the fragment, e.g. `inpath:res/audio/`
type InPath struct {
	Path string
}

func (*And) isExpr()    {}
func (*Or) isExpr()     {}
func (*Not) isExpr()    {}
func (*Tag) isExpr()    {}
func (*InPath) isExpr() {}

// Walk visits expr and every subexpression depth-first
func Walk(expr Expr, visit func(Expr)) {
	if expr == nil {
		return
	}
	visit(expr)
	switch v := expr.(type) {
	case *And:
		Walk(v.Left, visit)
		Walk(v.Right, visit)
	case *Or:
		Walk(v.Left, visit)
		Walk(v.Right, visit)
	case *Not:
		Walk(v.Expr, visit)
	}
}

// Tags returns the tag names mentioned anywhere in expr, in visit order
func Tags(expr Expr) []string {
	var tags []string
	Walk(expr, func(e Expr) {
		if tag, ok := e.(*Tag); ok {
			tags = append(tags, tag.Name)
		}
	})
	return tags
}
