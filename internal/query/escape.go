package query

import "strings"

// EscapeFTS5String escapes a string for embedding inside a double-quoted
// FTS5 phrase: internal double quotes are doubled.
func EscapeFTS5String(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

// EscapeLikePattern escapes LIKE wildcards and single quotes in s so it can
// be embedded in a LIKE '...%' ESCAPE pattern. The escape character itself
// is escaped first.
func EscapeLikePattern(s string, escape byte) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case escape:
			b.WriteByte(escape)
			b.WriteByte(escape)
		case '%', '_':
			b.WriteByte(escape)
			b.WriteByte(s[i])
		case '\'':
			b.WriteString("''")
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
