package db

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern lowercases term and wraps it for a case-insensitive substring
// match. Pair it with `LOWER(col) LIKE ? ESCAPE '\'`.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

// ContainsClause builds `(LOWER(a) LIKE ? ESCAPE '\' OR LOWER(b) LIKE ? ...)`
// for the given columns and returns the matching args.
func ContainsClause(term string, columns ...string) (string, []any) {
	pattern := LikePattern(term)
	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, column := range columns {
		parts = append(parts, "LOWER("+column+`) LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
