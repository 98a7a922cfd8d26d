package postgres

import "strings"

// joinCols renders a column list for RETURNING clauses.
func joinCols(cols []string) string {
	return strings.Join(cols, ", ")
}
