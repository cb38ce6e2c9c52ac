package utils

import (
	"fmt"
	"strings"
)

// JoinWithAnd joins a slice of strings with AND operator
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

// WhereBuilder collects positional ($n) conditions for dynamic list queries.
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// Add appends a condition; use "?" where the placeholder goes.
func (w *WhereBuilder) Add(clause string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

// SQL returns " WHERE a AND b" or an empty string.
func (w *WhereBuilder) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + JoinWithAnd(w.clauses)
}

func (w *WhereBuilder) Args() []interface{} {
	return w.args
}

// NextArg returns the placeholder index for an argument appended after the conditions.
func (w *WhereBuilder) NextArg(offset int) int {
	return len(w.args) + offset
}
