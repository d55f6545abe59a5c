package utils

import (
	"fmt"
	"strings"
)

// UpdateBuilder collects "col = $n" assignments for a partial UPDATE.
// Only columns that were Set end up in the statement.
type UpdateBuilder struct {
	sets []string
	args []any
}

func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
	return b
}

// SetRaw adds an assignment without a bind parameter, e.g. "updated_at = NOW()".
func (b *UpdateBuilder) SetRaw(expr string) *UpdateBuilder {
	b.sets = append(b.sets, expr)
	return b
}

func (b *UpdateBuilder) Empty() bool {
	return len(b.args) == 0
}

// Build renders UPDATE table SET ... WHERE whereCol = $n RETURNING returning.
func (b *UpdateBuilder) Build(table, whereCol string, whereVal any, returning string) (string, []any) {
	args := make([]any, 0, len(b.args)+1)
	args = append(args, b.args...)
	args = append(args, whereVal)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		table, strings.Join(b.sets, ", "), whereCol, len(args))
	if returning != "" {
		query += " RETURNING " + returning
	}
	return query, args
}
