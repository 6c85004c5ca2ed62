// Package query assembles parameterized SQL filter clauses for list endpoints.
//
// Every present criterion contributes exactly one AND-ed predicate bound to one
// positional placeholder. Placeholders are numbered in the order criteria are
// added, so the same Builder yields both a paged SELECT and a matching COUNT.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Builder collects predicates and their bound arguments.
type Builder struct {
	conditions []string
	args       []interface{}
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// Eq adds "column = $n" when value is present.
func (b *Builder) Eq(column string, value interface{}) *Builder {
	return b.add(column, "=", value)
}

// Gte adds "column >= $n" when value is present.
func (b *Builder) Gte(column string, value interface{}) *Builder {
	return b.add(column, ">=", value)
}

// Lt adds "column < $n" when value is present.
func (b *Builder) Lt(column string, value interface{}) *Builder {
	return b.add(column, "<", value)
}

// Lte adds "column <= $n" when value is present.
func (b *Builder) Lte(column string, value interface{}) *Builder {
	return b.add(column, "<=", value)
}

// Contains adds a case-insensitive substring match. LIKE wildcards in text are
// escaped so they match literally.
func (b *Builder) Contains(column, text string) *Builder {
	text = strings.TrimSpace(text)
	if text == "" {
		return b
	}
	b.args = append(b.args, "%"+EscapeLike(text)+"%")
	b.conditions = append(b.conditions, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, column, len(b.args)))
	return b
}

func (b *Builder) add(column, op string, value interface{}) *Builder {
	if isEmpty(value) {
		return b
	}
	b.args = append(b.args, deref(value))
	b.conditions = append(b.conditions, fmt.Sprintf("%s %s $%d", column, op, len(b.args)))
	return b
}

// Conditions returns the predicate fragments in insertion order.
func (b *Builder) Conditions() []string {
	out := make([]string, len(b.conditions))
	copy(out, b.conditions)
	return out
}

// Args returns the bound values in placeholder order.
func (b *Builder) Args() []interface{} {
	out := make([]interface{}, len(b.args))
	copy(out, b.args)
	return out
}

// Len is the number of predicates.
func (b *Builder) Len() int {
	return len(b.conditions)
}

// Where renders " WHERE a AND b", or an empty string when there are no criteria.
func (b *Builder) Where() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

// Select appends the filter, ordering and paging to base. Limit and offset
// are bound after the filter arguments.
func (b *Builder) Select(base, orderBy string, limit, offset int) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString(b.Where())
	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}

	args := b.Args()
	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
		args = append(args, offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}
	return sb.String(), args
}

// Count appends the filter only.
func (b *Builder) Count(base string) (string, []interface{}) {
	return base + b.Where(), b.Args()
}

// EscapeLike escapes the LIKE metacharacters \, % and _.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	case uuid.UUID:
		return v == uuid.Nil
	case *uuid.UUID:
		return v == nil || *v == uuid.Nil
	case time.Time:
		return v.IsZero()
	case *time.Time:
		return v == nil || v.IsZero()
	case *bool:
		return v == nil
	case *int:
		return v == nil
	}
	return false
}

func deref(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case *string:
		return strings.TrimSpace(*v)
	case *uuid.UUID:
		return *v
	case *time.Time:
		return *v
	case *bool:
		return *v
	case *int:
		return *v
	}
	return value
}
