package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// bindvar is the only placeholder emitted. Callers run the query through
// sqlx.DB.Rebind to get the driver's own syntax.
const bindvar = "?"

type Condition interface {
	appendSQL(buf *strings.Builder, args *[]any)
}

type cmpCondition struct {
	column string
	op     string
	value  any
}

// Eq renders "column = ?".
func Eq(column string, value any) Condition {
	return cmpCondition{column: column, op: "=", value: value}
}

// Lt renders "column < ?".
func Lt(column string, value any) Condition {
	return cmpCondition{column: column, op: "<", value: value}
}

func (c cmpCondition) appendSQL(buf *strings.Builder, args *[]any) {
	buf.WriteString(c.column)
	buf.WriteString(" ")
	buf.WriteString(c.op)
	buf.WriteString(" " + bindvar)
	*args = append(*args, c.value)
}

type orCondition struct {
	parts []Condition
}

// Or groups conditions in parentheses joined by OR. An empty Or matches
// nothing.
func Or(conditions ...Condition) Condition {
	return orCondition{parts: conditions}
}

func (c orCondition) appendSQL(buf *strings.Builder, args *[]any) {
	if len(c.parts) == 0 {
		buf.WriteString("1=0")
		return
	}
	buf.WriteString("(")
	for i, part := range c.parts {
		if i > 0 {
			buf.WriteString(" OR ")
		}
		part.appendSQL(buf, args)
	}
	buf.WriteString(")")
}

type isNullCondition struct {
	column string
}

func IsNull(column string) Condition {
	return isNullCondition{column: column}
}

func (c isNullCondition) appendSQL(buf *strings.Builder, _ *[]any) {
	buf.WriteString(c.column)
	buf.WriteString(" IS NULL")
}

type leftJoin struct {
	table string
	on    string
	args  []any
}

type SelectBuilder struct {
	columns []string
	table   string
	joins   []leftJoin
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

// LeftJoin accepts "?" bindvars in the ON clause, e.g. joining a team's own
// statistics row onto each match. Join args precede WHERE args.
func (b *SelectBuilder) LeftJoin(table, on string, args ...any) *SelectBuilder {
	b.joins = append(b.joins, leftJoin{table: table, on: on, args: args})
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var buf strings.Builder
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(b.table)

	args := make([]any, 0, len(b.where))
	for _, j := range b.joins {
		if strings.Count(j.on, bindvar) != len(j.args) {
			return "", nil, fmt.Errorf("join %s: %d bindvars for %d args", j.table, strings.Count(j.on, bindvar), len(j.args))
		}
		buf.WriteString(" LEFT JOIN ")
		buf.WriteString(j.table)
		buf.WriteString(" ON ")
		buf.WriteString(j.on)
		args = append(args, j.args...)
	}

	if len(b.where) > 0 {
		buf.WriteString(" WHERE ")
		for i, c := range b.where {
			if i > 0 {
				buf.WriteString(" AND ")
			}
			c.appendSQL(&buf, &args)
		}
	}
	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		buf.WriteString(" LIMIT ")
		buf.WriteString(strconv.Itoa(b.limit))
	}

	return buf.String(), args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	values  []any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.values = append([]any(nil), values...)
	return b
}

// Suffix is appended verbatim, e.g. an ON CONFLICT or RETURNING clause.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.values) != len(b.columns) {
		return "", nil, fmt.Errorf("insert has %d values, expected %d", len(b.values), len(b.columns))
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(b.table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(") VALUES (")
	buf.WriteString(strings.TrimSuffix(strings.Repeat(bindvar+", ", len(b.values)), ", "))
	buf.WriteString(")")
	if b.suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(b.suffix)
	}

	return buf.String(), append([]any(nil), b.values...), nil
}
