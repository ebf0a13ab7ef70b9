package orm

import "strings"

// QueryBuilder assembles parameterized SQL from trusted fragments while
// collecting positional parameters in bind order.
//
// All values must go through Param and be represented by ? in the SQL; only
// trusted fragments (keywords, validated identifiers) belong in Raw. The
// builder performs no parsing or escaping.
type QueryBuilder struct {
	sql    strings.Builder
	params []any
}

// NewQueryBuilder returns an empty builder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Raw appends a literal SQL fragment.
func (qb *QueryBuilder) Raw(fragment string) *QueryBuilder {
	qb.sql.WriteString(fragment)
	return qb
}

// Space appends a single space, a convenience for chaining.
func (qb *QueryBuilder) Space() *QueryBuilder {
	qb.sql.WriteByte(' ')
	return qb
}

// Param records a positional parameter. The recorded order must match the
// order of ? placeholders in the SQL.
func (qb *QueryBuilder) Param(value any) *QueryBuilder {
	qb.params = append(qb.params, value)
	return qb
}

// In appends an "IN (?, ?, ...)" clause and records its parameters. The
// caller writes "WHERE col " beforehand.
func (qb *QueryBuilder) In(values ...any) *QueryBuilder {
	qb.Raw("IN (").Raw(JoinPlaceholders(len(values))).Raw(")")
	qb.params = append(qb.params, values...)
	return qb
}

// SQL returns the assembled statement text.
func (qb *QueryBuilder) SQL() string { return qb.sql.String() }

// Params returns the collected parameters in bind order.
func (qb *QueryBuilder) Params() []any { return qb.params }

// Bind applies the collected parameters to a prepared statement using
// 1-based positions.
func (qb *QueryBuilder) Bind(st Statement) error {
	for i, v := range qb.params {
		if err := st.Bind(i+1, v); err != nil {
			return err
		}
	}
	return nil
}

// JoinPlaceholders produces "?, ?, ?" for n > 0 and "" for n == 0.
func JoinPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(n * 3)
	for i := 0; i < n; i++ {
		b.WriteByte('?')
		if i+1 < n {
			b.WriteString(", ")
		}
	}
	return b.String()
}
