// Package query extends a base SQL query with filtering, sorting and paging.
//
// The base query is wrapped as a subquery aliased r; the filter compiles to a
// parameterized WHERE clause using $1..$N placeholders.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conduit-lang/pgdao/internal/orm/mapper"
)

// Common query errors
var (
	// ErrInvalidFilterShape is returned when a filter matches no grammar production
	ErrInvalidFilterShape = errors.New("invalid filter shape")

	// ErrInvalidSortShape is returned when a sort specification is empty or malformed
	ErrInvalidSortShape = errors.New("invalid sort shape")

	// ErrInvalidPagingShape is returned when a paging specification is missing or malformed
	ErrInvalidPagingShape = errors.New("invalid paging shape")
)

// Operator is a SQL comparison token. It is written into the query text as is,
// so it must come from trusted code, never from end users.
type Operator string

const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "<>"
	OpBangNotEqual       Operator = "!="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
	OpLike               Operator = "LIKE"
	OpNotLike            Operator = "NOT LIKE"
	OpILike              Operator = "ILIKE"
	// Array operators, used with slice values. OpAny matches a scalar column
	// against any element: "id" = ANY ($1)
	OpAny         Operator = "= ANY"
	OpContains    Operator = "@>"
	OpContainedBy Operator = "<@"
	OpOverlaps    Operator = "&&"
)

// String returns the SQL token of the operator
func (o Operator) String() string {
	return string(o)
}

// Filter is a node of a filter expression tree. The implementations are
// Comparison, IsNull, NotNull, And, Or and Not.
type Filter interface {
	build(b *clauseBuilder) (string, error)
}

// Comparison compares a field with a bound parameter: "field" <op> $n
type Comparison struct {
	Field string
	Op    Operator
	Value interface{}
}

// IsNull tests a field for NULL
type IsNull struct {
	Field string
}

// NotNull tests a field for NOT NULL
type NotNull struct {
	Field string
}

// And combines one or more filters with AND
type And []Filter

// Or combines one or more filters with OR
type Or []Filter

// Not negates a single filter
type Not struct {
	Filter Filter
}

// Where creates a Comparison
func Where(field string, op Operator, value interface{}) Comparison {
	return Comparison{Field: field, Op: op, Value: value}
}

// Eq creates an equality Comparison
func Eq(field string, value interface{}) Comparison {
	return Where(field, OpEqual, value)
}

// clauseBuilder carries the state shared by one compilation: the column
// alias and the parameters bound so far.
type clauseBuilder struct {
	alias  string
	start  int
	params []interface{}
}

// bind appends a parameter and returns its placeholder
func (b *clauseBuilder) bind(value interface{}) string {
	b.params = append(b.params, value)
	return fmt.Sprintf("$%d", b.start+len(b.params)-1)
}

// column renders a field path as a quoted, optionally aliased column
func (b *clauseBuilder) column(field string) string {
	column := `"` + mapper.ToFlatFieldName(field) + `"`
	if b.alias != "" {
		return b.alias + "." + column
	}
	return column
}

func (c Comparison) build(b *clauseBuilder) (string, error) {
	if c.Field == "" || c.Op == "" {
		return "", fmt.Errorf("%w: comparison requires a field and an operator", ErrInvalidFilterShape)
	}
	column := b.column(c.Field)
	if c.Op == OpAny {
		return fmt.Sprintf("%s %s (%s)", column, c.Op, b.bind(c.Value)), nil
	}
	return fmt.Sprintf("%s %s %s", column, c.Op, b.bind(c.Value)), nil
}

func (n IsNull) build(b *clauseBuilder) (string, error) {
	if n.Field == "" {
		return "", fmt.Errorf("%w: null test requires a field", ErrInvalidFilterShape)
	}
	return b.column(n.Field) + " IS NULL", nil
}

func (n NotNull) build(b *clauseBuilder) (string, error) {
	if n.Field == "" {
		return "", fmt.Errorf("%w: null test requires a field", ErrInvalidFilterShape)
	}
	return b.column(n.Field) + " IS NOT NULL", nil
}

func (a And) build(b *clauseBuilder) (string, error) {
	return buildGroup(b, []Filter(a), "AND")
}

func (o Or) build(b *clauseBuilder) (string, error) {
	return buildGroup(b, []Filter(o), "OR")
}

func (n Not) build(b *clauseBuilder) (string, error) {
	if n.Filter == nil {
		return "", fmt.Errorf("%w: NOT requires exactly one filter", ErrInvalidFilterShape)
	}
	sql, err := n.Filter.build(b)
	if err != nil {
		return "", err
	}
	return "NOT (" + sql + ")", nil
}

// buildGroup parenthesizes every child and joins them with the connector.
// Parameter numbering continues from child to child.
func buildGroup(b *clauseBuilder, filters []Filter, connector string) (string, error) {
	if len(filters) == 0 {
		return "", fmt.Errorf("%w: %s requires at least one filter", ErrInvalidFilterShape, connector)
	}

	parts := make([]string, 0, len(filters))
	for i, filter := range filters {
		if filter == nil {
			return "", fmt.Errorf("%w: %s operand %d is nil", ErrInvalidFilterShape, connector, i)
		}
		sql, err := filter.build(b)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+sql+")")
	}

	return strings.Join(parts, " "+connector+" "), nil
}
