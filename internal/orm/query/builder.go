package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/conduit-lang/pgdao/internal/orm/mapper"
)

// Alias is the name given to the wrapped base query
const Alias = "r"

// Statement is SQL text with its positional parameters
type Statement struct {
	Query  string
	Params []interface{}
}

// Direction is a sort direction. Only Asc sorts ascending; any other value,
// including the empty string, sorts descending.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// SortField orders by a single field path
type SortField struct {
	Field     string
	Direction Direction
}

// Sort is an ordered list of sort fields
type Sort []SortField

// SortBy creates a single-field Sort
func SortBy(field string, direction Direction) Sort {
	return Sort{{Field: field, Direction: direction}}
}

// Then appends a sort field
func (s Sort) Then(field string, direction Direction) Sort {
	return append(s, SortField{Field: field, Direction: direction})
}

// Paging selects one page of Size rows; Index is 1-based.
// Both values are written into the query text, so they must come from
// trusted code or be parsed as integers first.
type Paging struct {
	Size  int
	Index int
}

// Offset returns the number of rows skipped before the page
func (p Paging) Offset() int {
	return p.Size * (p.Index - 1)
}

// validate rejects non-positive values and pages whose offset overflows int
func (p Paging) validate() error {
	if p.Size < 1 || p.Index < 1 {
		return fmt.Errorf("%w: size and index must be positive, got %d and %d", ErrInvalidPagingShape, p.Size, p.Index)
	}
	if p.Index-1 > math.MaxInt/p.Size {
		return fmt.Errorf("%w: page %d of size %d is out of range", ErrInvalidPagingShape, p.Index, p.Size)
	}
	return nil
}

// CreateFilterByClause compiles a filter into a boolean SQL expression.
// Columns are prefixed with alias when it is not empty, and placeholders are
// numbered from startParamIndex (values below 1 mean 1).
func CreateFilterByClause(filter Filter, alias string, startParamIndex int) (Statement, error) {
	if filter == nil {
		return Statement{}, fmt.Errorf("%w: filter is nil", ErrInvalidFilterShape)
	}
	if startParamIndex < 1 {
		startParamIndex = 1
	}

	b := &clauseBuilder{
		alias:  alias,
		start:  startParamIndex,
		params: make([]interface{}, 0),
	}

	sql, err := filter.build(b)
	if err != nil {
		return Statement{}, err
	}

	return Statement{Query: sql, Params: b.params}, nil
}

// CreateOrderByClause renders an ORDER BY clause over the wrapped query alias
func CreateOrderByClause(sort Sort) (string, error) {
	if len(sort) == 0 {
		return "", fmt.Errorf("%w: no sort fields", ErrInvalidSortShape)
	}

	terms := make([]string, 0, len(sort))
	for _, field := range sort {
		if field.Field == "" {
			return "", fmt.Errorf("%w: sort field name is empty", ErrInvalidSortShape)
		}
		direction := Desc
		if field.Direction == Asc {
			direction = Asc
		}
		terms = append(terms, fmt.Sprintf(`%s."%s" %s`, Alias, mapper.ToFlatFieldName(field.Field), direction))
	}

	return "ORDER BY " + strings.Join(terms, ", "), nil
}

// FilterBy wraps query and restricts it with filter
func FilterBy(query string, filter Filter) (Statement, error) {
	clause, err := CreateFilterByClause(filter, Alias, 1)
	if err != nil {
		return Statement{}, err
	}

	return Statement{
		Query:  fmt.Sprintf("SELECT * FROM (%s) %s WHERE %s", query, Alias, clause.Query),
		Params: clause.Params,
	}, nil
}

// OrderBy wraps query and sorts it
func OrderBy(query string, sort Sort) (string, error) {
	orderClause, err := CreateOrderByClause(sort)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT * FROM (%s) %s %s", query, Alias, orderClause), nil
}

// PageBy wraps query, sorts it and selects one page
func PageBy(query string, sort Sort, paging *Paging) (string, error) {
	if paging == nil {
		return "", fmt.Errorf("%w: paging is nil", ErrInvalidPagingShape)
	}
	if err := paging.validate(); err != nil {
		return "", err
	}

	orderClause, err := CreateOrderByClause(sort)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("SELECT %s.* FROM (%s) %s %s LIMIT %d OFFSET %d",
		Alias, query, Alias, orderClause, paging.Size, paging.Offset()), nil
}

// Extend applies the filter, then sorting and paging, to a base query.
// A nil argument is absent. Paging is only applied together with a sort;
// paging alone leaves the query unpaged.
func Extend(query string, filter Filter, sort Sort, paging *Paging) (Statement, error) {
	result := Statement{
		Query:  query,
		Params: make([]interface{}, 0),
	}

	if filter != nil {
		filtered, err := FilterBy(result.Query, filter)
		if err != nil {
			return Statement{}, fmt.Errorf("failed to build filter: %w", err)
		}
		result = filtered
	}

	switch {
	case sort != nil && paging != nil:
		paged, err := PageBy(result.Query, sort, paging)
		if err != nil {
			return Statement{}, fmt.Errorf("failed to build paging: %w", err)
		}
		result.Query = paged
	case sort != nil:
		ordered, err := OrderBy(result.Query, sort)
		if err != nil {
			return Statement{}, fmt.Errorf("failed to build order: %w", err)
		}
		result.Query = ordered
	}

	return result, nil
}
