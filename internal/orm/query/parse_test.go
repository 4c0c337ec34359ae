package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected Filter
	}{
		{
			name:     "comparison",
			json:     `["veryLongName", "=", "abc"]`,
			expected: Comparison{Field: "veryLongName", Op: OpEqual, Value: "abc"},
		},
		{
			name:     "is null",
			json:     `["$isnull", "deletedAt"]`,
			expected: IsNull{Field: "deletedAt"},
		},
		{
			name:     "not null",
			json:     `["$notnull", "deletedAt"]`,
			expected: NotNull{Field: "deletedAt"},
		},
		{
			name: "and",
			json: `["$and", ["a", "=", 1], ["b", ">", 2]]`,
			expected: And{
				Comparison{Field: "a", Op: OpEqual, Value: float64(1)},
				Comparison{Field: "b", Op: OpGreaterThan, Value: float64(2)},
			},
		},
		{
			name: "or with not",
			json: `["$or", ["$not", ["a", "LIKE", "x%"]], ["$isnull", "b"]]`,
			expected: Or{
				Not{Filter: Comparison{Field: "a", Op: OpLike, Value: "x%"}},
				IsNull{Field: "b"},
			},
		},
		{
			name:     "single operand and",
			json:     `["$and", ["a", "=", null]]`,
			expected: And{Comparison{Field: "a", Op: OpEqual, Value: nil}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := ParseFilterJSON([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, filter)
		})
	}
}

func TestParseFilter_StringSlice(t *testing.T) {
	filter, err := ParseFilter([]string{"$isnull", "a"})
	require.NoError(t, err)
	assert.Equal(t, IsNull{Field: "a"}, filter)
}

func TestParseFilter_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"four element leaf", `["a", "=", 1, 2]`},
		{"one element leaf", `["a"]`},
		{"two element non null test", `["a", "b"]`},
		{"empty list", `[]`},
		{"not a list", `{"field": "a"}`},
		{"scalar", `42`},
		{"and without operands", `["$and"]`},
		{"not with two operands", `["$not", ["a", "=", 1], ["b", "=", 2]]`},
		{"not without operand", `["$not"]`},
		{"nested invalid", `["$or", ["a", "=", 1], ["b", "=", 2, 3]]`},
		{"numeric field", `[1, "=", 2]`},
		{"numeric operator", `["a", 1, 2]`},
		{"null test numeric field", `["$isnull", 3]`},
		{"malformed json", `["a", "="`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := ParseFilterJSON([]byte(tt.json))
			assert.ErrorIs(t, err, ErrInvalidFilterShape)
			assert.Nil(t, filter)
		})
	}
}

func TestParseFilter_MalformedProducesNoSQL(t *testing.T) {
	var expr interface{}
	require.NoError(t, json.Unmarshal([]byte(`["$and", ["a", "=", 1], ["b", "=", 2, 3]]`), &expr))

	filter, err := ParseFilter(expr)
	require.ErrorIs(t, err, ErrInvalidFilterShape)

	stmt, err := Extend("Q", filter, nil, nil)
	require.NoError(t, err, "a nil filter is absent")
	assert.Equal(t, "Q", stmt.Query)
}

func TestParseSort(t *testing.T) {
	sort, err := ParseSortJSON([]byte(`{"field": "veryLongName", "direction": "ASC"}`))
	require.NoError(t, err)
	assert.Equal(t, Sort{{Field: "veryLongName", Direction: Asc}}, sort)

	sort, err = ParseSortJSON([]byte(`[{"field": "x", "direction": "ASC"}, {"field": "y"}]`))
	require.NoError(t, err)
	assert.Equal(t, Sort{{Field: "x", Direction: Asc}, {Field: "y"}}, sort)

	clause, err := CreateOrderByClause(sort)
	require.NoError(t, err)
	assert.Equal(t, `ORDER BY r."x" ASC, r."y" DESC`, clause)
}

func TestParseSort_Invalid(t *testing.T) {
	for _, input := range []string{`"x"`, `[1]`, `{"direction": "ASC"}`, `[{"field": 3}]`, `{`} {
		_, err := ParseSortJSON([]byte(input))
		assert.ErrorIs(t, err, ErrInvalidSortShape, input)
	}
}

func TestParseSortSpec(t *testing.T) {
	sort, err := ParseSortSpec(" -createdAt, title ")
	require.NoError(t, err)
	assert.Equal(t, SortBy("createdAt", Desc).Then("title", Asc), sort)

	sort, err = ParseSortSpec(`{"field": "title", "direction": "ASC"}`)
	require.NoError(t, err)
	assert.Equal(t, SortBy("title", Asc), sort)

	sort, err = ParseSortSpec("")
	require.NoError(t, err)
	assert.Nil(t, sort)

	_, err = ParseSortSpec("title,,id")
	assert.ErrorIs(t, err, ErrInvalidSortShape)
}

func TestParsePaging(t *testing.T) {
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"size": 25, "index": 2}`), &v))

	paging, err := ParsePaging(v)
	require.NoError(t, err)
	assert.Equal(t, &Paging{Size: 25, Index: 2}, paging)
	assert.Equal(t, 25, paging.Offset())
}

func TestParsePaging_Invalid(t *testing.T) {
	tests := []interface{}{
		nil,
		"10",
		[]interface{}{1, 2},
		map[string]interface{}{"size": 10},
		map[string]interface{}{"size": 1.5, "index": 1},
		map[string]interface{}{"size": "10", "index": 1},
	}

	for _, input := range tests {
		_, err := ParsePaging(input)
		assert.ErrorIs(t, err, ErrInvalidPagingShape, "%v", input)
	}
}
