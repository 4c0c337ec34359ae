package query

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseQuery = `SELECT "id", "very_long_name", "shortname" FROM "test_table_1"`

func TestCreateFilterByClause_Comparison(t *testing.T) {
	stmt, err := CreateFilterByClause(Eq("veryLongName", "abc"), "r", 1)
	require.NoError(t, err)

	assert.Equal(t, `r."very_long_name" = $1`, stmt.Query)
	assert.Equal(t, []interface{}{"abc"}, stmt.Params)
}

func TestCreateFilterByClause_NoAlias(t *testing.T) {
	stmt, err := CreateFilterByClause(Where("id", OpGreaterThan, 10), "", 1)
	require.NoError(t, err)

	assert.Equal(t, `"id" > $1`, stmt.Query)
}

func TestCreateFilterByClause_AnyAndBangNotEqual(t *testing.T) {
	stmt, err := CreateFilterByClause(And{
		Where("id", OpAny, []int64{1, 2}),
		Where("status", OpBangNotEqual, "draft"),
	}, "r", 1)
	require.NoError(t, err)

	assert.Equal(t, `(r."id" = ANY ($1)) AND (r."status" != $2)`, stmt.Query)
	assert.Equal(t, []interface{}{[]int64{1, 2}, "draft"}, stmt.Params)
}

func TestCreateFilterByClause_NestedField(t *testing.T) {
	stmt, err := CreateFilterByClause(Eq("author.firstName", "Ada"), "r", 1)
	require.NoError(t, err)

	assert.Equal(t, `r."author__first_name" = $1`, stmt.Query)
}

func TestCreateFilterByClause_NullTests(t *testing.T) {
	stmt, err := CreateFilterByClause(IsNull{Field: "deletedAt"}, "r", 1)
	require.NoError(t, err)
	assert.Equal(t, `r."deleted_at" IS NULL`, stmt.Query)
	assert.Empty(t, stmt.Params)

	stmt, err = CreateFilterByClause(NotNull{Field: "deletedAt"}, "", 1)
	require.NoError(t, err)
	assert.Equal(t, `"deleted_at" IS NOT NULL`, stmt.Query)
	assert.Empty(t, stmt.Params)
}

func TestCreateFilterByClause_And(t *testing.T) {
	stmt, err := CreateFilterByClause(And{Eq("a", 1), Eq("b", 2)}, "a", 1)
	require.NoError(t, err)

	assert.Equal(t, `(a."a" = $1) AND (a."b" = $2)`, stmt.Query)
	assert.Equal(t, []interface{}{1, 2}, stmt.Params)
}

func TestCreateFilterByClause_NestedGroupsNumberContinuously(t *testing.T) {
	filter := Or{
		And{Eq("a", 1), IsNull{Field: "b"}},
		Not{Filter: Where("c", OpLike, "x%")},
		Eq("d", 4),
	}

	stmt, err := CreateFilterByClause(filter, "r", 1)
	require.NoError(t, err)

	assert.Equal(t,
		`((r."a" = $1) AND (r."b" IS NULL)) OR (NOT (r."c" LIKE $2)) OR (r."d" = $3)`,
		stmt.Query)
	assert.Equal(t, []interface{}{1, "x%", 4}, stmt.Params)
}

func TestCreateFilterByClause_StartIndex(t *testing.T) {
	stmt, err := CreateFilterByClause(And{Eq("a", 1), Eq("b", 2)}, "", 3)
	require.NoError(t, err)

	assert.Equal(t, `("a" = $3) AND ("b" = $4)`, stmt.Query)
	assert.Equal(t, []interface{}{1, 2}, stmt.Params)
}

func TestCreateFilterByClause_StartIndexBelowOne(t *testing.T) {
	stmt, err := CreateFilterByClause(Eq("a", 1), "", 0)
	require.NoError(t, err)

	assert.Equal(t, `"a" = $1`, stmt.Query)
}

func TestCreateFilterByClause_InvalidShapes(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
	}{
		{"nil filter", nil},
		{"empty and", And{}},
		{"empty or", Or{}},
		{"nil operand", And{Eq("a", 1), nil}},
		{"not without operand", Not{}},
		{"comparison without field", Comparison{Op: OpEqual, Value: 1}},
		{"comparison without operator", Comparison{Field: "a", Value: 1}},
		{"null test without field", IsNull{}},
		{"not null without field", NotNull{}},
		{"deep invalid", Or{Eq("a", 1), Not{Filter: And{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := CreateFilterByClause(tt.filter, "r", 1)
			assert.ErrorIs(t, err, ErrInvalidFilterShape)
			assert.Empty(t, stmt.Query)
			assert.Nil(t, stmt.Params)
		})
	}
}

func TestCreateOrderByClause(t *testing.T) {
	clause, err := CreateOrderByClause(SortBy("veryLongName", Asc))
	require.NoError(t, err)
	assert.Equal(t, `ORDER BY r."very_long_name" ASC`, clause)

	clause, err = CreateOrderByClause(SortBy("x", Asc).Then("y", Desc).Then("z", ""))
	require.NoError(t, err)
	assert.Equal(t, `ORDER BY r."x" ASC, r."y" DESC, r."z" DESC`, clause)
}

func TestCreateOrderByClause_DirectionIsExact(t *testing.T) {
	clause, err := CreateOrderByClause(SortBy("x", "asc"))
	require.NoError(t, err)
	assert.Equal(t, `ORDER BY r."x" DESC`, clause)
}

func TestCreateOrderByClause_Invalid(t *testing.T) {
	_, err := CreateOrderByClause(nil)
	assert.ErrorIs(t, err, ErrInvalidSortShape)

	_, err = CreateOrderByClause(Sort{{Direction: Asc}})
	assert.ErrorIs(t, err, ErrInvalidSortShape)
}

func TestFilterBy(t *testing.T) {
	stmt, err := FilterBy(baseQuery, Eq("shortname", "efg"))
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM (`+baseQuery+`) r WHERE r."shortname" = $1`, stmt.Query)
	assert.Equal(t, []interface{}{"efg"}, stmt.Params)
}

func TestOrderBy(t *testing.T) {
	sql, err := OrderBy(baseQuery, SortBy("shortname", Desc))
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM (`+baseQuery+`) r ORDER BY r."shortname" DESC`, sql)
}

func TestPageBy(t *testing.T) {
	sql, err := PageBy(baseQuery, SortBy("id", Asc), &Paging{Size: 10, Index: 3})
	require.NoError(t, err)

	assert.Equal(t, `SELECT r.* FROM (`+baseQuery+`) r ORDER BY r."id" ASC LIMIT 10 OFFSET 20`, sql)
}

func TestPageBy_Invalid(t *testing.T) {
	_, err := PageBy(baseQuery, SortBy("id", Asc), nil)
	assert.ErrorIs(t, err, ErrInvalidPagingShape)

	_, err = PageBy(baseQuery, nil, &Paging{Size: 1, Index: 1})
	assert.ErrorIs(t, err, ErrInvalidSortShape)
}

func TestPageBy_OutOfRange(t *testing.T) {
	tests := []Paging{
		{Size: 0, Index: 1},
		{Size: 10, Index: 0},
		{Size: -5, Index: 2},
		{Size: math.MaxInt/4 + 1, Index: 5},
		{Size: math.MaxInt, Index: 3},
	}
	for _, paging := range tests {
		paging := paging
		_, err := PageBy(baseQuery, SortBy("id", Asc), &paging)
		assert.ErrorIs(t, err, ErrInvalidPagingShape, "%+v", paging)
	}

	sql, err := PageBy(baseQuery, SortBy("id", Asc), &Paging{Size: math.MaxInt, Index: 2})
	require.NoError(t, err)
	assert.Contains(t, sql, fmt.Sprintf("OFFSET %d", math.MaxInt))
}

func TestExtend_NothingToApply(t *testing.T) {
	stmt, err := Extend(baseQuery, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, baseQuery, stmt.Query)
	assert.NotNil(t, stmt.Params)
	assert.Empty(t, stmt.Params)
}

func TestExtend_Filter(t *testing.T) {
	stmt, err := Extend("Q", And{Eq("a", 1), Eq("b", 2)}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM (Q) r WHERE (r."a" = $1) AND (r."b" = $2)`, stmt.Query)
	assert.Equal(t, []interface{}{1, 2}, stmt.Params)
}

func TestExtend_SortAndPaging(t *testing.T) {
	sort := SortBy("x", Asc).Then("y", Desc)

	stmt, err := Extend("Q", nil, sort, &Paging{Size: 1, Index: 2})
	require.NoError(t, err)

	assert.Equal(t, `SELECT r.* FROM (Q) r ORDER BY r."x" ASC, r."y" DESC LIMIT 1 OFFSET 1`, stmt.Query)
	assert.Empty(t, stmt.Params)
}

func TestExtend_SortOnly(t *testing.T) {
	stmt, err := Extend("Q", nil, SortBy("x", Asc), nil)
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM (Q) r ORDER BY r."x" ASC`, stmt.Query)
}

func TestExtend_PagingWithoutSortIsIgnored(t *testing.T) {
	stmt, err := Extend("Q", nil, nil, &Paging{Size: 5, Index: 1})
	require.NoError(t, err)

	assert.Equal(t, "Q", stmt.Query)
}

func TestExtend_FullyExtended(t *testing.T) {
	filter := And{Eq("veryLongName", "abc"), Eq("shortname", "efg")}
	sort := SortBy("veryLongName", Asc).Then("shortname", Desc)

	stmt, err := Extend(baseQuery, filter, sort, &Paging{Size: 1, Index: 1})
	require.NoError(t, err)

	expected := `SELECT r.* FROM (SELECT * FROM (` + baseQuery + `) r ` +
		`WHERE (r."very_long_name" = $1) AND (r."shortname" = $2)) r ` +
		`ORDER BY r."very_long_name" ASC, r."shortname" DESC LIMIT 1 OFFSET 0`
	assert.Equal(t, expected, stmt.Query)
	assert.Equal(t, []interface{}{"abc", "efg"}, stmt.Params)
}

func TestExtend_Errors(t *testing.T) {
	_, err := Extend("Q", And{}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidFilterShape)

	_, err = Extend("Q", nil, Sort{}, nil)
	assert.ErrorIs(t, err, ErrInvalidSortShape)

	_, err = Extend("Q", nil, Sort{}, &Paging{Size: 1, Index: 1})
	assert.ErrorIs(t, err, ErrInvalidSortShape)
}

func TestOperator_String(t *testing.T) {
	tests := []struct {
		op       Operator
		expected string
	}{
		{OpEqual, "="},
		{OpNotEqual, "<>"},
		{OpGreaterThanOrEqual, ">="},
		{OpLessThanOrEqual, "<="},
		{OpILike, "ILIKE"},
		{OpContains, "@>"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.op.String())
	}
}
