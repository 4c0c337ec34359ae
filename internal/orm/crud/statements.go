package crud

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/pgdao/internal/orm/mapper"
)

// DefaultIDField is the id field used when none is configured
const DefaultIDField = "id"

// UpdateFields returns the fields that can be written: compound paths
// (containing "__") and the id field are dropped.
func UpdateFields(fields []string, idField string) []string {
	if idField == "" {
		idField = DefaultIDField
	}

	result := make([]string, 0, len(fields))
	for _, field := range fields {
		if strings.Contains(field, mapper.CompoundSeparator) || field == idField {
			continue
		}
		result = append(result, field)
	}
	return result
}

// InsertFieldList renders `"c1", "c2"` for an INSERT column list
func InsertFieldList(fields []string) string {
	return quotedColumns(fields)
}

// SelectFieldList renders `"c1", "c2"` for a SELECT list
func SelectFieldList(fields []string) string {
	return quotedColumns(fields)
}

// InsertParamList renders `$1, $2, ...`, one placeholder per field
func InsertParamList(fields []string) string {
	placeholders := make([]string, len(fields))
	for i := range fields {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(placeholders, ", ")
}

// UpdateFieldAndParamList renders `"c1" = $1, "c2" = $2`
func UpdateFieldAndParamList(fields []string) string {
	assignments := make([]string, len(fields))
	for i, field := range fields {
		assignments[i] = fmt.Sprintf(`"%s" = $%d`, mapper.CamelCaseToUnderscore(field), i+1)
	}
	return strings.Join(assignments, ", ")
}

// Params collects the entity values for fields in order; missing fields are nil
func Params(fields []string, entity map[string]interface{}) []interface{} {
	params := make([]interface{}, len(fields))
	for i, field := range fields {
		if value, ok := entity[field]; ok {
			params[i] = value
		}
	}
	return params
}

func quotedColumns(fields []string) string {
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = `"` + mapper.CamelCaseToUnderscore(field) + `"`
	}
	return strings.Join(columns, ", ")
}

// sortedKeys returns the keys of value in lexical order, which fixes the
// column order of generated statements
func sortedKeys(value map[string]interface{}) []string {
	keys := make([]string, 0, len(value))
	for key := range value {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func quoteTable(table string) string {
	return `"` + table + `"`
}
