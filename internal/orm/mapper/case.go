// Package mapper translates between flat database rows and nested application objects.
//
// Column names use underscore_case with "__" joining nested segments
// (author__first_name); application objects use camelCase keys nested one map
// per segment ({"author": {"firstName": ...}}).
package mapper

import (
	"strings"
	"unicode"
)

const (
	// CompoundSeparator joins the segments of a nested column name
	CompoundSeparator = "__"

	// PathSeparator joins the segments of a nested field path
	PathSeparator = "."
)

// CamelCaseToUnderscore converts camelCase to underscore_case.
// An uppercase letter is lowercased and, when it follows a lowercase letter or
// a digit, prefixed with an underscore. Acronym runs only get one separator:
// abCDeFgh -> ab_cde_fgh, ABCDEF -> abcdef.
func CamelCaseToUnderscore(name string) string {
	var result strings.Builder
	result.Grow(len(name) + 4)
	runes := []rune(name)

	for i, r := range runes {
		if !unicode.IsUpper(r) {
			result.WriteRune(r)
			continue
		}
		if i > 0 {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// UnderscoreToCamelCase converts underscore_case to camelCase.
// Every character is lowercased except the first one after an underscore.
// A leading underscore is dropped without capitalising what follows, and runs
// of underscores collapse: abc__def -> abcDef, _abc_def -> abcDef.
//
// This is not an exact inverse of CamelCaseToUnderscore; acronyms are lost
// (ab_cde_fgh -> abCdeFgh).
func UnderscoreToCamelCase(name string) string {
	var result strings.Builder
	result.Grow(len(name))
	upper := false

	for i, r := range name {
		if r == '_' {
			if i > 0 {
				upper = true
			}
			continue
		}
		if upper {
			result.WriteRune(unicode.ToUpper(r))
		} else {
			result.WriteRune(unicode.ToLower(r))
		}
		upper = false
	}
	return result.String()
}

// ToFlatFieldName converts a dotted field path into its flat column name.
// Example: complexCamel.nestedCamel -> complex_camel__nested_camel
func ToFlatFieldName(path string) string {
	segments := strings.Split(path, PathSeparator)
	for i, segment := range segments {
		segments[i] = CamelCaseToUnderscore(segment)
	}
	return strings.Join(segments, CompoundSeparator)
}
