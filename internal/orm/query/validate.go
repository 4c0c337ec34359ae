package query

import (
	"fmt"
	"regexp"
)

// identifierPattern is the field path syntax accepted from untrusted input:
// identifiers joined by dots
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

var knownOperators = map[Operator]bool{
	OpEqual:              true,
	OpNotEqual:           true,
	OpBangNotEqual:       true,
	OpGreaterThan:        true,
	OpGreaterThanOrEqual: true,
	OpLessThan:           true,
	OpLessThanOrEqual:    true,
	OpLike:               true,
	OpNotLike:            true,
	OpILike:              true,
	OpAny:                true,
	OpContains:           true,
	OpContainedBy:        true,
	OpOverlaps:           true,
}

// Known reports whether o is one of the declared operators
func (o Operator) Known() bool {
	return knownOperators[o]
}

// ValidateFilter checks a filter built from end-user input before it reaches
// the SQL text: every operator must be Known and every field a dotted path
// of identifiers. A nil filter is valid.
func ValidateFilter(filter Filter) error {
	switch f := filter.(type) {
	case nil:
		return nil
	case Comparison:
		if !f.Op.Known() {
			return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilterShape, f.Op)
		}
		return validateField(f.Field, ErrInvalidFilterShape)
	case IsNull:
		return validateField(f.Field, ErrInvalidFilterShape)
	case NotNull:
		return validateField(f.Field, ErrInvalidFilterShape)
	case Not:
		return ValidateFilter(f.Filter)
	case And:
		return validateAll(f)
	case Or:
		return validateAll(f)
	default:
		return fmt.Errorf("%w: unsupported filter %T", ErrInvalidFilterShape, filter)
	}
}

func validateAll(filters []Filter) error {
	for _, filter := range filters {
		if err := ValidateFilter(filter); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSort checks the sort field paths the way ValidateFilter does
func ValidateSort(sort Sort) error {
	for _, field := range sort {
		if err := validateField(field.Field, ErrInvalidSortShape); err != nil {
			return err
		}
	}
	return nil
}

func validateField(field string, kind error) error {
	if !identifierPattern.MatchString(field) {
		return fmt.Errorf("%w: invalid field name %q", kind, field)
	}
	return nil
}
