package mapper

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalidArgument is returned when a mapper input has the wrong shape
var ErrInvalidArgument = errors.New("invalid argument")

// Object is a nested record. Values are scalars, time.Time, slices or nested
// Objects (plain map[string]interface{} values are accepted as nested too).
type Object map[string]interface{}

// KeyTransformer renames a single key
type KeyTransformer func(key string) string

// FromFlatObject rebuilds a nested Object from a flat row whose keys join
// nested segments with "__". Sibling keys sharing a prefix are merged into the
// same nested Object.
//
// Keys are applied in sorted order, so a scalar and a nested key with the same
// prefix (a and a__b) resolve deterministically: the nested Object wins.
func FromFlatObject(flat map[string]interface{}) (Object, error) {
	if flat == nil {
		return nil, ErrInvalidArgument
	}

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make(Object, len(flat))
	for _, key := range keys {
		tokens := strings.Split(key, CompoundSeparator)
		current := result

		for _, token := range tokens[:len(tokens)-1] {
			next, ok := current[token].(Object)
			if !ok {
				next = make(Object)
				current[token] = next
			}
			current = next
		}

		current[tokens[len(tokens)-1]] = flat[key]
	}

	return result, nil
}

// ToFlatObject is the inverse of FromFlatObject: nested Objects are folded
// into "__"-joined keys. Empty nested Objects produce no keys.
func ToFlatObject(obj map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(obj))
	flattenInto(result, "", obj)
	return result
}

func flattenInto(dst map[string]interface{}, prefix string, obj map[string]interface{}) {
	for key, value := range obj {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + CompoundSeparator + key
		}
		if nested, ok := asNested(value); ok {
			flattenInto(dst, fullKey, nested)
			continue
		}
		dst[fullKey] = value
	}
}

// TransformKeys returns a copy of obj with transformer applied to every key at
// every level. Only nested maps are descended into; time.Time values, slices
// and scalars are copied as they are. obj is never modified.
func TransformKeys(obj map[string]interface{}, transformer KeyTransformer) Object {
	if obj == nil {
		return nil
	}

	result := make(Object, len(obj))
	for key, value := range obj {
		if nested, ok := asNested(value); ok {
			result[transformer(key)] = TransformKeys(nested, transformer)
			continue
		}
		result[transformer(key)] = value
	}
	return result
}

// asNested reports whether value is a nested mapping rather than a leaf
func asNested(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case Object:
		return v, true
	case map[string]interface{}:
		return v, true
	default:
		return nil, false
	}
}
