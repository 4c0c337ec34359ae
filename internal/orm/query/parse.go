package query

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Filter expression heads of the list grammar
const (
	HeadAnd     = "$and"
	HeadOr      = "$or"
	HeadNot     = "$not"
	HeadIsNull  = "$isnull"
	HeadNotNull = "$notnull"
)

// ParseFilter converts the list grammar, as decoded from JSON, into a Filter:
//
//	["field", "=", value]
//	["$isnull", "field"]  ["$notnull", "field"]
//	["$and", expr, expr...]  ["$or", expr, expr...]  ["$not", expr]
func ParseFilter(expr interface{}) (Filter, error) {
	items, ok := toList(expr)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: expected a non-empty list, got %s", ErrInvalidFilterShape, describe(expr))
	}

	head, _ := items[0].(string)
	switch head {
	case HeadAnd, HeadOr:
		if len(items) < 2 {
			return nil, fmt.Errorf("%w: %s requires at least one operand", ErrInvalidFilterShape, head)
		}
		children := make([]Filter, 0, len(items)-1)
		for _, item := range items[1:] {
			child, err := ParseFilter(item)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if head == HeadAnd {
			return And(children), nil
		}
		return Or(children), nil

	case HeadNot:
		if len(items) != 2 {
			return nil, fmt.Errorf("%w: %s requires exactly one operand", ErrInvalidFilterShape, head)
		}
		child, err := ParseFilter(items[1])
		if err != nil {
			return nil, err
		}
		return Not{Filter: child}, nil
	}

	switch {
	case len(items) == 3:
		field, fieldOK := items[0].(string)
		op, opOK := items[1].(string)
		if !fieldOK || !opOK {
			return nil, fmt.Errorf("%w: comparison needs string field and operator, got %s", ErrInvalidFilterShape, describe(expr))
		}
		return Comparison{Field: field, Op: Operator(op), Value: items[2]}, nil

	case len(items) == 2 && (head == HeadIsNull || head == HeadNotNull):
		field, fieldOK := items[1].(string)
		if !fieldOK {
			return nil, fmt.Errorf("%w: %s needs a string field, got %s", ErrInvalidFilterShape, head, describe(expr))
		}
		if head == HeadIsNull {
			return IsNull{Field: field}, nil
		}
		return NotNull{Field: field}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrInvalidFilterShape, describe(expr))
}

// ParseFilterJSON decodes and parses a JSON filter expression
func ParseFilterJSON(data []byte) (Filter, error) {
	var expr interface{}
	if err := json.Unmarshal(data, &expr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilterShape, err)
	}
	return ParseFilter(expr)
}

// ParseSort accepts a single {"field": ..., "direction": ...} object or a
// list of them. A missing or unknown direction sorts descending.
func ParseSort(v interface{}) (Sort, error) {
	if single, ok := v.(map[string]interface{}); ok {
		field, err := parseSortField(single)
		if err != nil {
			return nil, err
		}
		return Sort{field}, nil
	}

	items, ok := toList(v)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object or a list, got %s", ErrInvalidSortShape, describe(v))
	}

	sort := make(Sort, 0, len(items))
	for _, item := range items {
		spec, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: sort entry must be an object, got %s", ErrInvalidSortShape, describe(item))
		}
		field, err := parseSortField(spec)
		if err != nil {
			return nil, err
		}
		sort = append(sort, field)
	}
	return sort, nil
}

// ParseSortJSON decodes and parses a JSON sort specification
func ParseSortJSON(data []byte) (Sort, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSortShape, err)
	}
	return ParseSort(v)
}

// ParseSortSpec parses either a comma separated list where a "-" prefix sorts
// descending, as in "-createdAt,title", or the JSON form accepted by
// ParseSortJSON. An empty spec yields a nil Sort.
func ParseSortSpec(spec string) (Sort, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	if strings.HasPrefix(spec, "[") || strings.HasPrefix(spec, "{") {
		return ParseSortJSON([]byte(spec))
	}

	var result Sort
	for _, part := range strings.Split(spec, ",") {
		field := strings.TrimSpace(part)
		direction := Asc
		if strings.HasPrefix(field, "-") {
			field = strings.TrimPrefix(field, "-")
			direction = Desc
		}
		if field == "" {
			return nil, fmt.Errorf("%w: empty field in %q", ErrInvalidSortShape, spec)
		}
		result = result.Then(field, direction)
	}
	return result, nil
}

func parseSortField(spec map[string]interface{}) (SortField, error) {
	field, ok := spec["field"].(string)
	if !ok || field == "" {
		return SortField{}, fmt.Errorf("%w: sort entry needs a field name", ErrInvalidSortShape)
	}
	direction, _ := spec["direction"].(string)
	return SortField{Field: field, Direction: Direction(direction)}, nil
}

// ParsePaging accepts a {"size": n, "index": n} object
func ParsePaging(v interface{}) (*Paging, error) {
	spec, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %s", ErrInvalidPagingShape, describe(v))
	}

	size, err := toInt(spec["size"])
	if err != nil {
		return nil, fmt.Errorf("%w: size: %v", ErrInvalidPagingShape, err)
	}
	index, err := toInt(spec["index"])
	if err != nil {
		return nil, fmt.Errorf("%w: index: %v", ErrInvalidPagingShape, err)
	}

	return &Paging{Size: size, Index: index}, nil
}

func toList(v interface{}) ([]interface{}, bool) {
	switch list := v.(type) {
	case []interface{}:
		return list, true
	case []string:
		items := make([]interface{}, len(list))
		for i, s := range list {
			items[i] = s
		}
		return items, true
	default:
		return nil, false
	}
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, err
		}
		return int(i), nil
	case nil:
		return 0, fmt.Errorf("missing")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func describe(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
