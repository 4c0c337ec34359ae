// Package query reads filter, sort and paging parameters from HTTP requests.
package query

import (
	"fmt"
	"math"
	"net/http"
	"regexp"
	"sort"
	"strconv"

	ormquery "github.com/conduit-lang/pgdao/internal/orm/query"
)

// filterPattern matches query parameters like filter[key]
var filterPattern = regexp.MustCompile(`^filter\[([^\]]+)\]$`)

// Params holds everything a listing request can ask for
type Params struct {
	Filter ormquery.Filter
	Sort   ormquery.Sort
	Paging *ormquery.Paging
}

// Parse reads filter, sort and paging from r
func Parse(r *http.Request) (Params, error) {
	filter, err := ParseFilter(r)
	if err != nil {
		return Params{}, err
	}
	sortBy, err := ParseSort(r)
	if err != nil {
		return Params{}, err
	}
	paging, err := ParsePaging(r)
	if err != nil {
		return Params{}, err
	}
	return Params{Filter: filter, Sort: sortBy, Paging: paging}, nil
}

// ParseFilter builds a filter from the request. Two forms are accepted and
// combined with AND:
//
//	?filter=["$and",["status","=","published"],["$notnull","publishedAt"]]
//	?filter[status]=published&filter[authorId]=123
//
// The bracket form compares for equality with the string value. Operators and
// field names are checked with ormquery.ValidateFilter.
// Returns nil when the request has no filter.
func ParseFilter(r *http.Request) (ormquery.Filter, error) {
	values := r.URL.Query()
	var filters ormquery.And

	if expr := values.Get("filter"); expr != "" {
		filter, err := ormquery.ParseFilterJSON([]byte(expr))
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}

	var keys []string
	for key := range values {
		if filterPattern.MatchString(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		field := filterPattern.FindStringSubmatch(key)[1]
		filters = append(filters, ormquery.Eq(field, values.Get(key)))
	}

	if err := ormquery.ValidateFilter(filters); err != nil {
		return nil, err
	}

	switch len(filters) {
	case 0:
		return nil, nil
	case 1:
		return filters[0], nil
	default:
		return filters, nil
	}
}

// ParseSort parses the sort query parameter with ormquery.ParseSortSpec:
//
//	?sort=-createdAt,title
//
// Returns nil when the request has no sort.
func ParseSort(r *http.Request) (ormquery.Sort, error) {
	sortBy, err := ormquery.ParseSortSpec(r.URL.Query().Get("sort"))
	if err != nil {
		return nil, err
	}
	if err := ormquery.ValidateSort(sortBy); err != nil {
		return nil, err
	}
	return sortBy, nil
}

// MaxPageSize is the largest page[size] a request may ask for
const MaxPageSize = 1000

// ParsePaging reads page[size] and page[index]. Both must be positive
// integers, the size at most MaxPageSize, and the page offset must fit in an
// int. nil is returned when neither is present.
func ParsePaging(r *http.Request) (*ormquery.Paging, error) {
	values := r.URL.Query()
	rawSize, rawIndex := values.Get("page[size]"), values.Get("page[index]")
	if rawSize == "" && rawIndex == "" {
		return nil, nil
	}

	size, err := positiveInt("page[size]", rawSize)
	if err != nil {
		return nil, err
	}
	if size > MaxPageSize {
		return nil, fmt.Errorf("%w: page[size] must be at most %d, got %d", ormquery.ErrInvalidPagingShape, MaxPageSize, size)
	}
	index, err := positiveInt("page[index]", rawIndex)
	if err != nil {
		return nil, err
	}
	if index-1 > math.MaxInt/size {
		return nil, fmt.Errorf("%w: page[index] %d is out of range", ormquery.ErrInvalidPagingShape, index)
	}

	return &ormquery.Paging{Size: size, Index: index}, nil
}

func positiveInt(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ormquery.ErrInvalidPagingShape, name, raw)
	}
	return n, nil
}
