package crud

import (
	"context"
	"fmt"

	"github.com/conduit-lang/pgdao/internal/orm/mapper"
	"github.com/conduit-lang/pgdao/internal/orm/query"
)

// QueryOptions describes a SELECT of Fields from Table, extended with an
// optional filter, sort and paging
type QueryOptions struct {
	Table  string
	Fields []string
	Filter query.Filter
	Sort   query.Sort
	Paging *query.Paging
}

// BuildSelect renders the extended SELECT statement for opts
func BuildSelect(opts QueryOptions) (query.Statement, error) {
	if opts.Table == "" {
		return query.Statement{}, fmt.Errorf("%w: table is required", ErrInvalidOptions)
	}
	if len(opts.Fields) == 0 {
		return query.Statement{}, fmt.Errorf("%w: fields are required", ErrInvalidOptions)
	}

	base := fmt.Sprintf("SELECT %s FROM %s", SelectFieldList(opts.Fields), quoteTable(opts.Table))
	return query.Extend(base, opts.Filter, opts.Sort, opts.Paging)
}

// QueryByFields selects the given fields and returns nested camelCase objects
func QueryByFields(ctx context.Context, db Executor, opts QueryOptions) ([]mapper.Object, error) {
	stmt, err := BuildSelect(opts)
	if err != nil {
		return nil, err
	}
	return RawTransformedQuery(ctx, db, stmt.Query, stmt.Params)
}

// Find retrieves the object with the given id.
// ErrNotFound is returned when no row has that id.
func (d *DAO) Find(ctx context.Context, id interface{}) (mapper.Object, error) {
	stmt, err := BuildSelect(QueryOptions{
		Table:  d.table,
		Fields: d.fields,
		Filter: query.Eq(d.idField, id),
	})
	if err != nil {
		return nil, err
	}
	d.logStatement("find", stmt)

	results, err := RawTransformedQuery(ctx, d.db, stmt.Query, stmt.Params)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	return d.intercept(results[0]), nil
}

// All lists the objects matching opts. Results are served from the cache
// when one is configured.
func (d *DAO) All(ctx context.Context, opts ListOptions) ([]mapper.Object, error) {
	stmt, err := BuildSelect(QueryOptions{
		Table:  d.table,
		Fields: d.fields,
		Filter: opts.Filter,
		Sort:   opts.Sort,
		Paging: opts.Paging,
	})
	if err != nil {
		return nil, err
	}

	results, ok := d.cachedObjects(ctx, stmt)
	if !ok {
		d.logStatement("all", stmt)

		results, err = RawTransformedQuery(ctx, d.db, stmt.Query, stmt.Params)
		if err != nil {
			return nil, err
		}
		d.storeObjects(ctx, stmt, results)
	}

	for i := range results {
		results[i] = d.intercept(results[i])
	}
	return results, nil
}

// Count returns the number of rows matching filter; a nil filter counts the
// whole table
func (d *DAO) Count(ctx context.Context, filter query.Filter) (int64, error) {
	stmt, err := BuildSelect(QueryOptions{
		Table:  d.table,
		Fields: d.fields,
		Filter: filter,
	})
	if err != nil {
		return 0, err
	}
	stmt.Query = fmt.Sprintf("SELECT COUNT(*) AS count FROM (%s) c", stmt.Query)

	if count, ok := d.cachedCount(ctx, stmt); ok {
		return count, nil
	}
	d.logStatement("count", stmt)

	rows, err := RawQuery(ctx, d.db, stmt.Query, stmt.Params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("failed to count records: no rows returned")
	}

	count, err := toInt64(rows[0]["count"])
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	d.storeCount(ctx, stmt, count)
	return count, nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		var count int64
		_, err := fmt.Sscan(string(n), &count)
		return count, err
	case string:
		var count int64
		_, err := fmt.Sscan(n, &count)
		return count, err
	default:
		return 0, fmt.Errorf("unexpected count type %T", v)
	}
}
