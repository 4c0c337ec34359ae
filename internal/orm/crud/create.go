package crud

import (
	"context"
	"fmt"

	"github.com/conduit-lang/pgdao/internal/orm/mapper"
	"github.com/conduit-lang/pgdao/internal/orm/query"
)

// InsertOptions describes a single-row INSERT
type InsertOptions struct {
	Table string
	// Value maps logical field names to values; compound fields and the id
	// field are not written
	Value map[string]interface{}
	// IDField, when set, is returned by the statement and stored in the result
	IDField string
}

// BuildInsert renders the INSERT statement for opts. Columns follow the
// lexical order of the value keys.
func BuildInsert(opts InsertOptions) (query.Statement, error) {
	if opts.Table == "" {
		return query.Statement{}, fmt.Errorf("%w: table is required", ErrInvalidOptions)
	}

	fields := UpdateFields(sortedKeys(opts.Value), opts.IDField)

	var sql string
	if len(fields) == 0 {
		sql = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", quoteTable(opts.Table))
	} else {
		sql = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteTable(opts.Table), InsertFieldList(fields), InsertParamList(fields))
	}

	if opts.IDField != "" {
		sql += fmt.Sprintf(` RETURNING "%s"`, mapper.CamelCaseToUnderscore(opts.IDField))
	}

	return query.Statement{Query: sql, Params: Params(fields, opts.Value)}, nil
}

// Insert writes one row and returns a copy of the value. When IDField is set
// the generated id is stored in the copy under that field.
func Insert(ctx context.Context, db Executor, opts InsertOptions) (map[string]interface{}, error) {
	stmt, err := BuildInsert(opts)
	if err != nil {
		return nil, err
	}
	return insert(ctx, db, stmt, opts)
}

func insert(ctx context.Context, db Executor, stmt query.Statement, opts InsertOptions) (map[string]interface{}, error) {
	saved := make(map[string]interface{}, len(opts.Value)+1)
	for key, value := range opts.Value {
		saved[key] = value
	}

	if opts.IDField == "" {
		if _, err := RawExec(ctx, db, stmt.Query, stmt.Params); err != nil {
			return nil, fmt.Errorf("failed to insert record: %w", err)
		}
		return saved, nil
	}

	rows, err := RawQuery(ctx, db, stmt.Query, stmt.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to insert record: no %s returned", opts.IDField)
	}

	saved[opts.IDField] = rows[0][mapper.CamelCaseToUnderscore(opts.IDField)]
	return saved, nil
}

// Save inserts the DAO fields of entity and returns a copy of entity
// carrying the generated id
func (d *DAO) Save(ctx context.Context, entity mapper.Object) (mapper.Object, error) {
	opts := InsertOptions{
		Table:   d.table,
		Value:   d.values(entity),
		IDField: d.idField,
	}

	stmt, err := BuildInsert(opts)
	if err != nil {
		return nil, err
	}
	d.logStatement("save", stmt)

	saved, err := insert(ctx, d.db, stmt, opts)
	if err != nil {
		return nil, err
	}
	d.invalidate(ctx)

	result := make(mapper.Object, len(entity)+1)
	for key, value := range entity {
		result[key] = value
	}
	result[d.idField] = saved[d.idField]
	return result, nil
}
