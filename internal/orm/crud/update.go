package crud

import (
	"context"
	"fmt"

	"github.com/conduit-lang/pgdao/internal/orm/mapper"
	"github.com/conduit-lang/pgdao/internal/orm/query"
)

// UpdateOptions describes an UPDATE of the rows matching Filter. A nil
// Filter updates every row of the table.
type UpdateOptions struct {
	Table   string
	Value   map[string]interface{}
	IDField string
	Filter  query.Filter
}

// BuildUpdate renders the UPDATE statement for opts. Filter placeholders are
// numbered after the SET placeholders.
func BuildUpdate(opts UpdateOptions) (query.Statement, error) {
	if opts.Table == "" {
		return query.Statement{}, fmt.Errorf("%w: table is required", ErrInvalidOptions)
	}

	fields := UpdateFields(sortedKeys(opts.Value), opts.IDField)
	if len(fields) == 0 {
		return query.Statement{}, fmt.Errorf("%w: no fields to update", ErrInvalidOptions)
	}

	params := Params(fields, opts.Value)
	sql := fmt.Sprintf("UPDATE %s SET %s", quoteTable(opts.Table), UpdateFieldAndParamList(fields))

	if opts.Filter != nil {
		where, err := query.CreateFilterByClause(opts.Filter, "", len(params)+1)
		if err != nil {
			return query.Statement{}, err
		}
		sql += " WHERE " + where.Query
		params = append(params, where.Params...)
	}

	return query.Statement{Query: sql, Params: params}, nil
}

// Update executes the UPDATE described by opts and returns the number of
// affected rows
func Update(ctx context.Context, db Executor, opts UpdateOptions) (int64, error) {
	stmt, err := BuildUpdate(opts)
	if err != nil {
		return 0, err
	}
	return execAffected(ctx, db, stmt, "update")
}

// Update writes the DAO fields of entity to the row with the entity's id and
// returns a copy of entity. ErrNotFound is returned when no row has that id.
func (d *DAO) Update(ctx context.Context, entity mapper.Object) (mapper.Object, error) {
	id, ok := entity[d.idField]
	if !ok || id == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingID, d.idField)
	}

	stmt, err := BuildUpdate(UpdateOptions{
		Table:   d.table,
		Value:   d.values(entity),
		IDField: d.idField,
		Filter:  query.Eq(d.idField, id),
	})
	if err != nil {
		return nil, err
	}
	d.logStatement("update", stmt)

	affected, err := execAffected(ctx, d.db, stmt, "update")
	if err != nil {
		return nil, err
	}
	d.invalidate(ctx)

	if affected == 0 {
		return nil, ErrNotFound
	}

	updated := make(mapper.Object, len(entity))
	for key, value := range entity {
		updated[key] = value
	}
	return updated, nil
}

func execAffected(ctx context.Context, db Executor, stmt query.Statement, op string) (int64, error) {
	result, err := RawExec(ctx, db, stmt.Query, stmt.Params)
	if err != nil {
		return 0, fmt.Errorf("failed to %s records: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}
