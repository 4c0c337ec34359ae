package crud

import (
	"context"
	"fmt"

	"github.com/conduit-lang/pgdao/internal/orm/mapper"
	"github.com/conduit-lang/pgdao/internal/orm/query"
)

// DeleteOptions describes a DELETE of the rows matching Filter. A nil Filter
// deletes every row of the table.
type DeleteOptions struct {
	Table  string
	Filter query.Filter
}

// BuildDelete renders the DELETE statement for opts
func BuildDelete(opts DeleteOptions) (query.Statement, error) {
	if opts.Table == "" {
		return query.Statement{}, fmt.Errorf("%w: table is required", ErrInvalidOptions)
	}

	stmt := query.Statement{
		Query:  "DELETE FROM " + quoteTable(opts.Table),
		Params: make([]interface{}, 0),
	}

	if opts.Filter != nil {
		where, err := query.CreateFilterByClause(opts.Filter, "", 1)
		if err != nil {
			return query.Statement{}, err
		}
		stmt.Query += " WHERE " + where.Query
		stmt.Params = where.Params
	}

	return stmt, nil
}

// Delete executes the DELETE described by opts and returns the number of
// affected rows
func Delete(ctx context.Context, db Executor, opts DeleteOptions) (int64, error) {
	stmt, err := BuildDelete(opts)
	if err != nil {
		return 0, err
	}
	return execAffected(ctx, db, stmt, "delete")
}

// Delete removes the row with the entity's id
func (d *DAO) Delete(ctx context.Context, entity mapper.Object) error {
	id, ok := entity[d.idField]
	if !ok || id == nil {
		return fmt.Errorf("%w: %s", ErrMissingID, d.idField)
	}
	return d.DeleteByID(ctx, id)
}

// DeleteByID removes the row with the given id. ErrNotFound is returned when
// no row has that id.
func (d *DAO) DeleteByID(ctx context.Context, id interface{}) error {
	stmt, err := BuildDelete(DeleteOptions{
		Table:  d.table,
		Filter: query.Eq(d.idField, id),
	})
	if err != nil {
		return err
	}
	d.logStatement("delete", stmt)

	affected, err := execAffected(ctx, d.db, stmt, "delete")
	if err != nil {
		return err
	}
	d.invalidate(ctx)

	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
