package crud

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/conduit-lang/pgdao/internal/orm/mapper"
)

// RawExec executes a statement that returns no rows
func RawExec(ctx context.Context, db Executor, query string, params []interface{}) (sql.Result, error) {
	result, err := db.ExecContext(ctx, query, normalizeParams(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", ConvertDBError(err))
	}
	return result, nil
}

// RawQuery runs a query and returns its rows keyed by column name
func RawQuery(ctx context.Context, db Executor, query string, params []interface{}) ([]map[string]interface{}, error) {
	rows, err := db.QueryContext(ctx, query, normalizeParams(params)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", ConvertDBError(err))
	}
	defer rows.Close()

	results, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan query results: %w", ConvertDBError(err))
	}
	return results, nil
}

// RawTransformedQuery runs a query and maps every row to a nested object
// with camelCase keys: {"author__first_name": "Ada"} becomes
// {"author": {"firstName": "Ada"}}.
func RawTransformedQuery(ctx context.Context, db Executor, query string, params []interface{}) ([]mapper.Object, error) {
	rows, err := RawQuery(ctx, db, query, params)
	if err != nil {
		return nil, err
	}
	return transformRows(rows)
}
