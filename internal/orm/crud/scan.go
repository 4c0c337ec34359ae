package crud

import (
	"database/sql"
	"database/sql/driver"
	"reflect"

	"github.com/lib/pq"

	"github.com/conduit-lang/pgdao/internal/orm/mapper"
)

// scanRows scans every row into a flat column-keyed map
func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			record[col] = values[i]
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// transformRows nests every flat row on "__" and converts its keys to camelCase
func transformRows(rows []map[string]interface{}) ([]mapper.Object, error) {
	objects := make([]mapper.Object, 0, len(rows))
	for _, row := range rows {
		nested, err := mapper.FromFlatObject(row)
		if err != nil {
			return nil, err
		}
		objects = append(objects, mapper.TransformKeys(nested, mapper.UnderscoreToCamelCase))
	}
	return objects, nil
}

// normalizeParams wraps slice values with pq.Array so that they bind as
// PostgreSQL arrays. []byte and driver.Valuer values are left alone.
func normalizeParams(params []interface{}) []interface{} {
	normalized := make([]interface{}, len(params))
	for i, param := range params {
		normalized[i] = normalizeParam(param)
	}
	return normalized
}

func normalizeParam(param interface{}) interface{} {
	switch param.(type) {
	case nil, []byte, driver.Valuer:
		return param
	}

	kind := reflect.TypeOf(param).Kind()
	if kind == reflect.Slice || kind == reflect.Array {
		return pq.Array(param)
	}
	return param
}
