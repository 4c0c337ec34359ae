// Package crud composes the mapper and the query extension engine into
// statement-level operations and a generic per-table DAO.
package crud

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/pgdao/internal/orm/cache"
	"github.com/conduit-lang/pgdao/internal/orm/mapper"
	"github.com/conduit-lang/pgdao/internal/orm/query"
)

// Executor runs SQL statements. *sql.DB, *sql.Tx and *sql.Conn satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// FetchInterceptor post-processes every object read through a DAO. The
// returned object replaces the fetched one.
type FetchInterceptor func(dao *DAO, value mapper.Object) mapper.Object

// Options configures a DAO
type Options struct {
	// Table is the table name, used verbatim inside double quotes
	Table string
	// Fields are the logical (camelCase) field names; "a__b" selects a nested field
	Fields []string
	// IDField names the primary key field, "id" when empty
	IDField string
	// Interceptors run in order over every fetched object
	Interceptors []FetchInterceptor
	// Cache, when set, stores the results of All and Count
	Cache cache.Cache
	// CacheTTL is passed to the cache; zero means the cache default
	CacheTTL time.Duration
	// Logger receives statement logs at debug level
	Logger *zap.Logger
}

// ListOptions narrows a DAO listing
type ListOptions struct {
	Filter query.Filter
	Sort   query.Sort
	Paging *query.Paging
}

// DAO provides generic data access for a single table
type DAO struct {
	db           Executor
	table        string
	fields       []string
	idField      string
	interceptors []FetchInterceptor
	cache        cache.Cache
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewDAO creates a DAO over db
func NewDAO(db Executor, opts Options) (*DAO, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: executor is nil", ErrInvalidOptions)
	}
	if opts.Table == "" {
		return nil, fmt.Errorf("%w: table is required", ErrInvalidOptions)
	}
	if len(opts.Fields) == 0 {
		return nil, fmt.Errorf("%w: fields are required", ErrInvalidOptions)
	}

	idField := opts.IDField
	if idField == "" {
		idField = DefaultIDField
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DAO{
		db:           db,
		table:        opts.Table,
		fields:       append([]string(nil), opts.Fields...),
		idField:      idField,
		interceptors: opts.Interceptors,
		cache:        opts.Cache,
		cacheTTL:     opts.CacheTTL,
		logger:       logger.With(zap.String("table", opts.Table)),
	}, nil
}

// Table returns the table name
func (d *DAO) Table() string {
	return d.table
}

// Fields returns a copy of the configured fields
func (d *DAO) Fields() []string {
	return append([]string(nil), d.fields...)
}

// IDField returns the primary key field
func (d *DAO) IDField() string {
	return d.idField
}

// values copies the DAO fields out of entity; absent fields are nil
func (d *DAO) values(entity mapper.Object) map[string]interface{} {
	values := make(map[string]interface{}, len(d.fields))
	for _, field := range d.fields {
		values[field] = entity[field]
	}
	return values
}

func (d *DAO) intercept(value mapper.Object) mapper.Object {
	for _, interceptor := range d.interceptors {
		value = interceptor(d, value)
	}
	return value
}

func (d *DAO) logStatement(op string, stmt query.Statement) {
	d.logger.Debug("executing statement",
		zap.String("op", op),
		zap.String("sql", stmt.Query),
		zap.Int("params", len(stmt.Params)),
	)
}
