package crud

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/pgdao/internal/orm/cache"
	"github.com/conduit-lang/pgdao/internal/orm/mapper"
	"github.com/conduit-lang/pgdao/internal/orm/query"
)

func init() {
	// Concrete types that can appear behind interface{} in scanned rows
	gob.Register(mapper.Object{})
	gob.Register(map[string]interface{}{})
	gob.Register([]interface{}{})
	gob.Register(time.Time{})
}

// countSuffix keeps Count entries apart from All entries for the same SQL
const countSuffix = ":count"

func (d *DAO) cacheKey(stmt query.Statement) string {
	return cache.QueryKey(d.table, stmt.Query, stmt.Params)
}

func (d *DAO) cachedObjects(ctx context.Context, stmt query.Statement) ([]mapper.Object, bool) {
	if d.cache == nil {
		return nil, false
	}

	data, err := d.cache.Get(ctx, d.cacheKey(stmt))
	if err != nil {
		if !cache.IsCacheMiss(err) {
			d.logger.Warn("cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var objects []mapper.Object
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&objects); err != nil {
		d.logger.Warn("cache entry could not be decoded", zap.Error(err))
		return nil, false
	}
	if objects == nil {
		objects = make([]mapper.Object, 0)
	}
	return objects, true
}

func (d *DAO) storeObjects(ctx context.Context, stmt query.Statement, objects []mapper.Object) {
	if d.cache == nil {
		return
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(objects); err != nil {
		d.logger.Warn("query result could not be encoded for caching", zap.Error(err))
		return
	}
	d.store(ctx, d.cacheKey(stmt), buf.Bytes())
}

func (d *DAO) cachedCount(ctx context.Context, stmt query.Statement) (int64, bool) {
	if d.cache == nil {
		return 0, false
	}

	data, err := d.cache.Get(ctx, d.cacheKey(stmt)+countSuffix)
	if err != nil {
		return 0, false
	}

	var count int64
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&count); err != nil {
		return 0, false
	}
	return count, true
}

func (d *DAO) storeCount(ctx context.Context, stmt query.Statement, count int64) {
	if d.cache == nil {
		return
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(count); err != nil {
		return
	}
	d.store(ctx, d.cacheKey(stmt)+countSuffix, buf.Bytes())
}

func (d *DAO) store(ctx context.Context, key string, data []byte) {
	if err := d.cache.Set(ctx, key, data, d.cacheTTL); err != nil {
		d.logger.Warn("cache write failed", zap.Error(err))
	}
}

// invalidate drops every cached result of this DAO's table
func (d *DAO) invalidate(ctx context.Context) {
	if d.cache == nil {
		return
	}
	if err := d.cache.DeletePrefix(ctx, cache.Namespace(d.table)); err != nil {
		d.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}
