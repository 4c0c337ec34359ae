package crud

import (
	"strings"

	"github.com/conduit-lang/pgdao/internal/orm/mapper"
)

// Instance returns an interceptor that copies the DAO fields of every fetched
// object into a new object built by factory. A compound field such as
// "author__firstName" copies the whole nested "author" object.
func Instance(factory func() mapper.Object) FetchInterceptor {
	return func(dao *DAO, value mapper.Object) mapper.Object {
		instance := factory()
		if instance == nil {
			instance = make(mapper.Object)
		}
		for _, field := range dao.fields {
			key := field
			if i := strings.Index(field, mapper.CompoundSeparator); i > 0 {
				key = field[:i]
			}
			instance[key] = value[key]
		}
		return instance
	}
}
