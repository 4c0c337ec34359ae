package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryKey(t *testing.T) {
	a := QueryKey("users", `SELECT * FROM "users"`, []interface{}{1, "x"})
	b := QueryKey("users", `SELECT * FROM "users"`, []interface{}{1, "x"})
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, Namespace("users")))
	assert.Len(t, strings.TrimPrefix(a, Namespace("users")), 32)

	assert.NotEqual(t, a, QueryKey("users", `SELECT * FROM "users"`, []interface{}{2, "x"}))
	assert.NotEqual(t, a, QueryKey("users", `SELECT 1`, []interface{}{1, "x"}))
	assert.NotEqual(t, a, QueryKey("posts", `SELECT * FROM "users"`, []interface{}{1, "x"}))
}

func TestQueryKey_UnencodableParams(t *testing.T) {
	key := QueryKey("users", "SELECT 1", []interface{}{make(chan int)})
	assert.True(t, strings.HasPrefix(key, "query:users:"))
}
