package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// QueryKey builds the cache key of a statement. Keys share the namespace
// prefix so that DeletePrefix(ctx, Namespace(ns)) drops all of them.
func QueryKey(namespace, query string, params []interface{}) string {
	encoded, err := json.Marshal(params)
	if err != nil {
		encoded = []byte(fmt.Sprintf("%#v", params))
	}

	hash := sha256.New()
	hash.Write([]byte(query))
	hash.Write([]byte{0})
	hash.Write(encoded)

	// 16 bytes of the digest keep keys short
	return Namespace(namespace) + hex.EncodeToString(hash.Sum(nil)[:16])
}

// Namespace returns the key prefix shared by all keys of namespace
func Namespace(namespace string) string {
	return "query:" + namespace + ":"
}
