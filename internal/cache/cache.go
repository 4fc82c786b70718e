// Package cache stores read-only lookup results: reference-graph query
// responses and citation records. Target-graph lookups are deliberately
// never cached, since reconciliation must always observe the latest
// graph state.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from the endpoint and request parts.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "graphscribe:v1:" + hex.EncodeToString(hash[:])
}

// GetRecord decodes a cached lookup record into v. A malformed or
// missing entry is a miss, never an error, so stale cache contents can
// only cost a live lookup.
func GetRecord(c Cache, key string, v any) bool {
	if c == nil {
		return false
	}
	raw, found := c.Get(key)
	if !found {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// SetRecord stores a lookup record as a JSON entry.
func SetRecord(c Cache, key string, v any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, data, ttl)
}
