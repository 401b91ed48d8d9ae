// Package cache stores computed scan results between runs.
//
// A scan over a large pangenome graph is the expensive step of the pipeline;
// its result depends only on the trimmed graph and the context length. The
// pipeline fingerprints the graph, derives a key with a [Keyer], and keeps
// the complexity map in a [Cache] backend:
//
//   - [FileCache]: JSON entries under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: caching disabled
//
// [Instrument] wraps any backend so hits, misses and writes reach the
// registered observability hooks.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gi-bielefeld/scj-carp/pkg/observability"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys from the inputs of a computation.
type Keyer interface {
	// ScanKey identifies the complexity map of a graph at a context length.
	ScanKey(fingerprint string, contextLen int) string

	// MeasureKey identifies the whole-graph measure of a graph.
	MeasureKey(fingerprint string) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ScanKey returns "scan:<hash>".
func (DefaultKeyer) ScanKey(fingerprint string, contextLen int) string {
	return hashKey("scan", fingerprint, contextLen)
}

// MeasureKey returns "measure:<hash>".
func (DefaultKeyer) MeasureKey(fingerprint string) string {
	return hashKey("measure", fingerprint)
}

// GetJSON loads key into v. It reports false on a miss; an undecodable
// entry is deleted and treated as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON stores v under key as JSON.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// instrumented reports cache traffic to the observability hooks.
type instrumented struct {
	Cache
}

// Instrument wraps c so every Get and Set fires the registered
// [observability.CacheHooks]. The key type is the last key component before
// the hash, so scoped and unscoped keys report alike.
func Instrument(c Cache) Cache {
	return instrumented{c}
}

func keyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return key
	}
	head := key[:i]
	return head[strings.LastIndexByte(head, ':')+1:]
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}
