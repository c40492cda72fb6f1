package kvcache

import "github.com/google/uuid"

// defaultPool applies when neither the caller nor the store suggests bounds.
var defaultPool = PoolOptions{Min: 0, Max: 10}

// defaultName is unique per call, so unnamed caches never share a namespace.
func defaultName() string { return "kvcache-" + uuid.NewString() }

// coalesce returns def when v is the zero value of T, v otherwise.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
