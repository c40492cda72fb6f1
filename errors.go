package kvcache

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions marks option validation failures inside ConstructionError.
var ErrInvalidOptions = errors.New("kvcache: invalid options")

var errNilCompute = errors.New("kvcache: nil compute func")

// ConstructionError is returned by New. No cache exists when it is returned.
type ConstructionError struct {
	Name string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("kvcache: construct %q: %v", e.Name, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// StoreError reports a failed store round trip: acquiring a pooled
// connection, or a command on it. The cache does not retry.
type StoreError struct {
	Op  string // get, set, keys, del, delete_all, ping, warm
	Key string // user key or pattern; empty for keyless ops
	Err error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("kvcache: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("kvcache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
