// Package keyspace isolates a cache's keys under "<name>:" in a shared store.
package keyspace

import (
	"strings"

	"github.com/unkn0wn-root/kvcache/internal/glob"
)

const sep = ":"

// Space qualifies user keys with a namespace prefix and builds match patterns
// that never escape the namespace, whatever characters the name contains.
type Space struct {
	prefix string
	quoted string // glob-escaped prefix
}

func New(name string) Space {
	p := name + sep
	return Space{prefix: p, quoted: glob.Escape(p)}
}

func (s Space) Prefix() string { return s.prefix }

// Key returns the storage key for a user key.
func (s Space) Key(k string) string { return s.prefix + k }

func (s Space) Keys(ks []string) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = s.prefix + k
	}
	return out
}

// Pattern scopes a user glob to the namespace. Empty means match-all.
func (s Space) Pattern(userPattern string) string {
	if userPattern == "" {
		userPattern = "*"
	}
	return s.quoted + userPattern
}

// All matches every key in the namespace.
func (s Space) All() string { return s.quoted + "*" }

// Strip returns the user key for a storage key; ok is false for foreign keys.
func (s Space) Strip(storageKey string) (string, bool) {
	return strings.CutPrefix(storageKey, s.prefix)
}
