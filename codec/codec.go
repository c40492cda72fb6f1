// Package codec turns cache values into the bytes a store keeps.
//
// A Codec must round-trip: Decode(Encode(v)) yields a value equal to v.
// Decode errors on values read from a store make the cache drop the entry
// and report a miss.
package codec

import "errors"

// ErrTooLarge is returned by Limit when a payload exceeds its bound.
var ErrTooLarge = errors.New("codec: payload too large")

type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
