package codec

import "bytes"

// Text stores a string type as its bytes. UTF-8 is not checked.
type Text[V ~string] struct{}

func (Text[V]) Encode(s V) ([]byte, error) { return []byte(s), nil }
func (Text[V]) Decode(b []byte) (V, error) { return V(b), nil }

// Blob stores a byte-slice type unchanged. Decode returns a copy, so the
// result may be kept after the store reuses its buffer.
type Blob[V ~[]byte] struct{}

func (Blob[V]) Encode(b V) ([]byte, error) { return []byte(b), nil }
func (Blob[V]) Decode(b []byte) (V, error) { return V(bytes.Clone(b)), nil }

type (
	String = Text[string]
	Bytes  = Blob[[]byte]
)
