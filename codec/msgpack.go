package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack serializes with vmihailenco/msgpack/v5. The zero value reads
// `msgpack` struct tags and leaves map order unspecified.
type Msgpack[V any] struct {
	// Tag names the struct tag used for field names instead, e.g. "json".
	Tag string
	// SortKeys orders string map keys, nested ones and struct fields
	// included, so equal values encode to equal bytes. The value is
	// encoded twice to get there.
	SortKeys bool
}

var _ Codec[struct{}] = Msgpack[struct{}]{}

func (m Msgpack[V]) Encode(v V) ([]byte, error) {
	b, err := m.encode(v, false)
	if err != nil || !m.SortKeys {
		return b, err
	}
	// The library sorts only map[string]string, map[string]bool and
	// map[string]any. Decoding to generic values turns every string-keyed
	// map and struct into map[string]any.
	var generic any
	if err := msgpack.Unmarshal(b, &generic); err != nil {
		return nil, err
	}
	return m.encode(generic, true)
}

func (m Msgpack[V]) encode(v any, sorted bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	enc.SetSortMapKeys(sorted)
	if m.Tag != "" {
		enc.SetCustomStructTag(m.Tag)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m Msgpack[V]) Decode(b []byte) (v V, err error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	if m.Tag != "" {
		dec.SetCustomStructTag(m.Tag)
	}
	err = dec.Decode(&v)
	return v, err
}
