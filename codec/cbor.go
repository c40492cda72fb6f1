package codec

import "github.com/fxamacker/cbor/v2"

// CBOROptions tune a CBOR codec. The zero value gives compact, unsorted
// encoding and the library's decode limits.
type CBOROptions struct {
	// Deterministic selects RFC 8949 core deterministic encoding, so equal
	// values always encode to equal bytes.
	Deterministic bool
	// RejectDuplicateKeys fails Decode on maps that repeat a key.
	RejectDuplicateKeys bool
	// MaxNestedLevels bounds decode depth. 0 keeps the library default.
	MaxNestedLevels int
}

// CBOR serializes with fxamacker/cbor. Build it with NewCBOR or MustCBOR;
// the zero value panics on use. Times travel as RFC3339Nano text.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

func NewCBOR[V any](o CBOROptions) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if o.Deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano
	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}

	do := cbor.DecOptions{MaxNestedLevels: o.MaxNestedLevels}
	if o.RejectDuplicateKeys {
		do.DupMapKey = cbor.DupMapKeyEnforcedAPF
	}
	dm, err := do.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is NewCBOR for package-level vars; it panics on bad options.
func MustCBOR[V any](o CBOROptions) CBOR[V] {
	c, err := NewCBOR[V](o)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (v V, err error) {
	err = c.dec.Unmarshal(b, &v)
	return v, err
}
