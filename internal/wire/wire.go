// Package wire frames values for byte-only local stores that have no native
// per-entry expiry. A frame carries the absolute deadline and a checksum
// next to the payload.
package wire

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"time"
)

// Frame layout, big endian:
//
//	magic "KVC2" (4) | expiresAt unix nanos, 0 = never (8) | crc32c (4) | len (4) | payload
//
// The checksum covers the deadline and the payload.
const (
	headerLen = 4 + 8 + 4 + 4
	offExp    = 4
	offSum    = offExp + 8
	offLen    = offSum + 4
)

var (
	ErrCorrupt = errors.New("kvcache: corrupt entry")

	magic  = [4]byte{'K', 'V', 'C', '2'}
	castag = crc32.MakeTable(crc32.Castagnoli)
)

// Entry is one framed value.
type Entry struct {
	ExpiresAt int64 // unix nanos, 0 = never
	Payload   []byte
}

// NewEntry returns an entry living ttl past now; ttl <= 0 never expires.
func NewEntry(payload []byte, ttl time.Duration, now time.Time) Entry {
	e := Entry{Payload: payload}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl).UnixNano()
	}
	return e
}

// Expired reports whether e is dead at now.
func (e Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != 0 && now.UnixNano() >= e.ExpiresAt
}

// Append writes the frame of e to dst.
func (e Entry) Append(dst []byte) []byte {
	dst = append(dst, magic[:]...)
	dst = binary.BigEndian.AppendUint64(dst, uint64(e.ExpiresAt))
	dst = binary.BigEndian.AppendUint32(dst, e.sum())
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(e.Payload)))
	return append(dst, e.Payload...)
}

// Encode returns the frame of e in a new buffer.
func (e Entry) Encode() []byte {
	return e.Append(make([]byte, 0, headerLen+len(e.Payload)))
}

func (e Entry) sum() uint32 {
	var exp [8]byte
	binary.BigEndian.PutUint64(exp[:], uint64(e.ExpiresAt))
	s := crc32.Update(0, castag, exp[:])
	return crc32.Update(s, castag, e.Payload)
}

// Decode parses a frame. The payload aliases b. Anything that is not
// exactly one intact frame yields ErrCorrupt.
func Decode(b []byte) (Entry, error) {
	if len(b) < headerLen || [4]byte(b[:4]) != magic {
		return Entry{}, ErrCorrupt
	}
	e := Entry{ExpiresAt: int64(binary.BigEndian.Uint64(b[offExp:]))}
	if e.ExpiresAt < 0 {
		return Entry{}, ErrCorrupt
	}
	n := binary.BigEndian.Uint32(b[offLen:])
	if uint64(n) != uint64(len(b)-headerLen) {
		return Entry{}, ErrCorrupt
	}
	e.Payload = b[headerLen:]
	if e.sum() != binary.BigEndian.Uint32(b[offSum:]) {
		return Entry{}, ErrCorrupt
	}
	return e, nil
}
