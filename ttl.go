package kvcache

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type ttlState uint8

const (
	ttlUnset ttlState = iota
	ttlSeconds
	ttlInvalid
)

// TTL is a write expiry in seconds.
//
// The zero value, NoTTL, writes without expiry. Seconds(n) expires after n
// seconds and is writable only for finite n > 0. A TTL parsed from
// non-numeric text is never writable. Writes with a non-writable TTL are
// skipped, never stored and expired.
type TTL struct {
	state ttlState
	secs  float64
	raw   string // original text of an invalid TTL
}

// NoTTL stores entries without expiry.
var NoTTL TTL

func Seconds(n float64) TTL { return TTL{state: ttlSeconds, secs: n} }

// FromDuration converts d with sub-second precision. d <= 0 is not writable.
func FromDuration(d time.Duration) TTL { return Seconds(d.Seconds()) }

// ParseTTL reads a TTL from configuration text: "" is NoTTL, a number is
// Seconds, anything else is an invalid TTL.
func ParseTTL(s string) TTL {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoTTL
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return TTL{state: ttlInvalid, raw: s}
	}
	return Seconds(n)
}

// IsSet reports whether t carries any value, valid or not.
func (t TTL) IsSet() bool { return t.state != ttlUnset }

// Writable reports whether a write with t reaches the store.
func (t TTL) Writable() bool {
	switch t.state {
	case ttlUnset:
		return true
	case ttlSeconds:
		return t.secs > 0 && !math.IsInf(t.secs, 0) && !math.IsNaN(t.secs)
	default:
		return false
	}
}

// Duration is the expiry handed to the store: 0 for NoTTL and for TTLs that
// are not writable, otherwise at least one nanosecond.
func (t TTL) Duration() time.Duration {
	if t.state != ttlSeconds || !t.Writable() {
		return 0
	}
	ns := t.secs * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	if ns < 1 {
		return 1
	}
	return time.Duration(ns)
}

func (t TTL) String() string {
	switch t.state {
	case ttlUnset:
		return "none"
	case ttlSeconds:
		return strconv.FormatFloat(t.secs, 'g', -1, 64) + "s"
	default:
		return strconv.Quote(t.raw) + "(invalid)"
	}
}

// UnmarshalText follows ParseTTL. It never fails: bad input yields an
// invalid TTL, so such writes are skipped.
func (t *TTL) UnmarshalText(b []byte) error {
	*t = ParseTTL(string(b))
	return nil
}
