package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	cases := []Entry{
		{},
		{ExpiresAt: 42, Payload: []byte("hello")},
		{ExpiresAt: math.MaxInt64, Payload: []byte{0, 1, 2, 3, 4}},
		{Payload: bytes.Repeat([]byte{'z'}, 4096)},
	}
	for _, want := range cases {
		got, err := Decode(want.Encode())
		if err != nil {
			t.Fatalf("Decode(%d): %v", want.ExpiresAt, err)
		}
		if got.ExpiresAt != want.ExpiresAt || !bytes.Equal(got.Payload, want.Payload) {
			t.Fatalf("round trip: got %+v want %+v", got, want)
		}
	}
}

func TestAppendKeepsPrefix(t *testing.T) {
	dst := []byte("prefix")
	out := Entry{Payload: []byte("x")}.Append(dst)
	if !bytes.HasPrefix(out, []byte("prefix")) {
		t.Fatalf("prefix lost: %q", out)
	}
	if _, err := Decode(out[len("prefix"):]); err != nil {
		t.Fatalf("Decode appended frame: %v", err)
	}
}

func TestDecodeRejectsDamage(t *testing.T) {
	good := Entry{ExpiresAt: 7, Payload: []byte("abc")}.Encode()

	mutate := func(f func([]byte) []byte) []byte {
		return f(bytes.Clone(good))
	}
	cases := map[string][]byte{
		"empty":      nil,
		"short":      good[:headerLen-1],
		"bad magic":  mutate(func(b []byte) []byte { b[0] = 'X'; return b }),
		"trailing":   append(bytes.Clone(good), 0xde, 0xad),
		"truncated":  good[:len(good)-1],
		"flipped":    mutate(func(b []byte) []byte { b[len(b)-1] ^= 1; return b }),
		"deadline":   mutate(func(b []byte) []byte { b[offExp+7]++; return b }),
		"negative":   Entry{ExpiresAt: -1}.Encode(),
		"foreign":    []byte("plain old bytes that are long enough"),
		"zero frame": make([]byte, headerLen),
	}
	for name, b := range cases {
		if _, err := Decode(b); !errors.Is(err, ErrCorrupt) {
			t.Errorf("%s: err = %v, want ErrCorrupt", name, err)
		}
	}
}

func TestPayloadAliasesInput(t *testing.T) {
	b := Entry{Payload: []byte("abc")}.Encode()
	e, err := Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	b[headerLen] = 'X'
	if e.Payload[0] != 'X' {
		t.Fatalf("payload should alias the frame")
	}
}

func TestExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	if (Entry{}).Expired(now.Add(100 * 365 * 24 * time.Hour)) {
		t.Fatalf("zero deadline must never expire")
	}
	e := NewEntry(nil, time.Second, now)
	if e.Expired(now) || e.Expired(now.Add(999*time.Millisecond)) {
		t.Fatalf("expired early")
	}
	if !e.Expired(now.Add(time.Second)) {
		t.Fatalf("alive at deadline")
	}
	if NewEntry(nil, 0, now).ExpiresAt != 0 || NewEntry(nil, -time.Second, now).ExpiresAt != 0 {
		t.Fatalf("non-positive ttl must mean no deadline")
	}
}
