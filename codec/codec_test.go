package codec

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type user struct {
	ID    int       `json:"id" msgpack:"id" cbor:"id"`
	Name  string    `json:"name" msgpack:"name" cbor:"name"`
	Tags  []string  `json:"tags" msgpack:"tags" cbor:"tags"`
	Since time.Time `json:"since" msgpack:"since" cbor:"since"`
}

func sample() user {
	return user{ID: 7, Name: "ada", Tags: []string{"a", "b"}, Since: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func equal(a, b user) bool {
	if a.ID != b.ID || a.Name != b.Name || !a.Since.Equal(b.Since) || len(a.Tags) != len(b.Tags) {
		return false
	}
	for i := range a.Tags {
		if a.Tags[i] != b.Tags[i] {
			return false
		}
	}
	return true
}

func TestStructCodecs(t *testing.T) {
	cases := map[string]Codec[user]{
		"json":         JSON[user]{},
		"msgpack":      Msgpack[user]{},
		"msgpack-json": Msgpack[user]{Tag: "json", SortKeys: true},
		"cbor":         MustCBOR[user](CBOROptions{}),
		"cbor-det":     MustCBOR[user](CBOROptions{Deterministic: true, RejectDuplicateKeys: true}),
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := c.Encode(sample())
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := c.Decode(b)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !equal(got, sample()) {
				t.Fatalf("round trip: got %+v", got)
			}
			if _, err := c.Decode([]byte{0xff, 0x00, 0x13}); err == nil {
				t.Fatalf("garbage decoded without error")
			}
		})
	}
}

func TestCBORDeterministicIsStable(t *testing.T) {
	c := MustCBOR[map[string]int](CBOROptions{Deterministic: true})
	m := map[string]int{"z": 1, "a": 2, "m": 3, "b": 4}
	first, _ := c.Encode(m)
	for i := range 20 {
		b, _ := c.Encode(m)
		if !bytes.Equal(first, b) {
			t.Fatalf("deterministic encoding differs on run %d", i)
		}
	}
}

func TestCBORDuplicateKeys(t *testing.T) {
	// {"a": 1, "a": 2}
	dup := []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'a', 0x02}

	if _, err := MustCBOR[map[string]int](CBOROptions{}).Decode(dup); err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	if _, err := MustCBOR[map[string]int](CBOROptions{RejectDuplicateKeys: true}).Decode(dup); err == nil {
		t.Fatalf("duplicate key accepted")
	}
}

func TestCBORBadOptions(t *testing.T) {
	if _, err := NewCBOR[int](CBOROptions{MaxNestedLevels: 1}); err == nil {
		t.Fatalf("MaxNestedLevels=1 accepted")
	}
}

func TestMsgpackJSONTag(t *testing.T) {
	type row struct {
		ID   int    `json:"id"`
		Note string `json:"note,omitempty"`
	}
	c := Msgpack[row]{Tag: "json"}
	b, err := c.Encode(row{ID: 3})
	if err != nil {
		t.Fatal(err)
	}
	generic, err := Msgpack[map[string]any]{}.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := generic["id"]; !ok || len(generic) != 1 {
		t.Fatalf("fields = %v, want only id", generic)
	}
}

func TestMsgpackSortKeysIsStable(t *testing.T) {
	type doc struct {
		Counts map[string]int            `msgpack:"counts"`
		Nested map[string]map[string]int `msgpack:"nested"`
	}
	c := Msgpack[doc]{SortKeys: true}
	in := doc{
		Counts: map[string]int{"z": 1, "a": 2, "m": 3, "b": 4, "q": 5, "c": 300},
		Nested: map[string]map[string]int{"y": {"k": 1, "d": 2}, "e": {"x": 3, "f": -4}},
	}
	first, err := c.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 50 {
		if b, _ := c.Encode(in); !bytes.Equal(first, b) {
			t.Fatalf("sorted encoding differs on run %d", i)
		}
	}
	out, err := c.Decode(first)
	if err != nil {
		t.Fatal(err)
	}
	if out.Counts["c"] != 300 || out.Nested["e"]["f"] != -4 || len(out.Counts) != 6 {
		t.Fatalf("round trip = %+v", out)
	}
}

func TestRawCodecs(t *testing.T) {
	b, _ := Bytes{}.Encode([]byte{1, 2, 3})
	if got, _ := (Bytes{}).Decode(b); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("Bytes round trip: %v", got)
	}
	s, _ := String{}.Encode("héllo")
	if got, _ := (String{}).Decode(s); got != "héllo" {
		t.Fatalf("String round trip: %q", got)
	}

	type token string
	tb, _ := Text[token]{}.Encode("abc")
	if got, _ := (Text[token]{}).Decode(tb); got != token("abc") {
		t.Fatalf("Text[token] round trip: %q", got)
	}

	src := []byte{9, 9}
	out, _ := Bytes{}.Decode(src)
	src[0] = 0
	if out[0] != 9 {
		t.Fatalf("Bytes.Decode aliases its input")
	}
}

func TestProtobuf(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) })
	b, err := c.Encode(wrapperspb.String("cached"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Decode(b)
	if err != nil || got.GetValue() != "cached" {
		t.Fatalf("Decode = %v, %v", got, err)
	}
	if _, err := c.Encode(nil); !errors.Is(err, errNilMessage) {
		t.Fatalf("nil message: %v", err)
	}

	sc := NewProtobuf(func() *structpb.Struct { return new(structpb.Struct) })
	in, _ := structpb.NewStruct(map[string]any{"id": 1.0, "name": "ada"})
	b, _ = sc.Encode(in)
	out, err := sc.Decode(b)
	if err != nil || !proto.Equal(in, out) {
		t.Fatalf("struct round trip: %v %v", out, err)
	}
}

func TestLimit(t *testing.T) {
	c := Limit[string]{Inner: String{}, MaxEncode: 4, MaxDecode: 3}

	if _, err := c.Encode("12345"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Encode over limit: %v", err)
	}
	if b, err := c.Encode("1234"); err != nil || string(b) != "1234" {
		t.Fatalf("Encode at limit: %q %v", b, err)
	}
	if _, err := c.Decode([]byte("1234")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Decode over limit: %v", err)
	}
	if s, err := c.Decode([]byte("123")); err != nil || s != "123" {
		t.Fatalf("Decode at limit: %q %v", s, err)
	}

	open := Limit[string]{Inner: String{}}
	if _, err := open.Decode(bytes.Repeat([]byte{'x'}, 1<<16)); err != nil {
		t.Fatalf("unbounded Limit rejected input: %v", err)
	}
}
