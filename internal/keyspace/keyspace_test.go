package keyspace

import (
	"testing"

	"github.com/unkn0wn-root/kvcache/internal/glob"
)

func TestKeyAndStrip(t *testing.T) {
	s := New("users")
	if got := s.Key("42"); got != "users:42" {
		t.Fatalf("Key = %q", got)
	}
	k, ok := s.Strip("users:42")
	if !ok || k != "42" {
		t.Fatalf("Strip = %q,%v", k, ok)
	}
	if _, ok := s.Strip("orders:42"); ok {
		t.Fatalf("foreign key must not strip")
	}
	got := s.Keys([]string{"a", "b"})
	if len(got) != 2 || got[0] != "users:a" || got[1] != "users:b" {
		t.Fatalf("Keys = %v", got)
	}
}

func TestPatternStaysInsideNamespace(t *testing.T) {
	s := New("ca*che")
	if !glob.Match(s.Pattern("key[2]"), "ca*che:key2") {
		t.Fatalf("pattern should match own key")
	}
	if glob.Match(s.Pattern("key[2]"), "cabbache:key2") {
		t.Fatalf("star in name leaked into pattern")
	}
	if !glob.Match(s.Pattern(""), "ca*che:anything") {
		t.Fatalf("empty pattern should match all")
	}
	if glob.Match(s.All(), "other:x") {
		t.Fatalf("All matched a foreign key")
	}
}
