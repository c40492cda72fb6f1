package glob

import "testing"

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, s string
		want       bool
	}{
		{"*", "", true},
		{"*", "anything", true},
		{"key*", "key1", true},
		{"key*", "ke", false},
		{"*2", "key2", true},
		{"k**y", "key", true},
		{"k**y", "kxz", false},
		{"k*y", "kxxy", true},
		{"?", "a", true},
		{"?", "", false},
		{"key?", "key10", false},
		{"key[2]", "key2", true},
		{"key[2]", "key1", false},
		{"key[12]", "key1", true},
		{"key[^2]", "key1", true},
		{"key[^2]", "key2", false},
		{"key[0-9]", "key7", true},
		{"key[9-0]", "key7", true},
		{"key[a-c]", "key7", false},
		{`key\*`, "key*", true},
		{`key\*`, "key1", false},
		{`key[\]]`, "key]", true},
		{"key[1", "key1", true},
		{"a:b:*", "a:b:c:d", true},
		{"exact", "exact", true},
		{"exact", "exactly", false},
		{`trailing\`, `trailing\`, true},
	}
	for _, tc := range cases {
		if got := Match(tc.pattern, tc.s); got != tc.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tc.pattern, tc.s, got, tc.want)
		}
	}
}

func TestEscapeMatchesOnlyItself(t *testing.T) {
	names := []string{"plain", "has*star", "q?", "[set]", `back\slash`, "cache:v1"}
	for _, n := range names {
		p := Escape(n)
		if !Match(p, n) {
			t.Fatalf("Escape(%q)=%q does not match itself", n, p)
		}
		if !Match(p+"*", n+":k") {
			t.Fatalf("escaped prefix %q does not match %q", p, n+":k")
		}
	}
	if Match(Escape("a*"), "abc") {
		t.Fatalf("escaped star must not act as wildcard")
	}
	if got := Escape("plain"); got != "plain" {
		t.Fatalf("Escape(plain) = %q", got)
	}
}
