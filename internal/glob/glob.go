// Package glob implements the glob dialect understood by Redis KEYS/SCAN MATCH
// so local stores list keys exactly the way the remote store would.
//
// Supported syntax (byte oriented, like Redis):
//
//	*        any sequence, including empty
//	?        exactly one byte
//	[abc]    one byte from the set
//	[^abc]   one byte not in the set
//	[a-z]    one byte in the range (reversed ranges are swapped)
//	\x       literal x (also inside classes)
package glob

import "strings"

// Match reports whether s matches pattern.
func Match(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 1 && pattern[1] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if Match(pattern[1:], s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pattern, s = pattern[1:], s[1:]
		case '[':
			if len(s) == 0 {
				return false
			}
			ok, rest := matchClass(pattern[1:], s[0])
			if !ok {
				return false
			}
			pattern, s = rest, s[1:]
		case '\\':
			if len(pattern) >= 2 {
				pattern = pattern[1:]
			}
			fallthrough
		default:
			if len(s) == 0 || pattern[0] != s[0] {
				return false
			}
			pattern, s = pattern[1:], s[1:]
		}
	}
	return len(s) == 0
}

// matchClass consumes a character class body (after '[') and reports whether c
// is a member. An unterminated class is closed at the end of the pattern.
func matchClass(p string, c byte) (bool, string) {
	negate := false
	if len(p) > 0 && p[0] == '^' {
		negate = true
		p = p[1:]
	}
	hit := false
	for len(p) > 0 {
		if p[0] == ']' {
			p = p[1:]
			break
		}
		switch {
		case p[0] == '\\' && len(p) >= 2:
			hit = hit || p[1] == c
			p = p[2:]
		case len(p) >= 3 && p[1] == '-':
			lo, hi := p[0], p[2]
			if lo > hi {
				lo, hi = hi, lo
			}
			hit = hit || (c >= lo && c <= hi)
			p = p[3:]
		default:
			hit = hit || p[0] == c
			p = p[1:]
		}
	}
	if negate {
		hit = !hit
	}
	return hit, p
}

const special = `*?[]\`

// Escape quotes every glob metacharacter in s so it matches only itself.
func Escape(s string) string {
	if !strings.ContainsAny(s, special) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(special, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
