package filter

import (
	"strings"
	"unicode"
)

// Sentinel is the terminal compiler output for an intent with no usable
// conditions. It is a valid value, not an error; callers must check for it
// before attempting a fetch.
const Sentinel = "NOT_FOUND"

// Prefix is the literal query-string key prepended to the encoded payload.
const Prefix = "filter="

// Compile serializes an expression into a URL-encoded catalog query string.
// Compilation is pure and deterministic: identical expressions yield
// byte-identical output. Unusable conditions are skipped; an expression with
// none left compiles to Sentinel.
func Compile(e Expression) string {
	clauses := make([]string, 0, len(e.conditions))
	for _, c := range e.conditions {
		if !c.usable() {
			continue
		}
		clauses = append(clauses, renderClause(c))
	}
	if len(clauses) == 0 {
		return Sentinel
	}
	raw := "=" + strings.Join(clauses, ",")
	return Prefix + percentEncode(raw)
}

// renderClause produces the raw, unencoded '<Field>':<body> text.
func renderClause(c Condition) string {
	var body string
	switch c.op {
	case Equals:
		body = "'" + titleWords(c.value) + "'"
	case HasAnyValue:
		body = "*"
	case HasNoValue:
		body = "^*"
	case Contains:
		body = "contains('" + c.value + "')"
	case StartsWith:
		body = "starts_with('" + c.value + "')"
	case WordStartsWith:
		body = "~'" + c.value + "'"
	case IsValid:
		body = "valid()"
	}
	if c.negated {
		body = "^" + body
	}
	return c.fieldRef.Token() + ":" + body
}

// titleWords uppercases the first rune of every space-separated word and
// leaves the rest of the word untouched, so "blue widget" becomes
// "Blue Widget" while "PJ" stays "PJ".
func titleWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	atStart := true
	for _, r := range s {
		if atStart && unicode.IsLetter(r) {
			r = unicode.ToUpper(r)
		}
		atStart = r == ' '
		b.WriteRune(r)
	}
	return b.String()
}

// percentEncode escapes every byte outside the RFC 3986 unreserved set.
// Uppercase hex digits keep the output deterministic.
func percentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == '~'
}
