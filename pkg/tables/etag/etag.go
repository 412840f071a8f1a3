// Package etag converts between unescaped version values and their wire
// form. On the wire an etag is always wrapped in double quotes and any
// internal double quote is escaped with a backslash.
package etag

import "strings"

// FromValue produces the wire form of a value: every double quote not
// already preceded by an unescaped backslash gains a backslash escape (a
// quote in the first position is always escaped), and the result is wrapped
// in quotes.
func FromValue(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)

	b.WriteByte('"')

	escaped := false

	for _, r := range value {
		if r == '"' && !escaped {
			b.WriteByte('\\')
		}

		if r == '\\' {
			escaped = !escaped
		} else {
			escaped = false
		}

		b.WriteRune(r)
	}

	b.WriteByte('"')

	return b.String()
}

// ToValue unwraps an etag: when the string is at least two characters long
// and both starts and ends with a double quote, exactly one leading and one
// trailing character are stripped, after which every \" sequence becomes a
// plain quote. Etags of length zero or one are returned unchanged.
func ToValue(tag string) string {
	if len(tag) > 1 && strings.HasPrefix(tag, `"`) && strings.HasSuffix(tag, `"`) {
		tag = tag[1 : len(tag)-1]
	}

	return strings.ReplaceAll(tag, `\"`, `"`)
}
