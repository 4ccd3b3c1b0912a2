// Package placeholder provides construction and parsing of the placeholder
// tokens that stand in for binary or extension-handled values inside a
// container's skeleton.
//
// Token structure: "<prefix>:<extensionName>:<uniqueId>"
//
// The extension name must not contain the delimiter; the unique id is opaque
// and may itself contain delimiter characters.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// Delimiter separates the prefix, extension name and unique id segments
	// of a token.
	Delimiter = ":"

	// DefaultPrefix is the token prefix used when callers do not configure
	// their own namespacing.
	DefaultPrefix = "$ext"
)

// InvalidTokenError describes a token or token segment that violates the
// token structure.
type InvalidTokenError string

func (e InvalidTokenError) Error() string { return "invalid placeholder token: " + string(e) }

// Token is a parsed placeholder token.
type Token struct {
	Prefix string // Token namespace prefix, e.g. "$ext".
	Name   string // Extension name, never contains the delimiter.
	ID     string // Opaque unique id, may contain the delimiter.
}

// String returns the token's wire form.
func (t Token) String() string {
	return Build(t.Prefix, t.Name, t.ID)
}

// Build joins prefix, extension name and unique id into a token string.
// It performs no validation; use New when the segments come from an
// unchecked source.
func Build(prefix, name, id string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(name) + len(id) + 2)
	b.WriteString(prefix)
	b.WriteString(Delimiter)
	b.WriteString(name)
	b.WriteString(Delimiter)
	b.WriteString(id)
	return b.String()
}

// New constructs a validated token string from its segments.
//
// Example:
//
//	token, err := New("$ext", "blob", "0190d1a4")
//	fmt.Println(token) // "$ext:blob:0190d1a4"
func New(prefix, name, id string) (string, error) {
	if prefix == "" {
		return "", InvalidTokenError("prefix must not be empty")
	}
	if name == "" || strings.TrimSpace(name) == "" {
		return "", InvalidTokenError("extension name must not be empty")
	}
	if strings.Contains(name, Delimiter) {
		return "", InvalidTokenError(
			fmt.Sprintf("extension name '%s' must not contain delimiter '%s'", name, Delimiter),
		)
	}
	if id == "" {
		return "", InvalidTokenError("unique id must not be empty")
	}
	return Build(prefix, name, id), nil
}

// Matcher matches strings against the token pattern for one fixed prefix.
// A Matcher is safe for concurrent use.
type Matcher struct {
	prefix  string
	pattern *regexp.Regexp
}

// NewMatcher compiles a token matcher for the given prefix.
func NewMatcher(prefix string) *Matcher {
	// Name must not contain the delimiter; the id is the greedy remainder so
	// ids containing the delimiter still parse.
	pattern := regexp.MustCompile(
		`^` + regexp.QuoteMeta(prefix) + Delimiter + `([^` + Delimiter + `]+)` + Delimiter + `(.+)$`,
	)
	return &Matcher{prefix: prefix, pattern: pattern}
}

// Prefix returns the prefix this matcher was compiled for.
func (m *Matcher) Prefix() string {
	return m.prefix
}

// Match parses s as a placeholder token.
// It reports false when s does not follow the token structure.
func (m *Matcher) Match(s string) (Token, bool) {
	groups := m.pattern.FindStringSubmatch(s)
	if groups == nil {
		return Token{}, false
	}
	return Token{Prefix: m.prefix, Name: groups[1], ID: groups[2]}, true
}

// Parse parses s as a placeholder token with the given prefix.
// Prefer a Matcher when parsing many tokens with the same prefix.
func Parse(prefix, s string) (Token, bool) {
	return NewMatcher(prefix).Match(s)
}
