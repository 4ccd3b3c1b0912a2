// Package rediskey provides construction and validation of structured Redis keys.
package rediskey

import (
	"fmt"
	"regexp"
	"strings"
)

type GlobWildcard string

const (
	WildcardAnyChar    GlobWildcard = "?"  // Matches exactly one character.
	WildcardAnyString  GlobWildcard = "*"  // Matches zero or more characters.
	FragmentDelimiter               = ":"  // Standard Redis delimiter.
	NamespaceDelimiter              = "__" // Placed before and after a namespace fragment.
	keyMaxLength                    = 1024 // Practical limit (avoid large keys).
)

var keyRegex = regexp.MustCompile(`^[a-zA-Z0-9:_\-\*\?\[\]\(\),]+$`) // Allowed Redis key characters.

type InvalidKeyError string

func (e InvalidKeyError) Error() string { return "invalid redis key: " + string(e) }

// Namespace converts a name into a namespace fragment, e.g. "tests" -> "__tests__".
// An empty name yields an empty fragment.
func Namespace(name string) string {
	if name == "" {
		return ""
	}
	return NamespaceDelimiter + strings.ToLower(name) + NamespaceDelimiter
}

// ValidateFragment validates a single key fragment prior to joining.
//   - It must not contain the fragment delimiter.
//   - It must not start with the reserved namespace delimiter.
func ValidateFragment(f string) error {
	if f == "" {
		return InvalidKeyError("key fragment must not be empty")
	}
	if strings.Contains(f, FragmentDelimiter) {
		return InvalidKeyError(
			fmt.Sprintf("key fragment '%s' must not contain delimiter '%s'", f, FragmentDelimiter),
		)
	}
	if strings.HasPrefix(f, NamespaceDelimiter) {
		return InvalidKeyError(
			fmt.Sprintf("key fragment '%s' must not start with reserved delimiter '%s'", f, NamespaceDelimiter),
		)
	}
	if !keyRegex.MatchString(f) {
		return InvalidKeyError(fmt.Sprintf("key fragment '%s' contains invalid characters", f))
	}
	return nil
}

// Validate validates a complete Redis key.
func Validate(key string) error {
	if key == "" {
		return InvalidKeyError("key must not be empty")
	}
	if len(key) > keyMaxLength {
		return InvalidKeyError(fmt.Sprintf("key '%s' exceeds %d characters", key, keyMaxLength))
	}
	if !keyRegex.MatchString(key) {
		return InvalidKeyError(fmt.Sprintf("key '%s' contains invalid characters", key))
	}
	if strings.HasPrefix(key, FragmentDelimiter) || strings.HasSuffix(key, FragmentDelimiter) {
		return InvalidKeyError(
			fmt.Sprintf("key '%s' must not start or end with '%s'", key, FragmentDelimiter),
		)
	}
	return nil
}

// Build joins key fragments to produce a single complete Redis key string.
// It skips any empty fragments.
//
// Example:
//
//	key := Build("__tests__", "formpack", "container", "123")
//	fmt.Println(key) // "__tests__:formpack:container:123"
func Build(fragments ...string) string {
	var keyBuilder strings.Builder
	first := true
	for _, f := range fragments {
		if f == "" {
			continue
		}
		if !first {
			keyBuilder.WriteString(FragmentDelimiter)
		}
		keyBuilder.WriteString(f)
		first = false
	}
	return keyBuilder.String()
}

// Parse splits a Redis key into its individual fragments.
func Parse(key string) []string {
	return strings.Split(key, FragmentDelimiter)
}

// MatchPattern builds a Redis glob match pattern from a valid base Redis key.
//
// Example:
//
//	fmt.Println(MatchPattern("formpack:container", WildcardAnyString)) // "formpack:container:*"
func MatchPattern(baseKey string, wildcard GlobWildcard) string {
	return baseKey + FragmentDelimiter + string(wildcard)
}
