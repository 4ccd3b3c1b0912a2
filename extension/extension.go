// Package extension defines the pluggable type-handler contract that lets
// callers transport values outside the JSON-native set (dates, big integers,
// binary blobs, ...) through a container without the core knowing their
// concrete types.
//
// Extensions are consulted in list order and the first whose CanHandle
// reports true wins. A built-in handler for binary blobs is always placed at
// the head of the list by the encoder and decoder, so callers cannot
// intercept blob values ahead of it; a caller that wants custom binary
// handling models binary-ness as its own type with its own extension.
package extension

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holmberd/go-formpack/payload"
	"github.com/holmberd/go-formpack/placeholder"
)

var (
	// ErrInvalidName is returned when an extension name is empty,
	// whitespace-only, or contains the token delimiter.
	ErrInvalidName = errors.New("extension: invalid extension name")

	// ErrReservedPrefix is returned when an extension name collides with a
	// prefix reserved for the container's own key namespacing.
	ErrReservedPrefix = errors.New("extension: reserved name prefix")

	// ErrDuplicateName is returned when two extensions in the same list
	// share a name.
	ErrDuplicateName = errors.New("extension: duplicate extension name")
)

// Extension is a named type handler. Implementations must be stateless with
// respect to individual encode/decode calls and safe for concurrent use.
type Extension interface {
	// Name identifies the extension inside placeholder tokens. It must be
	// unique within a list, must not contain the token delimiter, and must
	// not start with a reserved container prefix.
	Name() string

	// CanHandle reports whether this extension is responsible for v.
	// The first extension in list order to report true handles the value.
	CanHandle(v any) bool

	// Serialize transforms v into its stored payload form.
	Serialize(v any) (payload.Payload, error)

	// Deserialize inverts Serialize. It must accept exactly the payload
	// kind Serialize produces and should return
	// payload.ErrTypeMismatch when handed the other kind.
	Deserialize(p payload.Payload) (any, error)
}

type funcExtension struct {
	name        string
	canHandle   func(v any) bool
	serialize   func(v any) (payload.Payload, error)
	deserialize func(p payload.Payload) (any, error)
}

// New builds an extension from its four facets. It is the ordered
// strategy-tuple form: (predicate, forward transform, inverse transform)
// under a unique name, with no interface implementation boilerplate.
func New(
	name string,
	canHandle func(v any) bool,
	serialize func(v any) (payload.Payload, error),
	deserialize func(p payload.Payload) (any, error),
) Extension {
	return &funcExtension{
		name:        name,
		canHandle:   canHandle,
		serialize:   serialize,
		deserialize: deserialize,
	}
}

func (e *funcExtension) Name() string { return e.name }

func (e *funcExtension) CanHandle(v any) bool { return e.canHandle(v) }

func (e *funcExtension) Serialize(v any) (payload.Payload, error) { return e.serialize(v) }

func (e *funcExtension) Deserialize(p payload.Payload) (any, error) { return e.deserialize(p) }

// Validate checks that the extension list cannot produce ambiguous or
// colliding placeholder tokens. It is a pure check with no side effects,
// run before any value traversal.
//
// For each extension, in list order, it verifies that the name does not
// contain the token delimiter, is not empty or all-whitespace, does not
// start with any of the reserved prefixes (the container data key and the
// placeholder prefix), and was not already used earlier in the list.
func Validate(exts []Extension, reservedPrefixes ...string) error {
	seen := make(map[string]struct{}, len(exts))
	for i, ext := range exts {
		if ext == nil {
			return fmt.Errorf("extension: extension at index %d is nil", i)
		}
		name := ext.Name()
		if strings.Contains(name, placeholder.Delimiter) {
			return fmt.Errorf(
				"extension: name %q must not contain delimiter %q: %w",
				name, placeholder.Delimiter, ErrInvalidName,
			)
		}
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("extension: name must not be empty: %w", ErrInvalidName)
		}
		for _, prefix := range reservedPrefixes {
			if prefix != "" && strings.HasPrefix(name, prefix) {
				return fmt.Errorf(
					"extension: name %q collides with reserved prefix %q: %w",
					name, prefix, ErrReservedPrefix,
				)
			}
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("extension: name %q used more than once: %w", name, ErrDuplicateName)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Find returns the first extension in list order with the given name.
func Find(exts []Extension, name string) (Extension, bool) {
	for _, ext := range exts {
		if ext.Name() == name {
			return ext, true
		}
	}
	return nil, false
}
