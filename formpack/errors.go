package formpack

import "errors"

var (
	// ErrUndefinedInput is returned by Encode when the top-level value is
	// Absent, which has no container representation.
	ErrUndefinedInput = errors.New("formpack: undefined input")

	// ErrUnknownExtension is returned by Decode when a placeholder token
	// names an extension missing from the supplied list.
	ErrUnknownExtension = errors.New("formpack: unknown extension")

	// ErrMissingPayload is returned by Decode when a placeholder token in
	// the skeleton has no matching side entry in the container.
	ErrMissingPayload = errors.New("formpack: missing payload entry")

	// ErrUnsupportedType is returned by Encode for values outside the
	// transported set that no extension claims.
	ErrUnsupportedType = errors.New("formpack: unsupported type")

	// ErrTooDeep is returned when a value or skeleton nests beyond
	// MaxDepth levels.
	ErrTooDeep = errors.New("formpack: max nesting depth exceeded")
)
