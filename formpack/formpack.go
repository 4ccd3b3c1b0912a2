// Package formpack converts structured values into flat key/value containers
// and back. JSON-native parts of a value travel as a textual skeleton stored
// under one data key, while binary blobs and extension-handled types are
// lifted out into side entries addressed by placeholder tokens embedded in
// the skeleton. The resulting container maps directly onto multipart
// form-data and other flat key/value transports.
//
// Encode and Decode are pure with respect to their inputs: every call builds
// its own skeleton and side table and retains nothing afterwards.
package formpack

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/holmberd/go-formpack/container"
	"github.com/holmberd/go-formpack/extension"
)

// DefaultDataKey is the container key the skeleton is stored under unless
// WithDataKey overrides it.
const DefaultDataKey = "$data"

// MaxDepth is the nesting bound for encoded values and decoded skeletons.
// Inputs nesting deeper fail with ErrTooDeep instead of exhausting the
// stack.
const MaxDepth = 1000

// Encode converts v into a container. The extension list is validated first,
// with the built-in blob extension prepended; extensions claim values in
// list order ahead of the structural walk. Encoding Absent at the top level
// fails with ErrUndefinedInput since an absent value has no container form.
func Encode(v any, exts []extension.Extension, opts ...Option) (*container.Container, error) {
	options, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	all := extension.WithBlobHead(exts)
	if err := extension.Validate(all, options.DataKey, options.Prefix); err != nil {
		return nil, err
	}
	if _, ok := v.(absentType); ok {
		return nil, fmt.Errorf("formpack: top-level value is absent: %w", ErrUndefinedInput)
	}

	enc := newEncoder(all, options)
	node, err := enc.walk(v, 0)
	if err != nil {
		return nil, err
	}
	skeleton, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("formpack: marshal skeleton: %w", err)
	}
	return container.Build(options.DataKey, skeleton, enc.table)
}

// Decode reconstructs the value held by a container built with the same
// data key, prefix and a compatible extension list. Keyed nodes come back as
// *Object with their key order intact and numbers as float64.
func Decode(c *container.Container, exts []extension.Extension, opts ...Option) (any, error) {
	options, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	all := extension.WithBlobHead(exts)
	if err := extension.Validate(all, options.DataKey, options.Prefix); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("formpack: nil container: %w", container.ErrMalformed)
	}

	skeleton, table, err := c.Split(options.DataKey, options.Prefix)
	if err != nil {
		return nil, err
	}
	node, err := parseJSONValue(json.NewDecoder(bytes.NewReader(skeleton)), 0)
	if err != nil {
		return nil, fmt.Errorf("formpack: parse skeleton: %w", err)
	}
	return newDecoder(all, table, options.Prefix).walk(node)
}
