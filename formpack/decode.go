package formpack

import (
	"fmt"

	"github.com/holmberd/go-formpack/extension"
	"github.com/holmberd/go-formpack/payload"
	"github.com/holmberd/go-formpack/placeholder"
)

// decoder walks a parsed skeleton tree, replacing every placeholder token
// with the value its extension reconstructs from the side table. One decoder
// serves exactly one Decode call.
type decoder struct {
	exts    []extension.Extension
	table   map[string]payload.Payload
	matcher *placeholder.Matcher
}

func newDecoder(exts []extension.Extension, table map[string]payload.Payload, prefix string) *decoder {
	return &decoder{
		exts:    exts,
		table:   table,
		matcher: placeholder.NewMatcher(prefix),
	}
}

// walk mirrors the encoder's traversal. The input tree comes from
// parseJSONValue, so nodes are nil, bool, float64, string, []any or *Object.
func (d *decoder) walk(v any) (any, error) {
	switch val := v.(type) {
	case string:
		tok, ok := d.matcher.Match(val)
		if !ok {
			return val, nil
		}
		return d.resolve(val, tok)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			node, err := d.walk(item)
			if err != nil {
				return nil, err
			}
			out[i] = node
		}
		return out, nil
	case *Object:
		out := NewObject()
		for _, m := range val.members {
			node, err := d.walk(m.value)
			if err != nil {
				return nil, err
			}
			out.Set(m.key, node)
		}
		return out, nil
	default:
		return val, nil
	}
}

// resolve looks the token up in the side table and runs the named
// extension's reverse transform.
func (d *decoder) resolve(key string, tok placeholder.Token) (any, error) {
	ext, found := extension.Find(d.exts, tok.Name)
	if !found {
		return nil, fmt.Errorf(
			"formpack: placeholder %q names extension %q not present in the list: %w",
			key, tok.Name, ErrUnknownExtension,
		)
	}
	p, ok := d.table[key]
	if !ok {
		return nil, fmt.Errorf("formpack: no payload entry for placeholder %q: %w", key, ErrMissingPayload)
	}
	v, err := ext.Deserialize(p)
	if err != nil {
		// Extension failures reach the caller with their identity intact.
		return nil, err
	}
	return v, nil
}
