package formpack

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/holmberd/go-formpack/extension"
	"github.com/holmberd/go-formpack/payload"
	"github.com/holmberd/go-formpack/placeholder"
)

// encoder walks one input value depth-first, building the JSON-marshalable
// skeleton tree and the side table of extracted payloads. One encoder serves
// exactly one Encode call.
type encoder struct {
	exts   []extension.Extension
	prefix string
	newID  func() string
	table  map[string]payload.Payload
}

func newEncoder(exts []extension.Extension, options Options) *encoder {
	return &encoder{
		exts:   exts,
		prefix: options.Prefix,
		newID:  options.NewID,
		table:  make(map[string]payload.Payload),
	}
}

// walk returns the skeleton node for v: nil, bool, a numeric kind, string,
// []any or *Object, with every extension-handled value replaced by its
// placeholder token.
func (e *encoder) walk(v any, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("formpack: value nests deeper than %d levels: %w", MaxDepth, ErrTooDeep)
	}
	if v == nil {
		return nil, nil
	}
	if _, ok := v.(absentType); ok {
		// Only reachable as an array element; keyed members are dropped
		// before the walk and the top level fails earlier.
		return nil, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
	}

	// Extensions claim values ahead of structural classification, so an
	// extension-handled slice or map never reaches the walkers below.
	for _, ext := range e.exts {
		if ext.CanHandle(v) {
			return e.placeholderFor(ext, v)
		}
	}

	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		return val, nil
	case json.Number:
		return val, nil
	case float64:
		return normalizeFloat(val), nil
	case float32:
		return normalizeFloat(float64(val)), nil
	case int:
		return val, nil
	case int8:
		return val, nil
	case int16:
		return val, nil
	case int32:
		return val, nil
	case int64:
		return val, nil
	case uint:
		return val, nil
	case uint8:
		return val, nil
	case uint16:
		return val, nil
	case uint32:
		return val, nil
	case uint64:
		return val, nil
	case []byte:
		return nil, fmt.Errorf(
			"formpack: []byte is not transported directly, wrap it in payload.NewBlob: %w",
			ErrUnsupportedType,
		)
	case []any:
		return e.walkSlice(val, depth)
	case *Object:
		return e.walkObject(val, depth)
	case map[string]any:
		return e.walkObject(ObjectFromMap(val), depth)
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, fmt.Errorf(
				"formpack: %T is not transported directly, wrap it in payload.NewBlob: %w",
				v, ErrUnsupportedType,
			)
		}
		out := make([]any, rv.Len())
		for i := range out {
			node, err := e.walk(rv.Index(i).Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = node
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf(
				"formpack: map keyed by %s is not transported, only string keys: %w",
				rv.Type().Key(), ErrUnsupportedType,
			)
		}
		return e.walkObject(objectFromReflectMap(rv), depth)
	}

	return nil, fmt.Errorf("formpack: cannot encode value of type %T: %w", v, ErrUnsupportedType)
}

func (e *encoder) walkSlice(values []any, depth int) (any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		node, err := e.walk(v, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = node
	}
	return out, nil
}

func (e *encoder) walkObject(o *Object, depth int) (any, error) {
	out := NewObject()
	for _, m := range o.members {
		if _, ok := m.value.(absentType); ok {
			continue
		}
		node, err := e.walk(m.value, depth+1)
		if err != nil {
			return nil, err
		}
		out.Set(m.key, node)
	}
	return out, nil
}

// placeholderFor extracts v through ext and returns the placeholder token
// minted for its side-table entry.
func (e *encoder) placeholderFor(ext extension.Extension, v any) (string, error) {
	p, err := ext.Serialize(v)
	if err != nil {
		// Extension failures reach the caller with their identity intact.
		return "", err
	}
	id := e.newID()
	token, err := placeholder.New(e.prefix, ext.Name(), id)
	if err != nil {
		return "", fmt.Errorf("formpack: build placeholder for extension %q: %w", ext.Name(), err)
	}
	if _, exists := e.table[token]; exists {
		return "", fmt.Errorf("formpack: id generator repeated id %q within one encode call", id)
	}
	e.table[token] = p
	return token, nil
}

// normalizeFloat maps the values JSON text cannot represent to null.
func normalizeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func objectFromReflectMap(rv reflect.Value) *Object {
	keys := make([]string, 0, rv.Len())
	values := make(map[string]reflect.Value, rv.Len())
	for _, kv := range rv.MapKeys() {
		key := kv.String()
		keys = append(keys, key)
		values[key] = rv.MapIndex(kv)
	}
	sort.Strings(keys)

	o := NewObject()
	for _, key := range keys {
		o.Set(key, values[key].Interface())
	}
	return o
}
