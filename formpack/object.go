package formpack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

type member struct {
	key   string
	value any
}

// Object is an insertion-ordered string-keyed mapping, the keyed node of the
// transported value model. Unlike a Go map it keeps key order stable through
// encode and decode, so Decode always returns keyed values as *Object.
type Object struct {
	members []member
	index   map[string]int
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// ObjectFromMap builds an object from a plain map in sorted key order.
func ObjectFromMap(m map[string]any) *Object {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	o := NewObject()
	for _, key := range keys {
		o.Set(key, m[key])
	}
	return o
}

// Set stores v under key, replacing any previous value while keeping the
// key's original position. It returns o for chained construction.
func (o *Object) Set(key string, v any) *Object {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.members[i].value = v
		return o
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, member{key: key, value: v})
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].value, true
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	i, ok := o.index[key]
	if !ok {
		return false
	}
	o.members = append(o.members[:i], o.members[i+1:]...)
	delete(o.index, key)
	for j := i; j < len(o.members); j++ {
		o.index[o.members[j].key] = j
	}
	return true
}

// Keys returns all keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.key
	}
	return keys
}

// Len returns the number of members.
func (o *Object) Len() int {
	return len(o.members)
}

// Range calls fn for each member in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v any) bool) {
	for _, m := range o.members {
		if !fn(m.key, m.value) {
			return
		}
	}
}

// ToMap converts the object to a plain map, recursively converting nested
// objects. Key order is lost.
func (o *Object) ToMap() map[string]any {
	out := make(map[string]any, len(o.members))
	for _, m := range o.members {
		out[m.key] = plainValue(m.value)
	}
	return out
}

func plainValue(v any) any {
	switch val := v.(type) {
	case *Object:
		return val.ToMap()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON emits the members in insertion order. Absent members are
// omitted.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, m := range o.members {
		if _, ok := m.value.(absentType); ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := json.Marshal(m.key)
		if err != nil {
			return nil, fmt.Errorf("formpack: marshal object key %q: %w", m.key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(m.value)
		if err != nil {
			return nil, fmt.Errorf("formpack: marshal object member %q: %w", m.key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object preserving its key order. Duplicate
// keys keep the first position and the last value, as with JSON text in
// general.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := parseJSONValue(dec, 0)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("formpack: cannot unmarshal %T into Object", v)
	}
	if dec.More() {
		return fmt.Errorf("formpack: trailing data after object")
	}
	*o = *obj
	return nil
}

// parseJSONValue reads one JSON value from dec, producing nil, bool,
// float64, string, []any or *Object nodes. Keyed nodes come back as *Object
// so source key order survives, which plain map decoding cannot provide.
func parseJSONValue(dec *json.Decoder, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("formpack: value nests deeper than %d levels: %w", MaxDepth, ErrTooDeep)
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("formpack: parse JSON value: %w", err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("formpack: parse object key: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("formpack: object key is not a string: %v", keyTok)
				}
				value, err := parseJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				obj.Set(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("formpack: parse object end: %w", err)
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				value, err := parseJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				arr = append(arr, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("formpack: parse array end: %w", err)
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("formpack: unexpected delimiter %q", t.String())
		}
	case bool:
		return t, nil
	case float64:
		return t, nil
	case string:
		return t, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("formpack: unexpected JSON token %v", tok)
	}
}
