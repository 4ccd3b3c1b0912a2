// Package container implements the flat key/value container that carries an
// encoded value: one entry holding the JSON skeleton under the data key and
// one entry per placeholder token holding the extracted payload.
//
// Containers preserve entry insertion order and can be written to and read
// from multipart/form-data streams or a single CBOR blob.
package container

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/holmberd/go-formpack/payload"
	"github.com/holmberd/go-formpack/placeholder"
)

// ErrMalformed is returned when a container cannot be split back into a
// skeleton and side table: the data key is missing or not valid JSON, or a
// textual side entry does not hold a JSON string.
var ErrMalformed = errors.New("container: malformed container")

type entry struct {
	key   string
	value payload.Payload
}

// Container is an ordered collection of key/payload entries. Keys are
// unique; setting an existing key replaces its payload in place.
type Container struct {
	entries []entry
	index   map[string]int
}

// New returns an empty container.
func New() *Container {
	return &Container{index: make(map[string]int)}
}

// Set stores p under key, replacing any previous payload while keeping the
// key's original position.
func (c *Container) Set(key string, p payload.Payload) {
	if i, ok := c.index[key]; ok {
		c.entries[i].value = p
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, entry{key: key, value: p})
}

// Get returns the payload stored under key.
func (c *Container) Get(key string) (payload.Payload, bool) {
	i, ok := c.index[key]
	if !ok {
		return payload.Payload{}, false
	}
	return c.entries[i].value, true
}

// Keys returns all keys in insertion order.
func (c *Container) Keys() []string {
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of entries.
func (c *Container) Len() int {
	return len(c.entries)
}

// Range calls fn for each entry in insertion order until fn returns false.
func (c *Container) Range(fn func(key string, p payload.Payload) bool) {
	for _, e := range c.entries {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Build assembles a container from a JSON skeleton and a side table of
// placeholder payloads. The skeleton is stored first under dataKey; side
// entries follow in sorted key order so equal inputs build equal containers.
// Textual side payloads are stored as JSON strings, blobs verbatim.
func Build(dataKey string, skeleton []byte, table map[string]payload.Payload) (*Container, error) {
	c := New()
	c.Set(dataKey, payload.Text(string(skeleton)))

	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		p := table[key]
		if p.IsBlob() {
			c.Set(key, p)
			continue
		}
		text, err := p.Text()
		if err != nil {
			return nil, fmt.Errorf("container: read side entry %q: %w", key, err)
		}
		quoted, err := json.Marshal(text)
		if err != nil {
			return nil, fmt.Errorf("container: quote side entry %q: %w", key, err)
		}
		c.Set(key, payload.Text(string(quoted)))
	}
	return c, nil
}

// Split is the inverse of Build. It extracts the JSON skeleton stored under
// dataKey and collects every entry whose key parses as a placeholder token
// with the given prefix into a side table, unquoting textual payloads and
// passing blobs through verbatim. Entries under any other key are ignored.
func (c *Container) Split(dataKey, prefix string) ([]byte, map[string]payload.Payload, error) {
	data, ok := c.Get(dataKey)
	if !ok {
		return nil, nil, fmt.Errorf("container: missing data key %q: %w", dataKey, ErrMalformed)
	}
	text, err := data.Text()
	if err != nil {
		return nil, nil, fmt.Errorf("container: data entry %q is binary: %w", dataKey, ErrMalformed)
	}
	skeleton := []byte(text)
	if !json.Valid(skeleton) {
		return nil, nil, fmt.Errorf("container: data entry %q is not valid JSON: %w", dataKey, ErrMalformed)
	}

	matcher := placeholder.NewMatcher(prefix)
	table := make(map[string]payload.Payload)
	for _, e := range c.entries {
		if e.key == dataKey {
			continue
		}
		if _, ok := matcher.Match(e.key); !ok {
			continue
		}
		if e.value.IsBlob() {
			table[e.key] = e.value
			continue
		}
		quoted, err := e.value.Text()
		if err != nil {
			return nil, nil, fmt.Errorf("container: read side entry %q: %w", e.key, err)
		}
		var unquoted string
		if err := json.Unmarshal([]byte(quoted), &unquoted); err != nil {
			return nil, nil, fmt.Errorf(
				"container: side entry %q is not a JSON string: %w", e.key, ErrMalformed,
			)
		}
		table[e.key] = payload.Text(unquoted)
	}
	return skeleton, table, nil
}
