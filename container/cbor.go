package container

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/holmberd/go-formpack/payload"
)

// encMode is the CBOR encoder configured with Core Deterministic Encoding
// (RFC 8949 §4.2), so equal containers marshal to identical bytes.
var encMode cbor.EncMode

// decMode is the CBOR decoder configured to accept standard CBOR.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("container: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("container: CBOR decoder initialization failed: " + err.Error())
	}
}

type cborEntry struct {
	Key         string `cbor:"key"`
	Blob        bool   `cbor:"blob,omitempty"`
	Text        string `cbor:"text,omitempty"`
	Data        []byte `cbor:"data,omitempty"`
	ContentType string `cbor:"contentType,omitempty"`
	Filename    string `cbor:"filename,omitempty"`
}

type cborContainer struct {
	Entries []cborEntry `cbor:"entries"`
}

// MarshalBinary encodes the container as a single deterministic CBOR
// document, preserving entry order and payload kinds. It lets a container
// travel over any byte transport without the multipart framing.
func (c *Container) MarshalBinary() ([]byte, error) {
	doc := cborContainer{Entries: make([]cborEntry, 0, len(c.entries))}
	for _, e := range c.entries {
		ce := cborEntry{Key: e.key}
		if e.value.IsBlob() {
			blob, err := e.value.Blob()
			if err != nil {
				return nil, fmt.Errorf("container: read entry %q: %w", e.key, err)
			}
			ce.Blob = true
			ce.Data = blob.Data
			ce.ContentType = blob.ContentType
			ce.Filename = blob.Filename
		} else {
			text, err := e.value.Text()
			if err != nil {
				return nil, fmt.Errorf("container: read entry %q: %w", e.key, err)
			}
			ce.Text = text
		}
		doc.Entries = append(doc.Entries, ce)
	}
	data, err := encMode.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("container: marshal CBOR: %w", err)
	}
	return data, nil
}

// UnmarshalBinary decodes a CBOR document produced by MarshalBinary,
// replacing the container's contents.
func (c *Container) UnmarshalBinary(data []byte) error {
	var doc cborContainer
	if err := decMode.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("container: unmarshal CBOR: %w", err)
	}
	c.entries = c.entries[:0]
	c.index = make(map[string]int, len(doc.Entries))
	for _, ce := range doc.Entries {
		if ce.Blob {
			blob := payload.NewFileBlob(ce.Data, ce.ContentType, ce.Filename)
			c.Set(ce.Key, payload.FromBlob(blob))
			continue
		}
		c.Set(ce.Key, payload.Text(ce.Text))
	}
	return nil
}
