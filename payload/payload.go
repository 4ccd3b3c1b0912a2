// Package payload defines the value types carried alongside a container's
// skeleton: opaque binary blobs and the text-or-binary payload sum produced
// by extension serialization.
package payload

import (
	"bytes"
	"errors"
	"fmt"
)

// DefaultContentType is assumed for blobs constructed without an explicit
// media type.
const DefaultContentType = "application/octet-stream"

var (
	// ErrTypeMismatch is returned when a payload's stored kind does not match
	// what its consumer expects, e.g. a textual payload where binary bytes
	// were serialized, or vice versa.
	ErrTypeMismatch = errors.New("payload: type mismatch")
)

// Blob is an opaque byte sequence with an associated media type and optional
// filename metadata. The bytes are not interpreted by this module; they ride
// alongside the skeleton in their own container entry.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

// NewBlob creates a blob with the given data and media type.
// An empty contentType defaults to DefaultContentType.
func NewBlob(data []byte, contentType string) *Blob {
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &Blob{Data: data, ContentType: contentType}
}

// NewFileBlob creates a blob carrying filename metadata in addition to data
// and media type.
func NewFileBlob(data []byte, contentType, filename string) *Blob {
	b := NewBlob(data, contentType)
	b.Filename = filename
	return b
}

// Equal reports whether two blobs carry the same bytes, media type and
// filename.
func (b *Blob) Equal(o *Blob) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.ContentType == o.ContentType &&
		b.Filename == o.Filename &&
		bytes.Equal(b.Data, o.Data)
}

// String returns a short description of the blob for diagnostics. It does not
// include the data bytes.
func (b *Blob) String() string {
	if b == nil {
		return "blob(nil)"
	}
	return fmt.Sprintf("blob(%s, %d bytes)", b.ContentType, len(b.Data))
}

// Payload is the stored form of a serialized value: either a textual
// representation or a binary blob, never both. The zero value is an empty
// textual payload.
type Payload struct {
	text string
	blob *Blob
}

// Text creates a textual payload.
func Text(s string) Payload {
	return Payload{text: s}
}

// FromBlob creates a binary payload.
func FromBlob(b *Blob) Payload {
	return Payload{blob: b}
}

// IsBlob reports whether the payload stores binary bytes rather than text.
func (p Payload) IsBlob() bool {
	return p.blob != nil
}

// Text returns the stored text.
// ErrTypeMismatch is returned if the payload stores a blob.
func (p Payload) Text() (string, error) {
	if p.blob != nil {
		return "", fmt.Errorf("payload: textual payload expected, found %s: %w", p.blob, ErrTypeMismatch)
	}
	return p.text, nil
}

// Blob returns the stored blob.
// ErrTypeMismatch is returned if the payload stores text.
func (p Payload) Blob() (*Blob, error) {
	if p.blob == nil {
		return nil, fmt.Errorf("payload: binary payload expected, found text: %w", ErrTypeMismatch)
	}
	return p.blob, nil
}

// Equal reports whether two payloads store the same kind and content.
func (p Payload) Equal(o Payload) bool {
	if p.IsBlob() != o.IsBlob() {
		return false
	}
	if p.IsBlob() {
		return p.blob.Equal(o.blob)
	}
	return p.text == o.text
}

// String returns a short description of the payload for diagnostics.
func (p Payload) String() string {
	if p.blob != nil {
		return p.blob.String()
	}
	return fmt.Sprintf("text(%d chars)", len(p.text))
}
