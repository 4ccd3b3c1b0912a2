package extension

import (
	"fmt"

	"github.com/holmberd/go-formpack/payload"
)

// BlobName is the name of the built-in binary-blob extension.
const BlobName = "blob"

// Blob returns the built-in extension for *payload.Blob values. The encoder
// and decoder prepend it to every extension list, so blob values are always
// claimed before any caller-supplied extension sees them.
func Blob() Extension {
	return New(
		BlobName,
		func(v any) bool {
			_, ok := v.(*payload.Blob)
			return ok
		},
		func(v any) (payload.Payload, error) {
			b, ok := v.(*payload.Blob)
			if !ok {
				return payload.Payload{}, fmt.Errorf("extension: blob extension cannot serialize %T", v)
			}
			return payload.FromBlob(b), nil
		},
		func(p payload.Payload) (any, error) {
			b, err := p.Blob()
			if err != nil {
				return nil, err
			}
			return b, nil
		},
	)
}

// WithBlobHead returns exts with the built-in blob extension prepended.
// The input slice is not modified.
func WithBlobHead(exts []Extension) []Extension {
	out := make([]Extension, 0, len(exts)+1)
	out = append(out, Blob())
	return append(out, exts...)
}
