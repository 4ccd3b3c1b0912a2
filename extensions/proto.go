package extensions

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/holmberd/go-formpack/extension"
	"github.com/holmberd/go-formpack/payload"
)

// ProtoName is the name of the protobuf extension.
const ProtoName = "proto"

// ProtoContentType is the media type of protobuf blob payloads.
const ProtoContentType = "application/x-protobuf"

// Proto returns an extension transporting protobuf messages as binary
// blobs. Messages are wrapped in google.protobuf.Any so decoding can
// reconstruct the concrete type from the global registry; an *anypb.Any
// value is sent as is rather than double-wrapped, so it decodes to its
// inner message. Decoding fails for message types not linked into the
// receiving binary.
func Proto() extension.Extension {
	return extension.New(
		ProtoName,
		func(v any) bool {
			_, ok := v.(proto.Message)
			return ok
		},
		func(v any) (payload.Payload, error) {
			msg, ok := v.(proto.Message)
			if !ok {
				return payload.Payload{}, fmt.Errorf("extensions: proto extension cannot serialize %T", v)
			}
			wrapped, ok := msg.(*anypb.Any)
			if !ok {
				var err error
				wrapped, err = anypb.New(msg)
				if err != nil {
					return payload.Payload{}, fmt.Errorf("extensions: wrap %T in Any: %w", msg, err)
				}
			}
			data, err := proto.Marshal(wrapped)
			if err != nil {
				return payload.Payload{}, fmt.Errorf("extensions: marshal %T: %w", msg, err)
			}
			return payload.FromBlob(payload.NewBlob(data, ProtoContentType)), nil
		},
		func(p payload.Payload) (any, error) {
			blob, err := p.Blob()
			if err != nil {
				return nil, err
			}
			var wrapped anypb.Any
			if err := proto.Unmarshal(blob.Data, &wrapped); err != nil {
				return nil, fmt.Errorf("extensions: unmarshal Any envelope: %w", err)
			}
			msg, err := wrapped.UnmarshalNew()
			if err != nil {
				return nil, fmt.Errorf("extensions: resolve message type %q: %w", wrapped.TypeUrl, err)
			}
			return msg, nil
		},
	)
}
