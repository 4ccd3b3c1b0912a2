package extensions

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holmberd/go-formpack/extension"
	"github.com/holmberd/go-formpack/payload"
)

// ErrorName is the name of the error extension.
const ErrorName = "error"

type errorEnvelope struct {
	Message string `json:"message"`
}

// Error returns an extension transporting error values by message alone.
// This is deliberately lossy: the concrete type, wrapped chain and any
// structured context are discarded, and decoding produces a plain error
// carrying only the original message. It claims any value implementing the
// error interface, so place it after more specific extensions in the list.
func Error() extension.Extension {
	return extension.New(
		ErrorName,
		func(v any) bool {
			_, ok := v.(error)
			return ok
		},
		func(v any) (payload.Payload, error) {
			e, ok := v.(error)
			if !ok {
				return payload.Payload{}, fmt.Errorf("extensions: error extension cannot serialize %T", v)
			}
			data, err := json.Marshal(errorEnvelope{Message: e.Error()})
			if err != nil {
				return payload.Payload{}, fmt.Errorf("extensions: marshal error message: %w", err)
			}
			return payload.Text(string(data)), nil
		},
		func(p payload.Payload) (any, error) {
			text, err := p.Text()
			if err != nil {
				return nil, err
			}
			var envelope errorEnvelope
			if err := json.Unmarshal([]byte(text), &envelope); err != nil {
				return nil, fmt.Errorf("extensions: parse error payload: %w", err)
			}
			return errors.New(envelope.Message), nil
		},
	)
}
