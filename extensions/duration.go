package extensions

import (
	"fmt"
	"time"

	"github.com/holmberd/go-formpack/extension"
	"github.com/holmberd/go-formpack/payload"
)

// DurationName is the name of the duration extension.
const DurationName = "duration"

// Duration returns an extension transporting time.Duration values in Go's
// own duration notation ("1h30m", "250ms").
func Duration() extension.Extension {
	return extension.New(
		DurationName,
		func(v any) bool {
			_, ok := v.(time.Duration)
			return ok
		},
		func(v any) (payload.Payload, error) {
			d, ok := v.(time.Duration)
			if !ok {
				return payload.Payload{}, fmt.Errorf("extensions: duration extension cannot serialize %T", v)
			}
			return payload.Text(d.String()), nil
		},
		func(p payload.Payload) (any, error) {
			text, err := p.Text()
			if err != nil {
				return nil, err
			}
			d, err := time.ParseDuration(text)
			if err != nil {
				return nil, fmt.Errorf("extensions: parse duration %q: %w", text, err)
			}
			return d, nil
		},
	)
}
