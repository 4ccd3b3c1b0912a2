package extensions

import (
	"fmt"
	"time"

	"github.com/holmberd/go-formpack/extension"
	"github.com/holmberd/go-formpack/payload"
)

// TimeName is the name of the time extension.
const TimeName = "time"

// timeLayout prints instants the way ISO 8601 timestamps conventionally
// travel: UTC with exactly three fractional digits.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Time returns an extension transporting time.Time values as ISO 8601 text
// with millisecond precision. The instant is preserved, the zone is not:
// values come back in UTC, and sub-millisecond precision is truncated.
func Time() extension.Extension {
	return extension.New(
		TimeName,
		func(v any) bool {
			switch v.(type) {
			case time.Time, *time.Time:
				return true
			}
			return false
		},
		func(v any) (payload.Payload, error) {
			var t time.Time
			switch val := v.(type) {
			case time.Time:
				t = val
			case *time.Time:
				t = *val
			default:
				return payload.Payload{}, fmt.Errorf("extensions: time extension cannot serialize %T", v)
			}
			return payload.Text(t.UTC().Format(timeLayout)), nil
		},
		func(p payload.Payload) (any, error) {
			text, err := p.Text()
			if err != nil {
				return nil, err
			}
			t, err := time.Parse(time.RFC3339Nano, text)
			if err != nil {
				return nil, fmt.Errorf("extensions: parse time %q: %w", text, err)
			}
			return t.UTC(), nil
		},
	)
}
