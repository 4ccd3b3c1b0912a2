package formpack

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/holmberd/go-formpack/placeholder"
)

// Options configures Encode and Decode. Both sides of a round trip must use
// the same data key and placeholder prefix.
type Options struct {
	// DataKey is the container key holding the JSON skeleton.
	DataKey string

	// Prefix namespaces placeholder tokens and their container keys.
	Prefix string

	// NewID mints the unique id segment of placeholder tokens. Ids must not
	// repeat within one encode call.
	NewID func() string
}

// Option is a functional option for Encode and Decode.
type Option func(*Options)

// WithDataKey overrides the container key holding the skeleton.
func WithDataKey(key string) Option {
	return func(options *Options) {
		options.DataKey = key
	}
}

// WithPrefix overrides the placeholder token prefix. Pick a prefix that
// cannot occur at the start of string data in the transported values, since
// strings matching the full token shape are indistinguishable from
// placeholders when decoding.
func WithPrefix(prefix string) Option {
	return func(options *Options) {
		options.Prefix = prefix
	}
}

// WithIDGenerator overrides the placeholder id generator. The default is a
// time-ordered UUID (version 7).
func WithIDGenerator(fn func() string) Option {
	return func(options *Options) {
		options.NewID = fn
	}
}

func defaultIDGenerator() string {
	return uuid.Must(uuid.NewV7()).String()
}

func buildOptions(opts []Option) (Options, error) {
	options := Options{
		DataKey: DefaultDataKey,
		Prefix:  placeholder.DefaultPrefix,
		NewID:   defaultIDGenerator,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.DataKey == "" {
		return Options{}, fmt.Errorf("formpack: data key must not be empty")
	}
	if options.Prefix == "" {
		return Options{}, fmt.Errorf("formpack: placeholder prefix must not be empty")
	}
	if options.NewID == nil {
		return Options{}, fmt.Errorf("formpack: id generator must not be nil")
	}
	return options, nil
}
