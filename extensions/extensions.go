// Package extensions ships stock extensions for common Go types: time.Time,
// time.Duration, *big.Int, error values and protobuf messages. Each is
// optional; callers pass the ones they want to formpack.Encode and Decode,
// or start from Defaults.
package extensions

import "github.com/holmberd/go-formpack/extension"

// Defaults returns the stock extensions in their usual precedence order.
// Callers needing different precedence, or a subset, compose their own list.
func Defaults() []extension.Extension {
	return []extension.Extension{
		Time(),
		Duration(),
		BigInt(),
		Error(),
		Proto(),
	}
}
