package extensions

import (
	"fmt"
	"math/big"

	"github.com/holmberd/go-formpack/extension"
	"github.com/holmberd/go-formpack/payload"
)

// BigIntName is the name of the big-integer extension.
const BigIntName = "bigint"

// BigInt returns an extension transporting *big.Int values as decimal text,
// exact at any magnitude.
func BigInt() extension.Extension {
	return extension.New(
		BigIntName,
		func(v any) bool {
			_, ok := v.(*big.Int)
			return ok
		},
		func(v any) (payload.Payload, error) {
			n, ok := v.(*big.Int)
			if !ok {
				return payload.Payload{}, fmt.Errorf("extensions: bigint extension cannot serialize %T", v)
			}
			return payload.Text(n.String()), nil
		},
		func(p payload.Payload) (any, error) {
			text, err := p.Text()
			if err != nil {
				return nil, err
			}
			n, ok := new(big.Int).SetString(text, 10)
			if !ok {
				return nil, fmt.Errorf("extensions: invalid bigint %q", text)
			}
			return n, nil
		},
	)
}
