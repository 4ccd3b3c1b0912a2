package extensions

import (
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holmberd/go-formpack/extension"
	"github.com/holmberd/go-formpack/formpack"
	"github.com/holmberd/go-formpack/payload"
)

func textOf(t *testing.T, p payload.Payload) string {
	t.Helper()
	text, err := p.Text()
	require.NoError(t, err)
	return text
}

func TestDefaultsAreValid(t *testing.T) {
	err := extension.Validate(extension.WithBlobHead(Defaults()), "$data", "$ext")
	assert.NoError(t, err)
}

func TestTimeSerialize(t *testing.T) {
	ext := Time()

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{
			name:  "UTC instant",
			value: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			want:  "2023-01-01T00:00:00.000Z",
		},
		{
			name:  "Zoned instant normalizes to UTC",
			value: time.Date(2023, 6, 1, 13, 30, 0, 0, time.FixedZone("CET+1", 3600)),
			want:  "2023-06-01T12:30:00.000Z",
		},
		{
			name:  "Sub-millisecond precision truncates",
			value: time.Date(2023, 1, 1, 0, 0, 0, 123456789, time.UTC),
			want:  "2023-01-01T00:00:00.123Z",
		},
		{
			name: "Pointer value",
			value: func() *time.Time {
				ts := time.Date(2024, 2, 29, 6, 0, 0, 0, time.UTC)
				return &ts
			}(),
			want: "2024-02-29T06:00:00.000Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, ext.CanHandle(tt.value))
			p, err := ext.Serialize(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, textOf(t, p))
		})
	}
}

func TestTimeRoundTrip(t *testing.T) {
	ext := Time()
	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	p, err := ext.Serialize(ts)
	require.NoError(t, err)
	v, err := ext.Deserialize(p)
	require.NoError(t, err)

	got, ok := v.(time.Time)
	require.True(t, ok)
	assert.True(t, ts.Equal(got))
	assert.Equal(t, time.UTC, got.Location())
}

func TestTimeThroughContainer(t *testing.T) {
	exts := []extension.Extension{Time()}
	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	c, err := formpack.Encode(formpack.NewObject().Set("t", ts), exts)
	require.NoError(t, err)

	decoded, err := formpack.Decode(c, exts)
	require.NoError(t, err)

	v, ok := decoded.(*formpack.Object).Get("t")
	require.True(t, ok)
	got, ok := v.(time.Time)
	require.True(t, ok)
	assert.True(t, ts.Equal(got), "expected %v, got %v", ts, got)
}

func TestTimeDeserializeFailures(t *testing.T) {
	ext := Time()

	_, err := ext.Deserialize(payload.Text("not a date"))
	assert.Error(t, err)

	_, err = ext.Deserialize(payload.FromBlob(payload.NewBlob([]byte{1}, "")))
	assert.ErrorIs(t, err, payload.ErrTypeMismatch)
}

func TestDurationRoundTrip(t *testing.T) {
	ext := Duration()

	tests := []struct {
		name  string
		value time.Duration
		want  string
	}{
		{name: "Composite", value: 90 * time.Minute, want: "1h30m0s"},
		{name: "Milliseconds", value: 250 * time.Millisecond, want: "250ms"},
		{name: "Negative", value: -5 * time.Second, want: "-5s"},
		{name: "Zero", value: 0, want: "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, ext.CanHandle(tt.value))
			p, err := ext.Serialize(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, textOf(t, p))

			v, err := ext.Deserialize(p)
			require.NoError(t, err)
			assert.Equal(t, tt.value, v)
		})
	}
}

func TestDurationDeserializeFailures(t *testing.T) {
	_, err := Duration().Deserialize(payload.Text("eleven minutes"))
	assert.Error(t, err)
}

func TestBigIntRoundTrip(t *testing.T) {
	ext := BigInt()

	tests := []struct {
		name string
		text string
	}{
		{name: "Beyond double precision", text: "123456789012345678901234567890123456789"},
		{name: "Negative", text: "-987654321098765432109876543210"},
		{name: "Zero", text: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := new(big.Int).SetString(tt.text, 10)
			require.True(t, ok)
			require.True(t, ext.CanHandle(n))

			p, err := ext.Serialize(n)
			require.NoError(t, err)
			assert.Equal(t, tt.text, textOf(t, p))

			v, err := ext.Deserialize(p)
			require.NoError(t, err)
			got, ok := v.(*big.Int)
			require.True(t, ok)
			assert.Zero(t, n.Cmp(got))
		})
	}
}

func TestBigIntThroughContainer(t *testing.T) {
	exts := []extension.Extension{BigInt()}
	n, _ := new(big.Int).SetString("340282366920938463463374607431768211456", 10)

	c, err := formpack.Encode([]any{n}, exts)
	require.NoError(t, err)

	decoded, err := formpack.Decode(c, exts)
	require.NoError(t, err)

	list, ok := decoded.([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Zero(t, n.Cmp(list[0].(*big.Int)))
}

func TestBigIntDeserializeFailures(t *testing.T) {
	ext := BigInt()

	_, err := ext.Deserialize(payload.Text("12x"))
	assert.Error(t, err)

	_, err = ext.Deserialize(payload.FromBlob(payload.NewBlob([]byte{1}, "")))
	assert.ErrorIs(t, err, payload.ErrTypeMismatch)
}

func TestErrorRoundTrip(t *testing.T) {
	ext := Error()
	boom := errors.New("boom")

	require.True(t, ext.CanHandle(boom))
	p, err := ext.Serialize(boom)
	require.NoError(t, err)
	assert.Equal(t, `{"message":"boom"}`, textOf(t, p))

	v, err := ext.Deserialize(p)
	require.NoError(t, err)
	got, ok := v.(error)
	require.True(t, ok)
	assert.EqualError(t, got, "boom")
}

func TestErrorDropsWrappedChain(t *testing.T) {
	ext := Error()
	inner := errors.New("inner")
	wrapped := fmt.Errorf("outer: %w", inner)

	p, err := ext.Serialize(wrapped)
	require.NoError(t, err)
	v, err := ext.Deserialize(p)
	require.NoError(t, err)

	got := v.(error)
	// The message survives, the chain does not.
	assert.EqualError(t, got, "outer: inner")
	assert.False(t, errors.Is(got, inner))
}

func TestErrorThroughContainer(t *testing.T) {
	exts := []extension.Extension{Error()}
	c, err := formpack.Encode(formpack.NewObject().Set("failure", errors.New("kaput")), exts)
	require.NoError(t, err)

	decoded, err := formpack.Decode(c, exts)
	require.NoError(t, err)

	v, ok := decoded.(*formpack.Object).Get("failure")
	require.True(t, ok)
	assert.EqualError(t, v.(error), "kaput")
}

func TestMixedDefaultsThroughContainer(t *testing.T) {
	exts := Defaults()
	n, _ := new(big.Int).SetString("18446744073709551617", 10)
	src := formpack.NewObject().
		Set("when", time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)).
		Set("elapsed", 1500*time.Millisecond).
		Set("count", n).
		Set("failure", errors.New("late"))

	c, err := formpack.Encode(src, exts)
	require.NoError(t, err)

	decoded, err := formpack.Decode(c, exts)
	require.NoError(t, err)
	obj := decoded.(*formpack.Object)

	when, _ := obj.Get("when")
	assert.True(t, time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC).Equal(when.(time.Time)))

	elapsed, _ := obj.Get("elapsed")
	assert.Equal(t, 1500*time.Millisecond, elapsed)

	count, _ := obj.Get("count")
	assert.Zero(t, n.Cmp(count.(*big.Int)))

	failure, _ := obj.Get("failure")
	assert.EqualError(t, failure.(error), "late")
}
