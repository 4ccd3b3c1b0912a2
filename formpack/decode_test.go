package formpack

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holmberd/go-formpack/container"
	"github.com/holmberd/go-formpack/extension"
	"github.com/holmberd/go-formpack/payload"
)

func TestDecodeUnknownExtension(t *testing.T) {
	c, err := Encode(NewObject().Set("reading", temperature(21)), []extension.Extension{temperatureExtension()})
	require.NoError(t, err)

	_, err = Decode(c, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownExtension)
	assert.Contains(t, err.Error(), `"temp"`)
}

func TestDecodeMissingPayload(t *testing.T) {
	c := container.New()
	c.Set(DefaultDataKey, payload.Text(`"$ext:blob:9"`))

	_, err := Decode(c, nil)
	assert.ErrorIs(t, err, ErrMissingPayload)
}

func TestDecodeTypeMismatch(t *testing.T) {
	c := container.New()
	c.Set(DefaultDataKey, payload.Text(`"$ext:blob:1"`))
	c.Set("$ext:blob:1", payload.Text(`"textual where binary expected"`))

	_, err := Decode(c, nil)
	assert.ErrorIs(t, err, payload.ErrTypeMismatch)
}

func TestDecodeMalformedContainer(t *testing.T) {
	tests := []struct {
		name string
		c    *container.Container
	}{
		{
			name: "Nil container",
			c:    nil,
		},
		{
			name: "Missing data key",
			c: func() *container.Container {
				c := container.New()
				c.Set("$ext:blob:1", payload.FromBlob(payload.NewBlob([]byte{1}, "")))
				return c
			}(),
		},
		{
			name: "Skeleton is not valid JSON",
			c: func() *container.Container {
				c := container.New()
				c.Set(DefaultDataKey, payload.Text(`{"broken":`))
				return c
			}(),
		},
		{
			name: "Binary entry under the data key",
			c: func() *container.Container {
				c := container.New()
				c.Set(DefaultDataKey, payload.FromBlob(payload.NewBlob([]byte{1}, "")))
				return c
			}(),
		},
		{
			name: "Textual side entry is not a JSON string",
			c: func() *container.Container {
				c := container.New()
				c.Set(DefaultDataKey, payload.Text(`"$ext:blob:1"`))
				c.Set("$ext:blob:1", payload.Text(`42`))
				return c
			}(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.c, nil)
			assert.ErrorIs(t, err, container.ErrMalformed)
		})
	}
}

func TestDecodeValidationRunsFirst(t *testing.T) {
	// Extension-list validation fails before the container is even looked
	// at, so a nil container reports the name error, not a container error.
	_, err := Decode(nil, []extension.Extension{stubExtension("ext:bad")})
	assert.ErrorIs(t, err, extension.ErrInvalidName)
}

func TestDecodeExtensionErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	failing := extension.New("temp",
		func(v any) bool { _, ok := v.(temperature); return ok },
		func(v any) (payload.Payload, error) { return payload.Text("21"), nil },
		func(p payload.Payload) (any, error) { return nil, boom },
	)

	c, err := Encode(temperature(21), []extension.Extension{failing})
	require.NoError(t, err)

	_, err = Decode(c, []extension.Extension{failing})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "boom")
}

func TestDecodePlaceholderShapedStrings(t *testing.T) {
	t.Run("Unknown name fails", func(t *testing.T) {
		// A plain string that happens to match the token grammar is
		// indistinguishable from a placeholder once encoded.
		c, err := Encode("$ext:nosuch:1", nil)
		require.NoError(t, err)

		_, err = Decode(c, nil)
		assert.ErrorIs(t, err, ErrUnknownExtension)
	})

	t.Run("Known name without payload fails", func(t *testing.T) {
		c, err := Encode("$ext:blob:77", nil)
		require.NoError(t, err)

		_, err = Decode(c, nil)
		assert.ErrorIs(t, err, ErrMissingPayload)
	})

	t.Run("Different prefix passes through", func(t *testing.T) {
		c, err := Encode("$other:blob:1", nil)
		require.NoError(t, err)

		v, err := Decode(c, nil)
		require.NoError(t, err)
		assert.Equal(t, "$other:blob:1", v)
	})
}

func TestDecodeIgnoresForeignEntries(t *testing.T) {
	c, err := Encode(NewObject().Set("a", 1), nil)
	require.NoError(t, err)
	c.Set("csrfToken", payload.Text("abc123"))
	c.Set("uploadedBy", payload.FromBlob(payload.NewBlob([]byte("x"), "")))

	v, err := Decode(c, nil)
	require.NoError(t, err)
	assert.Equal(t, NewObject().Set("a", float64(1)), v)
}

func TestDecodeSkeletonTooDeep(t *testing.T) {
	depth := MaxDepth + 10
	skeleton := strings.Repeat("[", depth) + "null" + strings.Repeat("]", depth)

	c := container.New()
	c.Set(DefaultDataKey, payload.Text(skeleton))

	_, err := Decode(c, nil)
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestDecodeNumbersAreFloat64(t *testing.T) {
	c, err := Encode([]any{1, int64(2), 3.5}, nil)
	require.NoError(t, err)

	v, err := Decode(c, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), 3.5}, v)
}
