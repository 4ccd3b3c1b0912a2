package rediskey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		expectKey string
	}{
		{
			name:      "Single fragment",
			fragments: []string{"single"},
			expectKey: "single",
		},
		{
			name:      "Multiple fragments",
			fragments: []string{"formpack", "container", "1234"},
			expectKey: "formpack:container:1234",
		},
		{
			name:      "Mix of empty and non-empty fragments",
			fragments: []string{"", "formpack", "container", "1234", ""},
			expectKey: "formpack:container:1234",
		},
		{
			name:      "Namespace fragment first",
			fragments: []string{Namespace("tests"), "formpack", "container"},
			expectKey: "__tests__:formpack:container",
		},
		{
			name:      "No fragments",
			fragments: nil,
			expectKey: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectKey, Build(tt.fragments...))
		})
	}
}

func TestValidateFragment(t *testing.T) {
	tests := []struct {
		name        string
		fragment    string
		expectError bool
	}{
		{
			name:     "Valid fragment",
			fragment: "container",
		},
		{
			name:     "Valid fragment with hyphens",
			fragment: "0198d0ca-6a90-7e11-b2e2-54a1d39ab214",
		},
		{
			name:        "Empty fragment",
			fragment:    "",
			expectError: true,
		},
		{
			name:        "Fragment containing delimiter",
			fragment:    "formpack:container",
			expectError: true,
		},
		{
			name:        "Fragment with reserved namespace prefix",
			fragment:    "__tests__",
			expectError: true,
		},
		{
			name:        "Fragment with invalid characters",
			fragment:    "my key",
			expectError: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFragment(tt.fragment)
			if tt.expectError {
				assert.Error(t, err)
				var invalidErr InvalidKeyError
				assert.ErrorAs(t, err, &invalidErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		expectError bool
	}{
		{
			name: "Valid key",
			key:  "formpack:container:1234",
		},
		{
			name: "Valid namespaced key",
			key:  "__tests__:formpack:container:1234",
		},
		{
			name: "Valid match pattern",
			key:  "formpack:container:*",
		},
		{
			name:        "Empty key",
			key:         "",
			expectError: true,
		},
		{
			name:        "Key with invalid characters",
			key:         "formpack container",
			expectError: true,
		},
		{
			name:        "Key starting with delimiter",
			key:         ":formpack",
			expectError: true,
		},
		{
			name:        "Key ending with delimiter",
			key:         "formpack:",
			expectError: true,
		},
		{
			name:        "Key exceeding max length",
			key:         strings.Repeat("a", 1025),
			expectError: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.key)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "__tests__", Namespace("tests"))
	assert.Equal(t, "__tests__", Namespace("Tests"), "should lowercase the namespace name")
	assert.Equal(t, "", Namespace(""), "empty name should yield an empty fragment")
}

func TestParse(t *testing.T) {
	assert.Equal(t, []string{"formpack", "container", "1234"}, Parse("formpack:container:1234"))
	assert.Equal(t, []string{"single"}, Parse("single"))
}

func TestMatchPattern(t *testing.T) {
	assert.Equal(t, "formpack:container:*", MatchPattern("formpack:container", WildcardAnyString))
	assert.Equal(t, "formpack:container:?", MatchPattern("formpack:container", WildcardAnyChar))
}
