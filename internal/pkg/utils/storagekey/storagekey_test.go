package storagekey

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateDisplayName(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		expectError bool
		errorType   error
	}{
		{
			name:        "valid simple name",
			displayName: "Tower A - Structural",
			expectError: false,
		},
		{
			name:        "valid name with extension",
			displayName: "level1_electrical.rvt",
			expectError: false,
		},
		{
			name:        "valid name with version suffix",
			displayName: "podium_v2.1.ifc",
			expectError: false,
		},
		{
			name:        "empty name",
			displayName: "",
			expectError: true,
			errorType:   ErrEmptyName,
		},
		{
			name:        "whitespace only",
			displayName: "   ",
			expectError: true,
			errorType:   ErrEmptyName,
		},
		{
			name:        "forward slash",
			displayName: "folder/model.rvt",
			expectError: true,
			errorType:   ErrInvalidName,
		},
		{
			name:        "backslash",
			displayName: "folder\\model.rvt",
			expectError: true,
			errorType:   ErrInvalidName,
		},
		{
			name:        "traversal sequence",
			displayName: "..secret",
			expectError: true,
			errorType:   ErrInvalidName,
		},
		{
			name:        "null byte",
			displayName: "model\x00.rvt",
			expectError: true,
			errorType:   ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDisplayName(tt.displayName)
			if tt.expectError {
				assert.Error(t, err)
				if tt.errorType != nil {
					assert.ErrorIs(t, err, tt.errorType)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "spaces replaced",
			input:    "Tower A Structural",
			expected: "Tower_A_Structural",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  model.rvt  ",
			expected: "model.rvt",
		},
		{
			name:     "null bytes replaced",
			input:    "model\x00.rvt",
			expected: "model_.rvt",
		},
		{
			name:     "leading dot prefixed",
			input:    ".hidden",
			expected: "model_.hidden",
		},
		{
			name:     "slashes replaced",
			input:    "a/b\\c",
			expected: "a_b_c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}

func TestNew(t *testing.T) {
	tenantID := uuid.New()

	key := New(tenantID, "Tower A.rvt")
	assert.True(t, strings.HasPrefix(key, "models/"+tenantID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, "/Tower_A.rvt"))

	// Fresh per invocation: two keys for the same input never collide.
	other := New(tenantID, "Tower A.rvt")
	assert.NotEqual(t, key, other)
}
