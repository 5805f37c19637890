package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"not found", NotFound("gone"), KindNotFound},
		{"storage", Storage("s3 down", errors.New("timeout")), KindStorage},
		{"translation", Translation("rejected"), KindTranslation},
		{"persist", Persist("db down"), KindPersist},
		{"foreign error defaults to internal", errors.New("plain"), KindInternal},
		{"wrapped error keeps its kind", fmt.Errorf("context: %w", Storage("s3 down")), KindStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
			assert.True(t, IsKind(tt.err, tt.expected))
		})
	}
}

func TestError_Is(t *testing.T) {
	err := NotFound("asset not found")

	assert.True(t, errors.Is(err, NotFound("")))
	assert.False(t, errors.Is(err, Validation("")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage("store model binary", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store model binary")
	assert.Contains(t, err.Error(), "connection refused")
}
