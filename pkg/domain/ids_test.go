package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "quoteguard/pkg/domain-errors"
)

func TestParsePublicID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePublicID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePublicID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParsePublicID("00000000-0000-0000-0000-000000000000")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		raw := uuid.New().String()
		parsed, err := ParsePublicID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, parsed.String())
		assert.False(t, parsed.IsNil())
	})

	t.Run("accepts uppercase hex", func(t *testing.T) {
		raw := uuid.New().String()
		parsed, err := ParsePublicID(strings.ToUpper(raw))
		require.NoError(t, err)
		// String() normalizes to lowercase.
		assert.Equal(t, raw, parsed.String())
	})
}

func TestNewPublicID(t *testing.T) {
	a := NewPublicID()
	b := NewPublicID()
	assert.False(t, a.IsNil())
	assert.NotEqual(t, a, b)
}

func TestParseOwnerID(t *testing.T) {
	tests := []struct {
		input   string
		want    OwnerID
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOwnerID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}
