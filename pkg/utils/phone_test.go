package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		region   string
		expected string
		err      error
	}{
		{
			name:     "Local Indian mobile",
			input:    "98765 43210",
			region:   "IN",
			expected: "+919876543210",
		},
		{
			name:     "International form ignores region",
			input:    "+91 98765-43210",
			region:   "US",
			expected: "+919876543210",
		},
		{
			name:     "Lowercase region",
			input:    "098765 43210",
			region:   "in",
			expected: "+919876543210",
		},
		{
			name:   "Empty",
			input:  "   ",
			region: "IN",
			err:    ErrPhoneEmpty,
		},
		{
			name:   "Letters",
			input:  "call me",
			region: "IN",
			err:    ErrPhoneInvalid,
		},
		{
			name:   "Too short",
			input:  "12345",
			region: "IN",
			err:    ErrPhoneInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhoneNumber(tt.input, tt.region)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatPhoneNumberForDisplay(t *testing.T) {
	assert.Equal(t, "+91 98765 43210", FormatPhoneNumberForDisplay("+919876543210"))
	assert.Equal(t, "not a number", FormatPhoneNumberForDisplay("not a number"))
}
