package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"date only", "2025-11-01", "2025-11-01"},
		{"padded", "  2025-11-01 ", "2025-11-01"},
		{"iso timestamp", "2025-11-01T08:30:00", "2025-11-01"},
		{"iso timestamp utc", "2025-11-01T23:59:59Z", "2025-11-01"},
		{"offset keeps local date", "2025-11-01T23:30:00-05:00", "2025-11-01"},
		{"fractional seconds", "2025-11-01T08:30:00.123456Z", "2025-11-01"},
		{"space separated", "2025-11-01 08:30:00", "2025-11-01"},
		{"slashes", "2025/11/01", "2025-11-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "2025-13-45"} {
		t.Run(input, func(t *testing.T) {
			_, err := Normalize(input)
			assert.Error(t, err)
		})
	}
}
