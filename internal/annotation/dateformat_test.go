package annotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		format string
		want   string
	}{
		{"MM/DD/YYYY", "01/05/2024"},
		{"DD/MM/YYYY", "05/01/2024"},
		{"YYYY-MM-DD", "2024-01-05"},
		{"YY.MM.DD", "24.01.05"},
		{"", "01/05/2024"}, // empty falls back to the default
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDate(ts, tt.format), "format %q", tt.format)
	}
}

func TestFormatDateLiteralText(t *testing.T) {
	ts := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Signed 2023", FormatDate(ts, "Signed YYYY"))
}
