package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "holiday.mp4", "holiday.mp4"},
		{"newline injection", "ok\nERROR: forged", "ok\\nERROR: forged"},
		{"carriage return", "a\rb", "a\\rb"},
		{"tab", "a\tb", "a\\tb"},
		{"ansi escape", "a\x1b[31mred", "a\\x1b[31mred"},
		{"null byte", "a\x00b", "a\\x00b"},
		{"unicode preserved", "vidéo_日本_🎬.mp4", "vidéo_日本_🎬.mp4"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}
