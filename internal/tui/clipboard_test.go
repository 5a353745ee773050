package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"line endings", "a\r\nb\rc", "a\nb\nc"},
		{"control characters", "a\x00b\x1bc", "abc"},
		{"rtf", `{\rtf1\ansi hello\par world}`, "hello\nworld"},
		{"rtf escapes", `{\rtf1 a\{b\}\\c\tab d}`, "a{b}\\c\td"},
		{"html", "<p>a &amp; b</p>", "a & b"},
		{"json stays", `{"shapes":[]}`, `{"shapes":[]}`},
		{"angle text stays", "<3 boards", "<3 boards"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plainText(tt.in))
		})
	}
}
