package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		name string
		next string
		want string
	}{
		{"empty", "", "/"},
		{"local path", "/new", "/new"},
		{"local path with query", "/leo/3?page=2", "/leo/3?page=2"},
		{"protocol relative", "//evil.example.com", "/"},
		{"absolute url", "https://evil.example.com/", "/"},
		{"relative path", "new", "/"},
		{"backslash", "/\\evil.example.com", "/"},
		{"tab between slashes", "/\t/evil.example.com", "/"},
		{"newline between slashes", "/\n/evil.example.com", "/"},
		{"carriage return", "/\r/evil.example.com", "/"},
		{"delete char", "/\x7f/evil.example.com", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safeNext(tt.next))
		})
	}
}
