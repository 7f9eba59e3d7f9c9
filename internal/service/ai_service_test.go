package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"spanish", "SPANISH"},
		{"  Spanish  ", "SPANISH"},
		{`"French"`, "FRENCH"},
		{"'Japanese'", "JAPANESE"},
		{"\" german \"", "GERMAN"},
		{"MANDARIN", "MANDARIN"},
		{"", ""},
		{`""`, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLanguage(tt.in), "input %q", tt.in)
	}
}
