package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCactifyName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Colin", "Colinactus"},
		{"Marcus", "Marcactus"},
		{"Alex", "Alactus"},
		{"Maria", "Mariactus"},
		{"Chris", "Chractus"},
		{"s", "actus"},
		{"", "actus"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CactifyName(tt.name), tt.name)
	}
}
