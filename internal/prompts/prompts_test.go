package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogue(t *testing.T) {
	require.Equal(t, 82, Len())

	assert.Equal(t, "Try increasing the contrast for better readability.", At(0))
	assert.Equal(t, "Ensure consistent use of visual metaphors.", At(Len()-1))

	for i := range Len() {
		assert.NotEmpty(t, strings.TrimSpace(At(i)), "prompt %d is blank", i)
	}
}

func TestPicker_UsesSource(t *testing.T) {
	tests := []struct {
		name  string
		index int
	}{
		{name: "first", index: 0},
		{name: "middle", index: 41},
		{name: "last", index: 81},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotN int
			p := NewPicker(func(n int) int {
				gotN = n
				return tt.index
			})

			assert.Equal(t, At(tt.index), p.Pick())
			assert.Equal(t, Len(), gotN)
		})
	}
}

func TestPicker_DefaultSourceStaysInCatalogue(t *testing.T) {
	p := NewPicker(nil)
	known := make(map[string]bool, Len())
	for i := range Len() {
		known[At(i)] = true
	}

	for range 500 {
		assert.True(t, known[p.Pick()])
	}
}
