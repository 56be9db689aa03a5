package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalLessNumericSuffix(t *testing.T) {
	assert.True(t, NaturalLess("h2", "h10"))
	assert.False(t, NaturalLess("h10", "h2"))
	assert.True(t, NaturalLess("gpu2", "gpu10"))
	assert.True(t, NaturalLess("node9", "node10"))
}

func TestNaturalLessLexicographic(t *testing.T) {
	assert.True(t, NaturalLess("alpha", "beta"))
	assert.False(t, NaturalLess("beta", "alpha"))
}

func TestNaturalLessPrefix(t *testing.T) {
	// A strict prefix sorts first.
	assert.True(t, NaturalLess("h1", "h1a"))
	assert.False(t, NaturalLess("h1a", "h1"))
}

func TestNaturalLessEqual(t *testing.T) {
	assert.False(t, NaturalLess("h1", "h1"))
}

func TestNaturalLessMultipleRuns(t *testing.T) {
	assert.True(t, NaturalLess("rack1-gpu2", "rack1-gpu10"))
	assert.True(t, NaturalLess("rack1-gpu10", "rack2-gpu1"))
}

func TestSortNatural(t *testing.T) {
	hosts := []string{"h10", "h2", "h1", "ha", "h20"}
	SortNatural(hosts)
	assert.Equal(t, []string{"h1", "h2", "h10", "h20", "ha"}, hosts)
}

func TestFormatIndexRanges(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
		want string
	}{
		{"empty renders none", nil, "none"},
		{"single", []int{3}, "3"},
		{"consecutive run", []int{0, 1, 2}, "0-2"},
		{"mixed", []int{0, 1, 2, 4, 6, 7}, "0-2, 4, 6-7"},
		{"unsorted input", []int{7, 0, 6, 2, 1, 4}, "0-2, 4, 6-7"},
		{"duplicates collapse", []int{1, 1, 2}, "1-2"},
		{"disjoint singles", []int{0, 2, 4}, "0, 2, 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatIndexRanges(tt.ids))
		})
	}
}
