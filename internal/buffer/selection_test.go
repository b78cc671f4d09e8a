package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelections(t *testing.T) {
	text := "sysuse auto\n  gen y = x\nreg y x"

	tests := []struct {
		name     string
		ranges   []TextRange
		cursors  []int
		expected []Selection
	}{
		{
			name:    "bare cursor",
			cursors: []int{14},
			expected: []Selection{
				{Range: LineRange{Position{1, 2}, Position{1, 2}}},
			},
		},
		{
			name:    "cursor at the end of a selection is absorbed",
			ranges:  []TextRange{{0, 6}},
			cursors: []int{6},
			expected: []Selection{
				{Range: LineRange{Position{0, 0}, Position{0, 6}}, Text: "sysuse"},
			},
		},
		{
			name:    "ordered by position",
			ranges:  []TextRange{{24, 27}},
			cursors: []int{0},
			expected: []Selection{
				{Range: LineRange{Position{0, 0}, Position{0, 0}}},
				{Range: LineRange{Position{2, 0}, Position{2, 3}}, Text: "reg"},
			},
		},
		{
			name:   "zero length selection is a cursor",
			ranges: []TextRange{{12, 12}},
			expected: []Selection{
				{Range: LineRange{Position{1, 0}, Position{1, 0}}},
			},
		},
		{
			name:   "reversed selection",
			ranges: []TextRange{{6, 0}},
			expected: []Selection{
				{Range: LineRange{Position{0, 0}, Position{0, 6}}, Text: "sysuse"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLines(text)
			assert.Equal(t, tc.expected, l.Selections(tc.ranges, tc.cursors))
		})
	}
}

func TestSnapshotCursor(t *testing.T) {
	s := NewSnapshot("a\nbb\nccc", []TextRange{{2, 4}}, []int{0})
	require.Len(t, s.Selections, 2)
	assert.Equal(t, Position{1, 2}, s.Cursor())

	s = NewSnapshot("a", nil, nil)
	require.Len(t, s.Selections, 1)
	assert.True(t, s.Selections[0].IsEmpty())
	assert.Equal(t, Position{}, s.Cursor())
}
