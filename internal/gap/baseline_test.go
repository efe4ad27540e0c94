package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaselineFallback(t *testing.T) {
	b := NewBaseline(40, 8)
	assert.Zero(t, b.Samples())
	assert.Equal(t, int64(40), b.Expected())
	assert.False(t, b.Frozen())
}

func TestBaselineMode(t *testing.T) {
	tests := []struct {
		name   string
		deltas []int64
		want   int64
	}{
		{name: "single sample", deltas: []int64{33}, want: 33},
		{name: "uniform", deltas: []int64{40, 40, 40}, want: 40},
		{name: "majority wins", deltas: []int64{40, 80, 80}, want: 80},
		{name: "tie goes to first seen", deltas: []int64{23, 24, 24, 23}, want: 23},
		{name: "negative deltas ignored", deltas: []int64{-5, -5, -5, 21}, want: 21},
		{name: "zero is a valid delta", deltas: []int64{0, 0, 40}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBaseline(99, 8)
			for _, d := range tt.deltas {
				b.Add(d)
			}
			assert.Equal(t, tt.want, b.Expected())
		})
	}
}

func TestBaselineFreezes(t *testing.T) {
	b := NewBaseline(40, 3)
	assert.True(t, b.Add(40))
	assert.True(t, b.Add(40))
	assert.True(t, b.Add(33))
	assert.True(t, b.Frozen())

	// Later deltas cannot move a frozen baseline.
	for i := 0; i < 10; i++ {
		assert.False(t, b.Add(33))
	}
	assert.Equal(t, int64(40), b.Expected())
	assert.Equal(t, 3, b.Samples())
}

func TestBaselineRejectsNegative(t *testing.T) {
	b := NewBaseline(23, 2)
	assert.False(t, b.Add(-1))
	assert.Zero(t, b.Samples())
}
