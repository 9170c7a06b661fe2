package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := 0
	for i := 0; i < 50; i++ {
		if a.Intn(1000) == b.Intn(1000) {
			same++
		}
	}
	assert.Less(t, same, 10)
}

func TestRollBounds(t *testing.T) {
	src := New(7)
	for i := 0; i < 1000; i++ {
		v := src.Roll(1, 100)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 100)
	}
	assert.Equal(t, 5, src.Roll(5, 5))
}

func TestRollPanicsOnInvertedRange(t *testing.T) {
	src := New(7)
	assert.Panics(t, func() { src.Roll(10, 1) })
}

func TestUniformBounds(t *testing.T) {
	src := New(11)
	for i := 0; i < 1000; i++ {
		v := src.Uniform(-2, 2)
		require.GreaterOrEqual(t, v, -2.0)
		require.Less(t, v, 2.0)
	}
}

func TestSampleDistinct(t *testing.T) {
	src := New(3)
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	got := Sample(src, items, 5)
	require.Len(t, got, 5)
	seen := map[int]bool{}
	for _, v := range got {
		require.False(t, seen[v], "duplicate %d in sample", v)
		seen[v] = true
	}
}

func TestChoicePicksFromSlice(t *testing.T) {
	src := New(9)
	items := []string{"a", "b", "c"}
	for i := 0; i < 20; i++ {
		assert.Contains(t, items, Choice(src, items))
	}
}
