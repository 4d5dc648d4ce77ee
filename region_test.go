package lse

import "testing"

import "github.com/stretchr/testify/assert"

func TestNewRegionNormalizes(t *testing.T) {
	r := NewRegion(5, 10, 3, 1, 2, 8)
	assert.Equal(t, Region{MinX: 1, MinY: 2, MinZ: 3, MaxX: 5, MaxY: 10, MaxZ: 8}, r)
}

func TestRegionSize(t *testing.T) {
	r := NewRegion(0, 0, 0, 9, 4, 2)
	x, y, z := r.Size()
	assert.Equal(t, 10, x)
	assert.Equal(t, 5, y)
	assert.Equal(t, 3, z)
}

func TestRegionContains(t *testing.T) {
	r := NewRegion(0, 0, 0, 9, 9, 9)
	assert.True(t, r.Contains(0, 0, 0))
	assert.True(t, r.Contains(9, 9, 9))
	assert.False(t, r.Contains(10, 0, 0))
	assert.False(t, r.Contains(-1, 0, 0))
}

func TestRegionMinMax(t *testing.T) {
	r := NewRegion(1, 2, 3, 4, 5, 6)
	x, y, z := r.Min()
	assert.Equal(t, [3]int{1, 2, 3}, [3]int{x, y, z})
	x, y, z = r.Max()
	assert.Equal(t, [3]int{4, 5, 6}, [3]int{x, y, z})
}
