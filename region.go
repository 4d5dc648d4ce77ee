package lse

// Region is an axis-aligned, inclusive-on-both-ends 3-D bounding box. A
// Region is immutable once constructed; NewRegion always normalizes its
// two corners so that MinX <= MaxX, MinY <= MaxY and MinZ <= MaxZ hold
// regardless of the order the corners were supplied in.
type Region struct {
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
}

// NewRegion builds a Region from two arbitrary corners, normalizing by
// componentwise min/max.
func NewRegion(x1, y1, z1, x2, y2, z2 int) Region {
	return Region{
		MinX: min(x1, x2), MinY: min(y1, y2), MinZ: min(z1, z2),
		MaxX: max(x1, x2), MaxY: max(y1, y2), MaxZ: max(z1, z2),
	}
}

// SizeX returns the number of blocks the region spans on the X axis.
func (r Region) SizeX() int { return r.MaxX - r.MinX + 1 }

// SizeY returns the number of blocks the region spans on the Y axis.
func (r Region) SizeY() int { return r.MaxY - r.MinY + 1 }

// SizeZ returns the number of blocks the region spans on the Z axis.
func (r Region) SizeZ() int { return r.MaxZ - r.MinZ + 1 }

// Size returns (SizeX, SizeY, SizeZ) together.
func (r Region) Size() (x, y, z int) { return r.SizeX(), r.SizeY(), r.SizeZ() }

// Min returns the region's minimum corner.
func (r Region) Min() (x, y, z int) { return r.MinX, r.MinY, r.MinZ }

// Max returns the region's maximum corner.
func (r Region) Max() (x, y, z int) { return r.MaxX, r.MaxY, r.MaxZ }

// Contains reports whether the world position (x, y, z) falls within r.
func (r Region) Contains(x, y, z int) bool {
	return x >= r.MinX && x <= r.MaxX &&
		y >= r.MinY && y <= r.MaxY &&
		z >= r.MinZ && z <= r.MaxZ
}
