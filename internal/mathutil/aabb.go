package mathutil

// Epsilon is used for "inside expanded box" tests so that after push-out
// the point is strictly outside the collider.
const Epsilon = 1e-6

// AABB is an axis-aligned bounding box defined by its min/max corners.
type AABB struct {
	Min, Max Vector3
}

// NewAABB builds an AABB from two corners regardless of ordering.
func NewAABB(a, b Vector3) AABB {
	return AABB{
		Min: Vector3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max: Vector3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}
}

// ExpandXZ returns a copy of the box grown by r along X and Z only (used to
// test a cylindrical collider's radius against a point in the horizontal
// plane).
func (b AABB) ExpandXZ(r float64) AABB {
	return AABB{
		Min: Vector3{X: b.Min.X - r, Y: b.Min.Y, Z: b.Min.Z - r},
		Max: Vector3{X: b.Max.X + r, Y: b.Max.Y, Z: b.Max.Z + r},
	}
}

// ContainsXZ reports whether point p lies strictly inside the box's XZ
// footprint (shrunk by Epsilon so degenerate boundary cases read as outside).
func (b AABB) ContainsXZ(p Vector3) bool {
	return p.X > b.Min.X+Epsilon && p.X < b.Max.X-Epsilon &&
		p.Z > b.Min.Z+Epsilon && p.Z < b.Max.Z-Epsilon
}

// OverlapsY reports whether the box has any vertical overlap with the
// half-open band [lo, hi].
func (b AABB) OverlapsY(lo, hi float64) bool {
	return b.Max.Y > lo && b.Min.Y < hi
}

// Center returns the box's geometric center.
func (b AABB) Center() Vector3 {
	return Vector3{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// IntersectsRay reports whether the ray from origin in direction dir (unit
// length expected) hits the box within [0, maxDist], returning the entry
// distance. Uses the slab method.
func (b AABB) IntersectsRay(origin, dir Vector3, maxDist float64) (dist float64, hit bool) {
	tMin, tMax := 0.0, maxDist

	axes := [3][3]float64{
		{origin.X, dir.X, 0},
		{origin.Y, dir.Y, 1},
		{origin.Z, dir.Z, 2},
	}
	mins := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	maxs := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for i, ax := range axes {
		o, d := ax[0], ax[1]
		if absf(d) < 1e-12 {
			if o < mins[i] || o > maxs[i] {
				return 0, false
			}
			continue
		}
		invD := 1 / d
		t1 := (mins[i] - o) * invD
		t2 := (maxs[i] - o) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
