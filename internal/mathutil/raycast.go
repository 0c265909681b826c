package mathutil

// Ray is a parametric ray: origin + t*dir, t >= 0.
type Ray struct {
	Origin Vector3
	Dir    Vector3 // expected unit length
}

// Triangle is a single raycast-solid triangle (world space).
type Triangle struct {
	A, B, C Vector3
}

// RayHit describes the nearest intersection found by a raycast query.
type RayHit struct {
	Distance float64
	Point    Vector3
	Index    int // index of the AABB or triangle that was hit, in iteration order
	Hit      bool
}

// RaycastAABBs casts the ray against an ordered set of AABBs and returns the
// first hit within maxDistance. On ties, the earlier entry in iteration
// order wins.
func RaycastAABBs(ray Ray, boxes []AABB, maxDistance float64) RayHit {
	best := RayHit{Distance: maxDistance}
	found := false
	for i, box := range boxes {
		dist, hit := box.IntersectsRay(ray.Origin, ray.Dir, maxDistance)
		if !hit {
			continue
		}
		if !found || dist < best.Distance {
			found = true
			best = RayHit{
				Distance: dist,
				Point:    ray.Origin.Add(ray.Dir.Scale(dist)),
				Index:    i,
				Hit:      true,
			}
		}
	}
	return best
}

// RaycastTriangles casts the ray against an ordered set of triangles
// (arena.solids) and returns the first hit within maxDistance using the
// Möller–Trumbore algorithm. Used for ground detection and hitscan/
// projectile collision.
func RaycastTriangles(ray Ray, tris []Triangle, maxDistance float64) RayHit {
	best := RayHit{Distance: maxDistance}
	found := false

	for i, tri := range tris {
		dist, ok := intersectTriangle(ray, tri)
		if !ok || dist < 0 || dist > maxDistance {
			continue
		}
		if !found || dist < best.Distance {
			found = true
			best = RayHit{
				Distance: dist,
				Point:    ray.Origin.Add(ray.Dir.Scale(dist)),
				Index:    i,
				Hit:      true,
			}
		}
	}
	return best
}

func intersectTriangle(ray Ray, tri Triangle) (float64, bool) {
	const eps = 1e-9

	edge1 := tri.B.Sub(tri.A)
	edge2 := tri.C.Sub(tri.A)
	h := ray.Dir.Cross(edge2)
	a := edge1.Dot(h)
	if a > -eps && a < eps {
		return 0, false // ray parallel to triangle
	}

	f := 1.0 / a
	s := ray.Origin.Sub(tri.A)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	if t <= eps {
		return 0, false
	}
	return t, true
}
