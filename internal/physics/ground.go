package physics

import "github.com/lanarena/relay/internal/mathutil"

const groundProbeStartHeight = 200.0

// probeGround casts the 5-ray ground probe (center + 4 foot-corner offsets
// at radius*footCornerFraction) from high above position and returns the
// highest accepted hit, applying the per-mode acceptance rule (grounded
// entities accept surfaces up to MaxStepHeight above their feet, which
// lets them step up; airborne ones only accept a hit at or below their
// current feet). Returns GroundY if nothing qualifies.
func probeGround(position mathutil.Vector3, feetY float64, radius float64, grounded bool, solids []mathutil.Triangle) float64 {
	offsets := [5][2]float64{
		{0, 0},
		{radius * footCornerFraction, radius * footCornerFraction},
		{radius * footCornerFraction, -radius * footCornerFraction},
		{-radius * footCornerFraction, radius * footCornerFraction},
		{-radius * footCornerFraction, -radius * footCornerFraction},
	}

	best := GroundY
	found := false

	for _, off := range offsets {
		origin := mathutil.Vec3(position.X+off[0], groundProbeStartHeight, position.Z+off[1])
		ray := mathutil.Ray{Origin: origin, Dir: mathutil.Vec3(0, -1, 0)}
		hit := mathutil.RaycastTriangles(ray, solids, groundProbeStartHeight*2)
		if !hit.Hit {
			continue
		}

		surfaceY := hit.Point.Y
		if grounded {
			if surfaceY > feetY+MaxStepHeight {
				continue // too high to step onto
			}
		} else {
			if surfaceY > feetY {
				continue // airborne: ignore surfaces above current feet
			}
		}

		if !found || surfaceY > best {
			best = surfaceY
			found = true
		}
	}

	if !found {
		return GroundY
	}
	return best
}
