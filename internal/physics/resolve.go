package physics

import (
	"math"

	"github.com/lanarena/relay/internal/mathutil"
)

// resolveCollisions3D pushes body out of any overlapping collider, over up
// to maxResolutionPasses passes so a corner wedged between two colliders
// still resolves. A fixed point is expected within three passes; it
// mutates position and feetY/verticalVelocity/grounded state in place.
func resolveCollisions3D(body *Body, colliders []Collider) {
	for pass := 0; pass < maxResolutionPasses; pass++ {
		movedAny := false

		for _, c := range colliders {
			ySkipTol := 0.1
			if body.Grounded {
				ySkipTol = MaxStepHeight
			}

			if body.FeetY+ySkipTol >= c.Box.Max.Y {
				continue // standing atop; ground probe handles it
			}
			if !c.Box.OverlapsY(body.FeetY, body.FeetY+EyeHeight) {
				continue
			}

			switch c.Shape {
			case ColliderCylinder:
				if resolveCylinder(body, c) {
					movedAny = true
				}
			default:
				if resolveAABB(body, c) {
					movedAny = true
				}
			}
		}

		if !movedAny {
			break
		}
	}
}

// resolveAABB handles a single AABB collider: surface-snap bias onto the
// top face when the player is close enough to step up onto it, otherwise
// push-out along the single minimum-penetration axis. Returns whether the
// body was moved.
func resolveAABB(body *Body, c Collider) bool {
	expanded := c.Box.ExpandXZ(body.Radius)
	if !expanded.ContainsXZ(body.Position) {
		return false
	}

	penPosX := expanded.Max.X - body.Position.X
	penNegX := body.Position.X - expanded.Min.X
	penPosZ := expanded.Max.Z - body.Position.Z
	penNegZ := body.Position.Z - expanded.Min.Z

	penUp := c.Box.Max.Y - body.FeetY   // penetration if feet pushed up onto top
	penDown := (body.FeetY + EyeHeight) - c.Box.Min.Y // head-into-bottom

	if penUp <= MaxStepHeight && penUp < penDown {
		body.FeetY = c.Box.Max.Y
		body.VerticalVelocity = 0
		body.Grounded = true
		body.Position.Y = body.FeetY + EyeHeight
		return true
	}

	// Minimum-penetration axis among ±X, ±Z, and head-into-bottom.
	type axisPen struct {
		name string
		pen  float64
	}
	axes := []axisPen{
		{"+x", penPosX},
		{"-x", penNegX},
		{"+z", penPosZ},
		{"-z", penNegZ},
		{"down", penDown},
	}

	min := axes[0]
	for _, a := range axes[1:] {
		if a.pen < min.pen {
			min = a
		}
	}

	switch min.name {
	case "+x":
		body.Position.X = expanded.Max.X + mathutil.Epsilon
	case "-x":
		body.Position.X = expanded.Min.X - mathutil.Epsilon
	case "+z":
		body.Position.Z = expanded.Max.Z + mathutil.Epsilon
	case "-z":
		body.Position.Z = expanded.Min.Z - mathutil.Epsilon
	case "down":
		// Head pushed into the collider's underside: zero upward velocity.
		if body.VerticalVelocity > 0 {
			body.VerticalVelocity = 0
		}
		body.FeetY = c.Box.Min.Y - EyeHeight - mathutil.Epsilon
		body.Position.Y = body.FeetY + EyeHeight
	}

	return true
}

// resolveCylinder pushes the body radially out of a tagged cylinder
// collider by (radius_cyl + entity.radius - distance).
func resolveCylinder(body *Body, c Collider) bool {
	dx := body.Position.X - c.Center.X
	dz := body.Position.Z - c.Center.Z
	distSq := dx*dx + dz*dz
	minDist := c.CylRadius + body.Radius

	if distSq >= minDist*minDist {
		return false
	}

	dist := math.Sqrt(distSq)
	if dist < 1e-9 {
		// Degenerate: push out along +X to avoid a NaN direction.
		body.Position.X = c.Center.X + minDist
		return true
	}

	push := minDist - dist
	body.Position.X += (dx / dist) * push
	body.Position.Z += (dz / dist) * push
	return true
}
