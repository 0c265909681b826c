package physics

import "math"

// Step advances body by dt seconds given input and arena. Facing is
// resolved from input first, then a fixed 8-step sequence runs: horizontal
// movement, ground probe, jump, gravity/landing, grounded drop check, 3D
// AABB push-out, ground re-probe, and eye-height sync. dt is expected to already be clamped by
// the caller (simhost clamps large clock jumps to 50ms); Step itself does
// not clamp.
func Step(body *Body, input Input, arena *Arena, dt float64) {
	if input.UseWorldDir || input.MoveX != 0 || input.MoveZ != 0 {
		body.Yaw = resolveFacingYaw(body.Yaw, input)
	}

	// 1. Horizontal movement.
	dir := input.direction(body.Yaw)
	speed := body.WalkSpeed
	if input.Sprint {
		speed = body.SprintSpeed
	}
	body.Position.X += dir.X * speed * dt
	body.Position.Z += dir.Z * speed * dt

	// 2. Ground probe at the new XZ.
	groundProbe := probeGround(body.Position, body.FeetY, body.Radius, body.Grounded, arena.Solids)

	// 3. Jump.
	if input.Jump && body.Grounded {
		body.VerticalVelocity = body.JumpVelocity
		body.Grounded = false
	}

	// 4. Gravity/landing.
	if !body.Grounded {
		body.VerticalVelocity += Gravity * dt
		body.FeetY += body.VerticalVelocity * dt
		if body.FeetY <= groundProbe {
			body.FeetY = groundProbe
			body.VerticalVelocity = 0
			body.Grounded = true
		}
	} else {
		// 5. Grounded drop check.
		if groundProbe < body.FeetY-(MaxStepHeight+groundDropHysteresis) {
			body.Grounded = false
			body.VerticalVelocity = 0
		} else {
			body.FeetY = groundProbe
		}
	}

	// 6. 3D AABB push-out resolution.
	resolveCollisions3D(body, arena.Colliders)

	// 7. Re-probe ground; the push-out may have moved XZ.
	groundProbe = probeGround(body.Position, body.FeetY, body.Radius, body.Grounded, arena.Solids)
	if body.Grounded {
		if groundProbe < body.FeetY-(MaxStepHeight+groundDropHysteresis) {
			body.Grounded = false
			body.VerticalVelocity = 0
		} else {
			body.FeetY = groundProbe
		}
	} else if body.FeetY <= groundProbe {
		body.FeetY = groundProbe
		body.VerticalVelocity = 0
		body.Grounded = true
	}

	// 8. Sync eye-height position.
	body.Position.Y = body.FeetY + EyeHeight
}

// resolveFacingYaw picks the yaw used to orient movement and hitbox
// segments this tick: camera-relative input drives yaw directly from
// LookYaw, world-space (AI) input derives yaw from its move direction so
// hitboxes still orient sensibly without a camera.
func resolveFacingYaw(current float64, input Input) float64 {
	if input.UseWorldDir {
		d := input.WorldMoveDir
		if d.X == 0 && d.Z == 0 {
			return current
		}
		return -math.Atan2(d.X, d.Z)
	}
	return input.LookYaw
}
