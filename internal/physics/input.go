package physics

import "github.com/lanarena/relay/internal/mathutil"

// Input is the per-tick movement command consumed by Step. Exactly one of
// the two shapes applies: camera-relative input (human peers) derives its
// XZ direction from LookYaw; world-space input (AI) supplies the direction
// directly.
type Input struct {
	// Camera-relative form.
	MoveZ     float64 // forward/back, [-1, 1]
	MoveX     float64 // strafe, [-1, 1]
	LookYaw   float64
	LookPitch float64

	// World-space form (AI). WorldMoveDir is expected unit length in XZ;
	// when both forms are zero this is simply the zero vector and Step
	// treats the tick as "no movement input".
	WorldMoveDir mathutil.Vector3
	UseWorldDir  bool

	Sprint bool
	Jump   bool

	// Action buttons. Step ignores these; the host loop reads them after
	// the physics step to route fire/reload/melee into the combat
	// resolver, so one Input carries a peer's whole tick command.
	Fire   bool
	Reload bool
	Melee  bool
}

// direction resolves the desired XZ movement direction (length 0 if no
// input), in world space.
func (in Input) direction(yaw float64) mathutil.Vector3 {
	if in.UseWorldDir {
		d := in.WorldMoveDir
		d.Y = 0
		return d
	}

	if in.MoveX == 0 && in.MoveZ == 0 {
		return mathutil.Vector3{}
	}

	forward, right := mathutil.ForwardRight(yaw)
	dir := forward.Scale(in.MoveZ).Add(right.Scale(in.MoveX))
	dir.Y = 0
	if dir.LengthSq() < 1e-12 {
		return mathutil.Vector3{}
	}
	return dir.Normalize()
}
