package physics

import "github.com/lanarena/relay/internal/mathutil"

// Body carries the physical state a kinematic Step mutates. The entity
// model holds a Body in its Body field and layers health/weapon/hitbox state on top, per the
// design note on dispatching over shared scalar fields rather than a deep
// class hierarchy.
type Body struct {
	Position         mathutil.Vector3 // XZ plane position + eye-height Y
	FeetY            float64          // ground-plane Y of the feet
	VerticalVelocity float64
	Grounded         bool

	Radius       float64
	WalkSpeed    float64
	SprintSpeed  float64
	JumpVelocity float64

	// Yaw/Pitch are carried here because hitbox segment orientation and
	// camera-relative movement direction both need the current facing.
	Yaw   float64
	Pitch float64
}

// NewBody returns a Body with the default jump velocity and feet resting
// on the default ground plane, eye height applied.
func NewBody(radius, walkSpeed, sprintSpeed float64) Body {
	b := Body{
		Radius:       radius,
		WalkSpeed:    walkSpeed,
		SprintSpeed:  sprintSpeed,
		JumpVelocity: defaultJumpVelocity,
		FeetY:        GroundY,
		Grounded:     true,
	}
	b.Position = mathutil.Vec3(0, b.FeetY+EyeHeight, 0)
	return b
}
