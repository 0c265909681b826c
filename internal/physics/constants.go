// Package physics implements the deterministic per-entity kinematic step:
// horizontal movement, ground probing, gravity/landing, jump, and the 3D
// AABB push-out resolver shared by every game mode.
package physics

// Tuning constants for the kinematic step.
const (
	GroundY       = -1.0 // default ground height when no arena surface is found
	Gravity       = -20.0
	EyeHeight     = 2.0
	MaxStepHeight = 0.3

	defaultJumpVelocity  = 8.5
	footCornerFraction   = 0.7 // foot-corner ray offsets at radius * 0.7
	maxResolutionPasses  = 3
	groundDropHysteresis = 0.15
)
