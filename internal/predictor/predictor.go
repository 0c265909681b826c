// Package predictor implements the non-host client's local prediction and
// snapshot reconciliation: run the same physics step locally every render
// tick, then snap or lerp toward the authoritative position carried in
// each snapshot.
package predictor

import (
	"github.com/lanarena/relay/internal/mathutil"
	"github.com/lanarena/relay/internal/physics"
)

// SnapThresholdSq is the squared-distance threshold past which
// reconciliation snaps instead of lerping.
const SnapThresholdSq = 25.0

// LerpRate is the per-snapshot interpolation factor applied when the
// correction is small enough to lerp.
const LerpRate = 0.3

// SelfState is the authoritative subset of a snapshot entity the
// predictor reconciles against; health/ammo/reload fields are always
// overwritten outright, never predicted locally.
type SelfState struct {
	Position    mathutil.Vector3
	Health      int
	Ammo        int
	MagSize     int
	Reloading   bool
	ReloadEndAt int64
	Alive       bool
}

// PredictedSelf tracks the local player's predicted body and reconciles
// it against authoritative snapshots.
type PredictedSelf struct {
	Body physics.Body

	Health      int
	Ammo        int
	MagSize     int
	Reloading   bool
	ReloadEndAt int64
	Alive       bool
}

// New seeds a PredictedSelf from an initial body (e.g. right after
// joinRoom/heroSelect, before any snapshot has arrived).
func New(body physics.Body) *PredictedSelf {
	return &PredictedSelf{Body: body, Alive: true}
}

// Step advances the predicted body by one local render/input tick, using
// the same deterministic physics step the host runs.
func (p *PredictedSelf) Step(in physics.Input, arena *physics.Arena, dt float64) {
	if !p.Alive {
		return
	}
	physics.Step(&p.Body, in, arena, dt)
}

// Reconcile applies one authoritative snapshot's self-state: compute the
// squared position delta, snap if it exceeds SnapThresholdSq, otherwise
// lerp toward it at LerpRate. Non-position fields are always overwritten
// outright.
func (p *PredictedSelf) Reconcile(authoritative SelfState) {
	delta := authoritative.Position.Sub(p.Body.Position)
	if delta.LengthSq() > SnapThresholdSq {
		p.Body.Position = authoritative.Position
	} else {
		p.Body.Position = mathutil.Lerp(p.Body.Position, authoritative.Position, LerpRate)
	}

	p.Health = authoritative.Health
	p.Ammo = authoritative.Ammo
	p.MagSize = authoritative.MagSize
	p.Reloading = authoritative.Reloading
	p.ReloadEndAt = authoritative.ReloadEndAt
	p.Alive = authoritative.Alive
}

// RemoteEntity is a non-self entity rendered straight from the latest
// snapshot; there is no extrapolation, only interpolation between the
// two most recent snapshots.
type RemoteEntity struct {
	ID     string
	Prev   SelfState
	Curr   SelfState
	hasPrev bool
}

// Update records a newly received snapshot for this remote entity,
// shifting the previous "Curr" into "Prev" so callers that want
// interpolation can lerp between the two.
func (r *RemoteEntity) Update(next SelfState) {
	if r.hasPrev {
		r.Prev = r.Curr
	} else {
		r.Prev = next
		r.hasPrev = true
	}
	r.Curr = next
}

// Interpolated returns a position blended between the two most recent
// snapshots by fraction t in [0, 1]; passing t=1 is equivalent to reading
// Curr.Position directly (no interpolation).
func (r *RemoteEntity) Interpolated(t float64) mathutil.Vector3 {
	return mathutil.Lerp(r.Prev.Position, r.Curr.Position, t)
}
