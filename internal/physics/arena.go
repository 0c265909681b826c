package physics

import "github.com/lanarena/relay/internal/mathutil"

// ColliderShape is the sum-type tag dispatched by the 3D resolver, per the
// design note on replacing duck-typed collider records with a tagged
// variant.
type ColliderShape int

const (
	ColliderAABB ColliderShape = iota
	ColliderCylinder
)

// Collider is one entry in an arena's ordered push-out collider sequence.
// AABB colliders use Box; cylinder colliders use Center/CylRadius and the
// Y extent still comes from Box.Min.Y/Box.Max.Y so the vertical overlap
// test in the resolver is shape-agnostic.
type Collider struct {
	Shape     ColliderShape
	Box       mathutil.AABB
	Center    mathutil.Vector3 // cylinder center (XZ used, Y ignored)
	CylRadius float64
}

// SpawnPoint is one spawn location for a game mode; TeamID is 0 in
// free-for-all modes.
type SpawnPoint struct {
	Position mathutil.Vector3
	TeamID   int
}

// Arena is the loaded map data the simulation consumes: raycast solids,
// the ordered push-out collider sequence, AI-pathing waypoints, and
// per-mode spawn points. The waypoint graph itself is derived separately
// via BuildWaypointGraph, once per arena load.
type Arena struct {
	Solids    []mathutil.Triangle
	Colliders []Collider
	Waypoints []mathutil.Vector3
	Spawns    map[string][]SpawnPoint // keyed by mode name
}

// SpawnPositions returns the spawn positions for mode, in declared order.
func (a *Arena) SpawnPositions(mode string) []mathutil.Vector3 {
	points := a.Spawns[mode]
	out := make([]mathutil.Vector3, len(points))
	for i, p := range points {
		out[i] = p.Position
	}
	return out
}
