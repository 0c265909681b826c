package physics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/lanarena/relay/internal/mathutil"
)

// losProbeHeight lifts line-of-sight rays off the ground so a ray between
// two floor-level waypoints doesn't graze the floor triangles themselves.
const losProbeHeight = 0.5

// WaypointGraph is an arena's AI-pathing graph: one node per waypoint,
// an edge between every pair with mutual line-of-sight through the
// arena's solids, weighted by Euclidean distance. Derived once per arena
// load via Arena.BuildWaypointGraph.
type WaypointGraph struct {
	waypoints []mathutil.Vector3
	g         *simple.WeightedUndirectedGraph
}

// BuildWaypointGraph derives the waypoint graph from the arena's
// waypoints and solids. Call once after loading an arena; the result is
// read-only from then on.
func (a *Arena) BuildWaypointGraph() *WaypointGraph {
	wg := &WaypointGraph{
		waypoints: a.Waypoints,
		g:         simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
	}
	for i := range a.Waypoints {
		wg.g.AddNode(simple.Node(i))
	}
	for i := 0; i < len(a.Waypoints); i++ {
		for j := i + 1; j < len(a.Waypoints); j++ {
			if !mutualLineOfSight(a.Waypoints[i], a.Waypoints[j], a.Solids) {
				continue
			}
			dist := a.Waypoints[j].Sub(a.Waypoints[i]).Length()
			wg.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(i), T: simple.Node(j), W: dist})
		}
	}
	return wg
}

// mutualLineOfSight reports whether no solid blocks the segment between a
// and b, probed in both directions at losProbeHeight above each point.
func mutualLineOfSight(a, b mathutil.Vector3, solids []mathutil.Triangle) bool {
	up := mathutil.Vec3(0, losProbeHeight, 0)
	return clearSegment(a.Add(up), b.Add(up), solids) &&
		clearSegment(b.Add(up), a.Add(up), solids)
}

func clearSegment(from, to mathutil.Vector3, solids []mathutil.Triangle) bool {
	delta := to.Sub(from)
	dist := delta.Length()
	if dist < 1e-9 {
		return true
	}
	ray := mathutil.Ray{Origin: from, Dir: delta.Scale(1 / dist)}
	return !mathutil.RaycastTriangles(ray, solids, dist-mathutil.Epsilon).Hit
}

// Len returns the number of waypoints.
func (wg *WaypointGraph) Len() int {
	return len(wg.waypoints)
}

// Waypoint returns waypoint i's position.
func (wg *WaypointGraph) Waypoint(i int) mathutil.Vector3 {
	return wg.waypoints[i]
}

// Neighbors returns the indices of every waypoint with mutual
// line-of-sight to waypoint i, in ascending order.
func (wg *WaypointGraph) Neighbors(i int) []int {
	nodes := wg.g.From(int64(i))
	out := make([]int, 0, nodes.Len())
	for nodes.Next() {
		out = append(out, int(nodes.Node().ID()))
	}
	sort.Ints(out)
	return out
}

// NearestWaypoint returns the index of the waypoint closest to pos, or
// -1 if the graph has no waypoints.
func (wg *WaypointGraph) NearestWaypoint(pos mathutil.Vector3) int {
	best := -1
	bestDistSq := math.Inf(1)
	for i, wp := range wg.waypoints {
		if d := wp.Sub(pos).LengthSq(); d < bestDistSq {
			bestDistSq = d
			best = i
		}
	}
	return best
}

// Route returns the shortest waypoint path from waypoint `from` to
// waypoint `to` inclusive, or nil if no path exists.
func (wg *WaypointGraph) Route(from, to int) []int {
	if from < 0 || to < 0 || from >= len(wg.waypoints) || to >= len(wg.waypoints) {
		return nil
	}
	if from == to {
		return []int{from}
	}
	shortest := path.DijkstraFrom(simple.Node(from), wg.g)
	nodes, weight := shortest.To(int64(to))
	if math.IsInf(weight, 1) {
		return nil
	}
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = int(n.ID())
	}
	return out
}
