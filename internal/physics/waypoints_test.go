package physics

import (
	"testing"

	"github.com/lanarena/relay/internal/mathutil"
)

// wallAt builds a vertical wall at x=0 spanning z in [-2,2], y in [-1,3].
func wallAt() []mathutil.Triangle {
	return []mathutil.Triangle{
		{A: mathutil.Vec3(0, -1, -2), B: mathutil.Vec3(0, 3, -2), C: mathutil.Vec3(0, -1, 2)},
		{A: mathutil.Vec3(0, 3, -2), B: mathutil.Vec3(0, 3, 2), C: mathutil.Vec3(0, -1, 2)},
	}
}

func wayArena() *Arena {
	return &Arena{
		Solids: wallAt(),
		Waypoints: []mathutil.Vector3{
			mathutil.Vec3(-5, -1, 0), // 0: left of the wall
			mathutil.Vec3(0, -1, 5),  // 1: past the wall's end, sees both sides
			mathutil.Vec3(5, -1, 0),  // 2: right of the wall
		},
	}
}

func TestWaypointGraphEdgesRequireLineOfSight(t *testing.T) {
	wg := wayArena().BuildWaypointGraph()

	if got := wg.Neighbors(0); len(got) != 1 || got[0] != 1 {
		t.Fatalf("Neighbors(0) = %v, want [1]: the wall blocks 0<->2", got)
	}
	if got := wg.Neighbors(1); len(got) != 2 {
		t.Fatalf("Neighbors(1) = %v, want both 0 and 2", got)
	}
}

func TestWaypointRouteDetoursAroundWall(t *testing.T) {
	wg := wayArena().BuildWaypointGraph()

	route := wg.Route(0, 2)
	want := []int{0, 1, 2}
	if len(route) != len(want) {
		t.Fatalf("Route(0,2) = %v, want %v", route, want)
	}
	for i := range want {
		if route[i] != want[i] {
			t.Fatalf("Route(0,2) = %v, want %v", route, want)
		}
	}
}

func TestWaypointRouteUnreachable(t *testing.T) {
	a := wayArena()
	// Drop the connecting waypoint; the wall now fully separates 0 and 1.
	a.Waypoints = []mathutil.Vector3{
		mathutil.Vec3(-5, -1, 0),
		mathutil.Vec3(5, -1, 0),
	}
	wg := a.BuildWaypointGraph()

	if route := wg.Route(0, 1); route != nil {
		t.Fatalf("Route(0,1) = %v, want nil with no line of sight", route)
	}
}

func TestNearestWaypoint(t *testing.T) {
	wg := wayArena().BuildWaypointGraph()

	if got := wg.NearestWaypoint(mathutil.Vec3(4, -1, 1)); got != 2 {
		t.Fatalf("NearestWaypoint = %d, want 2", got)
	}

	empty := (&Arena{}).BuildWaypointGraph()
	if got := empty.NearestWaypoint(mathutil.Vec3(0, 0, 0)); got != -1 {
		t.Fatalf("NearestWaypoint on empty graph = %d, want -1", got)
	}
}

func TestSpawnPositionsPreserveOrder(t *testing.T) {
	a := &Arena{
		Spawns: map[string][]SpawnPoint{
			"ffa": {
				{Position: mathutil.Vec3(-5, -1, 0)},
				{Position: mathutil.Vec3(5, -1, 0)},
			},
		},
	}

	got := a.SpawnPositions("ffa")
	if len(got) != 2 || got[0].X != -5 || got[1].X != 5 {
		t.Fatalf("SpawnPositions = %v, want declared order", got)
	}
	if missing := a.SpawnPositions("elimination"); len(missing) != 0 {
		t.Fatalf("SpawnPositions for unknown mode = %v, want empty", missing)
	}
}
