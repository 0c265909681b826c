// Command hostsim runs the authoritative host simulation loop
// (internal/simhost) standalone, with no network transport, as a
// development/testing harness: two entities, one driven by a fixed
// script of inputs, the other idle, with every emitted event logged to
// stdout. Useful for validating simulation behavior without a browser.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/lanarena/relay/internal/combat"
	"github.com/lanarena/relay/internal/entity"
	"github.com/lanarena/relay/internal/mathutil"
	"github.com/lanarena/relay/internal/match"
	"github.com/lanarena/relay/internal/physics"
	"github.com/lanarena/relay/internal/simhost"
)

func main() {
	ticks := flag.Int("ticks", 300, "number of ticks to simulate")
	flag.Parse()

	arena := &physics.Arena{
		Solids: []mathutil.Triangle{
			{A: mathutil.Vec3(-100, -1, -100), B: mathutil.Vec3(100, -1, -100), C: mathutil.Vec3(100, -1, 100)},
			{A: mathutil.Vec3(-100, -1, -100), B: mathutil.Vec3(100, -1, 100), C: mathutil.Vec3(-100, -1, 100)},
		},
		Waypoints: []mathutil.Vector3{
			mathutil.Vec3(-5, -1, 0), mathutil.Vec3(0, -1, 0), mathutil.Vec3(5, -1, 0),
		},
		Spawns: map[string][]physics.SpawnPoint{
			"ffa": {
				{Position: mathutil.Vec3(-5, -1, 0)},
				{Position: mathutil.Vec3(5, -1, 0)},
			},
		},
	}
	waypoints := arena.BuildWaypointGraph()
	log.Printf("arena: %d waypoints, %d mutual-LOS neighbors of waypoint 0", waypoints.Len(), len(waypoints.Neighbors(0)))
	bounds := combat.ArenaBounds{Min: mathutil.Vec3(-100, -10, -100), Max: mathutil.Vec3(100, 50, 100)}

	sim := simhost.New(simhost.Config{
		Arena:       arena,
		ArenaBounds: bounds,
		Spawns:      arena.SpawnPositions("ffa"),
		Settings:    match.Settings{HeroSelectSeconds: 1, KillLimit: 5, FreeForAll: true},
		LocalPeerID: "host",
		Seed:        42,
		Emit: func(msgType string, payload any) {
			raw, _ := json.Marshal(payload)
			log.Printf("%-16s %s", msgType, raw)
		},
	})

	sim.AddParticipant("host", entity.DefaultHero(), false)
	sim.AddParticipant("bot", entity.DefaultHero(), false)

	sim.StartHeroSelect(0)

	tickInterval := time.Second / simhost.TickRate
	nowMs := int64(0)
	for i := 0; i < *ticks; i++ {
		nowMs += tickInterval.Milliseconds()
		if i > 60 {
			sim.SetLocalInput(physics.Input{MoveZ: 1, Fire: true})
			sim.SetRemoteInput("bot", physics.Input{})
		}
		sim.Tick(tickInterval, nowMs)
	}
}
