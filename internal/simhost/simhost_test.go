package simhost

import (
	"math"
	"testing"
	"time"

	"github.com/lanarena/relay/internal/combat"
	"github.com/lanarena/relay/internal/entity"
	"github.com/lanarena/relay/internal/match"
	"github.com/lanarena/relay/internal/mathutil"
	"github.com/lanarena/relay/internal/physics"
)

func flatArena() *physics.Arena {
	return &physics.Arena{
		Solids: []mathutil.Triangle{
			{A: mathutil.Vec3(-50, -1, -50), B: mathutil.Vec3(50, -1, -50), C: mathutil.Vec3(50, -1, 50)},
			{A: mathutil.Vec3(-50, -1, -50), B: mathutil.Vec3(50, -1, 50), C: mathutil.Vec3(-50, -1, 50)},
		},
	}
}

func newTestSim() *Sim {
	return New(Config{
		Arena:       flatArena(),
		ArenaBounds: combat.ArenaBounds{Min: mathutil.Vec3(-100, -10, -100), Max: mathutil.Vec3(100, 50, 100)},
		Spawns:      []mathutil.Vector3{mathutil.Vec3(0, -1, 0), mathutil.Vec3(0, -1, -1)},
		Settings:    match.Settings{HeroSelectSeconds: 1, FreeForAll: true, KillLimit: 20},
		LocalPeerID: "host",
		Seed:        7,
		Emit:        func(string, any) {},
	})
}

func advanceToActive(s *Sim) {
	s.Begin(0)
	s.Tick(16*time.Millisecond, match.CountdownMs) // countdown -> active
}

func TestAddParticipantRotatesSpawns(t *testing.T) {
	s := newTestSim()
	s.AddParticipant("remote", entity.DefaultHero(), false)
	s.AddParticipant("host", entity.DefaultHero(), false)

	remote := s.entities["remote"]
	host := s.entities["host"]

	if remote.Body.Position.Z != 0 {
		t.Errorf("remote spawned at unexpected Z %v, want 0", remote.Body.Position.Z)
	}
	if host.Body.Position.Z != -1 {
		t.Errorf("host spawned at unexpected Z %v, want -1", host.Body.Position.Z)
	}
}

// TestRemoteStepsBeforeLocalEachTick is a white-box check of the ordering
// guarantee: remote/AI entities resolve their actions before the local
// entity within the same tick. A melee swing kills the 1-hp host this
// tick; if the host's own melee ran first (the wrong order), it would
// land a hit on the remote before dying. Since remote goes first, the
// host never gets to act once dead.
func TestRemoteStepsBeforeLocalEachTick(t *testing.T) {
	s := newTestSim()
	s.AddParticipant("remote", entity.DefaultHero(), false)
	s.AddParticipant("host", entity.DefaultHero(), false)
	advanceToActive(s)

	host := s.entities["host"]
	remote := s.entities["remote"]
	host.Health = 1
	// Face the host toward the remote so that, were the ordering wrong
	// and the host allowed to swing before dying, it would actually
	// connect rather than the result being masked by facing away.
	host.Body.Yaw = math.Pi

	s.SetRemoteInput("remote", physics.Input{Melee: true})
	s.SetLocalInput(physics.Input{Melee: true})

	s.Tick(16*time.Millisecond, match.CountdownMs+500)

	if host.Alive {
		t.Fatal("expected the host to die to the remote's melee this tick")
	}
	if remote.Health != remote.MaxHealth {
		t.Fatalf("remote.Health = %d, want %d (unharmed): the host must not get to act after dying this tick",
			remote.Health, remote.MaxHealth)
	}
}

// TestSnapshotCadenceFollowsSimulatedClock drives Tick with synthetic
// nowMs values (no real sleeping) and asserts the 20 Hz throttle against
// that simulated timeline: 25ms ticks over 1000 simulated ms must emit
// exactly one snapshot per elapsed SnapshotPeriod, regardless of how
// fast the loop runs in wall-clock terms.
func TestSnapshotCadenceFollowsSimulatedClock(t *testing.T) {
	s := newTestSim()
	s.AddParticipant("remote", entity.DefaultHero(), false)
	s.AddParticipant("host", entity.DefaultHero(), false)
	advanceToActive(s) // the transition tick at nowMs=CountdownMs emits one snapshot

	snapshots := 0
	s.emit = func(msgType string, _ any) {
		if msgType == "snapshot" {
			snapshots++
		}
	}

	const tickMs = 25
	const simulatedMs = 1000
	nowMs := int64(match.CountdownMs)
	for elapsed := int64(0); elapsed < simulatedMs; elapsed += tickMs {
		nowMs += tickMs
		s.Tick(tickMs*time.Millisecond, nowMs)
	}

	want := int(simulatedMs / SnapshotPeriod.Milliseconds())
	if snapshots != want {
		t.Fatalf("snapshots = %d across %dms of simulated time, want exactly %d (one per %v)",
			snapshots, int(simulatedMs), want, SnapshotPeriod)
	}
}

func TestStartHeroSelectTimesOutViaTick(t *testing.T) {
	s := newTestSim()
	s.AddParticipant("remote", entity.DefaultHero(), false)
	s.AddParticipant("host", entity.DefaultHero(), false)
	s.StartHeroSelect(0)

	s.Tick(16*time.Millisecond, 999)
	if s.match.Phase != match.PhaseHeroSelect {
		t.Fatalf("phase = %v, want still PhaseHeroSelect before the deadline", s.match.Phase)
	}

	s.Tick(16*time.Millisecond, 1000)
	if s.match.Phase != match.PhaseCountdown {
		t.Fatalf("phase = %v, want PhaseCountdown once heroSelect times out", s.match.Phase)
	}
}

func TestSelectHeroAppliesHeroWithoutConfirming(t *testing.T) {
	s := newTestSim()
	s.AddParticipant("remote", entity.DefaultHero(), false)
	s.AddParticipant("host", entity.DefaultHero(), false)
	s.StartHeroSelect(0)

	s.SelectHero("remote", entity.DefaultHeroes()["brawler"], false)

	if s.entities["remote"].HeroID != "brawler" {
		t.Fatalf("remote hero = %q, want brawler", s.entities["remote"].HeroID)
	}
	if s.match.Phase != match.PhaseHeroSelect {
		t.Fatalf("phase = %v, want still PhaseHeroSelect: an unconfirmed pick must not advance the phase", s.match.Phase)
	}
}

func TestSelectHeroEndsHeroSelectOnceEveryPeerConfirms(t *testing.T) {
	s := newTestSim()
	s.AddParticipant("remote", entity.DefaultHero(), false)
	s.AddParticipant("host", entity.DefaultHero(), false)
	s.StartHeroSelect(0)

	s.SelectHero("remote", entity.DefaultHeroes()["brawler"], true)
	if s.match.Phase != match.PhaseHeroSelect {
		t.Fatalf("phase = %v, want still PhaseHeroSelect with host unconfirmed", s.match.Phase)
	}

	var gotPhaseChange bool
	s.emit = func(msgType string, payload any) {
		if msgType == "phaseChange" {
			gotPhaseChange = true
		}
	}

	s.SelectHero("host", entity.DefaultHeroes()["arbalist"], true)
	if s.match.Phase != match.PhaseCountdown {
		t.Fatalf("phase = %v, want PhaseCountdown once every peer has confirmed", s.match.Phase)
	}
	if !gotPhaseChange {
		t.Error("expected a phaseChange event once heroSelect ends early on all-confirmed")
	}
}

func TestFireSuppressedDuringMeleeSwing(t *testing.T) {
	s := newTestSim()
	s.AddParticipant("remote", entity.DefaultHero(), false)
	s.AddParticipant("host", entity.DefaultHero(), false)
	advanceToActive(s)

	host := s.entities["host"]
	ammoBefore := host.Weapon.Ammo
	swingStart := int64(match.CountdownMs) + 500
	host.Weapon.LastMeleeAt = swingStart

	s.SetLocalInput(physics.Input{Fire: true})
	s.SetRemoteInput("remote", physics.Input{})
	s.Tick(16*time.Millisecond, swingStart+host.Weapon.MeleeSwingMs-1)

	if host.Weapon.Ammo != ammoBefore {
		t.Fatalf("ammo = %d, want unchanged %d: fire should be suppressed mid melee-swing", host.Weapon.Ammo, ammoBefore)
	}
}

func TestFireAllowedOnceMeleeSwingEnds(t *testing.T) {
	s := newTestSim()
	s.AddParticipant("remote", entity.DefaultHero(), false)
	s.AddParticipant("host", entity.DefaultHero(), false)
	advanceToActive(s)

	host := s.entities["host"]
	ammoBefore := host.Weapon.Ammo
	swingStart := int64(match.CountdownMs) + 500
	host.Weapon.LastMeleeAt = swingStart

	s.SetLocalInput(physics.Input{Fire: true})
	s.SetRemoteInput("remote", physics.Input{})
	s.Tick(16*time.Millisecond, swingStart+host.Weapon.MeleeSwingMs)

	if host.Weapon.Ammo != ammoBefore-1 {
		t.Fatalf("ammo = %d, want %d: fire should fire once the swing window elapses", host.Weapon.Ammo, ammoBefore-1)
	}
}

func TestProjIDFormatting(t *testing.T) {
	cases := map[uint64]string{0: "p0", 1: "p1", 15: "pf", 16: "p10", 255: "pff"}
	for n, want := range cases {
		if got := projID(n); got != want {
			t.Errorf("projID(%d) = %q, want %q", n, got, want)
		}
	}
}
