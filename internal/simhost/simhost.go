// Package simhost implements the fixed-cadence host simulation loop: the
// authoritative per-tick sequence of input resolution, physics, combat,
// and round/match advancement that produces the snapshot and event
// stream every other peer renders.
//
// simhost never imports internal/relay: it reports everything through an
// Emit callback supplied by the caller, so the same loop can run behind
// any transport or headless (cmd/hostsim) without a transport dependency.
// cmd/relayserver does not start a Sim.
package simhost

import (
	"math/rand"
	"sync"
	"time"

	"github.com/lanarena/relay/internal/combat"
	"github.com/lanarena/relay/internal/entity"
	"github.com/lanarena/relay/internal/match"
	"github.com/lanarena/relay/internal/mathutil"
	"github.com/lanarena/relay/internal/observability"
	"github.com/lanarena/relay/internal/physics"
)

// TickRate is the target simulation cadence: 60 Hz.
const TickRate = 60

// MaxDt caps a single tick's elapsed time so a stall (GC pause, scheduler
// hiccup) never produces a physics step large enough to tunnel through
// geometry.
const MaxDt = 50 * time.Millisecond

// SnapshotPeriod is the maximum rate at which Tick emits a "snapshot"
// message: at most 20 Hz.
const SnapshotPeriod = 50 * time.Millisecond

// Emit delivers one outbound message to be relayed to every peer in the
// room (or, for a headless hostsim run, simply logged/discarded).
type Emit func(msgType string, payload any)

// Participant binds a peer id to its simulated entity. A Participant with
// IsAI true never reads remoteInputLatest; its input is driven by
// whatever the caller wires into the AI input source (not modeled here —
// the host drives AI entities itself, fed the same way as remote input).
type Participant struct {
	PeerID string
	Entity *entity.Entity
	IsAI   bool
}

// Sim owns one room's authoritative simulation state. Safe for one
// goroutine running Tick plus other goroutines calling SetInput.
type Sim struct {
	mu sync.Mutex

	arena        *physics.Arena
	arenaBounds  combat.ArenaBounds
	spawns       []mathutil.Vector3
	entities     map[string]*entity.Entity // keyed by peer id
	participants []Participant

	projectiles map[string]*combat.Projectile
	nextProjID  uint64

	match *match.Match
	rng   *rand.Rand

	remoteInputLatest map[string]physics.Input
	localInput        physics.Input
	localPeerID       string

	tickNum        int64
	lastSnapshotMs int64
	lastTickMs     int64

	emit Emit
}

// Config bundles the inputs needed to construct a Sim.
type Config struct {
	Arena       *physics.Arena
	ArenaBounds combat.ArenaBounds
	Spawns      []mathutil.Vector3
	Settings    match.Settings
	LocalPeerID string // the host's own peer id; excluded from remote-input resolution
	Seed        int64
	Emit        Emit
}

// New constructs a Sim with no participants yet; call AddParticipant for
// each peer (including the host) before the first Tick.
func New(cfg Config) *Sim {
	return &Sim{
		arena:             cfg.Arena,
		arenaBounds:       cfg.ArenaBounds,
		spawns:            cfg.Spawns,
		entities:          make(map[string]*entity.Entity),
		projectiles:       make(map[string]*combat.Projectile),
		match:             match.New(cfg.Settings),
		rng:               rand.New(rand.NewSource(cfg.Seed)),
		remoteInputLatest: make(map[string]physics.Input),
		localPeerID:       cfg.LocalPeerID,
		emit:              cfg.Emit,
	}
}

// AddParticipant registers a peer's entity in the simulation, spawning it
// at spawns[len(participants) % len(spawns)].
func (s *Sim) AddParticipant(peerID string, hero entity.Hero, isAI bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entity.New(peerID, hero)
	if len(s.spawns) > 0 {
		spawn := s.spawns[len(s.participants)%len(s.spawns)]
		e.Respawn(spawn, 0)
	}
	s.entities[peerID] = e
	s.participants = append(s.participants, Participant{PeerID: peerID, Entity: e, IsAI: isAI})
}

// SetRemoteInput records the latest input from a non-host peer,
// last-writer-wins with no queue.
func (s *Sim) SetRemoteInput(peerID string, in physics.Input) {
	s.mu.Lock()
	s.remoteInputLatest[peerID] = in
	s.mu.Unlock()
}

// SetLocalInput records the host's own input for the next tick.
func (s *Sim) SetLocalInput(in physics.Input) {
	s.mu.Lock()
	s.localInput = in
	s.mu.Unlock()
}

// Begin transitions out of heroSelect into countdown, bypassing the
// timeout/confirmation gate. Prefer StartHeroSelect for normal flow; this
// remains for callers (tests, headless harnesses) that want to skip
// heroSelect entirely.
func (s *Sim) Begin(nowMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTickMs = nowMs
	ev := s.match.Begin(nowMs)
	s.emitPhaseChangeLocked(ev)
}

// StartHeroSelect arms the heroSelect phase's timeout and the roster of
// peers that must confirm a hero pick before the phase can end early. It
// must be called once every participant has been added, before the first
// Tick, so the countdown transition happens automatically on timeout or
// once every peer has confirmed via SelectHero.
func (s *Sim) StartHeroSelect(nowMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	peerIDs := make([]string, len(s.participants))
	for i, p := range s.participants {
		peerIDs[i] = p.PeerID
	}
	s.match.ArmHeroSelect(nowMs, peerIDs)
	s.emitLocked("startHeroSelect", map[string]any{
		"endsAt": s.match.HeroSelectDeadline(nowMs),
		"peers":  peerIDs,
	})
}

// SelectHero applies hero to peerID's entity and, if confirmed is set,
// counts it toward the heroSelect all-confirmed gate. Once every
// registered peer has confirmed, it ends heroSelect immediately rather
// than waiting for the timeout.
func (s *Sim) SelectHero(peerID string, hero entity.Hero, confirmed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[peerID]
	if !ok {
		return
	}
	e.ApplyHero(hero)

	if !confirmed {
		return
	}
	if s.match.ConfirmHero(peerID) {
		s.emitLocked("heroesConfirmed", s.heroRosterLocked())
		ev := s.match.Begin(s.lastTickMs)
		s.emitPhaseChangeLocked(ev)
	}
}

// heroRosterLocked reports every participant's current hero, the payload
// of the heroesConfirmed broadcast.
func (s *Sim) heroRosterLocked() map[string]string {
	roster := make(map[string]string, len(s.participants))
	for _, p := range s.participants {
		roster[p.PeerID] = p.Entity.HeroID
	}
	return roster
}

// Run drives Tick on a fixed-cadence real-time ticker until stop is
// closed. cmd/hostsim calls Tick directly with synthetic time instead.
func (s *Sim) Run(stop <-chan struct{}) {
	interval := time.Second / TickRate
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			if dt > MaxDt {
				dt = MaxDt
			}
			last = now
			start := time.Now()
			s.Tick(dt, now.UnixMilli())
			observability.RecordTick(time.Since(start))
		}
	}
}

// Tick advances the simulation by dt and emits events/snapshots, following
// a fixed per-tick sequence: match phase, input/physics/combat
// resolution, then snapshot/event emission.
func (s *Sim) Tick(dt time.Duration, nowMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickNum++
	s.lastTickMs = nowMs
	dtSec := dt.Seconds()

	if pc := s.match.Tick(nowMs); pc != nil {
		s.emitPhaseChangeLocked(*pc)
	}

	// Step 1+2: resolve input, physics, shooting — AI/remote entities
	// first so this tick's hitscan/melee tests see current-tick
	// positions before the local entity acts.
	for _, participant := range s.participants {
		if participant.PeerID == s.localPeerID {
			continue
		}
		s.stepParticipant(participant, dtSec, nowMs)
	}
	for _, participant := range s.participants {
		if participant.PeerID != s.localPeerID {
			continue
		}
		s.stepParticipant(participant, dtSec, nowMs)
	}

	// Step 3: projectiles.
	s.stepProjectiles(dtSec, nowMs)

	// Step 5/6 happen via emitSnapshotIfDueLocked below; tracer events are
	// emitted inline from stepParticipant/combat resolution.
	s.emitSnapshotIfDueLocked(nowMs)
}

func (s *Sim) inputFor(p Participant) physics.Input {
	if p.PeerID == s.localPeerID {
		return s.localInput
	}
	return s.remoteInputLatest[p.PeerID]
}

func (s *Sim) stepParticipant(p Participant, dtSec float64, nowMs int64) {
	e := p.Entity
	if !e.Alive {
		return
	}

	in := s.inputFor(p)
	physics.Step(&e.Body, in, s.arena, dtSec)
	e.TickReload(nowMs)

	if s.match.FireSuppressed(nowMs) {
		return
	}

	swinging := nowMs-e.Weapon.LastMeleeAt < e.Weapon.MeleeSwingMs

	switch {
	case in.Reload:
		combat.Reload(e, nowMs)
	case in.Melee:
		s.resolveMelee(e, nowMs)
	case in.Fire && !swinging && e.CanFire(nowMs):
		s.resolveFire(e, in, nowMs)
	}
}

func (s *Sim) candidatesExcept(selfID string) []*entity.Entity {
	out := make([]*entity.Entity, 0, len(s.entities))
	for id, e := range s.entities {
		if id == selfID {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Sim) resolveFire(shooter *entity.Entity, in physics.Input, nowMs int64) {
	origin := shooter.Body.Position
	aimDir := mathutil.ForwardFromYawPitch(in.LookYaw, in.LookPitch)
	candidates := s.candidatesExcept(shooter.ID)

	if shooter.Weapon.IsHitscan() {
		tracers, damages := combat.Hitscan(combat.FireParams{
			Shooter:    shooter,
			Origin:     origin,
			AimDir:     aimDir,
			Sprinting:  in.Sprint,
			Solids:     s.arena.Solids,
			Candidates: candidates,
			Rng:        s.rng,
			NowMs:      nowMs,
		})
		for _, t := range tracers {
			s.emitLocked("shot", t)
		}
		s.applyDamagesLocked(damages, nowMs)
		return
	}

	s.nextProjID++
	proj := combat.FireProjectile(projID(s.nextProjID), shooter, origin, aimDir, nowMs)
	s.projectiles[proj.ID] = proj
	s.emitLocked("shot", combat.TracerEvent{Start: origin, End: origin.Add(proj.Vel), Color: proj.Color, TTLMs: 150})
}

func (s *Sim) resolveMelee(attacker *entity.Entity, nowMs int64) {
	lastSwing := attacker.Weapon.LastMeleeAt
	aimDir := mathutil.ForwardFromYawPitch(attacker.Body.Yaw, attacker.Body.Pitch)
	damages := combat.Melee(attacker, aimDir, s.candidatesExcept(attacker.ID), nowMs)
	if attacker.Weapon.LastMeleeAt != lastSwing {
		// The swing happened (cooldown passed), hit or not; clients play
		// the animation off this rather than waiting for damage events.
		s.emitLocked("melee", map[string]any{"id": attacker.ID, "t": nowMs})
	}
	s.applyDamagesLocked(damages, nowMs)
}

func (s *Sim) stepProjectiles(dtSec float64, nowMs int64) {
	for id, proj := range s.projectiles {
		candidates := s.candidatesExcept(proj.OwnerID)
		dmg, despawn := combat.StepProjectile(proj, dtSec, s.arena.Solids, candidates, s.arenaBounds, nowMs)
		if dmg != nil {
			s.applyDamagesLocked([]combat.DamageEvent{*dmg}, nowMs)
		}
		if despawn {
			delete(s.projectiles, id)
		}
	}
}

func (s *Sim) applyDamagesLocked(damages []combat.DamageEvent, nowMs int64) {
	for _, dmg := range damages {
		s.emitLocked("damage", dmg)
		if !dmg.Killed {
			continue
		}
		s.emitLocked("ffaKill", dmg)

		if ev := s.match.RecordKill(nowMs, dmg.ShooterID, dmg.VictimID); ev != nil {
			s.emitLocked("roundResult", *ev)
			continue
		}
		if !s.match.Settings.FreeForAll {
			s.maybeEndByEliminationLocked(nowMs)
		}
	}
}

// maybeEndByEliminationLocked checks whether only one entity remains
// alive and, if so, ends the round in that survivor's favor.
func (s *Sim) maybeEndByEliminationLocked(nowMs int64) {
	var survivor string
	aliveCount := 0
	for id, e := range s.entities {
		if e.Alive {
			aliveCount++
			survivor = id
		}
	}
	if aliveCount == 1 {
		ev := s.match.EndRoundByElimination(nowMs, survivor)
		s.emitLocked("roundResult", ev)
	}
}

func (s *Sim) emitPhaseChangeLocked(ev match.PhaseChangeEvent) {
	s.emitLocked("phaseChange", ev)
	switch ev.Phase {
	case match.PhaseCountdown:
		// A new round is starting: every entity respawns at its assigned
		// spawn with full health and a cleared reload.
		s.respawnAllLocked()
		s.emitLocked("startRound", map[string]any{"countdownEndsAt": ev.EndsAt})
	case match.PhaseMatchOver:
		s.emitLocked("matchOver", s.match.FinalScores())
	}
}

func (s *Sim) respawnAllLocked() {
	for i, p := range s.participants {
		if len(s.spawns) == 0 {
			break
		}
		p.Entity.Respawn(s.spawns[i%len(s.spawns)], s.lastTickMs)
	}
}

// emitSnapshotIfDueLocked throttles on the simulated clock threaded
// through Tick, same as every other timer here, so callers driving
// synthetic time (cmd/hostsim, deterministic tests) get the 20 Hz
// cadence too, not just Run's real-time ticker.
func (s *Sim) emitSnapshotIfDueLocked(nowMs int64) {
	if nowMs-s.lastSnapshotMs < SnapshotPeriod.Milliseconds() {
		return
	}
	s.lastSnapshotMs = nowMs

	entities := make([]map[string]any, 0, len(s.entities))
	for _, p := range s.participants {
		e := p.Entity
		entities = append(entities, map[string]any{
			"id":          p.PeerID,
			"x":           e.Body.Position.X,
			"y":           e.Body.Position.Y,
			"z":           e.Body.Position.Z,
			"yaw":         e.Body.Yaw,
			"pitch":       e.Body.Pitch,
			"health":      e.Health,
			"ammo":        e.Weapon.Ammo,
			"magSize":     e.Weapon.MagSize,
			"reloading":   e.Weapon.Reloading,
			"reloadEndAt": e.Weapon.ReloadEndAt,
			"alive":       e.Alive,
		})
	}
	s.emitLocked("snapshot", map[string]any{"t": nowMs, "entities": entities})
	observability.RecordSnapshotBroadcast()
}

func (s *Sim) emitLocked(msgType string, payload any) {
	if s.emit != nil {
		s.emit(msgType, payload)
	}
}

func projID(n uint64) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "p0"
	}
	buf := make([]byte, 0, 16)
	buf = append(buf, 'p')
	start := len(buf)
	for n > 0 {
		buf = append(buf, digits[n%16])
		n /= 16
	}
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
