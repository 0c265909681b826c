// Package entity implements the Player/AI entity model: the physics body
// plus health, weapon, and hitbox state layered on top. Player and AI
// entities share an identical shape; nothing in this package distinguishes
// a human-controlled entity from an AI-controlled one beyond which input
// source feeds physics.Step.
package entity

import (
	"fmt"

	"github.com/lanarena/relay/internal/mathutil"
	"github.com/lanarena/relay/internal/physics"
)

// Segment is one oriented-box piece of an entity's hitbox, tested in
// declared order by the combat resolver. World-space center is
// position + Rot_y(yaw) * (0, CenterOffsetY, 0).
type Segment struct {
	Name                string
	HalfW, HalfH, HalfD float64
	CenterOffsetY       float64
	DamageMultiplier    float64
}

// Weapon carries an entity's current weapon state. ProjectileSpeed is
// nil for a hitscan weapon: an optional field selects the fire path
// instead of a tagged union, since every other field is shared scalar
// state.
type Weapon struct {
	CooldownMs      int64
	MagSize         int // 0 means infinite ammo; never reloads, never gates on ammo
	Ammo            int
	ReloadTimeSec   float64
	Reloading       bool
	ReloadEndAt     int64 // ms, monotonic clock
	LastShotAt      int64 // ms

	Damage            int
	SpreadRad         float64
	SprintSpreadRad   float64
	MaxRange          float64
	Pellets           int
	ProjectileSpeed   *float64
	ProjectileGravity float64
	TracerColor       string

	MeleeDamage     int
	MeleeRange      float64
	MeleeCooldownMs int64
	MeleeSwingMs    int64
	LastMeleeAt     int64 // ms
}

// IsHitscan reports whether this weapon fires instant-hit rays rather than
// spawning a simulated projectile.
func (w Weapon) IsHitscan() bool {
	return w.ProjectileSpeed == nil
}

// InfiniteAmmo reports whether this weapon never reloads and never gates
// fire on ammo count.
func (w Weapon) InfiniteAmmo() bool {
	return w.MagSize == 0
}

// Hero is the data a hero selection atomically applies to an entity:
// weapon, hitbox, speeds, and jump velocity.
type Hero struct {
	ID           string
	Hitbox       []Segment
	Weapon       Weapon
	Radius       float64
	WalkSpeed    float64
	SprintSpeed  float64
	JumpVelocity float64
	MaxHealth    int
}

// Entity is a Player or AI combatant: the physics body plus health, weapon,
// and hitbox state. Player and AI use the identical struct.
type Entity struct {
	ID     string
	Body   physics.Body
	HeroID string

	MaxHealth     int
	Health        int
	Alive         bool
	LastDamagedAt int64 // ms, monotonic clock

	Hitbox []Segment
	Weapon Weapon
}

// New constructs an entity at the origin with the given hero applied and
// full health.
func New(id string, hero Hero) *Entity {
	e := &Entity{ID: id}
	e.Body = physics.NewBody(hero.Radius, hero.WalkSpeed, hero.SprintSpeed)
	e.ApplyHero(hero)
	e.Health = e.MaxHealth
	e.Alive = true
	return e
}

// ApplyHero atomically replaces weapon, hitbox, speeds, and jump velocity.
// Applying the same hero twice leaves the entity identical to one
// application because every field it touches is a full overwrite, never
// an increment.
func (e *Entity) ApplyHero(hero Hero) {
	e.HeroID = hero.ID
	e.Body.Radius = hero.Radius
	e.Body.WalkSpeed = hero.WalkSpeed
	e.Body.SprintSpeed = hero.SprintSpeed
	e.Body.JumpVelocity = hero.JumpVelocity
	e.MaxHealth = hero.MaxHealth

	e.Hitbox = make([]Segment, len(hero.Hitbox))
	copy(e.Hitbox, hero.Hitbox)

	e.Weapon = hero.Weapon
}

// SegmentWorldCenter returns the world-space center of the named hitbox
// segment given the entity's current yaw: position + Rot_y(yaw) *
// (0, centerOffsetY, 0).
func (e *Entity) SegmentWorldCenter(seg Segment) mathutil.Vector3 {
	offset := mathutil.RotateY(mathutil.Vec3(0, seg.CenterOffsetY, 0), e.Body.Yaw)
	return e.Body.Position.Add(offset)
}

// TakeDamage clamps health, stamps LastDamagedAt, and reports whether this
// hit was the killing blow (health crossed to <= 0 while previously alive).
// Callers emit the damage/kill events; this method only mutates state.
func (e *Entity) TakeDamage(amount int, nowMs int64) (newHealth int, killed bool) {
	e.LastDamagedAt = nowMs
	wasAlive := e.Alive

	e.Health -= amount
	if e.Health < 0 {
		e.Health = 0
	}

	if e.Health <= 0 && wasAlive {
		e.Alive = false
		return e.Health, true
	}
	return e.Health, false
}

// Respawn restores full health, clears reload state, positions the entity
// at spawn, and zeros vertical velocity.
func (e *Entity) Respawn(spawn mathutil.Vector3, nowMs int64) {
	e.Health = e.MaxHealth
	e.Alive = true
	e.Weapon.Reloading = false
	e.Weapon.Ammo = e.Weapon.MagSize
	e.Weapon.ReloadEndAt = 0
	e.Weapon.LastShotAt = 0
	e.Weapon.LastMeleeAt = 0

	e.Body.FeetY = spawn.Y
	e.Body.Position = mathutil.Vec3(spawn.X, spawn.Y+physics.EyeHeight, spawn.Z)
	e.Body.VerticalVelocity = 0
	e.Body.Grounded = true
}

// CanFire reports whether the weapon can fire right now: not reloading,
// ammo available (unless infinite), and the per-shot cooldown elapsed. A
// weapon with no recorded shot (LastShotAt 0, as after New or Respawn) has
// no cooldown to wait out.
func (e *Entity) CanFire(nowMs int64) bool {
	if e.Weapon.Reloading {
		return false
	}
	if !e.Weapon.InfiniteAmmo() && e.Weapon.Ammo <= 0 {
		return false
	}
	if e.Weapon.LastShotAt == 0 {
		return true
	}
	return nowMs-e.Weapon.LastShotAt >= e.Weapon.CooldownMs
}

// StartReload transitions the weapon into reloading, unless it has
// infinite ammo or is already full.
func (e *Entity) StartReload(nowMs int64) {
	if e.Weapon.InfiniteAmmo() || e.Weapon.Reloading {
		return
	}
	if e.Weapon.Ammo >= e.Weapon.MagSize {
		return
	}
	e.Weapon.Reloading = true
	e.Weapon.ReloadEndAt = nowMs + int64(e.Weapon.ReloadTimeSec*1000)
}

// TickReload checks reload expiry. Called once per simulation tick before
// fire-input is processed so a reload completing mid-tick permits a fire
// in that same tick with a full magazine.
func (e *Entity) TickReload(nowMs int64) {
	if e.Weapon.Reloading && nowMs >= e.Weapon.ReloadEndAt {
		e.Weapon.Reloading = false
		e.Weapon.Ammo = e.Weapon.MagSize
	}
}

// String implements a compact debug representation.
func (e *Entity) String() string {
	return fmt.Sprintf("Entity{id=%s hero=%s hp=%d/%d alive=%v}", e.ID, e.HeroID, e.Health, e.MaxHealth, e.Alive)
}
