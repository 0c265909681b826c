package combat

import (
	"math"
	"math/rand"

	"github.com/lanarena/relay/internal/entity"
	"github.com/lanarena/relay/internal/mathutil"
)

// DamageEvent records one segment hit and the damage applied.
type DamageEvent struct {
	ShooterID string
	VictimID  string
	Segment   string
	Damage    int
	Killed    bool
}

// TracerEvent is the visual-only "shot" event emitted per pellet/projectile
// so clients can render tracers immediately, ahead of the next snapshot.
type TracerEvent struct {
	Start mathutil.Vector3
	End   mathutil.Vector3
	Color string
	TTLMs int64
}

const defaultTracerTTLMs = 150

// FireParams bundles the inputs to a hitscan fire resolution.
type FireParams struct {
	Shooter    *entity.Entity
	Origin     mathutil.Vector3
	AimDir     mathutil.Vector3 // unit length
	Sprinting  bool
	Solids     []mathutil.Triangle
	Candidates []*entity.Entity
	Sampler    SpreadSampler
	Rng        *rand.Rand
	NowMs      int64
}

// Hitscan resolves a hitscan weapon's fire. It decrements ammo exactly
// once regardless of pellet count and starts a reload if the magazine
// empties. Returns one tracer per pellet and a damage event for every
// segment hit (a pellet that hits nothing yields a tracer with no
// matching damage event).
func Hitscan(p FireParams) (tracers []TracerEvent, damages []DamageEvent) {
	w := p.Shooter.Weapon
	sampler := p.Sampler
	if sampler == nil {
		sampler = DefaultSampler
	}

	spreadRad := w.SpreadRad
	if p.Sprinting {
		spreadRad += w.SprintSpreadRad
	}

	right, up := perpendicularBasis(p.AimDir)

	for i := 0; i < w.Pellets; i++ {
		dx, dy := sampler.Sample(p.Rng, spreadRad)
		dir := p.AimDir.Add(right.Scale(dx)).Add(up.Scale(dy)).Normalize()

		worldHitDist := w.MaxRange
		if hit := mathutil.RaycastTriangles(mathutil.Ray{Origin: p.Origin, Dir: dir}, p.Solids, w.MaxRange); hit.Hit {
			worldHitDist = hit.Distance
		}

		end := p.Origin.Add(dir.Scale(worldHitDist))
		bestDist := worldHitDist

		// Find the nearest segment hit across every candidate before
		// applying damage, so one pellet never wounds two entities.
		var hitTarget *entity.Entity
		var hitSeg entity.Segment
		for _, target := range p.Candidates {
			if target.ID == p.Shooter.ID || !target.Alive {
				continue
			}
			for _, seg := range target.Hitbox {
				dist, hit := segmentRayHit(target, seg, p.Origin, dir, bestDist)
				if !hit {
					continue
				}
				bestDist = dist
				hitTarget = target
				hitSeg = seg
				break // first segment in declared order that intersects wins
			}
		}

		var dmg *DamageEvent
		if hitTarget != nil {
			end = p.Origin.Add(dir.Scale(bestDist))
			applied := int(float64(w.Damage) * hitSeg.DamageMultiplier)
			_, killed := hitTarget.TakeDamage(applied, p.NowMs)
			dmg = &DamageEvent{
				ShooterID: p.Shooter.ID,
				VictimID:  hitTarget.ID,
				Segment:   hitSeg.Name,
				Damage:    applied,
				Killed:    killed,
			}
		}

		tracers = append(tracers, TracerEvent{Start: p.Origin, End: end, Color: w.TracerColor, TTLMs: defaultTracerTTLMs})
		if dmg != nil {
			damages = append(damages, *dmg)
		}
	}

	p.Shooter.Weapon.Ammo--
	if p.Shooter.Weapon.Ammo < 0 {
		p.Shooter.Weapon.Ammo = 0
	}
	p.Shooter.Weapon.LastShotAt = p.NowMs
	if !p.Shooter.Weapon.InfiniteAmmo() && p.Shooter.Weapon.Ammo == 0 {
		p.Shooter.StartReload(p.NowMs)
	}

	return tracers, damages
}

// perpendicularBasis returns two unit vectors orthogonal to dir (and to
// each other), used to jitter an aim direction within a small disk.
func perpendicularBasis(dir mathutil.Vector3) (right, up mathutil.Vector3) {
	reference := mathutil.Vec3(0, 1, 0)
	if math.Abs(dir.Dot(reference)) > 0.99 {
		reference = mathutil.Vec3(1, 0, 0)
	}
	right = dir.Cross(reference).Normalize()
	up = right.Cross(dir).Normalize()
	return right, up
}

// segmentRayHit tests whether the ray from origin in direction dir (unit
// length) intersects target's oriented segment box within maxDist, by
// transforming the ray into the segment's local (unrotated) frame.
func segmentRayHit(target *entity.Entity, seg entity.Segment, origin, dir mathutil.Vector3, maxDist float64) (float64, bool) {
	center := target.SegmentWorldCenter(seg)
	localOrigin := mathutil.RotateY(origin.Sub(center), -target.Body.Yaw)
	localDir := mathutil.RotateY(dir, -target.Body.Yaw)

	box := mathutil.AABB{
		Min: mathutil.Vec3(-seg.HalfW, -seg.HalfH, -seg.HalfD),
		Max: mathutil.Vec3(seg.HalfW, seg.HalfH, seg.HalfD),
	}
	return box.IntersectsRay(localOrigin, localDir, maxDist)
}

// Reload initiates a reload if one isn't already in progress and the
// magazine isn't full.
func Reload(e *entity.Entity, nowMs int64) {
	e.StartReload(nowMs)
}

// Melee resolves a melee swing: a short-range capsule approximated here as
// a forward-swept sphere of meleeRange along the aim direction from the
// entity's eye. Guarded by the cooldown; callers must also honor the
// "swing in progress" fire-input block using MeleeSwingMs.
func Melee(attacker *entity.Entity, aimDir mathutil.Vector3, candidates []*entity.Entity, nowMs int64) []DamageEvent {
	w := attacker.Weapon
	if nowMs-w.LastMeleeAt < w.MeleeCooldownMs {
		return nil
	}

	origin := attacker.Body.Position
	var damages []DamageEvent

	for _, target := range candidates {
		if target.ID == attacker.ID || !target.Alive {
			continue
		}
		for _, seg := range target.Hitbox {
			center := target.SegmentWorldCenter(seg)
			toSeg := center.Sub(origin)
			dist := toSeg.Length()
			if dist > w.MeleeRange+seg.HalfW+seg.HalfD {
				continue
			}
			// within capsule if the segment center projects forward and
			// lies close enough to the swing axis.
			forwardDist := toSeg.Dot(aimDir)
			if forwardDist < -0.25 || forwardDist > w.MeleeRange {
				continue
			}
			lateral := toSeg.Sub(aimDir.Scale(forwardDist)).Length()
			if lateral > seg.HalfW+0.5 {
				continue
			}

			applied := int(float64(w.MeleeDamage) * seg.DamageMultiplier)
			_, killed := target.TakeDamage(applied, nowMs)
			damages = append(damages, DamageEvent{
				ShooterID: attacker.ID,
				VictimID:  target.ID,
				Segment:   seg.Name,
				Damage:    applied,
				Killed:    killed,
			})
			break
		}
	}

	attacker.Weapon.LastMeleeAt = nowMs
	return damages
}
