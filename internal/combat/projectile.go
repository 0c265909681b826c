package combat

import (
	"github.com/lanarena/relay/internal/entity"
	"github.com/lanarena/relay/internal/mathutil"
)

// Projectile is a simulated, gravity-affected shot in flight. Hitscan
// weapons never produce one; projectile weapons spawn one per shot fired.
type Projectile struct {
	ID            string
	Pos           mathutil.Vector3
	Vel           mathutil.Vector3
	Gravity       float64
	OwnerID       string
	Damage        int
	MaxRange      float64
	TraveledDist  float64
	RemainingLife float64 // seconds; despawns at or below zero
	Color         string
}

// FireProjectile spawns a projectile from a projectile weapon's fire.
// Ammo bookkeeping mirrors Hitscan's.
func FireProjectile(id string, shooter *entity.Entity, origin, aimDir mathutil.Vector3, nowMs int64) *Projectile {
	w := shooter.Weapon
	speed := 0.0
	if w.ProjectileSpeed != nil {
		speed = *w.ProjectileSpeed
	}

	proj := &Projectile{
		ID:            id,
		Pos:           origin,
		Vel:           aimDir.Scale(speed),
		Gravity:       w.ProjectileGravity,
		OwnerID:       shooter.ID,
		Damage:        w.Damage,
		MaxRange:      w.MaxRange,
		RemainingLife: 8.0,
		Color:         w.TracerColor,
	}

	shooter.Weapon.Ammo--
	if shooter.Weapon.Ammo < 0 {
		shooter.Weapon.Ammo = 0
	}
	shooter.Weapon.LastShotAt = nowMs
	if !shooter.Weapon.InfiniteAmmo() && shooter.Weapon.Ammo == 0 {
		shooter.StartReload(nowMs)
	}

	return proj
}

// ArenaBounds is the subset of arena geometry projectile stepping needs to
// test for out-of-volume despawn.
type ArenaBounds struct {
	Min, Max mathutil.Vector3
}

// Contains reports whether p lies within the bounds.
func (b ArenaBounds) Contains(p mathutil.Vector3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// StepProjectile advances one projectile by dt seconds, tests it against
// solids and candidate entity hitboxes along the swept segment, and
// reports whether it should despawn this tick (hit, exceeded range, left
// the arena volume, or expired).
func StepProjectile(p *Projectile, dt float64, solids []mathutil.Triangle, candidates []*entity.Entity, bounds ArenaBounds, nowMs int64) (damage *DamageEvent, despawn bool) {
	start := p.Pos
	p.Vel.Y += p.Gravity * dt
	end := start.Add(p.Vel.Scale(dt))

	segLen := end.Sub(start).Length()
	p.TraveledDist += segLen
	p.RemainingLife -= dt

	if segLen > 1e-9 {
		dir := end.Sub(start).Scale(1 / segLen)

		if hit := mathutil.RaycastTriangles(mathutil.Ray{Origin: start, Dir: dir}, solids, segLen); hit.Hit {
			p.Pos = hit.Point
			return nil, true
		}

		bestDist := segLen
		var dmg *DamageEvent
		for _, target := range candidates {
			if target.ID == p.OwnerID || !target.Alive {
				continue
			}
			for _, seg := range target.Hitbox {
				dist, hit := segmentRayHit(target, seg, start, dir, bestDist)
				if !hit {
					continue
				}
				bestDist = dist
				applied := int(float64(p.Damage) * seg.DamageMultiplier)
				_, killed := target.TakeDamage(applied, nowMs)
				dmg = &DamageEvent{ShooterID: p.OwnerID, VictimID: target.ID, Segment: seg.Name, Damage: applied, Killed: killed}
				break
			}
		}
		if dmg != nil {
			p.Pos = start.Add(dir.Scale(bestDist))
			return dmg, true
		}
	}

	p.Pos = end

	if p.TraveledDist >= p.MaxRange {
		return nil, true
	}
	if p.RemainingLife <= 0 {
		return nil, true
	}
	if !bounds.Contains(p.Pos) {
		return nil, true
	}
	return nil, false
}
