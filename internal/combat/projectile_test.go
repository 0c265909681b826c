package combat

import (
	"testing"

	"github.com/lanarena/relay/internal/entity"
	"github.com/lanarena/relay/internal/mathutil"
)

func wideBounds() ArenaBounds {
	return ArenaBounds{Min: mathutil.Vec3(-100, -50, -100), Max: mathutil.Vec3(100, 100, 100)}
}

func projectileShooter() *entity.Entity {
	e := entity.New("shooter", entity.DefaultHeroes()["arbalist"])
	return e
}

func TestFireProjectileSpawnsWithWeaponStats(t *testing.T) {
	shooter := projectileShooter()
	aim := mathutil.Vec3(0, 0, -1)

	proj := FireProjectile("p1", shooter, shooter.Body.Position, aim, 1000)

	if proj.Vel.Z >= 0 {
		t.Fatalf("Vel = %+v, want aimDir scaled by projectile speed", proj.Vel)
	}
	if proj.Damage != shooter.Weapon.Damage {
		t.Errorf("Damage = %d, want %d", proj.Damage, shooter.Weapon.Damage)
	}
	if shooter.Weapon.Ammo != 0 {
		t.Errorf("Ammo = %d, want 0 after firing the single-round magazine", shooter.Weapon.Ammo)
	}
	if !shooter.Weapon.Reloading {
		t.Error("emptying the magazine should start a reload")
	}
}

func TestStepProjectileGravityBendsTrajectory(t *testing.T) {
	proj := &Projectile{
		Pos:      mathutil.Vec3(0, 5, 0),
		Vel:      mathutil.Vec3(0, 0, -30),
		Gravity:  -9,
		MaxRange: 1000, RemainingLife: 8,
	}

	_, despawn := StepProjectile(proj, 0.5, nil, nil, wideBounds(), 1000)
	if despawn {
		t.Fatal("projectile should still be in flight")
	}
	if proj.Vel.Y >= 0 {
		t.Errorf("Vel.Y = %v, want negative after gravity integration", proj.Vel.Y)
	}
	if proj.Pos.Y >= 5 {
		t.Errorf("Pos.Y = %v, want below the start height", proj.Pos.Y)
	}
}

func TestStepProjectileDespawnsOnSolidHit(t *testing.T) {
	wall := []mathutil.Triangle{
		{A: mathutil.Vec3(-5, -5, -3), B: mathutil.Vec3(5, -5, -3), C: mathutil.Vec3(-5, 10, -3)},
		{A: mathutil.Vec3(5, -5, -3), B: mathutil.Vec3(5, 10, -3), C: mathutil.Vec3(-5, 10, -3)},
	}
	proj := &Projectile{
		Pos:      mathutil.Vec3(0, 0, 0),
		Vel:      mathutil.Vec3(0, 0, -60),
		MaxRange: 1000, RemainingLife: 8,
	}

	dmg, despawn := StepProjectile(proj, 0.1, wall, nil, wideBounds(), 1000)
	if !despawn {
		t.Fatal("projectile should despawn on hitting a solid")
	}
	if dmg != nil {
		t.Fatalf("dmg = %+v, want nil on a world hit", dmg)
	}
	if proj.Pos.Z < -3.01 || proj.Pos.Z > -2.99 {
		t.Errorf("Pos.Z = %v, want stopped at the wall plane", proj.Pos.Z)
	}
}

func TestStepProjectileDamagesFirstTargetOnSweptSegment(t *testing.T) {
	target := entity.New("target", entity.DefaultHero())
	target.Body.Position = mathutil.Vec3(0, 0, -4)

	torso := target.SegmentWorldCenter(target.Hitbox[1])
	proj := &Projectile{
		OwnerID:  "shooter",
		Pos:      mathutil.Vec3(0, torso.Y, 0),
		Vel:      mathutil.Vec3(0, 0, -60),
		Damage:   55,
		MaxRange: 1000, RemainingLife: 8,
	}

	dmg, despawn := StepProjectile(proj, 0.1, nil, []*entity.Entity{target}, wideBounds(), 1000)
	if !despawn || dmg == nil {
		t.Fatalf("despawn/dmg = %v/%+v, want a hit and despawn", despawn, dmg)
	}
	if dmg.VictimID != "target" || dmg.Segment != "torso" {
		t.Errorf("dmg = %+v, want a torso hit on target", dmg)
	}
	if want := 55; dmg.Damage != want {
		t.Errorf("Damage = %d, want %d (1.0x torso multiplier)", dmg.Damage, want)
	}
}

func TestStepProjectileDespawnsBeyondMaxRange(t *testing.T) {
	proj := &Projectile{
		Pos:      mathutil.Vec3(0, 0, 0),
		Vel:      mathutil.Vec3(0, 0, -60),
		MaxRange: 5, RemainingLife: 8,
	}

	_, despawn := StepProjectile(proj, 0.1, nil, nil, wideBounds(), 1000)
	if !despawn {
		t.Fatal("projectile should despawn once traveled distance exceeds MaxRange")
	}
}

func TestStepProjectileDespawnsOutsideArenaVolume(t *testing.T) {
	bounds := ArenaBounds{Min: mathutil.Vec3(-1, -1, -1), Max: mathutil.Vec3(1, 1, 1)}
	proj := &Projectile{
		Pos:      mathutil.Vec3(0, 0, 0),
		Vel:      mathutil.Vec3(0, 0, -60),
		MaxRange: 1000, RemainingLife: 8,
	}

	_, despawn := StepProjectile(proj, 0.1, nil, nil, bounds, 1000)
	if !despawn {
		t.Fatal("projectile should despawn on leaving the arena volume")
	}
}

func TestStepProjectileSkipsOwner(t *testing.T) {
	owner := entity.New("owner", entity.DefaultHero())
	owner.Body.Position = mathutil.Vec3(0, 0, -4)

	torso := owner.SegmentWorldCenter(owner.Hitbox[1])
	proj := &Projectile{
		OwnerID:  "owner",
		Pos:      mathutil.Vec3(0, torso.Y, 0),
		Vel:      mathutil.Vec3(0, 0, -30),
		Damage:   55,
		MaxRange: 1000, RemainingLife: 8,
	}

	dmg, _ := StepProjectile(proj, 0.1, nil, []*entity.Entity{owner}, wideBounds(), 1000)
	if dmg != nil {
		t.Fatalf("dmg = %+v, want nil: a projectile never hits its own shooter", dmg)
	}
}
