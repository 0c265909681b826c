package entity

// DefaultHeroes returns the built-in hero roster seeded to the asset
// store on startup when absent. Segment offsets are relative to the
// eye-height position, so marksman's head (CenterOffsetY 0.95, 2.0x
// damage) sits 2.95 above the feet and its torso (CenterOffsetY 0.05,
// 1.0x) 2.05 above the feet; the other heroes vary these per hero.
func DefaultHeroes() map[string]Hero {
	projSpeed := 60.0
	return map[string]Hero{
		"marksman": {
			ID:           "marksman",
			Radius:       0.4,
			WalkSpeed:    4.5,
			SprintSpeed:  7.0,
			JumpVelocity: 8.5,
			MaxHealth:    100,
			Hitbox: []Segment{
				{Name: "head", HalfW: 0.18, HalfH: 0.18, HalfD: 0.18, CenterOffsetY: 0.95, DamageMultiplier: 2.0},
				{Name: "torso", HalfW: 0.35, HalfH: 0.55, HalfD: 0.25, CenterOffsetY: 0.05, DamageMultiplier: 1.0},
				{Name: "legs", HalfW: 0.3, HalfH: 0.5, HalfD: 0.25, CenterOffsetY: -0.95, DamageMultiplier: 0.8},
			},
			Weapon: Weapon{
				CooldownMs:      150,
				MagSize:         20,
				Ammo:            20,
				ReloadTimeSec:   1.8,
				Damage:          20,
				SpreadRad:       0.01,
				SprintSpreadRad: 0.05,
				MaxRange:        120,
				Pellets:         1,
				ProjectileSpeed: nil, // hitscan
				TracerColor:     "#ffe08a",
				MeleeDamage:     15,
				MeleeRange:      1.6,
				MeleeCooldownMs: 700,
				MeleeSwingMs:    250,
			},
		},
		"brawler": {
			ID:           "brawler",
			Radius:       0.45,
			WalkSpeed:    4.0,
			SprintSpeed:  6.2,
			JumpVelocity: 8.2,
			MaxHealth:    130,
			Hitbox: []Segment{
				{Name: "head", HalfW: 0.2, HalfH: 0.2, HalfD: 0.2, CenterOffsetY: 0.9, DamageMultiplier: 1.8},
				{Name: "torso", HalfW: 0.4, HalfH: 0.6, HalfD: 0.3, CenterOffsetY: 0.0, DamageMultiplier: 1.0},
				{Name: "legs", HalfW: 0.35, HalfH: 0.5, HalfD: 0.3, CenterOffsetY: -0.95, DamageMultiplier: 0.8},
			},
			Weapon: Weapon{
				CooldownMs:      600,
				MagSize:         8,
				Ammo:            8,
				ReloadTimeSec:   2.2,
				Damage:          12,
				SpreadRad:       0.06,
				SprintSpreadRad: 0.12,
				MaxRange:        12,
				Pellets:         6,
				ProjectileSpeed: nil, // hitscan (shotgun-style pellets)
				TracerColor:     "#ff8a5c",
				MeleeDamage:     35,
				MeleeRange:      2.2,
				MeleeCooldownMs: 500,
				MeleeSwingMs:    300,
			},
		},
		"arbalist": {
			ID:           "arbalist",
			Radius:       0.4,
			WalkSpeed:    4.2,
			SprintSpeed:  6.5,
			JumpVelocity: 8.5,
			MaxHealth:    100,
			Hitbox: []Segment{
				{Name: "head", HalfW: 0.18, HalfH: 0.18, HalfD: 0.18, CenterOffsetY: 0.95, DamageMultiplier: 2.0},
				{Name: "torso", HalfW: 0.35, HalfH: 0.55, HalfD: 0.25, CenterOffsetY: 0.05, DamageMultiplier: 1.0},
				{Name: "legs", HalfW: 0.3, HalfH: 0.5, HalfD: 0.25, CenterOffsetY: -0.95, DamageMultiplier: 0.8},
			},
			Weapon: Weapon{
				CooldownMs:        900,
				MagSize:           1,
				Ammo:              1,
				ReloadTimeSec:     1.4,
				Damage:            55,
				SpreadRad:         0,
				SprintSpreadRad:   0.08,
				MaxRange:          80,
				Pellets:           1,
				ProjectileSpeed:   &projSpeed,
				ProjectileGravity: -9.0,
				TracerColor:       "#9ad1ff",
				MeleeDamage:       10,
				MeleeRange:        1.4,
				MeleeCooldownMs:   800,
				MeleeSwingMs:      300,
			},
		},
	}
}

// DefaultHero returns the fallback hero applied to an entity before a
// hero-select confirmation arrives.
func DefaultHero() Hero {
	return DefaultHeroes()["marksman"]
}
