// Package combat implements the hitscan, projectile, and melee resolvers
// plus reload gating shared by the host simulation and single-player AI
// mode.
package combat

import (
	"math"
	"math/rand"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SpreadSampler perturbs an aim direction by a bounded amount per pellet.
// The sampling distribution is an implementer choice; the only behavioral
// contract is that the jitter stays bounded by the spread radius and is
// sampled independently per pellet. Implementations must be deterministic
// given a seeded rng so damage outcomes are reproducible in tests.
type SpreadSampler interface {
	Sample(rng *rand.Rand, radius float64) (dx, dy float64)
}

// UniformDiskSampler samples uniformly within a disk of the given radius —
// the default sampler.
type UniformDiskSampler struct{}

// Sample returns a point inside the unit disk scaled by radius, using the
// standard rejection-free polar method.
func (UniformDiskSampler) Sample(rng *rand.Rand, radius float64) (dx, dy float64) {
	if radius <= 0 {
		return 0, 0
	}
	r := radius * math.Sqrt(rng.Float64())
	theta := rng.Float64() * 2 * math.Pi
	return r * math.Cos(theta), r * math.Sin(theta)
}

// GaussianSampler center-weights the jitter using gonum's Normal
// distribution, clamped to the disk of the given radius so the bounded-
// magnitude contract still holds. An alternative to the uniform default
// for a tighter, center-weighted spread; no hero or weapon field selects
// it, so a caller opts in by passing it as FireParams.Sampler.
type GaussianSampler struct {
	// SigmaFraction scales the standard deviation relative to radius;
	// 1/3 puts ~99% of mass inside the disk before clamping.
	SigmaFraction float64
}

// Sample draws dx, dy from independent Gaussians and clamps the result to
// the disk of the given radius.
func (g GaussianSampler) Sample(rng *rand.Rand, radius float64) (dx, dy float64) {
	if radius <= 0 {
		return 0, 0
	}
	sigmaFrac := g.SigmaFraction
	if sigmaFrac <= 0 {
		sigmaFrac = 1.0 / 3.0
	}
	sigma := radius * sigmaFrac
	src := mathRandSource{rng}
	nx := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	ny := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	dx, dy = nx.Rand(), ny.Rand()

	distSq := dx*dx + dy*dy
	if distSq > radius*radius {
		dist := math.Sqrt(distSq)
		scale := radius / dist
		dx *= scale
		dy *= scale
	}
	return dx, dy
}

// mathRandSource adapts the seeded *math/rand.Rand every caller already
// threads through FireParams to the x/exp/rand Source gonum's
// distributions draw from, so both samplers share one reproducible
// stream.
type mathRandSource struct {
	r *rand.Rand
}

func (s mathRandSource) Uint64() uint64   { return s.r.Uint64() }
func (s mathRandSource) Seed(seed uint64) { s.r.Seed(int64(seed)) }

var _ exprand.Source = mathRandSource{}

// DefaultSampler is the package-level uniform-disk baseline.
var DefaultSampler SpreadSampler = UniformDiskSampler{}
