package sim

import (
	"math"
	"math/rand"
	"time"
)

// Rand is the injectable randomness source for the simulation core. Price
// diffusion, event jitter and noise-headline selection all draw from it, so
// a seeded source makes whole sessions reproducible.
type Rand interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
	// Intn returns a uniform draw in [0, n).
	Intn(n int) int
}

// NewRand returns a seeded source. Seed 0 falls back to wall-clock seeding.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// normal produces a standard normal sample via the Box–Muller transform over
// two independent uniform draws in (0, 1]. The transform is load-bearing: the
// statistical shape of the price path (and of the tests) depends on it, and a
// source whose Float64 always returns 0 yields exactly zero noise.
func normal(r Rand) float64 {
	u1 := 1 - r.Float64() // (0, 1]
	u2 := 1 - r.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// round2 snaps a price to the smallest tradable increment (cents).
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
