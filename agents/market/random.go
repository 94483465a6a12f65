package market

import (
	"math/rand/v2"
	"time"
)

// Random holds the three independent randomness sources of a market step.
type Random struct {
	Events *rand.Rand
	Share  *rand.Rand
	Demand *rand.Rand
}

// NewRandom seeds all three sources from seed. Zero seeds from the clock.
func NewRandom(seed uint64) Random {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return Random{
		Events: rand.New(rand.NewPCG(seed, 1)),
		Share:  rand.New(rand.NewPCG(seed, 2)),
		Demand: rand.New(rand.NewPCG(seed, 3)),
	}
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
