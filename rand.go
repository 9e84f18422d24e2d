package rumpu

// Rand is the deterministic pseudo-random source shared by everything in the
// engine: variation draws, probability gates, evolve mutations and the noise
// seeds of the synthesis graphs. It is a linear congruential generator using
// the same multiplier as the synth core noise, so two sessions constructed
// with the same seed and fed the same parameters produce identical output.
// The engine never touches system randomness.
type Rand struct {
	state uint32
}

// NewRand returns a Rand seeded with the given value. A zero seed is bumped to
// one, as the all-zero state would be a fixed point of the generator.
func NewRand(seed uint32) *Rand {
	if seed == 0 {
		seed = 1
	}
	return &Rand{state: seed}
}

// SessionSeed derives a seed from a coarse time bucket and a state-derived
// hash, so that reloading the same kit in the same hour starts an identical
// session, but different kits diverge.
func SessionSeed(timeBucket uint32, stateHash uint32) uint32 {
	return timeBucket*2654435761 ^ stateHash
}

func (r *Rand) next() uint32 {
	r.state = r.state*16007 + 1
	return r.state
}

// Float returns the next value in [0, 1).
func (r *Rand) Float() float64 {
	return float64(r.next()>>8) / (1 << 24)
}

// Triangular returns a triangularly distributed value in (-1, 1): two uniform
// draws summed minus one, so small offsets are more likely than extreme ones.
func (r *Rand) Triangular() float64 {
	return r.Float() + r.Float() - 1
}

// Intn returns the next value in [0, n). n must be > 0.
func (r *Rand) Intn(n int) int {
	return int(r.Float() * float64(n))
}
