package rng

import "github.com/valyala/fastrand"

// Source is the single randomness abstraction threaded into box shuffling,
// room-code generation, the banker variance and the first-turn pick.
type Source interface {
	Uint32n(n uint32) uint32
	Float64() float64
}

// New returns the process-wide fastrand-backed source.
func New() Source {
	return fastSource{}
}

type fastSource struct{}

func (fastSource) Uint32n(n uint32) uint32 {
	return fastrand.Uint32n(n)
}

func (fastSource) Float64() float64 {
	return float64(fastrand.Uint32()) / (1 << 32)
}

// ShuffleFloat64s performs an unbiased Fisher-Yates shuffle in place.
func ShuffleFloat64s(src Source, vals []float64) {
	for i := len(vals) - 1; i > 0; i-- {
		j := int(src.Uint32n(uint32(i + 1)))
		vals[i], vals[j] = vals[j], vals[i]
	}
}

// UniformRange returns a uniform float in [lo, hi).
func UniformRange(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
