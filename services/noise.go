package services

import (
	"math/rand/v2"

	"github.com/pmitra96/castleverde/models"
)

// NoiseBound is the constant C in |Perturb(v) - v| <= fraction * |v| * C.
const NoiseBound = 1.0

// Rand is the random source noise is drawn from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// NewSeededRand returns a reproducible source for the given seed.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRand returns a fresh unseeded source.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Perturb adds noise drawn uniformly from [-1, 1] scaled by fraction*value.
// Zero stays zero, and a nil source or non-positive fraction returns value as is.
func Perturb(value, fraction float64, rng Rand) float64 {
	if rng == nil || fraction <= 0 || value == 0 {
		return value
	}
	u := 2*rng.Float64() - 1
	return value + value*fraction*u*NoiseBound
}

// PerturbMacros perturbs each of the five nutrients independently.
// Net carbs is dropped; callers derive it again if they need it.
func PerturbMacros(m models.MacroNutrients, fraction float64, rng Rand) models.MacroNutrients {
	return models.MacroNutrients{
		Protein:    Perturb(m.Protein, fraction, rng),
		Fat:        Perturb(m.Fat, fraction, rng),
		TotalCarbs: Perturb(m.TotalCarbs, fraction, rng),
		Fiber:      Perturb(m.Fiber, fraction, rng),
		Sugar:      Perturb(m.Sugar, fraction, rng),
	}
}
