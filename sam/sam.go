// Package sam implements self-adaptive mutation-rate vectors. Each evolving
// representation owns a small vector of rates that is initialised once and
// perturbed every generation alongside the representation itself.
package sam

import "math"
import "math/rand"

// Method selects how one slot of a rate vector is initialised and adapted.
type Method int32

const (
	// LogNormal adapts a rate by multiplying with exp(N(0,1)).
	LogNormal Method = iota
	// RateSelect adapts a rate by occasionally drawing a new value from a
	// fixed table of rates.
	RateSelect
	// Uniform adapts a rate by occasionally redrawing it uniformly.
	Uniform
)

// Epsilon is the smallest permitted mutation rate.
const Epsilon = 0.0005

// rates is the table drawn from by RateSelect.
var rates = [10]float64{
	0.0005, 0.001, 0.002, 0.003, 0.005, 0.01, 0.015, 0.02, 0.05, 0.1,
}

// Init initialises each slot of mu according to its method.
func Init(mu []float64, methods []Method) {
	for i := range mu {
		switch methods[i] {
		case LogNormal:
			mu[i] = rand.Float64()
		case RateSelect:
			mu[i] = rates[rand.Intn(len(rates))]
		case Uniform:
			mu[i] = Epsilon + rand.Float64()*(1-Epsilon)
		}
	}
}

// Adapt perturbs each slot of mu according to its method, keeping every rate
// within [Epsilon, 1].
func Adapt(mu []float64, methods []Method) {
	for i := range mu {
		switch methods[i] {
		case LogNormal:
			mu[i] *= math.Exp(rand.NormFloat64())
		case RateSelect:
			if rand.Float64() < 0.1 {
				mu[i] = rates[rand.Intn(len(rates))]
			}
		case Uniform:
			if rand.Float64() < 0.1 {
				mu[i] = Epsilon + rand.Float64()*(1-Epsilon)
			}
		}
		if mu[i] < Epsilon {
			mu[i] = Epsilon
		} else if mu[i] > 1 {
			mu[i] = 1
		}
	}
}
