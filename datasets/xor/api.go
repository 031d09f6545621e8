package xor

// Sample is one input/target pair of the exclusive-or problem.
type Sample struct {
	X [2]float64
	Y float64
}

func All() []Sample {
	return []Sample{
		{X: [2]float64{0, 0}, Y: 0},
		{X: [2]float64{0, 1}, Y: 1},
		{X: [2]float64{1, 0}, Y: 1},
		{X: [2]float64{1, 1}, Y: 0},
	}
}
