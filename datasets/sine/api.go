package sine

import "math"

// Sample is one input/target pair of the sine regression problem.
type Sample struct {
	X float64
	Y float64
}

func points(n int) (ret []Sample) {
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n)
		ret = append(ret, Sample{X: x, Y: math.Sin(2 * math.Pi * x)})
	}
	return
}

func Small() []Sample {
	return points(100)
}

func Medium() []Sample {
	return points(1000)
}

func Big() []Sample {
	return points(10000)
}
