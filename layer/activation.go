package layer

import "math"
import "math/rand"

// Activation selects a neuron activation function.
type Activation int32

const (
	Logistic Activation = iota
	Relu
	Tanh
	Linear
	Leaky
	Sine
	Gaussian

	// numActivations is the number of selectable activation functions.
	numActivations
)

// String returns the lowercase activation name.
func (a Activation) String() string {
	switch a {
	case Logistic:
		return "logistic"
	case Relu:
		return "relu"
	case Tanh:
		return "tanh"
	case Linear:
		return "linear"
	case Leaky:
		return "leaky"
	case Sine:
		return "sine"
	case Gaussian:
		return "gaussian"
	}
	return "unknown"
}

// Activate applies a to the pre-activation state x.
func Activate(a Activation, x float64) float64 {
	switch a {
	case Logistic:
		return 1 / (1 + math.Exp(-x))
	case Relu:
		if x > 0 {
			return x
		}
		return 0
	case Tanh:
		return math.Tanh(x)
	case Linear:
		return x
	case Leaky:
		if x > 0 {
			return x
		}
		return 0.1 * x
	case Sine:
		return math.Sin(x)
	case Gaussian:
		return math.Exp(-x * x)
	}
	return x
}

// Gradient returns the derivative of a at the pre-activation state x.
func Gradient(a Activation, x float64) float64 {
	switch a {
	case Logistic:
		f := 1 / (1 + math.Exp(-x))
		return f * (1 - f)
	case Relu:
		if x > 0 {
			return 1
		}
		return 0
	case Tanh:
		t := math.Tanh(x)
		return 1 - t*t
	case Linear:
		return 1
	case Leaky:
		if x > 0 {
			return 1
		}
		return 0.1
	case Sine:
		return math.Cos(x)
	case Gaussian:
		return -2 * x * math.Exp(-x*x)
	}
	return 1
}

// randActivation draws an activation different from cur.
func randActivation(cur Activation) Activation {
	next := Activation(rand.Intn(int(numActivations)))
	for next == cur {
		next = Activation(rand.Intn(int(numActivations)))
	}
	return next
}
