// Package layer defines the layer capability contract consumed by the
// network chain, the argument records used to construct layers, and the
// concrete variants: connected, recurrent, dropout, noise and softmax.
package layer

import "io"

import "github.com/pkg/errors"

// Type discriminates the concrete layer variants.
type Type int32

const (
	Connected Type = iota
	Dropout
	Noise
	Softmax
	Recurrent
	LSTM
	MaxPool
	Convolutional
	AvgPool
	Upsample
)

// String returns the lowercase variant name.
func (t Type) String() string {
	switch t {
	case Connected:
		return "connected"
	case Dropout:
		return "dropout"
	case Noise:
		return "noise"
	case Softmax:
		return "softmax"
	case Recurrent:
		return "recurrent"
	case LSTM:
		return "lstm"
	case MaxPool:
		return "maxpool"
	case Convolutional:
		return "convolutional"
	case AvgPool:
		return "avgpool"
	case Upsample:
		return "upsample"
	}
	return "unknown"
}

// ErrCorrupt reports a damaged layer encoding.
var ErrCorrupt = errors.New("layer: corrupt")

// WeightMax clamps the magnitude of evolved weights and biases.
const WeightMax = 10

// EtaMax and EtaMin bound evolved gradient-descent rates.
const (
	EtaMax = 0.1
	EtaMin = 0.0001
)

// Opt is a bitmask of the permissions granted to a layer.
type Opt uint32

const (
	EvolveWeights Opt = 1 << iota
	EvolveNeurons
	EvolveFunctions
	EvolveEta
	EvolveConnect
	SGDWeights
)

// Layer is one stage of a neural network. A layer owns its output and delta
// buffers, both of length NOutputs. Exactly one chain position owns a layer
// at a time; Copy is always deep.
type Layer interface {

	// Type returns the variant tag.
	Type() Type

	// NInputs returns the layer's input width.
	NInputs() int

	// NOutputs returns the layer's output width.
	NOutputs() int

	// Output returns the layer-owned output buffer.
	Output() []float64

	// Delta returns the layer-owned error buffer.
	Delta() []float64

	// Forward computes the layer's output from input.
	Forward(input []float64)

	// Backward propagates the layer's delta. It accumulates parameter
	// updates against input and, when delta is non-nil, accumulates the
	// upstream layer's error signal into it.
	Backward(input, delta []float64)

	// Update applies accumulated parameter updates.
	Update()

	// Rand re-randomises the layer's parameters.
	Rand()

	// Mutate evolves the layer and reports whether anything changed.
	Mutate() bool

	// Resize adapts the layer's input width to prev's output width.
	Resize(prev Layer)

	// Copy returns a deep copy.
	Copy() Layer

	// Save writes the layer to w, returning the number of primitive
	// elements written.
	Save(w io.Writer) (int, error)

	// Load reads a layer written by Save, returning the number of
	// primitive elements read.
	Load(r io.Reader) (int, error)

	// String returns a one-line description.
	String() string
}

// Weighted is implemented by variants that carry trainable weights and
// therefore contribute to model-size accounting.
type Weighted interface {
	Layer

	// NActive returns the number of enabled connections.
	NActive() int
}

// FromType returns an empty layer of variant t, ready for Load.
func FromType(t Type) (Layer, error) {
	switch t {
	case Connected:
		return &connected{}, nil
	case Dropout:
		return &dropout{}, nil
	case Noise:
		return &noise{}, nil
	case Softmax:
		return &softmax{}, nil
	case Recurrent:
		return &recurrent{}, nil
	}
	return nil, errors.Errorf("layer: variant not implemented: %s", t)
}
