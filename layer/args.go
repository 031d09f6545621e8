package layer

import "io"

import "github.com/nantogmas92/xcsf/serial"
import "github.com/pkg/errors"

// ErrBadArgs reports an invalid layer argument list.
var ErrBadArgs = errors.New("layer: bad arguments")

// Args describes how to construct one layer. A slice of Args, ordered from
// the input end to the output end, describes a whole chain.
type Args struct {
	Type              Type
	NInputs           int
	NInit             int
	NMax              int
	MaxNeuronGrow     int
	Function          Activation
	RecurrentFunction Activation
	Height            int
	Width             int
	Channels          int
	Size              int
	Stride            int
	Pad               int
	Eta               float64
	EtaMin            float64
	Momentum          float64
	Decay             float64
	Probability       float64
	Scale             float64
	EvolveWeights     bool
	EvolveNeurons     bool
	EvolveFunctions   bool
	EvolveEta         bool
	EvolveConnect     bool
	SGDWeights        bool
}

// Copy returns a copy of the argument record.
func (a *Args) Copy() *Args {
	c := *a
	return &c
}

// Opt returns the permission bitmask granted by the arguments.
func (a *Args) Opt() (o Opt) {
	if a.EvolveWeights {
		o |= EvolveWeights
	}
	if a.EvolveNeurons {
		o |= EvolveNeurons
	}
	if a.EvolveFunctions {
		o |= EvolveFunctions
	}
	if a.EvolveEta {
		o |= EvolveEta
	}
	if a.EvolveConnect {
		o |= EvolveConnect
	}
	if a.SGDWeights {
		o |= SGDWeights
	}
	return o
}

// receivesImages reports whether the variant consumes channel*height*width
// shaped input.
func receivesImages(t Type) bool {
	switch t {
	case Convolutional, MaxPool, AvgPool, Upsample:
		return true
	}
	return false
}

// Validate checks a layer argument list, repairing what the original
// repaired (flat input counts derived from image shapes and vice versa,
// n_max clamped up to n_init) and rejecting what it rejected.
func Validate(args []*Args) error {
	if len(args) == 0 {
		return errors.Wrap(ErrBadArgs, "empty layer argument list")
	}
	first := args[0]
	if first.Type == Dropout || first.Type == Noise {
		if first.NInputs < 1 {
			first.NInputs = first.Channels * first.Height * first.Width
		} else if first.Channels < 1 || first.Height < 1 || first.Width < 1 {
			first.Channels = 1
			first.Height = 1
			first.Width = first.NInputs
		}
	}
	if receivesImages(first.Type) {
		if first.Channels < 1 {
			return errors.Wrap(ErrBadArgs, "input channels < 1")
		}
		if first.Height < 1 {
			return errors.Wrap(ErrBadArgs, "input height < 1")
		}
		if first.Width < 1 {
			return errors.Wrap(ErrBadArgs, "input width < 1")
		}
	} else if first.NInputs < 1 {
		return errors.Wrap(ErrBadArgs, "number of inputs < 1")
	}
	for _, a := range args {
		if a.EvolveNeurons && a.MaxNeuronGrow < 1 {
			return errors.Wrap(ErrBadArgs, "evolving neurons but max neuron grow < 1")
		}
		if a.NMax < a.NInit {
			a.NMax = a.NInit
		}
	}
	return nil
}

// FromArgs constructs a layer of the variant named by a.Type.
func FromArgs(a *Args) (Layer, error) {
	switch a.Type {
	case Connected:
		return newConnected(a), nil
	case Recurrent:
		return newRecurrent(a), nil
	case Dropout:
		return newDropout(a), nil
	case Noise:
		return newNoise(a), nil
	case Softmax:
		return newSoftmax(a), nil
	}
	return nil, errors.Errorf("layer: variant not implemented: %s", a.Type)
}

// SaveArgs writes a layer argument list to w, returning the number of
// primitive elements written.
func SaveArgs(args []*Args, w io.Writer) (int, error) {
	sw := serial.NewWriter(w)
	sw.PutInt(len(args))
	for _, a := range args {
		sw.PutInt(int(a.Type))
		sw.PutInt(a.NInputs)
		sw.PutInt(a.NInit)
		sw.PutInt(a.NMax)
		sw.PutInt(a.MaxNeuronGrow)
		sw.PutInt(int(a.Function))
		sw.PutInt(int(a.RecurrentFunction))
		sw.PutInt(a.Height)
		sw.PutInt(a.Width)
		sw.PutInt(a.Channels)
		sw.PutInt(a.Size)
		sw.PutInt(a.Stride)
		sw.PutInt(a.Pad)
		sw.PutFloat(a.Eta)
		sw.PutFloat(a.EtaMin)
		sw.PutFloat(a.Momentum)
		sw.PutFloat(a.Decay)
		sw.PutFloat(a.Probability)
		sw.PutFloat(a.Scale)
		sw.PutBool(a.EvolveWeights)
		sw.PutBool(a.EvolveNeurons)
		sw.PutBool(a.EvolveFunctions)
		sw.PutBool(a.EvolveEta)
		sw.PutBool(a.EvolveConnect)
		sw.PutBool(a.SGDWeights)
	}
	return sw.Count(), sw.Err()
}

// LoadArgs reads a layer argument list written by SaveArgs, returning the
// list and the number of primitive elements read.
func LoadArgs(r io.Reader) ([]*Args, int, error) {
	sr := serial.NewReader(r)
	n := sr.Int()
	if err := sr.Err(); err != nil {
		return nil, sr.Count(), err
	}
	if n < 1 {
		return nil, sr.Count(), errors.Wrapf(ErrCorrupt, "args load bad count: %d", n)
	}
	args := make([]*Args, 0, n)
	for i := 0; i < n; i++ {
		a := new(Args)
		a.Type = Type(sr.Int())
		a.NInputs = sr.Int()
		a.NInit = sr.Int()
		a.NMax = sr.Int()
		a.MaxNeuronGrow = sr.Int()
		a.Function = Activation(sr.Int())
		a.RecurrentFunction = Activation(sr.Int())
		a.Height = sr.Int()
		a.Width = sr.Int()
		a.Channels = sr.Int()
		a.Size = sr.Int()
		a.Stride = sr.Int()
		a.Pad = sr.Int()
		a.Eta = sr.Float()
		a.EtaMin = sr.Float()
		a.Momentum = sr.Float()
		a.Decay = sr.Float()
		a.Probability = sr.Float()
		a.Scale = sr.Float()
		a.EvolveWeights = sr.Bool()
		a.EvolveNeurons = sr.Bool()
		a.EvolveFunctions = sr.Bool()
		a.EvolveEta = sr.Bool()
		a.EvolveConnect = sr.Bool()
		a.SGDWeights = sr.Bool()
		args = append(args, a)
	}
	return args, sr.Count(), sr.Err()
}
