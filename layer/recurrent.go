package layer

import "fmt"
import "io"
import "math/rand"

import "github.com/nantogmas92/xcsf/sam"
import "github.com/nantogmas92/xcsf/serial"
import "github.com/pkg/errors"
import "gonum.org/v1/gonum/floats"

// recurrent is a connected layer with a hidden-state feedback matrix: each
// forward pass feeds the previous pass's output back in alongside the input.
type recurrent struct {
	nInputs  int
	nOutputs int
	nMax     int
	maxGrow  int
	function Activation
	opts     Opt

	eta      float64
	etaMax   float64
	etaMin   float64
	momentum float64
	decay    float64

	weights        []float64 // nOutputs by nInputs
	uWeights       []float64 // nOutputs by nOutputs feedback
	biases         []float64
	weightUpdates  []float64
	uWeightUpdates []float64
	biasUpdates    []float64
	state          []float64
	output         []float64
	delta          []float64
	prevOutput     []float64 // feedback consumed by the next forward pass
	feedback       []float64 // feedback consumed by the last forward pass
	mu             []float64
}

func newRecurrent(a *Args) *recurrent {
	l := &recurrent{
		nInputs:  a.NInputs,
		nOutputs: a.NInit,
		nMax:     a.NMax,
		maxGrow:  a.MaxNeuronGrow,
		function: a.Function,
		opts:     a.Opt(),
		eta:      a.Eta,
		etaMax:   a.Eta,
		etaMin:   a.EtaMin,
		momentum: a.Momentum,
		decay:    a.Decay,
	}
	if l.nOutputs < 1 {
		l.nOutputs = 1
	}
	if l.nMax < l.nOutputs {
		l.nMax = l.nOutputs
	}
	if l.etaMin <= 0 {
		l.etaMin = EtaMin
	}
	l.alloc()
	l.mu = make([]float64, nMuWeighted)
	sam.Init(l.mu, weightedMu[:])
	l.Rand()
	return l
}

func (l *recurrent) alloc() {
	l.weights = make([]float64, l.nOutputs*l.nInputs)
	l.weightUpdates = make([]float64, l.nOutputs*l.nInputs)
	l.uWeights = make([]float64, l.nOutputs*l.nOutputs)
	l.uWeightUpdates = make([]float64, l.nOutputs*l.nOutputs)
	l.biases = make([]float64, l.nOutputs)
	l.biasUpdates = make([]float64, l.nOutputs)
	l.state = make([]float64, l.nOutputs)
	l.output = make([]float64, l.nOutputs)
	l.delta = make([]float64, l.nOutputs)
	l.prevOutput = make([]float64, l.nOutputs)
	l.feedback = make([]float64, l.nOutputs)
}

func (l *recurrent) Type() Type        { return Recurrent }
func (l *recurrent) NInputs() int      { return l.nInputs }
func (l *recurrent) NOutputs() int     { return l.nOutputs }
func (l *recurrent) NActive() int      { return len(l.weights) + len(l.uWeights) }
func (l *recurrent) Output() []float64 { return l.output }
func (l *recurrent) Delta() []float64  { return l.delta }

func (l *recurrent) Rand() {
	for i := range l.weights {
		l.weights[i] = rand.NormFloat64() * 0.1
	}
	for i := range l.uWeights {
		l.uWeights[i] = rand.NormFloat64() * 0.1
	}
	for i := range l.biases {
		l.biases[i] = rand.NormFloat64() * 0.1
	}
}

func (l *recurrent) Forward(input []float64) {
	copy(l.feedback, l.prevOutput)
	for i := 0; i < l.nOutputs; i++ {
		sum := l.biases[i]
		sum += floats.Dot(l.weights[i*l.nInputs:(i+1)*l.nInputs], input)
		sum += floats.Dot(l.uWeights[i*l.nOutputs:(i+1)*l.nOutputs], l.feedback)
		l.state[i] = sum
		l.output[i] = Activate(l.function, sum)
	}
	copy(l.prevOutput, l.output)
}

func (l *recurrent) Backward(input, delta []float64) {
	for i := 0; i < l.nOutputs; i++ {
		d := l.delta[i] * Gradient(l.function, l.state[i])
		l.biasUpdates[i] += d
		off := i * l.nInputs
		for j := 0; j < l.nInputs; j++ {
			l.weightUpdates[off+j] += d * input[j]
			if delta != nil {
				delta[j] += l.weights[off+j] * d
			}
		}
		uoff := i * l.nOutputs
		for j := 0; j < l.nOutputs; j++ {
			l.uWeightUpdates[uoff+j] += d * l.feedback[j]
		}
	}
}

func (l *recurrent) Update() {
	if l.opts&SGDWeights == 0 {
		return
	}
	if l.decay > 0 {
		floats.AddScaled(l.weightUpdates, -l.decay, l.weights)
		floats.AddScaled(l.uWeightUpdates, -l.decay, l.uWeights)
	}
	floats.AddScaled(l.weights, l.eta, l.weightUpdates)
	floats.Scale(l.momentum, l.weightUpdates)
	floats.AddScaled(l.uWeights, l.eta, l.uWeightUpdates)
	floats.Scale(l.momentum, l.uWeightUpdates)
	floats.AddScaled(l.biases, l.eta, l.biasUpdates)
	floats.Scale(l.momentum, l.biasUpdates)
	for i := range l.weights {
		l.weights[i] = clamp(l.weights[i], -WeightMax, WeightMax)
	}
	for i := range l.uWeights {
		l.uWeights[i] = clamp(l.uWeights[i], -WeightMax, WeightMax)
	}
	for i := range l.biases {
		l.biases[i] = clamp(l.biases[i], -WeightMax, WeightMax)
	}
}

func (l *recurrent) Mutate() bool {
	sam.Adapt(l.mu, weightedMu[:])
	mod := false
	if l.opts&EvolveEta != 0 {
		orig := l.eta
		l.eta = clamp(l.eta+rand.NormFloat64()*l.mu[muEta], l.etaMin, l.etaMax)
		if l.eta != orig {
			mod = true
		}
	}
	if l.opts&EvolveNeurons != 0 && rand.Float64() < l.mu[muNeurons] {
		n := 1 + rand.Intn(l.maxGrow)
		if rand.Float64() < 0.5 {
			n = -n
		}
		if l.growNeurons(n) {
			mod = true
		}
	}
	if l.opts&EvolveWeights != 0 && l.mutateWeights() {
		mod = true
	}
	if l.opts&EvolveFunctions != 0 && rand.Float64() < l.mu[muFunction] {
		l.function = randActivation(l.function)
		mod = true
	}
	return mod
}

func (l *recurrent) mutateWeights() bool {
	mod := false
	for i := range l.weights {
		if rand.Float64() < l.mu[muWeights] {
			l.weights[i] = clamp(l.weights[i]+rand.NormFloat64()*l.mu[muWeights],
				-WeightMax, WeightMax)
			mod = true
		}
	}
	for i := range l.uWeights {
		if rand.Float64() < l.mu[muWeights] {
			l.uWeights[i] = clamp(l.uWeights[i]+rand.NormFloat64()*l.mu[muWeights],
				-WeightMax, WeightMax)
			mod = true
		}
	}
	for i := range l.biases {
		if rand.Float64() < l.mu[muWeights] {
			l.biases[i] = clamp(l.biases[i]+rand.NormFloat64()*l.mu[muWeights],
				-WeightMax, WeightMax)
			mod = true
		}
	}
	return mod
}

func (l *recurrent) growNeurons(n int) bool {
	newN := l.nOutputs + n
	if newN < 1 {
		newN = 1
	} else if newN > l.nMax {
		newN = l.nMax
	}
	if newN == l.nOutputs {
		return false
	}
	old := *l
	l.nOutputs = newN
	l.alloc()
	rows := min(newN, old.nOutputs)
	copy(l.weights, old.weights[:rows*l.nInputs])
	copy(l.biases, old.biases[:rows])
	copy(l.prevOutput, old.prevOutput[:rows])
	for i := 0; i < rows; i++ {
		copy(l.uWeights[i*newN:i*newN+rows], old.uWeights[i*old.nOutputs:i*old.nOutputs+rows])
		for j := rows; j < newN; j++ {
			l.uWeights[i*newN+j] = rand.NormFloat64() * 0.1
		}
	}
	for i := rows * l.nInputs; i < len(l.weights); i++ {
		l.weights[i] = rand.NormFloat64() * 0.1
	}
	for i := rows * newN; i < len(l.uWeights); i++ {
		l.uWeights[i] = rand.NormFloat64() * 0.1
	}
	for i := rows; i < newN; i++ {
		l.biases[i] = rand.NormFloat64() * 0.1
	}
	return true
}

func (l *recurrent) Resize(prev Layer) {
	newIn := prev.NOutputs()
	if newIn == l.nInputs {
		return
	}
	old := *l
	oldIn := l.nInputs
	l.nInputs = newIn
	l.weights = make([]float64, l.nOutputs*newIn)
	l.weightUpdates = make([]float64, l.nOutputs*newIn)
	keep := min(newIn, oldIn)
	for i := 0; i < l.nOutputs; i++ {
		copy(l.weights[i*newIn:i*newIn+keep], old.weights[i*oldIn:i*oldIn+keep])
		for j := keep; j < newIn; j++ {
			l.weights[i*newIn+j] = rand.NormFloat64() * 0.1
		}
	}
}

func (l *recurrent) Copy() Layer {
	c := *l
	c.weights = append([]float64(nil), l.weights...)
	c.uWeights = append([]float64(nil), l.uWeights...)
	c.biases = append([]float64(nil), l.biases...)
	c.weightUpdates = append([]float64(nil), l.weightUpdates...)
	c.uWeightUpdates = append([]float64(nil), l.uWeightUpdates...)
	c.biasUpdates = append([]float64(nil), l.biasUpdates...)
	c.state = append([]float64(nil), l.state...)
	c.output = append([]float64(nil), l.output...)
	c.delta = append([]float64(nil), l.delta...)
	c.prevOutput = append([]float64(nil), l.prevOutput...)
	c.feedback = append([]float64(nil), l.feedback...)
	c.mu = append([]float64(nil), l.mu...)
	return &c
}

func (l *recurrent) Save(w io.Writer) (int, error) {
	sw := serial.NewWriter(w)
	sw.PutInt(l.nInputs)
	sw.PutInt(l.nOutputs)
	sw.PutInt(l.nMax)
	sw.PutInt(l.maxGrow)
	sw.PutInt(int(l.function))
	sw.PutInt(int(l.opts))
	sw.PutFloat(l.eta)
	sw.PutFloat(l.etaMax)
	sw.PutFloat(l.etaMin)
	sw.PutFloat(l.momentum)
	sw.PutFloat(l.decay)
	sw.PutFloats(l.biases)
	sw.PutFloats(l.weights)
	sw.PutFloats(l.uWeights)
	sw.PutFloats(l.prevOutput)
	sw.PutFloats(l.mu)
	return sw.Count(), sw.Err()
}

func (l *recurrent) Load(r io.Reader) (int, error) {
	sr := serial.NewReader(r)
	l.nInputs = sr.Int()
	l.nOutputs = sr.Int()
	l.nMax = sr.Int()
	l.maxGrow = sr.Int()
	l.function = Activation(sr.Int())
	l.opts = Opt(sr.Int())
	if err := sr.Err(); err != nil {
		return sr.Count(), err
	}
	if l.nInputs < 1 || l.nOutputs < 1 || l.nMax < l.nOutputs {
		return sr.Count(), errors.Wrapf(ErrCorrupt,
			"recurrent load bad shape: %d x %d (max %d)", l.nInputs, l.nOutputs, l.nMax)
	}
	l.eta = sr.Float()
	l.etaMax = sr.Float()
	l.etaMin = sr.Float()
	l.momentum = sr.Float()
	l.decay = sr.Float()
	l.alloc()
	l.biases = sr.Floats(l.nOutputs)
	l.weights = sr.Floats(l.nOutputs * l.nInputs)
	l.uWeights = sr.Floats(l.nOutputs * l.nOutputs)
	l.prevOutput = sr.Floats(l.nOutputs)
	l.mu = sr.Floats(nMuWeighted)
	return sr.Count(), sr.Err()
}

func (l *recurrent) String() string {
	return fmt.Sprintf("recurrent nInputs=%d nOutputs=%d activation=%s eta=%f",
		l.nInputs, l.nOutputs, l.function, l.eta)
}
