package layer

import "fmt"
import "io"
import "math/rand"

import "github.com/nantogmas92/xcsf/sam"
import "github.com/nantogmas92/xcsf/serial"
import "github.com/pkg/errors"
import "gonum.org/v1/gonum/floats"

// Mutation-rate slots for weighted variants.
const (
	muWeights = iota
	muNeurons
	muConnect
	muFunction
	muEta

	nMuWeighted
)

var weightedMu = [nMuWeighted]sam.Method{
	sam.LogNormal, sam.LogNormal, sam.LogNormal, sam.LogNormal, sam.LogNormal,
}

// connected is a fully-connected layer with an evolvable connection mask.
type connected struct {
	nInputs  int
	nOutputs int
	nMax     int
	maxGrow  int
	nActive  int
	function Activation
	opts     Opt

	eta      float64
	etaMax   float64
	etaMin   float64
	momentum float64
	decay    float64

	weights       []float64 // nOutputs rows by nInputs columns
	active        []bool
	biases        []float64
	weightUpdates []float64
	biasUpdates   []float64
	state         []float64
	output        []float64
	delta         []float64
	mu            []float64
}

func newConnected(a *Args) *connected {
	l := &connected{
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

// alloc sizes every buffer to the current shape.
func (l *connected) alloc() {
	n := l.nOutputs * l.nInputs
	l.weights = make([]float64, n)
	l.active = make([]bool, n)
	l.weightUpdates = make([]float64, n)
	l.biases = make([]float64, l.nOutputs)
	l.biasUpdates = make([]float64, l.nOutputs)
	l.state = make([]float64, l.nOutputs)
	l.output = make([]float64, l.nOutputs)
	l.delta = make([]float64, l.nOutputs)
}

func (l *connected) Type() Type        { return Connected }
func (l *connected) NInputs() int      { return l.nInputs }
func (l *connected) NOutputs() int     { return l.nOutputs }
func (l *connected) NActive() int      { return l.nActive }
func (l *connected) Output() []float64 { return l.output }
func (l *connected) Delta() []float64  { return l.delta }

// Rand re-randomises weights and biases and enables every connection.
func (l *connected) Rand() {
	for i := range l.weights {
		l.weights[i] = rand.NormFloat64() * 0.1
		l.active[i] = true
	}
	for i := range l.biases {
		l.biases[i] = rand.NormFloat64() * 0.1
	}
	l.nActive = len(l.weights)
}

func (l *connected) Forward(input []float64) {
	for i := 0; i < l.nOutputs; i++ {
		row := l.weights[i*l.nInputs : (i+1)*l.nInputs]
		act := l.active[i*l.nInputs : (i+1)*l.nInputs]
		sum := l.biases[i]
		for j, w := range row {
			if act[j] {
				sum += w * input[j]
			}
		}
		l.state[i] = sum
		l.output[i] = Activate(l.function, sum)
	}
}

func (l *connected) Backward(input, delta []float64) {
	for i := 0; i < l.nOutputs; i++ {
		d := l.delta[i] * Gradient(l.function, l.state[i])
		l.biasUpdates[i] += d
		off := i * l.nInputs
		for j := 0; j < l.nInputs; j++ {
			if !l.active[off+j] {
				continue
			}
			l.weightUpdates[off+j] += d * input[j]
			if delta != nil {
				delta[j] += l.weights[off+j] * d
			}
		}
	}
}

func (l *connected) Update() {
	if l.opts&SGDWeights == 0 {
		return
	}
	if l.decay > 0 {
		floats.AddScaled(l.weightUpdates, -l.decay, l.weights)
	}
	floats.AddScaled(l.weights, l.eta, l.weightUpdates)
	floats.Scale(l.momentum, l.weightUpdates)
	floats.AddScaled(l.biases, l.eta, l.biasUpdates)
	floats.Scale(l.momentum, l.biasUpdates)
	l.clampParams()
}

func (l *connected) clampParams() {
	for i := range l.weights {
		l.weights[i] = clamp(l.weights[i], -WeightMax, WeightMax)
	}
	for i := range l.biases {
		l.biases[i] = clamp(l.biases[i], -WeightMax, WeightMax)
	}
}

func (l *connected) Mutate() bool {
	sam.Adapt(l.mu, weightedMu[:])
	mod := false
	if l.opts&EvolveEta != 0 && l.mutateEta() {
		mod = true
	}
	if l.opts&EvolveNeurons != 0 && l.mutateNeurons() {
		mod = true
	}
	if l.opts&EvolveConnect != 0 && l.mutateConnect() {
		mod = true
	}
	if l.opts&EvolveWeights != 0 && l.mutateWeights() {
		mod = true
	}
	if l.opts&EvolveFunctions != 0 && l.mutateFunction() {
		mod = true
	}
	return mod
}

func (l *connected) mutateEta() bool {
	orig := l.eta
	l.eta = clamp(l.eta+rand.NormFloat64()*l.mu[muEta], l.etaMin, l.etaMax)
	return l.eta != orig
}

func (l *connected) mutateNeurons() bool {
	if rand.Float64() >= l.mu[muNeurons] {
		return false
	}
	n := 1 + rand.Intn(l.maxGrow)
	if rand.Float64() < 0.5 {
		n = -n
	}
	return l.growNeurons(n)
}

func (l *connected) mutateConnect() bool {
	mod := false
	for i := range l.active {
		if rand.Float64() >= l.mu[muConnect] {
			continue
		}
		if l.active[i] {
			if l.nActive < 2 {
				continue // keep at least one connection
			}
			l.active[i] = false
			l.nActive--
		} else {
			l.active[i] = true
			l.weights[i] = rand.NormFloat64() * 0.1
			l.nActive++
		}
		mod = true
	}
	return mod
}

func (l *connected) mutateWeights() bool {
	mod := false
	for i := range l.weights {
		if l.active[i] && rand.Float64() < l.mu[muWeights] {
			l.weights[i] = clamp(l.weights[i]+rand.NormFloat64()*l.mu[muWeights],
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

func (l *connected) mutateFunction() bool {
	if rand.Float64() >= l.mu[muFunction] {
		return false
	}
	l.function = randActivation(l.function)
	return true
}

// growNeurons adds or removes n output units, clamped to [1, nMax],
// preserving existing rows.
func (l *connected) growNeurons(n int) bool {
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
	copy(l.active, old.active[:rows*l.nInputs])
	copy(l.biases, old.biases[:rows])
	for i := rows * l.nInputs; i < len(l.weights); i++ {
		l.weights[i] = rand.NormFloat64() * 0.1
		l.active[i] = true
	}
	for i := rows; i < l.nOutputs; i++ {
		l.biases[i] = rand.NormFloat64() * 0.1
	}
	l.recountActive()
	return true
}

// Resize adapts the input width to prev's output width, preserving
// overlapping weights.
func (l *connected) Resize(prev Layer) {
	newIn := prev.NOutputs()
	if newIn == l.nInputs {
		return
	}
	old := *l
	l.nInputs = newIn
	l.alloc()
	copy(l.biases, old.biases)
	copy(l.state, old.state)
	copy(l.output, old.output)
	keep := min(newIn, old.nInputs)
	for i := 0; i < l.nOutputs; i++ {
		copy(l.weights[i*newIn:i*newIn+keep], old.weights[i*old.nInputs:i*old.nInputs+keep])
		copy(l.active[i*newIn:i*newIn+keep], old.active[i*old.nInputs:i*old.nInputs+keep])
		for j := keep; j < newIn; j++ {
			l.weights[i*newIn+j] = rand.NormFloat64() * 0.1
			l.active[i*newIn+j] = true
		}
	}
	l.recountActive()
}

func (l *connected) recountActive() {
	l.nActive = 0
	for _, a := range l.active {
		if a {
			l.nActive++
		}
	}
}

func (l *connected) Copy() Layer {
	c := *l
	c.weights = append([]float64(nil), l.weights...)
	c.active = append([]bool(nil), l.active...)
	c.biases = append([]float64(nil), l.biases...)
	c.weightUpdates = append([]float64(nil), l.weightUpdates...)
	c.biasUpdates = append([]float64(nil), l.biasUpdates...)
	c.state = append([]float64(nil), l.state...)
	c.output = append([]float64(nil), l.output...)
	c.delta = append([]float64(nil), l.delta...)
	c.mu = append([]float64(nil), l.mu...)
	return &c
}

func (l *connected) Save(w io.Writer) (int, error) {
	sw := serial.NewWriter(w)
	sw.PutInt(l.nInputs)
	sw.PutInt(l.nOutputs)
	sw.PutInt(l.nMax)
	sw.PutInt(l.maxGrow)
	sw.PutInt(l.nActive)
	sw.PutInt(int(l.function))
	sw.PutInt(int(l.opts))
	sw.PutFloat(l.eta)
	sw.PutFloat(l.etaMax)
	sw.PutFloat(l.etaMin)
	sw.PutFloat(l.momentum)
	sw.PutFloat(l.decay)
	sw.PutFloats(l.biases)
	sw.PutFloats(l.weights)
	sw.PutBools(l.active)
	sw.PutFloats(l.mu)
	return sw.Count(), sw.Err()
}

func (l *connected) Load(r io.Reader) (int, error) {
	sr := serial.NewReader(r)
	l.nInputs = sr.Int()
	l.nOutputs = sr.Int()
	l.nMax = sr.Int()
	l.maxGrow = sr.Int()
	l.nActive = sr.Int()
	l.function = Activation(sr.Int())
	l.opts = Opt(sr.Int())
	if err := sr.Err(); err != nil {
		return sr.Count(), err
	}
	if l.nInputs < 1 || l.nOutputs < 1 || l.nMax < l.nOutputs {
		return sr.Count(), errors.Wrapf(ErrCorrupt,
			"connected load bad shape: %d x %d (max %d)", l.nInputs, l.nOutputs, l.nMax)
	}
	l.eta = sr.Float()
	l.etaMax = sr.Float()
	l.etaMin = sr.Float()
	l.momentum = sr.Float()
	l.decay = sr.Float()
	l.alloc()
	l.biases = sr.Floats(l.nOutputs)
	l.weights = sr.Floats(l.nOutputs * l.nInputs)
	l.active = sr.Bools(l.nOutputs * l.nInputs)
	l.mu = sr.Floats(nMuWeighted)
	return sr.Count(), sr.Err()
}

func (l *connected) String() string {
	return fmt.Sprintf("connected nInputs=%d nOutputs=%d nActive=%d activation=%s eta=%f",
		l.nInputs, l.nOutputs, l.nActive, l.function, l.eta)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
