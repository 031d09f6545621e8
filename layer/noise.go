package layer

import "fmt"
import "io"
import "math/rand"

import "github.com/nantogmas92/xcsf/serial"
import "github.com/pkg/errors"

// noise perturbs inputs with additive gaussian noise.
type noise struct {
	nInputs     int
	probability float64 // chance each input is perturbed
	scale       float64 // standard deviation of the perturbation
	output      []float64
	delta       []float64
}

func newNoise(a *Args) *noise {
	l := &noise{
		nInputs:     a.NInputs,
		probability: a.Probability,
		scale:       a.Scale,
	}
	l.alloc()
	return l
}

func (l *noise) alloc() {
	l.output = make([]float64, l.nInputs)
	l.delta = make([]float64, l.nInputs)
}

func (l *noise) Type() Type        { return Noise }
func (l *noise) NInputs() int      { return l.nInputs }
func (l *noise) NOutputs() int     { return l.nInputs }
func (l *noise) Output() []float64 { return l.output }
func (l *noise) Delta() []float64  { return l.delta }
func (l *noise) Rand()             {}
func (l *noise) Mutate() bool      { return false }
func (l *noise) Update()           {}

func (l *noise) Forward(input []float64) {
	for i := range l.output {
		l.output[i] = input[i]
		if rand.Float64() < l.probability {
			l.output[i] += rand.NormFloat64() * l.scale
		}
	}
}

func (l *noise) Backward(input, delta []float64) {
	if delta == nil {
		return
	}
	for i := range l.delta {
		delta[i] += l.delta[i]
	}
}

func (l *noise) Resize(prev Layer) {
	l.nInputs = prev.NOutputs()
	l.alloc()
}

func (l *noise) Copy() Layer {
	c := *l
	c.output = append([]float64(nil), l.output...)
	c.delta = append([]float64(nil), l.delta...)
	return &c
}

func (l *noise) Save(w io.Writer) (int, error) {
	sw := serial.NewWriter(w)
	sw.PutInt(l.nInputs)
	sw.PutFloat(l.probability)
	sw.PutFloat(l.scale)
	return sw.Count(), sw.Err()
}

func (l *noise) Load(r io.Reader) (int, error) {
	sr := serial.NewReader(r)
	l.nInputs = sr.Int()
	l.probability = sr.Float()
	l.scale = sr.Float()
	if err := sr.Err(); err != nil {
		return sr.Count(), err
	}
	if l.nInputs < 1 {
		return sr.Count(), errors.Wrapf(ErrCorrupt, "noise load bad shape: %d", l.nInputs)
	}
	l.alloc()
	return sr.Count(), nil
}

func (l *noise) String() string {
	return fmt.Sprintf("noise nInputs=%d probability=%f scale=%f",
		l.nInputs, l.probability, l.scale)
}
