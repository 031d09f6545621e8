package layer

import "fmt"
import "io"
import "math/rand"

import "github.com/nantogmas92/xcsf/serial"
import "github.com/pkg/errors"

// dropout randomly zeroes inputs with a fixed probability, scaling the
// survivors to preserve the expected sum.
type dropout struct {
	nInputs     int
	probability float64
	scale       float64
	keep        []bool
	output      []float64
	delta       []float64
}

func newDropout(a *Args) *dropout {
	l := &dropout{
		nInputs:     a.NInputs,
		probability: a.Probability,
	}
	l.alloc()
	return l
}

func (l *dropout) alloc() {
	l.scale = 1
	if l.probability < 1 {
		l.scale = 1 / (1 - l.probability)
	}
	l.keep = make([]bool, l.nInputs)
	l.output = make([]float64, l.nInputs)
	l.delta = make([]float64, l.nInputs)
}

func (l *dropout) Type() Type        { return Dropout }
func (l *dropout) NInputs() int      { return l.nInputs }
func (l *dropout) NOutputs() int     { return l.nInputs }
func (l *dropout) Output() []float64 { return l.output }
func (l *dropout) Delta() []float64  { return l.delta }
func (l *dropout) Rand()             {}
func (l *dropout) Mutate() bool      { return false }
func (l *dropout) Update()           {}

func (l *dropout) Forward(input []float64) {
	for i := range l.output {
		l.keep[i] = rand.Float64() >= l.probability
		if l.keep[i] {
			l.output[i] = input[i] * l.scale
		} else {
			l.output[i] = 0
		}
	}
}

func (l *dropout) Backward(input, delta []float64) {
	if delta == nil {
		return
	}
	for i := range l.delta {
		if l.keep[i] {
			delta[i] += l.delta[i] * l.scale
		}
	}
}

func (l *dropout) Resize(prev Layer) {
	l.nInputs = prev.NOutputs()
	l.alloc()
}

func (l *dropout) Copy() Layer {
	c := *l
	c.keep = append([]bool(nil), l.keep...)
	c.output = append([]float64(nil), l.output...)
	c.delta = append([]float64(nil), l.delta...)
	return &c
}

func (l *dropout) Save(w io.Writer) (int, error) {
	sw := serial.NewWriter(w)
	sw.PutInt(l.nInputs)
	sw.PutFloat(l.probability)
	return sw.Count(), sw.Err()
}

func (l *dropout) Load(r io.Reader) (int, error) {
	sr := serial.NewReader(r)
	l.nInputs = sr.Int()
	l.probability = sr.Float()
	if err := sr.Err(); err != nil {
		return sr.Count(), err
	}
	if l.nInputs < 1 || l.probability < 0 || l.probability >= 1 {
		return sr.Count(), errors.Wrapf(ErrCorrupt,
			"dropout load bad shape: %d p=%f", l.nInputs, l.probability)
	}
	l.alloc()
	return sr.Count(), nil
}

func (l *dropout) String() string {
	return fmt.Sprintf("dropout nInputs=%d probability=%f", l.nInputs, l.probability)
}
