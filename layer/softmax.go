package layer

import "fmt"
import "io"
import "math"

import "github.com/nantogmas92/xcsf/serial"
import "github.com/pkg/errors"

// softmax normalises inputs into a probability distribution with a fixed
// temperature.
type softmax struct {
	nInputs int
	scale   float64 // temperature
	output  []float64
	delta   []float64
}

func newSoftmax(a *Args) *softmax {
	l := &softmax{
		nInputs: a.NInputs,
		scale:   a.Scale,
	}
	if l.scale <= 0 {
		l.scale = 1
	}
	l.alloc()
	return l
}

func (l *softmax) alloc() {
	l.output = make([]float64, l.nInputs)
	l.delta = make([]float64, l.nInputs)
}

func (l *softmax) Type() Type        { return Softmax }
func (l *softmax) NInputs() int      { return l.nInputs }
func (l *softmax) NOutputs() int     { return l.nInputs }
func (l *softmax) Output() []float64 { return l.output }
func (l *softmax) Delta() []float64  { return l.delta }
func (l *softmax) Rand()             {}
func (l *softmax) Mutate() bool      { return false }
func (l *softmax) Update()           {}

func (l *softmax) Forward(input []float64) {
	largest := math.Inf(-1)
	for _, v := range input {
		if v > largest {
			largest = v
		}
	}
	sum := 0.0
	for i, v := range input {
		e := math.Exp(v/l.scale - largest/l.scale)
		sum += e
		l.output[i] = e
	}
	for i := range l.output {
		l.output[i] /= sum
	}
}

func (l *softmax) Backward(input, delta []float64) {
	if delta == nil {
		return
	}
	for i := range l.delta {
		delta[i] += l.delta[i]
	}
}

func (l *softmax) Resize(prev Layer) {
	l.nInputs = prev.NOutputs()
	l.alloc()
}

func (l *softmax) Copy() Layer {
	c := *l
	c.output = append([]float64(nil), l.output...)
	c.delta = append([]float64(nil), l.delta...)
	return &c
}

func (l *softmax) Save(w io.Writer) (int, error) {
	sw := serial.NewWriter(w)
	sw.PutInt(l.nInputs)
	sw.PutFloat(l.scale)
	return sw.Count(), sw.Err()
}

func (l *softmax) Load(r io.Reader) (int, error) {
	sr := serial.NewReader(r)
	l.nInputs = sr.Int()
	l.scale = sr.Float()
	if err := sr.Err(); err != nil {
		return sr.Count(), err
	}
	if l.nInputs < 1 || l.scale <= 0 {
		return sr.Count(), errors.Wrapf(ErrCorrupt,
			"softmax load bad shape: %d scale=%f", l.nInputs, l.scale)
	}
	l.alloc()
	return sr.Count(), nil
}

func (l *softmax) String() string {
	return fmt.Sprintf("softmax nInputs=%d scale=%f", l.nInputs, l.scale)
}
