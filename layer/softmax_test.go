package layer

import "bytes"
import "math"
import "testing"

import "github.com/pkg/errors"

func TestSoftmaxForward(t *testing.T) {
	l := newSoftmax(&Args{Type: Softmax, NInputs: 3, Scale: 1})
	l.Forward([]float64{1, 2, 3})
	sum := 0.0
	for i, o := range l.output {
		if o <= 0 || o >= 1 {
			t.Fatalf("output %d out of (0,1): %f", i, o)
		}
		sum += o
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("outputs sum to %f", sum)
	}
	if !(l.output[2] > l.output[1] && l.output[1] > l.output[0]) {
		t.Fatalf("outputs not monotone in inputs: %v", l.output)
	}
}

// The running maximum is subtracted before exponentiation, so large inputs
// must not overflow.
func TestSoftmaxForwardLargeInputs(t *testing.T) {
	l := newSoftmax(&Args{Type: Softmax, NInputs: 2, Scale: 1})
	l.Forward([]float64{1000, 1001})
	for i, o := range l.output {
		if math.IsNaN(o) || math.IsInf(o, 0) {
			t.Fatalf("output %d = %f", i, o)
		}
	}
	want := 1 / (1 + math.Exp(-1))
	if math.Abs(l.output[1]-want) > 1e-12 {
		t.Fatalf("output = %f, want %f", l.output[1], want)
	}
}

func TestSoftmaxLoadBadScale(t *testing.T) {
	l := newSoftmax(&Args{Type: Softmax, NInputs: 2, Scale: 1})
	var buf bytes.Buffer
	if _, err := l.Save(&buf); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	// zero the stored temperature
	copy(b[4:12], make([]byte, 8))
	got := new(softmax)
	if _, err := got.Load(bytes.NewReader(b)); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
