package serial

import "bytes"
import "testing"

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.PutInt(-7)
	w.PutFloat(3.25)
	w.PutBool(true)
	w.PutInts([]int{1, 2, 3})
	w.PutFloats([]float64{0.5, -0.5})
	w.PutBools([]bool{true, false})
	if err := w.Err(); err != nil {
		t.Fatal(err)
	}
	if w.Count() != 10 {
		t.Fatalf("wrote %d elements, want 10", w.Count())
	}

	r := NewReader(&buf)
	if v := r.Int(); v != -7 {
		t.Fatalf("Int = %d", v)
	}
	if v := r.Float(); v != 3.25 {
		t.Fatalf("Float = %f", v)
	}
	if v := r.Bool(); !v {
		t.Fatal("Bool = false")
	}
	ints := r.Ints(3)
	if ints[0] != 1 || ints[1] != 2 || ints[2] != 3 {
		t.Fatalf("Ints = %v", ints)
	}
	floats := r.Floats(2)
	if floats[0] != 0.5 || floats[1] != -0.5 {
		t.Fatalf("Floats = %v", floats)
	}
	bools := r.Bools(2)
	if !bools[0] || bools[1] {
		t.Fatalf("Bools = %v", bools)
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if r.Count() != w.Count() {
		t.Fatalf("read %d elements, wrote %d", r.Count(), w.Count())
	}
}

// The first error sticks: later operations are no-ops and the count freezes.
func TestStickyError(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	r.Int()
	if r.Err() == nil {
		t.Fatal("expected error reading an empty stream")
	}
	n := r.Count()
	r.Float()
	r.Ints(4)
	if r.Count() != n {
		t.Fatal("count advanced after an error")
	}
}

func TestIntWidth(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.PutInt(1)
	if err := w.Err(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 4 {
		t.Fatalf("int encoded as %d bytes, want 4", buf.Len())
	}
}
