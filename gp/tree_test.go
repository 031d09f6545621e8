package gp

import "bytes"
import "encoding/binary"
import "math/rand"
import "sort"
import "testing"

import "github.com/pkg/errors"

func testPool(t *testing.T) *Pool {
	t.Helper()
	pool, err := NewPool(100, 4, 5, -1, 1)
	if err != nil {
		t.Fatal(err)
	}
	return pool
}

// Every generated tree must be complete: a traversal from position 0
// consumes exactly the whole code array.
func TestRandCompleteness(t *testing.T) {
	rand.Seed(1)
	pool := testPool(t)
	for i := 0; i < 1000; i++ {
		tr := Rand(pool)
		if tr.Len() < 3 {
			t.Fatalf("tree %d: root not an operator, len %d", i, tr.Len())
		}
		n, err := tr.Traverse(0)
		if err != nil {
			t.Fatalf("tree %d: %v", i, err)
		}
		if n != tr.Len() {
			t.Fatalf("tree %d: traversal consumed %d of %d", i, n, tr.Len())
		}
	}
}

func TestTraverseSubtrees(t *testing.T) {
	// (IN:0 + (2.0 * IN:1)) over a pool with two constants
	tr := &Tree{tree: []int{Add, 6, Mul, 4, 7}, mu: []float64{0.1}}
	for _, tc := range []struct{ p, want int }{
		{0, 5}, // whole tree
		{1, 2}, // IN:0
		{2, 5}, // (2.0 * IN:1)
		{3, 4}, // 2.0
		{4, 5}, // IN:1
	} {
		n, err := tr.Traverse(tc.p)
		if err != nil {
			t.Fatal(err)
		}
		if n != tc.want {
			t.Errorf("traverse(%d) = %d, want %d", tc.p, n, tc.want)
		}
	}
}

func TestTraverseCorrupt(t *testing.T) {
	tr := &Tree{tree: []int{-1, 4, 4}, mu: []float64{0.1}}
	if _, err := tr.Traverse(0); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	// incomplete: operator missing its second operand
	tr = &Tree{tree: []int{Add, 4}, mu: []float64{0.1}}
	if _, err := tr.Traverse(0); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

// A sum of the two shared constants ignores the input entirely.
func TestEvalConstants(t *testing.T) {
	pool := &Pool{cons: []float64{2, 3}, nInputs: 1, initDepth: 2}
	tr := &Tree{tree: []int{Add, 4, 5}, mu: []float64{0.1}}
	for _, x := range []float64{0, 1, -7.5} {
		v, err := tr.Eval(pool, []float64{x})
		if err != nil {
			t.Fatal(err)
		}
		if v != 5 {
			t.Fatalf("eval = %f, want 5", v)
		}
	}
}

// Division by an operand equal to zero returns the numerator unchanged.
func TestEvalProtectedDivision(t *testing.T) {
	pool := &Pool{cons: []float64{2, 3}, nInputs: 2, initDepth: 2}
	tr := &Tree{tree: []int{Div, 6, 7}, mu: []float64{0.1}}
	v, err := tr.Eval(pool, []float64{5, 0})
	if err != nil {
		t.Fatal(err)
	}
	if v != 5 {
		t.Fatalf("protected division = %f, want 5", v)
	}
	v, err = tr.Eval(pool, []float64{5, 2})
	if err != nil {
		t.Fatal(err)
	}
	if v != 2.5 {
		t.Fatalf("division = %f, want 2.5", v)
	}
}

func TestEvalOperators(t *testing.T) {
	pool := &Pool{cons: []float64{2, 3}, nInputs: 1, initDepth: 2}
	for _, tc := range []struct {
		op   int
		want float64
	}{
		{Add, 5},
		{Sub, -1},
		{Mul, 6},
		{Div, 2.0 / 3.0},
	} {
		tr := &Tree{tree: []int{tc.op, 4, 5}, mu: []float64{0.1}}
		v, err := tr.Eval(pool, []float64{0})
		if err != nil {
			t.Fatal(err)
		}
		if v != tc.want {
			t.Errorf("op %d = %f, want %f", tc.op, v, tc.want)
		}
	}
}

func TestEvalCorrupt(t *testing.T) {
	pool := &Pool{cons: []float64{2}, nInputs: 1, initDepth: 2}
	tr := &Tree{tree: []int{Add, 4}, mu: []float64{0.1}}
	if _, err := tr.Eval(pool, []float64{0}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestString(t *testing.T) {
	pool := &Pool{cons: []float64{2, 3}, nInputs: 2, initDepth: 2}
	tr := &Tree{tree: []int{Add, 6, Mul, 4, 7}, mu: []float64{0.1}}
	s, err := tr.String(pool)
	if err != nil {
		t.Fatal(err)
	}
	want := "(IN:0 + (2.000000 * IN:1))"
	if s != want {
		t.Fatalf("String = %q, want %q", s, want)
	}
}

// Crossover must conserve the node multiset of the two parents and leave
// both children complete.
func TestCrossoverConservation(t *testing.T) {
	rand.Seed(2)
	pool := testPool(t)
	for i := 0; i < 500; i++ {
		t1 := Rand(pool)
		t2 := Rand(pool)
		before := append(append([]int(nil), t1.tree...), t2.tree...)
		if err := Crossover(t1, t2); err != nil {
			t.Fatal(err)
		}
		after := append(append([]int(nil), t1.tree...), t2.tree...)
		sort.Ints(before)
		sort.Ints(after)
		if len(before) != len(after) {
			t.Fatalf("crossover changed total node count: %d != %d", len(before), len(after))
		}
		for j := range before {
			if before[j] != after[j] {
				t.Fatal("crossover changed the node multiset")
			}
		}
		for _, tr := range []*Tree{t1, t2} {
			n, err := tr.Traverse(0)
			if err != nil {
				t.Fatal(err)
			}
			if n != tr.Len() {
				t.Fatalf("child traversal consumed %d of %d", n, tr.Len())
			}
		}
	}
}

// Point mutation may only exchange terminals for terminals and operators for
// operators.
func TestMutatePreservesStructure(t *testing.T) {
	rand.Seed(3)
	pool := testPool(t)
	terminalMax := pool.terminalMax()
	for i := 0; i < 200; i++ {
		tr := Rand(pool)
		orig := append([]int(nil), tr.tree...)
		changed := tr.Mutate(pool)
		diff := false
		for j := range orig {
			if orig[j] != tr.tree[j] {
				diff = true
			}
			wasOp := orig[j] < NumFuncs
			isOp := tr.tree[j] < NumFuncs
			if wasOp != isOp {
				t.Fatal("mutation changed node arity")
			}
			if tr.tree[j] < 0 || tr.tree[j] >= terminalMax {
				t.Fatalf("mutation produced invalid code %d", tr.tree[j])
			}
		}
		if diff && !changed {
			t.Fatal("mutation changed codes but reported no change")
		}
	}
}

func TestCopyIndependence(t *testing.T) {
	rand.Seed(4)
	pool := testPool(t)
	tr := Rand(pool)
	before := append([]int(nil), tr.tree...)
	muBefore := append([]float64(nil), tr.mu...)
	cp := tr.Copy()
	for i := 0; i < 20; i++ {
		cp.Mutate(pool)
	}
	cp.tree[0] = Add
	cp.mu[0] = 1
	for i := range before {
		if tr.tree[i] != before[i] {
			t.Fatal("mutating a copy changed the source codes")
		}
	}
	for i := range muBefore {
		if tr.mu[i] != muBefore[i] {
			t.Fatal("mutating a copy changed the source mutation rates")
		}
	}
}

// Save then load must reproduce bit-identical evaluation.
func TestSaveLoadRoundTrip(t *testing.T) {
	rand.Seed(5)
	pool := testPool(t)
	x := []float64{0.5, -1.5, 2.25, 0}
	for i := 0; i < 100; i++ {
		tr := Rand(pool)
		var buf bytes.Buffer
		wrote, err := tr.Save(&buf)
		if err != nil {
			t.Fatal(err)
		}
		var got Tree
		read, err := got.Load(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if wrote != read {
			t.Fatalf("wrote %d elements, read %d", wrote, read)
		}
		want, err := tr.Eval(pool, x)
		if err != nil {
			t.Fatal(err)
		}
		have, err := got.Eval(pool, x)
		if err != nil {
			t.Fatal(err)
		}
		if want != have {
			t.Fatalf("round trip eval %v != %v", have, want)
		}
	}
}

// A stored length below one is corruption, never a zero-length tree.
func TestLoadBadLength(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(0)) // cursor
	binary.Write(&buf, binary.LittleEndian, int32(0)) // length
	var tr Tree
	if _, err := tr.Load(&buf); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	buf.Reset()
	binary.Write(&buf, binary.LittleEndian, int32(0))
	binary.Write(&buf, binary.LittleEndian, int32(MaxLen+1))
	if _, err := tr.Load(&buf); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestLoadTruncated(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(0))
	var tr Tree
	if _, err := tr.Load(&buf); err == nil {
		t.Fatal("expected error loading truncated stream")
	}
}

func TestNewPoolValidation(t *testing.T) {
	if _, err := NewPool(0, 1, 5, -1, 1); err == nil {
		t.Fatal("expected error for zero constants")
	}
	if _, err := NewPool(10, 0, 5, -1, 1); err == nil {
		t.Fatal("expected error for zero inputs")
	}
	if _, err := NewPool(10, 1, 0, -1, 1); err == nil {
		t.Fatal("expected error for zero depth")
	}
	pool, err := NewPool(10, 2, 5, -1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if pool.NumConstants() != 10 || pool.NumInputs() != 2 {
		t.Fatal("pool shape mismatch")
	}
	for i := 0; i < pool.NumConstants(); i++ {
		if c := pool.Constant(i); c < -1 || c > 1 {
			t.Fatalf("constant %d out of range: %f", i, c)
		}
	}
}
