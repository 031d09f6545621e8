package gp

import "math/rand"

import "github.com/nantogmas92/xcsf/sam"
import "github.com/pkg/errors"

// nMu is the number of tree mutation rates.
const nMu = 1

var muMethods = [nMu]sam.Method{sam.RateSelect}

// Tree is a prefix-encoded expression tree. The code slice always encodes a
// complete expression: a traversal from position 0 consumes every node.
type Tree struct {
	tree []int
	p    int // read cursor, persisted for compatibility; evaluation never uses it
	mu   []float64
}

// Rand creates a random tree grown against pool, retrying until growth fits
// within MaxLen nodes.
func Rand(pool *Pool) *Tree {
	buf := make([]int, MaxLen)
	n := -1
	for n < 0 {
		n = grow(pool, buf, 0, MaxLen, pool.initDepth)
	}
	t := &Tree{
		tree: append([]int(nil), buf[:n]...),
		mu:   make([]float64, nMu),
	}
	sam.Init(t.mu, muMethods[:])
	return t
}

// grow recursively fills buf with a random prefix expression starting at
// position p, bounded by max nodes and depth levels. It returns the position
// past the grown sub-tree, or -1 if max would be exceeded.
func grow(pool *Pool, buf []int, p, max, depth int) int {
	prim := rand.Intn(2)
	if p >= max {
		return -1
	}
	if p == 0 {
		prim = 1
	}
	if prim == 0 || depth == 0 {
		buf[p] = NumFuncs + rand.Intn(len(pool.cons)+pool.nInputs)
		return p + 1
	}
	buf[p] = rand.Intn(NumFuncs)
	child := grow(pool, buf, p+1, max, depth-1)
	if child < 0 {
		return -1
	}
	return grow(pool, buf, child, max, depth-1)
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.tree)
}

// Traverse returns the position just past the sub-tree rooted at p.
// Terminals consume one slot; operators consume their two operand sub-trees.
func (t *Tree) Traverse(p int) (int, error) {
	if p < 0 || p >= len(t.tree) {
		return 0, errors.Wrapf(ErrCorrupt, "traverse past end: %d", p)
	}
	node := t.tree[p]
	if node >= NumFuncs {
		return p + 1, nil
	}
	switch node {
	case Add, Sub, Mul, Div:
		one, err := t.Traverse(p + 1)
		if err != nil {
			return 0, err
		}
		return t.Traverse(one)
	default:
		return 0, errors.Wrapf(ErrCorrupt, "traverse invalid function: %d", node)
	}
}

// Copy returns a deep copy of the tree.
func (t *Tree) Copy() *Tree {
	return &Tree{
		tree: append([]int(nil), t.tree...),
		p:    t.p,
		mu:   append([]float64(nil), t.mu...),
	}
}

// Crossover splices a random sub-tree of each parent into the other,
// replacing both parents in place. Tree lengths generally change. The
// completeness of both children is re-validated by a full traversal.
func Crossover(t1, t2 *Tree) error {
	start1 := rand.Intn(len(t1.tree))
	end1, err := t1.Traverse(start1)
	if err != nil {
		return err
	}
	start2 := rand.Intn(len(t2.tree))
	end2, err := t2.Traverse(start2)
	if err != nil {
		return err
	}
	new1 := make([]int, 0, start1+(end2-start2)+(len(t1.tree)-end1))
	new1 = append(new1, t1.tree[:start1]...)
	new1 = append(new1, t2.tree[start2:end2]...)
	new1 = append(new1, t1.tree[end1:]...)
	new2 := make([]int, 0, start2+(end1-start1)+(len(t2.tree)-end2))
	new2 = append(new2, t2.tree[:start2]...)
	new2 = append(new2, t1.tree[start1:end1]...)
	new2 = append(new2, t2.tree[end2:]...)
	t1.tree = new1
	t2.tree = new2
	if n, err := t1.Traverse(0); err != nil {
		return err
	} else if n != len(t1.tree) {
		return errors.Wrapf(ErrCorrupt, "crossover child length %d != %d", n, len(t1.tree))
	}
	if n, err := t2.Traverse(0); err != nil {
		return err
	} else if n != len(t2.tree) {
		return errors.Wrapf(ErrCorrupt, "crossover child length %d != %d", n, len(t2.tree))
	}
	return nil
}

// Mutate adapts the tree's mutation rates, then independently replaces each
// node with probability mu[0]: terminals with random terminals, operators
// with random operators. Arity and structure never change. It reports
// whether anything changed.
func (t *Tree) Mutate(pool *Pool) bool {
	changed := false
	sam.Adapt(t.mu, muMethods[:])
	terminalMax := pool.terminalMax()
	for i := range t.tree {
		if rand.Float64() < t.mu[0] {
			changed = true
			if t.tree[i] >= NumFuncs {
				t.tree[i] = NumFuncs + rand.Intn(terminalMax-NumFuncs)
			} else {
				t.tree[i] = rand.Intn(NumFuncs)
			}
		}
	}
	return changed
}
