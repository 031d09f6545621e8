package gp

import "io"

import "github.com/nantogmas92/xcsf/serial"
import "github.com/pkg/errors"

// Save writes the tree to w as little-endian binary: cursor, length, the
// code array, then the mutation-rate vector. It returns the number of
// primitive elements written.
func (t *Tree) Save(w io.Writer) (int, error) {
	sw := serial.NewWriter(w)
	sw.PutInt(t.p)
	sw.PutInt(len(t.tree))
	sw.PutInts(t.tree)
	sw.PutFloats(t.mu)
	return sw.Count(), sw.Err()
}

// Load reads a tree written by Save. A stored length below 1 or above
// MaxLen is corruption.
func (t *Tree) Load(r io.Reader) (int, error) {
	sr := serial.NewReader(r)
	t.p = sr.Int()
	n := sr.Int()
	if err := sr.Err(); err != nil {
		return sr.Count(), err
	}
	if n < 1 || n > MaxLen {
		return sr.Count(), errors.Wrapf(ErrCorrupt, "load bad length: %d", n)
	}
	t.tree = sr.Ints(n)
	t.mu = sr.Floats(nMu)
	return sr.Count(), sr.Err()
}
