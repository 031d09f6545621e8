// Package gp implements flat, prefix-encoded genetic-programming trees over
// a fixed arithmetic function set, with random growth, recursive evaluation,
// sub-tree crossover, point mutation and binary persistence.
//
// Node codes 0..3 are the binary operators. Codes 4..4+C-1 index a shared
// constant pool of size C. Codes above that index the input vector.
package gp

import "math/rand"

import "github.com/pkg/errors"

// Function set.
const (
	Add = iota
	Sub
	Mul
	Div

	// NumFuncs is the number of selectable functions.
	NumFuncs = 4
)

// MaxLen is the maximum number of nodes in a tree.
const MaxLen = 10000

// ErrCorrupt reports a damaged tree encoding: an unrecognised operator code
// or an impossible stored length.
var ErrCorrupt = errors.New("gp: corrupt tree")

// Pool holds the constants shared by all trees and the input dimensionality
// they are grown against. It is initialised once, read concurrently, and
// never mutated while trees exist.
type Pool struct {
	cons      []float64
	nInputs   int
	initDepth int
}

// NewPool draws numConstants shared constants uniformly from
// [minConstant, maxConstant] for trees over numInputs inputs, grown initially
// to at most initDepth levels.
func NewPool(numConstants, numInputs, initDepth int, minConstant, maxConstant float64) (*Pool, error) {
	if numConstants < 1 {
		return nil, errors.Errorf("gp: number of constants < 1: %d", numConstants)
	}
	if numInputs < 1 {
		return nil, errors.Errorf("gp: number of inputs < 1: %d", numInputs)
	}
	if initDepth < 1 {
		return nil, errors.Errorf("gp: initial depth < 1: %d", initDepth)
	}
	p := &Pool{
		cons:      make([]float64, numConstants),
		nInputs:   numInputs,
		initDepth: initDepth,
	}
	for i := range p.cons {
		p.cons[i] = minConstant + rand.Float64()*(maxConstant-minConstant)
	}
	return p, nil
}

// NumConstants returns the size of the constant pool.
func (p *Pool) NumConstants() int {
	return len(p.cons)
}

// NumInputs returns the input dimensionality trees are grown against.
func (p *Pool) NumInputs() int {
	return p.nInputs
}

// Constant returns the i-th shared constant.
func (p *Pool) Constant(i int) float64 {
	return p.cons[i]
}

// terminalMax is one past the largest valid node code.
func (p *Pool) terminalMax() int {
	return NumFuncs + len(p.cons) + p.nInputs
}
