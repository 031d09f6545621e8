package gp

import "fmt"
import "strings"

import "github.com/pkg/errors"

// Eval evaluates the tree on input x. Division by an operand equal to zero
// returns the numerator unchanged. Evaluation walks a local cursor, so
// concurrent Eval calls on the same tree are safe.
func (t *Tree) Eval(pool *Pool, x []float64) (float64, error) {
	v, _, err := t.eval(pool, x, 0)
	return v, err
}

func (t *Tree) eval(pool *Pool, x []float64, p int) (float64, int, error) {
	if p < 0 || p >= len(t.tree) {
		return 0, 0, errors.Wrapf(ErrCorrupt, "eval past end: %d", p)
	}
	node := t.tree[p]
	p++
	if node >= NumFuncs+len(pool.cons) {
		return x[node-NumFuncs-len(pool.cons)], p, nil
	}
	if node >= NumFuncs {
		return pool.cons[node-NumFuncs], p, nil
	}
	a, p, err := t.eval(pool, x, p)
	if err != nil {
		return 0, 0, err
	}
	b, p, err := t.eval(pool, x, p)
	if err != nil {
		return 0, 0, err
	}
	switch node {
	case Add:
		return a + b, p, nil
	case Sub:
		return a - b, p, nil
	case Mul:
		return a * b, p, nil
	case Div:
		if b == 0 {
			return a, p, nil
		}
		return a / b, p, nil
	default:
		return 0, 0, errors.Wrapf(ErrCorrupt, "eval invalid function: %d", node)
	}
}

// String renders the tree as a parenthesised infix expression.
func (t *Tree) String(pool *Pool) (string, error) {
	var b strings.Builder
	if _, err := t.print(pool, &b, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

// print renders the sub-tree rooted at p and returns the position past it,
// mirroring Traverse's consumption.
func (t *Tree) print(pool *Pool, b *strings.Builder, p int) (int, error) {
	if p < 0 || p >= len(t.tree) {
		return 0, errors.Wrapf(ErrCorrupt, "print past end: %d", p)
	}
	node := t.tree[p]
	if node >= NumFuncs {
		if node >= NumFuncs+len(pool.cons) {
			fmt.Fprintf(b, "IN:%d", node-NumFuncs-len(pool.cons))
		} else {
			fmt.Fprintf(b, "%f", pool.cons[node-NumFuncs])
		}
		return p + 1, nil
	}
	var op string
	switch node {
	case Add:
		op = " + "
	case Sub:
		op = " - "
	case Mul:
		op = " * "
	case Div:
		op = " / "
	default:
		return 0, errors.Wrapf(ErrCorrupt, "print invalid function: %d", node)
	}
	b.WriteByte('(')
	one, err := t.print(pool, b, p+1)
	if err != nil {
		return 0, err
	}
	b.WriteString(op)
	two, err := t.print(pool, b, one)
	if err != nil {
		return 0, err
	}
	b.WriteByte(')')
	return two, nil
}
