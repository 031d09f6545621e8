// Package neural implements an evolvable neural network as an ordered chain
// of layers. Index 0 of the chain is the output end; the last index is the
// input end that consumes the external input. After any structural change,
// every adjacent pair satisfies upstream.NOutputs == downstream.NInputs.
package neural

import "fmt"
import "io"
import "strings"

import "github.com/nantogmas92/xcsf/layer"
import "github.com/nantogmas92/xcsf/serial"
import "github.com/pkg/errors"

// Network is an ordered chain of layers. The zero value is an empty chain.
type Network struct {
	layers   []layer.Layer // index 0 = output end, last index = input end
	nInputs  int
	nOutputs int
	output   []float64
}

// New builds a network from a layer argument list ordered from the input end
// to the output end, wiring each layer's input width to its upstream
// neighbour's output width.
func New(args []*layer.Args) (*Network, error) {
	if err := layer.Validate(args); err != nil {
		return nil, err
	}
	net := new(Network)
	nIn := args[0].NInputs
	if nIn < 1 {
		nIn = args[0].Channels * args[0].Height * args[0].Width
	}
	for _, a := range args {
		ac := a.Copy()
		ac.NInputs = nIn
		l, err := layer.FromArgs(ac)
		if err != nil {
			return nil, err
		}
		net.Insert(l, 0)
		nIn = l.NOutputs()
	}
	return net, nil
}

// NLayers returns the number of layers in the chain.
func (n *Network) NLayers() int {
	return len(n.layers)
}

// NInputs returns the input width of the input-end layer.
func (n *Network) NInputs() int {
	return n.nInputs
}

// NOutputs returns the output width of the output-end layer.
func (n *Network) NOutputs() int {
	return n.nOutputs
}

// Layer returns the layer at pos counted from the output end.
func (n *Network) Layer(pos int) layer.Layer {
	if pos < 0 || pos >= len(n.layers) {
		panic(fmt.Sprintf("neural: no layer at position %d of %d", pos, len(n.layers)))
	}
	return n.layers[pos]
}

// sync refreshes the cached widths and output buffer from the end layers.
func (n *Network) sync() {
	if len(n.layers) == 0 {
		n.nInputs = 0
		n.nOutputs = 0
		n.output = nil
		return
	}
	n.nInputs = n.layers[len(n.layers)-1].NInputs()
	n.nOutputs = n.layers[0].NOutputs()
	n.output = n.layers[0].Output()
}

// Insert places l at pos counted from the output end: 0 makes l the new
// output-end layer, NLayers makes it the new input-end layer. The caller
// supplies a structurally compatible layer or runs Resize immediately after.
func (n *Network) Insert(l layer.Layer, pos int) {
	if pos < 0 || pos > len(n.layers) {
		panic(fmt.Sprintf("neural: insert at position %d of %d", pos, len(n.layers)))
	}
	n.layers = append(n.layers, nil)
	copy(n.layers[pos+1:], n.layers[pos:])
	n.layers[pos] = l
	n.sync()
}

// Remove destroys the layer at pos counted from the output end. Removing a
// nonexistent layer, or the only layer, is a fatal usage error.
func (n *Network) Remove(pos int) {
	if pos < 0 || pos >= len(n.layers) {
		panic(fmt.Sprintf("neural: remove: no layer at position %d of %d", pos, len(n.layers)))
	}
	if len(n.layers) == 1 {
		panic("neural: remove: attempted to remove the only layer")
	}
	n.layers = append(n.layers[:pos], n.layers[pos+1:]...)
	n.sync()
}

// Push inserts l at the input end.
func (n *Network) Push(l layer.Layer) {
	n.Insert(l, len(n.layers))
}

// Pop removes the input-end layer.
func (n *Network) Pop() {
	n.Remove(len(n.layers) - 1)
}

// Copy deep-clones the network; no layer is shared between the two.
func (n *Network) Copy() *Network {
	c := new(Network)
	for _, l := range n.layers {
		c.Push(l.Copy())
	}
	return c
}

// Rand re-randomises every layer.
func (n *Network) Rand() {
	for _, l := range n.layers {
		l.Rand()
	}
}

// Propagate forward-passes input through the chain from the input end to the
// output end.
func (n *Network) Propagate(input []float64) {
	for i := len(n.layers) - 1; i >= 0; i-- {
		n.layers[i].Forward(input)
		input = n.layers[i].Output()
	}
}

// Learn performs one gradient step toward truth for the most recently
// propagated input: zero every delta, set the output-end delta to the
// squared-error gradient, backward-pass from the output end to the input
// end, then apply updates from the input end to the output end. The three
// phases run strictly in order.
func (n *Network) Learn(truth, input []float64) {
	for _, l := range n.layers {
		d := l.Delta()
		for i := range d {
			d[i] = 0
		}
	}
	out := n.layers[0]
	od := out.Delta()
	for i, o := range out.Output() {
		od[i] = truth[i] - o
	}
	last := len(n.layers) - 1
	for i, l := range n.layers {
		if i == last {
			l.Backward(input, nil)
		} else {
			prev := n.layers[i+1]
			l.Backward(prev.Output(), prev.Delta())
		}
	}
	for i := last; i >= 0; i-- {
		n.layers[i].Update()
	}
}

// Mutate walks the chain from the input end to the output end, mutating each
// layer. When a layer's output width changes, the next-processed layer is
// resized to match on the same pass, never retroactively. It reports whether
// any layer changed.
func (n *Network) Mutate() bool {
	mod := false
	doResize := false
	var prev layer.Layer
	for i := len(n.layers) - 1; i >= 0; i-- {
		l := n.layers[i]
		orig := l.NOutputs()
		if doResize {
			l.Resize(prev)
			doResize = false
		}
		if l.Mutate() {
			mod = true
		}
		if l.NOutputs() != orig {
			doResize = true
		}
		prev = l
	}
	n.sync()
	return mod
}

// Resize reconciles the chain from the input end to the output end, resizing
// any layer whose input width no longer matches its upstream neighbour.
func (n *Network) Resize() {
	var prev layer.Layer
	for i := len(n.layers) - 1; i >= 0; i-- {
		l := n.layers[i]
		if prev != nil && l.NInputs() != prev.NOutputs() {
			l.Resize(prev)
		}
		prev = l
	}
	n.sync()
}

// Output returns the i-th overall network output. Indexing outside
// [0, NOutputs) is a fatal usage error.
func (n *Network) Output(i int) float64 {
	if i < 0 || i >= n.nOutputs {
		panic(fmt.Sprintf("neural: output index %d out of %d", i, n.nOutputs))
	}
	return n.output[i]
}

// Outputs returns the output-end layer's output buffer.
func (n *Network) Outputs() []float64 {
	return n.output
}

// Size returns the number of enabled connections over all weighted layers,
// a model-complexity metric.
func (n *Network) Size() int {
	size := 0
	for _, l := range n.layers {
		if wl, ok := l.(layer.Weighted); ok {
			size += wl.NActive()
		}
	}
	return size
}

// String lists every layer from the output end to the input end.
func (n *Network) String() string {
	var b strings.Builder
	for i, l := range n.layers {
		fmt.Fprintf(&b, "layer (%d) %s\n", i, l)
	}
	return b.String()
}

// Save writes the network to w: the chain header followed by each layer,
// variant tag first, from the output end to the input end. It returns the
// number of primitive elements written.
func (n *Network) Save(w io.Writer) (int, error) {
	sw := serial.NewWriter(w)
	sw.PutInt(len(n.layers))
	sw.PutInt(n.nInputs)
	sw.PutInt(n.nOutputs)
	s := sw.Count()
	for _, l := range n.layers {
		sw.PutInt(int(l.Type()))
		if err := sw.Err(); err != nil {
			return s, err
		}
		s++
		ls, err := l.Save(w)
		s += ls
		if err != nil {
			return s, err
		}
	}
	return s, sw.Err()
}

// Load reads a network written by Save into a fresh chain, dispatching each
// layer on its variant tag. It returns the number of primitive elements
// read.
func (n *Network) Load(r io.Reader) (int, error) {
	sr := serial.NewReader(r)
	nLayers := sr.Int()
	sr.Int() // input width, rebuilt from the layers
	sr.Int() // output width, rebuilt from the layers
	if err := sr.Err(); err != nil {
		return sr.Count(), err
	}
	if nLayers < 1 {
		return sr.Count(), errors.Wrapf(layer.ErrCorrupt, "network load bad layer count: %d", nLayers)
	}
	*n = Network{}
	s := sr.Count()
	for i := 0; i < nLayers; i++ {
		tag := sr.Int()
		if err := sr.Err(); err != nil {
			return s, err
		}
		s++
		l, err := layer.FromType(layer.Type(tag))
		if err != nil {
			return s, errors.Wrapf(layer.ErrCorrupt, "network load: %v", err)
		}
		ls, err := l.Load(r)
		s += ls
		if err != nil {
			return s, err
		}
		n.Push(l)
	}
	return s, nil
}
