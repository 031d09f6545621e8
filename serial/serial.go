// Package serial implements the counted little-endian binary encoding shared
// by every save/load implementation. Writers and readers count the number of
// primitive elements transferred so callers can verify it, and hold a sticky
// first error.
package serial

import "encoding/binary"
import "io"

import "github.com/pkg/errors"

// Writer writes fixed-width little-endian values to an underlying stream.
type Writer struct {
	w   io.Writer
	n   int
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Count returns the number of primitive elements written so far.
func (w *Writer) Count() int {
	return w.n
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) put(v interface{}, n int) {
	if w.err != nil {
		return
	}
	if err := binary.Write(w.w, binary.LittleEndian, v); err != nil {
		w.err = errors.Wrap(err, "serial write")
		return
	}
	w.n += n
}

// PutInt writes a single int as int32.
func (w *Writer) PutInt(v int) {
	w.put(int32(v), 1)
}

// PutFloat writes a single float64.
func (w *Writer) PutFloat(v float64) {
	w.put(v, 1)
}

// PutBool writes a single bool as one byte.
func (w *Writer) PutBool(v bool) {
	w.put(v, 1)
}

// PutInts writes a slice of ints as int32, one element per value.
func (w *Writer) PutInts(v []int) {
	buf := make([]int32, len(v))
	for i := range v {
		buf[i] = int32(v[i])
	}
	w.put(buf, len(v))
}

// PutFloats writes a slice of float64, one element per value.
func (w *Writer) PutFloats(v []float64) {
	w.put(v, len(v))
}

// PutBools writes a slice of bools, one element per value.
func (w *Writer) PutBools(v []bool) {
	w.put(v, len(v))
}

// Reader reads fixed-width little-endian values from an underlying stream.
type Reader struct {
	r   io.Reader
	n   int
	err error
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Count returns the number of primitive elements read so far.
func (r *Reader) Count() int {
	return r.n
}

// Err returns the first read error, if any.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) get(v interface{}, n int) {
	if r.err != nil {
		return
	}
	if err := binary.Read(r.r, binary.LittleEndian, v); err != nil {
		r.err = errors.Wrap(err, "serial read")
		return
	}
	r.n += n
}

// Int reads a single int32 and returns it as int.
func (r *Reader) Int() int {
	var v int32
	r.get(&v, 1)
	return int(v)
}

// Float reads a single float64.
func (r *Reader) Float() float64 {
	var v float64
	r.get(&v, 1)
	return v
}

// Bool reads a single one-byte bool.
func (r *Reader) Bool() bool {
	var v bool
	r.get(&v, 1)
	return v
}

// Ints reads n int32 values into a fresh slice of ints.
func (r *Reader) Ints(n int) []int {
	buf := make([]int32, n)
	r.get(buf, n)
	out := make([]int, n)
	for i := range buf {
		out[i] = int(buf[i])
	}
	return out
}

// Floats reads n float64 values into a fresh slice.
func (r *Reader) Floats(n int) []float64 {
	out := make([]float64, n)
	r.get(out, n)
	return out
}

// Bools reads n one-byte bools into a fresh slice.
func (r *Reader) Bools(n int) []bool {
	out := make([]bool, n)
	r.get(out, n)
	return out
}
