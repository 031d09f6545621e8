// Package sine provides a synthetic one-dimensional regression dataset for
// demonstrating gradient training and evolved function approximation.
package sine
