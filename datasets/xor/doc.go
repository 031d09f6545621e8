// Package xor provides the classic two-input exclusive-or dataset, the
// smallest problem that requires a hidden layer.
package xor
