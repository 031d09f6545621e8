// Binary evolve_xor evolves the topology and weights of a population of
// networks on the exclusive-or problem, growing hidden units until the
// problem is solved.
package main
