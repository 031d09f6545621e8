// Binary evolve_symreg evolves a population of expression trees by sub-tree
// crossover and point mutation to approximate the sine dataset, evaluating
// members in parallel.
package main
