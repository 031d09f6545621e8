// Package parallel contains the bounded-concurrency helpers used to evaluate
// independent population members. Each member owns its own mutable state, so
// the only coordination needed is a worker limit.
package parallel

import "sync"

import "github.com/klauspost/cpuid/v2"

// Threads returns the default worker limit, derived from the CPU topology.
func Threads() int {
	n := cpuid.CPU.LogicalCores
	if n < 1 {
		n = 1
	}
	return n
}

// ForEach executes body for each integer in [0, length) using at most limit
// concurrent goroutines. A limit below 1 means Threads().
func ForEach(length, limit int, body func(i int)) {
	if limit < 1 {
		limit = Threads()
	}
	if length <= 0 {
		return
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			body(i)
		}(i)
	}

	wg.Wait()
}
