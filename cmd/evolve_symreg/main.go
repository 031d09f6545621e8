package main

import "flag"
import "fmt"
import "log"
import "math"
import "sort"

import "github.com/nantogmas92/xcsf/datasets/sine"
import "github.com/nantogmas92/xcsf/gp"
import "github.com/nantogmas92/xcsf/parallel"

// breed keeps elite as-is and refills the population to popsize with
// crossed-over, mutated copies of elite members. elite must not be empty.
func breed(elite []*gp.Tree, popsize int, pool *gp.Pool) ([]*gp.Tree, error) {
	next := make([]*gp.Tree, 0, popsize)
	next = append(next, elite...)
	for len(next) < popsize {
		c1 := elite[len(next)%len(elite)].Copy()
		c2 := elite[(len(next)+1)%len(elite)].Copy()
		if err := gp.Crossover(c1, c2); err != nil {
			return nil, err
		}
		c1.Mutate(pool)
		next = append(next, c1)
		if len(next) < popsize {
			c2.Mutate(pool)
			next = append(next, c2)
		}
	}
	return next, nil
}

func main() {
	popsize := flag.Int("popsize", 200, "population size")
	generations := flag.Int("generations", 100, "number of generations")
	depth := flag.Int("depth", 5, "initial tree depth")
	flag.Parse()
	if *popsize < 2 {
		*popsize = 2
	}

	pool, err := gp.NewPool(100, 1, *depth, -1, 1)
	if err != nil {
		log.Fatal(err)
	}
	data := sine.Small()

	pop := make([]*gp.Tree, *popsize)
	for i := range pop {
		pop[i] = gp.Rand(pool)
	}
	loss := make([]float64, *popsize)

	evaluate := func() {
		parallel.ForEach(len(pop), parallel.Threads(), func(i int) {
			mse := 0.0
			for _, s := range data {
				v, err := pop[i].Eval(pool, []float64{s.X})
				if err != nil {
					log.Fatal(err)
				}
				d := s.Y - v
				mse += d * d
			}
			loss[i] = mse / float64(len(data))
			if math.IsNaN(loss[i]) || math.IsInf(loss[i], 0) {
				loss[i] = math.MaxFloat64
			}
		})
	}

	for g := 0; g < *generations; g++ {
		evaluate()
		order := make([]int, len(pop))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return loss[order[a]] < loss[order[b]] })
		fmt.Printf("generation %d best mse %f len %d\n",
			g, loss[order[0]], pop[order[0]].Len())

		// elite half breeds the other half
		elite := make([]*gp.Tree, 0, len(pop)/2)
		for _, i := range order[:len(order)/2] {
			elite = append(elite, pop[i])
		}
		next, err := breed(elite, len(pop), pool)
		if err != nil {
			log.Fatal(err)
		}
		pop = next
	}

	evaluate()
	best := 0
	for i := range loss {
		if loss[i] < loss[best] {
			best = i
		}
	}
	expr, err := pop[best].String(pool)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("best mse %f: %s\n", loss[best], expr)
}
