package main

import "flag"
import "fmt"
import "log"
import "math"
import "sort"

import "github.com/nantogmas92/xcsf/datasets/xor"
import "github.com/nantogmas92/xcsf/layer"
import "github.com/nantogmas92/xcsf/neural"
import "github.com/nantogmas92/xcsf/parallel"

func main() {
	popsize := flag.Int("popsize", 50, "population size")
	generations := flag.Int("generations", 500, "number of generations")
	flag.Parse()

	args := []*layer.Args{
		{
			Type:          layer.Connected,
			NInputs:       2,
			NInit:         1,
			NMax:          10,
			MaxNeuronGrow: 1,
			Function:      layer.Logistic,
			Eta:           0.1,
			EvolveWeights: true,
			EvolveNeurons: true,
			EvolveEta:     true,
			EvolveConnect: true,
		},
		{
			Type:          layer.Connected,
			NInit:         1,
			Function:      layer.Logistic,
			Eta:           0.1,
			EvolveWeights: true,
			EvolveEta:     true,
		},
	}

	pop := make([]*neural.Network, *popsize)
	for i := range pop {
		net, err := neural.New(args)
		if err != nil {
			log.Fatal(err)
		}
		pop[i] = net
	}

	data := xor.All()
	fitness := make([]float64, *popsize)
	evaluate := func(i int) {
		mse := 0.0
		for _, s := range data {
			pop[i].Propagate(s.X[:])
			e := s.Y - pop[i].Output(0)
			mse += e * e
		}
		fitness[i] = mse / float64(len(data))
	}

	order := make([]int, *popsize)
	for g := 0; g < *generations; g++ {
		parallel.ForEach(*popsize, parallel.Threads(), evaluate)
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return fitness[order[a]] < fitness[order[b]]
		})
		if g%50 == 0 {
			best := pop[order[0]]
			fmt.Printf("generation %d mse %f size %d\n", g, fitness[order[0]], best.Size())
		}
		// the worse half is replaced by mutated copies of the better half
		half := *popsize / 2
		for i := 0; i < half; i++ {
			child := pop[order[i]].Copy()
			child.Mutate()
			pop[order[half+i]] = child
		}
	}

	parallel.ForEach(*popsize, parallel.Threads(), evaluate)
	bi := 0
	for i := range fitness {
		if fitness[i] < fitness[bi] {
			bi = i
		}
	}
	best := pop[bi]
	fmt.Printf("best mse %f size %d\n", fitness[bi], best.Size())
	for _, s := range data {
		best.Propagate(s.X[:])
		fmt.Printf("%v -> %f (want %f)\n", s.X, best.Output(0), s.Y)
	}
	if math.IsNaN(fitness[bi]) {
		log.Fatal("evolution diverged")
	}
}
