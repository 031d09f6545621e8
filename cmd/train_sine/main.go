package main

import "flag"
import "fmt"
import "log"
import "os"

import "github.com/nantogmas92/xcsf/datasets/sine"
import "github.com/nantogmas92/xcsf/layer"
import "github.com/nantogmas92/xcsf/neural"

func main() {
	dstmodel := flag.String("dstmodel", "", "model destination .bin file")
	resume := flag.Bool("resume", false, "resume training from dstmodel")
	epochs := flag.Int("epochs", 2000, "number of training epochs")
	flag.Parse()

	args := []*layer.Args{
		{
			Type:       layer.Connected,
			NInputs:    1,
			NInit:      20,
			NMax:       100,
			Function:   layer.Tanh,
			Eta:        0.1,
			Momentum:   0.9,
			SGDWeights: true,
		},
		{
			Type:       layer.Connected,
			NInit:      1,
			Function:   layer.Linear,
			Eta:        0.1,
			Momentum:   0.9,
			SGDWeights: true,
		},
	}
	net, err := neural.New(args)
	if err != nil {
		log.Fatal(err)
	}
	if *resume && *dstmodel != "" {
		file, err := os.Open(*dstmodel)
		if err != nil {
			log.Fatal(err)
		}
		if _, err = net.Load(file); err != nil {
			log.Fatal(err)
		}
		file.Close()
	}

	data := sine.Medium()
	in := make([]float64, 1)
	truth := make([]float64, 1)
	for e := 0; e < *epochs; e++ {
		mse := 0.0
		for _, s := range data {
			in[0] = s.X
			truth[0] = s.Y
			net.Propagate(in)
			err := truth[0] - net.Output(0)
			mse += err * err
			net.Learn(truth, in)
		}
		if e%100 == 0 {
			fmt.Printf("epoch %d mse %f size %d\n", e, mse/float64(len(data)), net.Size())
		}
	}

	if *dstmodel != "" {
		file, err := os.Create(*dstmodel)
		if err != nil {
			log.Fatal(err)
		}
		if _, err = net.Save(file); err != nil {
			log.Fatal(err)
		}
		file.Close()
	}
	fmt.Print(net)
}
