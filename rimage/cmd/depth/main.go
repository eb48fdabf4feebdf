// Package main is a command that takes a depth file and produces a visual rendering of it.
package main

import (
	"flag"
	"fmt"

	"go.viam.com/perception/logging"
	"go.viam.com/perception/rimage"
)

func main() {
	hardMin := flag.Float64("min", 0, "min depth")
	hardMax := flag.Float64("max", rimage.MaxDepth, "max depth")
	debug := flag.Bool("debug", false, "enable debug logging")

	flag.Parse()

	if flag.NArg() < 2 {
		panic("need two args <in> <out>")
	}

	logger := logging.NewLogger("depth")
	if *debug {
		logger = logging.NewDebugLogger("depth")
	}

	dm, err := rimage.OpenDepthImage(flag.Arg(0), "", logger)
	if err != nil {
		panic(err)
	}

	img := dm.ToPrettyPicture(*hardMin, *hardMax)
	if err := rimage.SaveImage(img, flag.Arg(1), logger); err != nil {
		panic(err)
	}
	minDepth, maxDepth := dm.MinMax()
	fmt.Printf("depth range [%g, %g]\n", minDepth, maxDepth)
}
