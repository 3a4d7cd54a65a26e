package main

import (
	"flag"
	"fmt"
	"go-ml.dev/pkg/sleepnet/pipeline"
	"os"
)

func main() {
	params := flag.String("params", pipeline.ParamsFile, "preprocessing parameters JSON")
	model := flag.String("model", pipeline.QuantizedFile, "quantized model")
	data := flag.String("data", "", "survey CSV file to score")
	flag.Parse()

	if *data == "" {
		fmt.Fprintln(os.Stderr, "error: -data is required")
		flag.Usage()
		os.Exit(2)
	}
	s, err := pipeline.Open(*params, *model)
	if err == nil {
		_, err = s.ScoreFile(*data, os.Stdout)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		os.Exit(1)
	}
}
