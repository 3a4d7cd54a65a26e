package main

import (
	"flag"
	"fmt"
	"go-ml.dev/pkg/sleepnet/config"
	"go-ml.dev/pkg/sleepnet/pipeline"
	"go-ml.dev/pkg/sleepnet/synth"
	"os"
)

func main() {
	configPath := flag.String("config", "", "YAML config file, "+config.DefaultPath+" if present")
	data := flag.String("data", "", "survey CSV file")
	output := flag.String("output", "", "directory for exported artifacts")
	variant := flag.String("variant", "", "categorical or binary")
	seed := flag.Int64("seed", 0, "split and training seed")
	epochs := flag.Int("epochs", 0, "maximum epochs, the variant preset if zero")
	quiet := flag.Bool("quiet", false, "don't print per-epoch progress")
	synthetic := flag.Int("synthetic", 0, "generate this many synthetic rows into the data file first, "+
		"an existing file is replaced only if -data is given")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(err)
	}
	explicitData := false
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Data = *data
			explicitData = true
		case "output":
			cfg.Output = *output
		case "variant":
			cfg.Variant = *variant
		case "seed":
			cfg.Seed = *seed
		case "epochs":
			cfg.Epochs = *epochs
		case "quiet":
			cfg.Quiet = *quiet
		}
	})

	if *synthetic > 0 {
		if err = synth.File(cfg.Data, synth.Options{Rows: *synthetic, Seed: cfg.Seed}, explicitData); err != nil {
			fail(err)
		}
	}
	r, err := pipeline.Run(cfg, os.Stdout)
	if err != nil {
		fail(err)
	}
	fmt.Printf("run %v exported:\n", r.RunID)
	for _, a := range r.Artifacts {
		fmt.Println("  " + a)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
