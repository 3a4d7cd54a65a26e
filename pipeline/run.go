package pipeline

import (
	"fmt"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/sleepnet/config"
	"go-ml.dev/pkg/sleepnet/export"
	"go-ml.dev/pkg/sleepnet/fu"
	"go-ml.dev/pkg/sleepnet/model"
	"go-ml.dev/pkg/sleepnet/nnet"
	"go-ml.dev/pkg/sleepnet/preprocess"
	"go-ml.dev/pkg/sleepnet/runlog"
	"go-ml.dev/pkg/sleepnet/tables"
	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"
	"io"
	"os"
)

/*
Result is what one pipeline run produced
*/
type Result struct {
	RunID     string
	Params    *preprocess.Params
	Report    *model.Report
	Test      model.Summary
	Dropped   int
	TrainRows int
	TestRows  int
	Artifacts []string
}

/*
Split is the encoded train and test partitions
*/
type Split struct {
	Params      *preprocess.Params
	Train, Test model.Dataset
	Dropped     int
}

/*
Load reads the dataset, normalizes it, splits it stratified by target,
fits preprocessing on the training rows and encodes both partitions
*/
func Load(preset Preset, cfg config.Config, console io.Writer) (s Split, err error) {
	t, err := tables.ReadCSV(cfg.Data)
	if err != nil {
		return
	}
	if t, err = t.Select(append(preset.Columns(), TargetColumn)...); err != nil {
		return s, zorros.Trace(err)
	}
	t, s.Dropped = preprocess.NormalizeTarget(t, TargetColumn, ValidDisorders)
	if s.Dropped > 0 {
		zlog.Warning(fmt.Sprintf("%d rows with unknown %v are dropped", s.Dropped, TargetColumn))
	}
	fmt.Fprintf(console, "dataset shape: (%d, %d)\n", t.Len(), len(t.Names()))
	if t.Len() == 0 {
		return s, zorros.Errorf("dataset has no rows with a valid %v", TargetColumn)
	}
	if t.Has(BMIColumn) {
		fmt.Fprintf(console, "%v values before normalization: %q\n", BMIColumn, t.Col(BMIColumn).Unique())
	}
	if t, err = preset.Prepare(t); err != nil {
		return s, zorros.Trace(err)
	}
	if t.Has(BMIColumn) {
		fmt.Fprintf(console, "%v values after normalization: %q\n", BMIColumn, t.Col(BMIColumn).Unique())
	}

	target, err := preprocess.FitTarget(t.Col(TargetColumn), preset.Variant)
	if err != nil {
		return s, zorros.Trace(err)
	}
	labels := make([]string, t.Len())
	for i := range labels {
		labels[i] = target.ClassOf(t.Col(TargetColumn).Text(i))
	}
	trainIdx, testIdx, err := preprocess.StratifiedSplit(labels, cfg.TestSize, cfg.Seed)
	if err != nil {
		return s, zorros.Trace(err)
	}
	train, test := t.Rows(trainIdx), t.Rows(testIdx)
	if s.Params, err = preprocess.Fit(train, preset.Numeric, preset.Categorical, target); err != nil {
		return s, zorros.Trace(err)
	}
	fmt.Fprintf(console, "target classes (model output order): %q\n", target.Classes)
	fmt.Fprintf(console, "feature count: %d\n", s.Params.Width())
	if s.Train, err = encode(s.Params, train); err != nil {
		return
	}
	s.Train.Validation = cfg.ValidSize
	s.Test, err = encode(s.Params, test)
	return
}

func encode(p *preprocess.Params, t *tables.Table) (ds model.Dataset, err error) {
	if ds.Source, err = p.TransformTable(t); err != nil {
		return ds, zorros.Trace(err)
	}
	if ds.Label, err = p.Target.EncodeColumn(t.Col(p.Target.Name)); err != nil {
		return ds, zorros.Trace(err)
	}
	ds.Features = p.FeatureNamesOut
	return
}

/*
Network builds and compiles the preset network for the fitted preprocessing
*/
func Network(preset Preset, cfg config.Config, p *preprocess.Params) (*nnet.Network, error) {
	n := &nnet.Network{
		Layers:    preset.Layout(p.Target),
		Loss:      preset.Loss,
		Optimizer: nnet.DefaultAdam,
		BatchSize: fu.Fnzi(cfg.BatchSize, preset.BatchSize),
		Seed:      cfg.Seed,
	}
	if err := cfg.Hyper.Apply(n.Hyper()); err != nil {
		return nil, zorros.Trace(err)
	}
	if err := n.Compile(p.Width()); err != nil {
		return nil, zorros.Trace(err)
	}
	return n, nil
}

/*
Run executes the whole pipeline and writes artifacts into cfg.Output
*/
func Run(cfg config.Config, console io.Writer) (r *Result, err error) {
	preset, err := PresetOf(cfg.Variant)
	if err != nil {
		return
	}
	s, err := Load(preset, cfg, console)
	if err != nil {
		return
	}
	n, err := Network(preset, cfg, s.Params)
	if err != nil {
		return
	}

	run := runlog.NewRun(string(preset.Variant), cfg.Data, cfg.Seed)
	var history *runlog.Log
	if cfg.RunLog != "-" {
		if err = os.MkdirAll(cfg.Output, 0755); err != nil {
			return nil, zorros.Wrapf(err, "failed to create output directory %v: %v", cfg.Output, err.Error())
		}
		if history, err = runlog.Open(fu.Path(cfg.Output, cfg.RunLog)); err != nil {
			return
		}
		defer history.Close()
		if err = history.Begin(run); err != nil {
			return
		}
	}

	r = &Result{RunID: run.ID, Params: s.Params, Dropped: s.Dropped, TrainRows: s.Train.Len(), TestRows: s.Test.Len()}
	training := model.Training{
		Iterations:   fu.Fnzi(cfg.Epochs, preset.Epochs),
		ScoreHistory: fu.Fnzi(cfg.Patience, preset.Patience),
	}
	if !cfg.Quiet {
		training.Verbose = func(line string) { fmt.Fprintln(console, line) }
	}
	if r.Report, err = n.Feed(s.Train).Train(training); err != nil {
		return nil, err
	}
	fmt.Fprintf(console, "training stopped after %d epochs (%v), best epoch %d\n",
		len(r.Report.History), r.Report.Stopped, r.Report.TheBest)
	if history != nil {
		if err = history.Epochs(run.ID, r.Report); err != nil {
			return nil, err
		}
	}

	if r.Test, err = n.Evaluate(s.Test, model.Classification{}); err != nil {
		return nil, zorros.Trace(err)
	}
	fmt.Fprintf(console, "test accuracy: %.4f, test loss: %.4f\n", r.Test.Accuracy, r.Test.Loss)

	if r.Artifacts, err = Export(n, s.Params, run.ID, cfg.Output); err != nil {
		return nil, err
	}
	if err = export.PrintConstants(console, s.Params); err != nil {
		return nil, zorros.Trace(err)
	}
	if history != nil {
		if err = history.Finish(run.ID, r.Test); err != nil {
			return nil, err
		}
	}
	return r, nil
}

/*
Export writes the preprocessing record, the checkpoint and the quantized model,
the network must be evaluated
*/
func Export(n *nnet.Network, p *preprocess.Params, runID, dir string) (paths []string, err error) {
	meta := nnet.Meta{RunID: runID, Variant: string(p.Target.Variant), Classes: p.Target.Classes}
	q, err := n.Quantize(meta)
	if err != nil {
		return
	}
	paths = []string{fu.Path(dir, ParamsFile), fu.Path(dir, CheckpointFile), fu.Path(dir, QuantizedFile)}
	if err = export.WriteParams(iokit.File(paths[0]), p); err != nil {
		return nil, err
	}
	if err = export.Write(iokit.File(paths[1]), func(w io.Writer) error { return n.WriteCheckpoint(w, meta) }); err != nil {
		return nil, err
	}
	if err = export.Write(iokit.File(paths[2]), q.Write); err != nil {
		return nil, err
	}
	return paths, n.Exported()
}
