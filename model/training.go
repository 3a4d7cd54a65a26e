package model

import (
	"fmt"
	"go-ml.dev/pkg/sleepnet/fu"
	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"
)

/*
Training is the default implementation of unified training interface
*/
type Training struct {
	Iterations   int          // maximum iterations
	Metrics      Metrics      // evaluating metrics
	Score        Score        // score function, ValidationLoss if nil
	ScoreHistory int          // iterations without a better score before stop
	Verbose      func(string) // print function
}

type training struct {
	Training
	best     Snapshot
	bestIter int
	done     bool
}

type workout struct {
	iteration int
	training  *training
	perflog   []Iteration
}

const DefaultScoreHistory = 3

func (t Training) Workout() Workout {
	x := &training{Training: t, bestIter: -1}
	if x.Metrics == nil {
		x.Metrics = Classification{}
	}
	if x.Score == nil {
		x.Score = ValidationLoss
	}
	return &workout{iteration: 0, training: x}
}

func (w *workout) Iteration() int {
	return w.iteration
}

func (w *workout) TrainMetrics() MetricsUpdater {
	return w.training.Metrics.New(w.iteration, TrainSubset)
}

func (w *workout) ValidMetrics() MetricsUpdater {
	return w.training.Metrics.New(w.iteration, ValidSubset)
}

func (w *workout) report(m Memorizer, j int, why string) (report *Report, err error) {
	if len(w.perflog) == 0 {
		return nil, zorros.Errorf("training has no iterations to report")
	}
	if j < 0 {
		j = w.training.bestIter
	}
	report = &Report{
		History: w.perflog,
		TheBest: j,
		Train:   w.perflog[j].Train,
		Valid:   w.perflog[j].Valid,
		Score:   w.perflog[j].Score,
		Stopped: why,
	}
	if j == w.training.bestIter && w.training.best != nil {
		m.Restore(w.training.best)
	}
	return
}

func (w *workout) Complete(m Memorizer, train, valid Summary, metricsDone bool) (report *Report, done bool, err error) {
	if w.training.done {
		return nil, true, zorros.Errorf("training is already done")
	}
	histlen := fu.Fnzi(w.training.ScoreHistory, DefaultScoreHistory)
	maxiter := fu.Maxi(w.training.Iterations, 1)
	score := w.training.Score(train, valid)
	w.perflog = append(w.perflog, Iteration{Train: train, Valid: valid, Score: score})
	if w.training.bestIter < 0 || score > w.perflog[w.training.bestIter].Score {
		w.training.bestIter = w.iteration
		w.training.best = m.Memorize()
	}
	if w.training.Verbose != nil {
		w.Verbose(fmt.Sprintf(
			"[%3d] loss: %.5f/%.5f, accuracy: %.5f/%.5f, score: %.5f",
			w.Iteration(), train.Loss, valid.Loss, train.Accuracy, valid.Accuracy, score))
	}
	if metricsDone {
		w.training.done = true
		done = true
		report, err = w.report(m, w.iteration, "metrics goal reached")
	} else if w.iteration-w.training.bestIter >= histlen {
		w.training.done = true
		done = true
		report, err = w.report(m, -1, fmt.Sprintf("no improvement for %d iterations", histlen))
	} else if w.iteration >= maxiter-1 {
		w.training.done = true
		done = true
		report, err = w.report(m, -1, "iterations budget exhausted")
	}
	return
}

func (w *workout) Verbose(s string) {
	if w.training.Verbose != nil {
		w.training.Verbose(s)
	}
}

func (w *workout) Next() Workout {
	if w.training.done {
		zlog.Warning("training is already done")
		return nil
	}
	return &workout{
		iteration: w.iteration + 1,
		training:  w.training,
		perflog:   w.perflog,
	}
}
