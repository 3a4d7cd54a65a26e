package model

import (
	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
	"reflect"
)

/*
HungryModel is an ML algorithm grows from a data to predict something
Needs to be fattened by Feed method to fit.
*/
type HungryModel interface {
	Feed(Dataset) FatModel
}

/*
Iteration is one row of the training history
*/
type Iteration struct {
	Train, Valid Summary
	Score        float64
}

/*
Report is an ML training report
*/
type Report struct {
	History      []Iteration // all iterations history
	TheBest      int         // the best iteration
	Train, Valid Summary     // the best iteration metrics
	Score        float64     // the best score
	Stopped      string      // why training stopped
}

/*
Snapshot is an opaque copy of model weights
*/
type Snapshot interface{}

/*
Memorizer is a model able to copy and restore its weights
*/
type Memorizer interface {
	Memorize() Snapshot
	Restore(Snapshot)
}

/*
Workout is a training iteration abstraction
*/
type Workout interface {
	Iteration() int
	TrainMetrics() MetricsUpdater
	ValidMetrics() MetricsUpdater
	Complete(m Memorizer, train, valid Summary, metricsDone bool) (*Report, bool, error)
	Next() Workout
	Verbose(string)
}

/*
UnifiedTraining is an interface allowing to write any logging/staging backend for ML training
*/
type UnifiedTraining interface {
	// Workout returns the first iteration workout
	Workout() Workout
}

/*
FatModel is fattened model (a training function of model instance bounded to a dataset)
*/
type FatModel func(workout Workout) (*Report, error)

/*
Train a fattened (Fat) model
*/
func (f FatModel) Train(training UnifiedTraining) (*Report, error) {
	return f(training.Workout())
}

/*
PredictionModel is a predictor interface
*/
type PredictionModel interface {
	// Features model uses when maps features
	Features() int
	// Predict returns one output row per input row
	Predict(x *mat.Dense) (*mat.Dense, error)
}

/*
Params is a set of hyper-parameters overriding model fields by name
*/
type Params map[string]float64

/*
Apply sets parameters to the fields referenced by pointers in m
*/
func (p Params) Apply(m map[string]reflect.Value) error {
	for k, v := range p {
		ref, ok := m[k]
		if !ok {
			return zorros.Errorf("model does not have hyper-parameter `%v`", k)
		}
		tp := ref.Type().Elem()
		if !reflect.TypeOf(v).ConvertibleTo(tp) {
			return zorros.Errorf("hyper-parameter `%v` can't be set to %v", k, tp)
		}
		ref.Elem().Set(reflect.ValueOf(v).Convert(tp))
	}
	return nil
}
