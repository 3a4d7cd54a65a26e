package model

import (
	"fmt"
	"gonum.org/v1/gonum/floats"
)

const (
	TrainSubset = "train"
	ValidSubset = "valid"
	TestSubset  = "test"
)

/*
Summary is the metrics of one iteration on one subset
*/
type Summary struct {
	Iteration int
	Subset    string
	Loss      float64
	Accuracy  float64
	Count     int
}

func (s Summary) String() string {
	return fmt.Sprintf("%s loss: %.5f, accuracy: %.5f (%d samples)", s.Subset, s.Loss, s.Accuracy, s.Count)
}

/*
Metrics creates metrics updater for the iteration and subset
*/
type Metrics interface {
	New(iteration int, subset string) MetricsUpdater
}

/*
MetricsUpdater accumulates per-sample results
*/
type MetricsUpdater interface {
	// Update adds one sample with model output, expected label and the sample loss
	Update(result, label []float64, loss float64)
	// Complete returns accumulated metrics and reports whether the goal is reached
	Complete() (Summary, bool)
}

/*
Classification is accuracy and mean loss of a classifier,
single-column outputs are thresholded at 0.5, wider outputs are compared by argmax
*/
type Classification struct {
	Goal float64 // accuracy which completes training when reached on validation, 0 to disable
}

type classificationUpdater struct {
	Classification
	Summary
	correct int
	loss    float64
}

func (c Classification) New(iteration int, subset string) MetricsUpdater {
	return &classificationUpdater{Classification: c, Summary: Summary{Iteration: iteration, Subset: subset}}
}

func (u *classificationUpdater) Update(result, label []float64, loss float64) {
	u.Count++
	u.loss += loss
	if Correct(result, label) {
		u.correct++
	}
}

func (u *classificationUpdater) Complete() (Summary, bool) {
	s := u.Summary
	if s.Count > 0 {
		s.Loss = u.loss / float64(s.Count)
		s.Accuracy = float64(u.correct) / float64(s.Count)
	}
	return s, u.Goal > 0 && s.Subset == ValidSubset && s.Accuracy >= u.Goal
}

/*
Correct reports whether the model output predicts the encoded label
*/
func Correct(result, label []float64) bool {
	if len(result) == 1 {
		return (result[0] >= 0.5) == (label[0] >= 0.5)
	}
	return floats.MaxIdx(result) == floats.MaxIdx(label)
}

/*
Score calculates the score of an iteration, higher is better
*/
type Score func(train, valid Summary) float64

/*
ValidationLoss scores iteration by negative validation loss
*/
func ValidationLoss(train, valid Summary) float64 {
	return -valid.Loss
}
