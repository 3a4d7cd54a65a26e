// Package nnet implements a small dense feed-forward classifier trained by Adam
package nnet

import (
	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
	"math"
)

type Activation string

const (
	Linear  Activation = "linear"
	ReLU    Activation = "relu"
	Sigmoid Activation = "sigmoid"
	Tanh    Activation = "tanh"
	Softmax Activation = "softmax"
)

/*
Dense is a fully connected layer specification, dropout is applied to its output while training
*/
type Dense struct {
	Units      int        `json:"units" yaml:"units"`
	Activation Activation `json:"activation" yaml:"activation"`
	Dropout    float64    `json:"dropout,omitempty" yaml:"dropout"`
}

func (a Activation) valid(last bool) bool {
	switch a {
	case Linear, ReLU, Sigmoid, Tanh:
		return true
	case Softmax:
		return last
	}
	return false
}

func (a Activation) apply(z *mat.Dense) {
	switch a {
	case ReLU:
		z.Apply(func(_, _ int, v float64) float64 { return math.Max(v, 0) }, z)
	case Sigmoid:
		z.Apply(func(_, _ int, v float64) float64 { return sigmoid(v) }, z)
	case Tanh:
		z.Apply(func(_, _ int, v float64) float64 { return math.Tanh(v) }, z)
	case Softmax:
		r, _ := z.Dims()
		for i := 0; i < r; i++ {
			softmax(z.RawRowView(i))
		}
	}
}

// derivative by the activation output y
func (a Activation) derivative(y float64) float64 {
	switch a {
	case ReLU:
		if y > 0 {
			return 1
		}
		return 0
	case Sigmoid:
		return y * (1 - y)
	case Tanh:
		return 1 - y*y
	}
	return 1
}

func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}

func softmax(row []float64) {
	mx := math.Inf(-1)
	for _, v := range row {
		mx = math.Max(mx, v)
	}
	var sum float64
	for j, v := range row {
		row[j] = math.Exp(v - mx)
		sum += row[j]
	}
	for j := range row {
		row[j] /= sum
	}
}

func validate(layers []Dense, loss Loss) error {
	if len(layers) == 0 {
		return zorros.Errorf("network has no layers")
	}
	for i, d := range layers {
		last := i == len(layers)-1
		if d.Units <= 0 {
			return zorros.Errorf("layer %d has %d units", i, d.Units)
		}
		if !d.Activation.valid(last) {
			return zorros.Errorf("layer %d can't use activation `%v`", i, d.Activation)
		}
		if d.Dropout < 0 || d.Dropout >= 1 || (last && d.Dropout != 0) {
			return zorros.Errorf("layer %d has invalid dropout %v", i, d.Dropout)
		}
	}
	out := layers[len(layers)-1]
	switch loss {
	case CategoricalCrossentropy:
		if out.Activation != Softmax || out.Units < 2 {
			return zorros.Errorf("%v requires softmax output with 2 or more units", loss)
		}
	case BinaryCrossentropy:
		if out.Activation != Sigmoid || out.Units != 1 {
			return zorros.Errorf("%v requires a single sigmoid output unit", loss)
		}
	default:
		return zorros.Errorf("unknown loss `%v`", loss)
	}
	return nil
}
