/*
Package inference loads the portable quantized classifier and runs its forward pass.
It depends on nothing but the model file, so it is the reference consumer for
downstream runtimes.
*/
package inference

import (
	"go-ml.dev/pkg/zorros"
	"math"
)

type Activation uint8

const (
	Linear Activation = iota
	ReLU
	Sigmoid
	Tanh
	Softmax
)

var activations = [...]string{"linear", "relu", "sigmoid", "tanh", "softmax"}

func (a Activation) String() string {
	if int(a) < len(activations) {
		return activations[a]
	}
	return "unknown"
}

/*
ActivationOf maps an activation name to its code
*/
func ActivationOf(name string) (Activation, error) {
	for i, s := range activations {
		if s == name {
			return Activation(i), nil
		}
	}
	return 0, zorros.Errorf("unknown activation `%v`", name)
}

/*
Layer is a dense layer with symmetric per-tensor int8 weights,
the real weight is Scale*Weights[i*Units+j] for input i and unit j
*/
type Layer struct {
	Inputs, Units int
	Activation    Activation
	Scale         float32
	Weights       []int8
	Bias          []float32
}

/*
Model is the quantized classifier
*/
type Model struct {
	Variant string
	RunID   string
	Classes []string
	Layers  []Layer
}

/*
Quantize converts weights to int8 with scale maxabs/127
*/
func Quantize(w []float64) (q []int8, scale float32) {
	var mx float64
	for _, v := range w {
		mx = math.Max(mx, math.Abs(v))
	}
	q = make([]int8, len(w))
	if mx == 0 {
		return q, 1
	}
	scale = float32(mx / 127)
	for i, v := range w {
		q[i] = int8(math.Max(-127, math.Min(127, math.Round(v/float64(scale)))))
	}
	return
}

/*
Features is the expected input length
*/
func (m *Model) Features() int {
	if len(m.Layers) == 0 {
		return 0
	}
	return m.Layers[0].Inputs
}

/*
Check validates layer dimensions chaining and the class count
*/
func (m *Model) Check(variant string) error {
	if variant != "" && m.Variant != variant {
		return zorros.Errorf("model is for variant `%v`, expected `%v`", m.Variant, variant)
	}
	if len(m.Layers) == 0 {
		return zorros.Errorf("model has no layers")
	}
	for i, l := range m.Layers {
		if i > 0 && l.Inputs != m.Layers[i-1].Units {
			return zorros.Errorf("layer %d has %d inputs, previous layer has %d units", i, l.Inputs, m.Layers[i-1].Units)
		}
		if len(l.Weights) != l.Inputs*l.Units || len(l.Bias) != l.Units {
			return zorros.Errorf("layer %d weights don't match %dx%d", i, l.Inputs, l.Units)
		}
		if l.Activation > Softmax {
			return zorros.Errorf("layer %d has unknown activation %d", i, l.Activation)
		}
	}
	out := m.Layers[len(m.Layers)-1].Units
	if out != len(m.Classes) && !(out == 1 && len(m.Classes) == 2) {
		return zorros.Errorf("model has %d outputs for %d classes", out, len(m.Classes))
	}
	return nil
}

/*
Predict returns the output layer for one feature vector
*/
func (m *Model) Predict(x []float32) ([]float32, error) {
	if len(x) != m.Features() {
		return nil, zorros.Errorf("input has %d features, model expects %d", len(x), m.Features())
	}
	a := x
	for _, l := range m.Layers {
		z := make([]float32, l.Units)
		copy(z, l.Bias)
		for i, v := range a {
			if v == 0 {
				continue
			}
			row := l.Weights[i*l.Units : (i+1)*l.Units]
			for j, w := range row {
				z[j] += v * l.Scale * float32(w)
			}
		}
		activate(l.Activation, z)
		a = z
	}
	return a, nil
}

/*
Classify returns the predicted class and its probability
*/
func (m *Model) Classify(x []float32) (class string, p float32, err error) {
	out, err := m.Predict(x)
	if err != nil {
		return
	}
	if len(out) == 1 {
		if out[0] >= 0.5 {
			return m.Classes[1], out[0], nil
		}
		return m.Classes[0], 1 - out[0], nil
	}
	j := 0
	for i, v := range out {
		if v > out[j] {
			j = i
		}
	}
	return m.Classes[j], out[j], nil
}

func activate(a Activation, z []float32) {
	switch a {
	case ReLU:
		for j, v := range z {
			if v < 0 {
				z[j] = 0
			}
		}
	case Sigmoid:
		for j, v := range z {
			z[j] = float32(1 / (1 + math.Exp(-float64(v))))
		}
	case Tanh:
		for j, v := range z {
			z[j] = float32(math.Tanh(float64(v)))
		}
	case Softmax:
		mx := z[0]
		for _, v := range z {
			if v > mx {
				mx = v
			}
		}
		var sum float32
		for j, v := range z {
			z[j] = float32(math.Exp(float64(v - mx)))
			sum += z[j]
		}
		for j := range z {
			z[j] /= sum
		}
	}
}

