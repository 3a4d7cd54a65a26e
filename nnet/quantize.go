package nnet

import (
	"go-ml.dev/pkg/sleepnet/fu"
	"go-ml.dev/pkg/sleepnet/inference"
	"go-ml.dev/pkg/zorros"
)

/*
Quantize converts the evaluated network into the portable int8 model
*/
func (n *Network) Quantize(meta Meta) (*inference.Model, error) {
	if err := n.exportable(); err != nil {
		return nil, err
	}
	m := &inference.Model{Variant: meta.Variant, RunID: meta.RunID, Classes: meta.Classes}
	for l, d := range n.Layers {
		a, err := inference.ActivationOf(string(d.Activation))
		if err != nil {
			return nil, zorros.Trace(err)
		}
		r, c := n.weights[l].Dims()
		q, scale := inference.Quantize(n.weights[l].RawMatrix().Data)
		m.Layers = append(m.Layers, inference.Layer{
			Inputs:     r,
			Units:      c,
			Activation: a,
			Scale:      scale,
			Weights:    q,
			Bias:       fu.Float32s(n.biases[l]),
		})
	}
	if err := m.Check(meta.Variant); err != nil {
		return nil, zorros.Trace(err)
	}
	return m, nil
}
