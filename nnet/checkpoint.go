package nnet

import (
	"encoding/json"
	"github.com/ulikunitz/xz"
	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
	"io"
)

/*
Meta identifies the training run a checkpoint belongs to
*/
type Meta struct {
	RunID   string   `json:"run_id"`
	Variant string   `json:"variant"`
	Classes []string `json:"classes"`
}

type checkpoint struct {
	Meta      Meta        `json:"meta"`
	Inputs    int         `json:"inputs"`
	Layers    []Dense     `json:"layers"`
	Loss      Loss        `json:"loss"`
	Optimizer Adam        `json:"optimizer"`
	BatchSize int         `json:"batch_size"`
	Seed      int64       `json:"seed"`
	Weights   [][]float64 `json:"weights"` // row-major inputs x units per layer
	Biases    [][]float64 `json:"biases"`
}

/*
WriteCheckpoint stores architecture and weights as xz compressed JSON,
the network must be evaluated
*/
func (n *Network) WriteCheckpoint(w io.Writer, meta Meta) (err error) {
	if err = n.exportable(); err != nil {
		return
	}
	cp := checkpoint{
		Meta:      meta,
		Inputs:    n.inputs,
		Layers:    n.Layers,
		Loss:      n.Loss,
		Optimizer: n.Optimizer,
		BatchSize: n.BatchSize,
		Seed:      n.Seed,
	}
	for l, x := range n.weights {
		cp.Weights = append(cp.Weights, append([]float64(nil), x.RawMatrix().Data...))
		cp.Biases = append(cp.Biases, n.biases[l])
	}
	xw, err := xz.NewWriter(w)
	if err != nil {
		return zorros.Trace(err)
	}
	if err = json.NewEncoder(xw).Encode(&cp); err != nil {
		return zorros.Wrapf(err, "failed to encode checkpoint: %v", err.Error())
	}
	return xw.Close()
}

/*
ReadCheckpoint restores a network written by WriteCheckpoint,
variant must match the one recorded in the checkpoint unless it is empty
*/
func ReadCheckpoint(r io.Reader, variant string) (n *Network, meta Meta, err error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, meta, zorros.Wrapf(err, "checkpoint is not xz compressed: %v", err.Error())
	}
	cp := checkpoint{}
	if err = json.NewDecoder(xr).Decode(&cp); err != nil {
		return nil, meta, zorros.Wrapf(err, "failed to decode checkpoint: %v", err.Error())
	}
	if variant != "" && cp.Meta.Variant != variant {
		return nil, meta, zorros.Errorf("checkpoint is for variant `%v`, expected `%v`", cp.Meta.Variant, variant)
	}
	if err = validate(cp.Layers, cp.Loss); err != nil {
		return nil, meta, zorros.Trace(err)
	}
	if len(cp.Weights) != len(cp.Layers) || len(cp.Biases) != len(cp.Layers) {
		return nil, meta, zorros.Errorf("checkpoint has %d weight sets for %d layers", len(cp.Weights), len(cp.Layers))
	}
	n = &Network{
		Layers:    cp.Layers,
		Loss:      cp.Loss,
		Optimizer: cp.Optimizer,
		BatchSize: cp.BatchSize,
		Seed:      cp.Seed,
		inputs:    cp.Inputs,
	}
	fan := cp.Inputs
	for l, d := range cp.Layers {
		if len(cp.Weights[l]) != fan*d.Units || len(cp.Biases[l]) != d.Units {
			return nil, meta, zorros.Errorf("layer %d weights don't match %dx%d", l, fan, d.Units)
		}
		n.weights = append(n.weights, mat.NewDense(fan, d.Units, cp.Weights[l]))
		n.biases = append(n.biases, cp.Biases[l])
		fan = d.Units
	}
	n.state = Stopped
	return n, cp.Meta, nil
}
