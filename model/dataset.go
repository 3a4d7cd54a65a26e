package model

import (
	"gonum.org/v1/gonum/mat"
)

/*
Dataset is an abstraction of encoded data to feed hungry models
*/
type Dataset struct {
	Source     *mat.Dense // feature vectors, one row per sample
	Label      *mat.Dense // encoded target rows, one-hot or a single 0/1 column
	Validation float64    // fraction of tail rows held out for validation, Source is used if zero
	Features   []string   // names of feature vector columns
}

/*
Len returns count of samples
*/
func (ds Dataset) Len() int {
	if ds.Source == nil {
		return 0
	}
	r, _ := ds.Source.Dims()
	return r
}

/*
Split carves the validation slice from the tail of the dataset the way Keras does,
valid is the same as train when there is nothing to hold out
*/
func (ds Dataset) Split() (train, valid Dataset) {
	n := ds.Len()
	at := int(float64(n) * (1 - ds.Validation))
	if ds.Validation <= 0 || at <= 0 || at >= n {
		return ds, ds
	}
	train, valid = ds, ds
	train.Validation, valid.Validation = 0, 0
	_, fc := ds.Source.Dims()
	_, lc := ds.Label.Dims()
	train.Source = ds.Source.Slice(0, at, 0, fc).(*mat.Dense)
	train.Label = ds.Label.Slice(0, at, 0, lc).(*mat.Dense)
	valid.Source = ds.Source.Slice(at, n, 0, fc).(*mat.Dense)
	valid.Label = ds.Label.Slice(at, n, 0, lc).(*mat.Dense)
	return
}

/*
Rows gathers samples at indices into a new dataset
*/
func (ds Dataset) Rows(indices []int) Dataset {
	_, fc := ds.Source.Dims()
	_, lc := ds.Label.Dims()
	x := mat.NewDense(len(indices), fc, nil)
	y := mat.NewDense(len(indices), lc, nil)
	for j, i := range indices {
		x.SetRow(j, ds.Source.RawRowView(i))
		y.SetRow(j, ds.Label.RawRowView(i))
	}
	return Dataset{Source: x, Label: y, Features: ds.Features}
}
