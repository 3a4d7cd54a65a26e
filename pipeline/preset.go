/*
Package pipeline runs the sleep disorder classifier from the survey CSV to
the exported artifacts.
*/
package pipeline

import (
	"go-ml.dev/pkg/sleepnet/nnet"
	"go-ml.dev/pkg/sleepnet/preprocess"
	"go-ml.dev/pkg/sleepnet/tables"
	"go-ml.dev/pkg/zorros"
)

const (
	TargetColumn = "Sleep Disorder"
	BMIColumn    = "BMI Category"
	BloodColumn  = "Blood Pressure"

	ParamsFile     = "preprocessing.json"
	CheckpointFile = "model.ckpt.xz"
	QuantizedFile  = "model.slq"
)

// ValidDisorders are the target labels kept for training
var ValidDisorders = []string{preprocess.NoDisorder, "Sleep Apnea", "Insomnia"}

var bmiSynonyms = preprocess.Synonyms{BMIColumn: {"Normal Weight": "Normal"}}

/*
Preset is a complete description of one pipeline variant
*/
type Preset struct {
	Variant     preprocess.Variant
	Numeric     []string
	Categorical []string
	Synonyms    preprocess.Synonyms
	// Derived are columns computed from raw columns, Derive adds them to the table
	Derived   map[string][]string
	Layers    []nnet.Dense
	Loss      nnet.Loss
	Epochs    int
	BatchSize int
	Patience  int
}

var Categorical = Preset{
	Variant:     preprocess.Categorical,
	Numeric:     []string{"Age", "Sleep Duration", "Quality of Sleep", "Heart Rate", "Daily Steps"},
	Categorical: []string{"Gender", BMIColumn},
	Synonyms:    bmiSynonyms,
	Layers: []nnet.Dense{
		{Units: 128, Activation: nnet.ReLU, Dropout: 0.4},
		{Units: 64, Activation: nnet.ReLU, Dropout: 0.4},
		{Units: 32, Activation: nnet.ReLU},
		{Units: 3, Activation: nnet.Softmax},
	},
	Loss:      nnet.CategoricalCrossentropy,
	Epochs:    150,
	BatchSize: 32,
	Patience:  15,
}

var Binary = Preset{
	Variant:     preprocess.Binary,
	Numeric:     []string{"Age", "Sleep Duration", "Quality of Sleep", "Heart Rate", "Daily Steps", "Systolic", "Diastolic"},
	Categorical: []string{"Gender", BMIColumn},
	Synonyms:    bmiSynonyms,
	Derived:     map[string][]string{BloodColumn: {"Systolic", "Diastolic"}},
	Layers: []nnet.Dense{
		{Units: 128, Activation: nnet.ReLU, Dropout: 0.4},
		{Units: 64, Activation: nnet.ReLU, Dropout: 0.3},
		{Units: 1, Activation: nnet.Sigmoid},
	},
	Loss:      nnet.BinaryCrossentropy,
	Epochs:    40,
	BatchSize: 16,
	Patience:  15,
}

/*
PresetOf returns the preset of the variant by name
*/
func PresetOf(variant string) (Preset, error) {
	switch preprocess.Variant(variant) {
	case preprocess.Categorical:
		return Categorical, nil
	case preprocess.Binary:
		return Binary, nil
	}
	return Preset{}, zorros.Errorf("unknown variant `%v`, expected %v or %v", variant, preprocess.Categorical, preprocess.Binary)
}

/*
Columns are the raw columns the preset reads, without the target
*/
func (p Preset) Columns() []string {
	derived := map[string]bool{}
	r := []string{}
	for from, to := range p.Derived {
		for _, n := range to {
			derived[n] = true
		}
		r = append(r, from)
	}
	for _, n := range p.Numeric {
		if !derived[n] {
			r = append(r, n)
		}
	}
	return append(r, p.Categorical...)
}

/*
Prepare normalizes categories and computes derived columns, the source
column of every derived pair must be present
*/
func (p Preset) Prepare(t *tables.Table) (_ *tables.Table, err error) {
	t = p.Synonyms.Apply(t)
	for from, to := range p.Derived {
		if !t.Has(from) {
			return nil, zorros.Errorf("rows do not have column `%v` required for %v", from, to)
		}
		t = preprocess.SplitPair(t, from, to[0], to[1])
	}
	return t, nil
}

/*
Layout returns network layers with the output sized for the target
*/
func (p Preset) Layout(target preprocess.Target) []nnet.Dense {
	layers := append([]nnet.Dense(nil), p.Layers...)
	layers[len(layers)-1].Units = target.Width()
	return layers
}
