package pipeline

import (
	"fmt"
	"go-ml.dev/pkg/sleepnet/export"
	"go-ml.dev/pkg/sleepnet/fu"
	"go-ml.dev/pkg/sleepnet/inference"
	"go-ml.dev/pkg/sleepnet/preprocess"
	"go-ml.dev/pkg/sleepnet/tables"
	"go-ml.dev/pkg/zorros"
	"io"
)

/*
Prediction is the scored class of one input row
*/
type Prediction struct {
	Row         int
	Class       string
	Probability float32
}

/*
Scorer classifies raw survey rows with exported artifacts
*/
type Scorer struct {
	Preset Preset
	Params *preprocess.Params
	Model  *inference.Model
}

/*
Open loads the preprocessing record and the quantized model,
they must be of the same variant and feature layout
*/
func Open(paramsPath, modelPath string) (*Scorer, error) {
	p, err := export.LoadParams(paramsPath, "")
	if err != nil {
		return nil, err
	}
	preset, err := PresetOf(string(p.Target.Variant))
	if err != nil {
		return nil, err
	}
	m, err := inference.Load(modelPath, string(p.Target.Variant))
	if err != nil {
		return nil, err
	}
	if m.Features() != p.Width() {
		return nil, zorros.Errorf("model expects %d features, preprocessing produces %d", m.Features(), p.Width())
	}
	if fmt.Sprint(m.Classes) != fmt.Sprint(p.Target.Classes) {
		return nil, zorros.Errorf("model classes %q differ from preprocessing classes %q", m.Classes, p.Target.Classes)
	}
	return &Scorer{Preset: preset, Params: p, Model: m}, nil
}

/*
Score classifies every row of the table, the target column is not required
*/
func (s *Scorer) Score(t *tables.Table) ([]Prediction, error) {
	t, err := s.Preset.Prepare(t)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	x, err := s.Params.TransformTable(t)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	r := make([]Prediction, t.Len())
	for i := range r {
		class, p, err := s.Model.Classify(fu.Float32s(x.RawRowView(i)))
		if err != nil {
			return nil, zorros.Trace(err)
		}
		r[i] = Prediction{Row: i, Class: class, Probability: p}
	}
	return r, nil
}

/*
ScoreFile classifies the CSV file and prints one tab separated line per row
*/
func (s *Scorer) ScoreFile(path string, console io.Writer) ([]Prediction, error) {
	t, err := tables.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	r, err := s.Score(t)
	if err != nil {
		return nil, err
	}
	for _, p := range r {
		fmt.Fprintf(console, "%d\t%s\t%.4f\n", p.Row+1, p.Class, p.Probability)
	}
	return r, nil
}
