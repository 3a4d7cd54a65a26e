package preprocess

import (
	"go-ml.dev/pkg/sleepnet/fu"
	"go-ml.dev/pkg/sleepnet/tables"
	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
	"sort"
)

/*
Variant tags the target encoding, artifacts of different variants are not interchangeable
*/
type Variant string

const (
	// Categorical is one-hot over the recorded class order
	Categorical Variant = "categorical"
	// Binary is a single 0/1 output, 1 means any disorder is present
	Binary Variant = "binary"
)

// Disorder is the positive class of the binary variant
const Disorder = "Disorder"

/*
Target is the fitted target encoding
*/
type Target struct {
	Name    string   `json:"name"`
	Variant Variant  `json:"variant"`
	Classes []string `json:"classes"`
}

/*
FitTarget records the class order of the target column. Categorical classes are
the sorted distinct labels, binary classes are always [NoDisorder, Disorder].
*/
func FitTarget(c *tables.Column, variant Variant) (Target, error) {
	switch variant {
	case Categorical:
		classes := c.Unique()
		if len(classes) < 2 {
			return Target{}, zorros.Errorf("target `%v` has %d classes, at least 2 are required", c.Name(), len(classes))
		}
		sort.Strings(classes)
		return Target{Name: c.Name(), Variant: variant, Classes: classes}, nil
	case Binary:
		return Target{Name: c.Name(), Variant: variant, Classes: []string{NoDisorder, Disorder}}, nil
	}
	return Target{}, zorros.Errorf("unknown target variant `%v`", variant)
}

/*
Width is the length of the encoded target and of the model output
*/
func (t Target) Width() int {
	if t.Variant == Binary {
		return 1
	}
	return len(t.Classes)
}

/*
ClassOf maps raw label to its class name under the variant
*/
func (t Target) ClassOf(label string) string {
	if t.Variant == Binary {
		if label == NoDisorder || tables.IsNA(label) {
			return NoDisorder
		}
		return Disorder
	}
	return label
}

/*
Encode returns the encoded target of the label
*/
func (t Target) Encode(label string) ([]float64, error) {
	class := t.ClassOf(label)
	if t.Variant == Binary {
		if class == Disorder {
			return []float64{1}, nil
		}
		return []float64{0}, nil
	}
	r := make([]float64, len(t.Classes))
	j := sort.SearchStrings(t.Classes, class)
	if j >= len(t.Classes) || t.Classes[j] != class {
		return nil, zorros.Errorf("label `%v` is not one of target classes %v", label, t.Classes)
	}
	r[j] = 1
	return r, nil
}

/*
EncodeColumn encodes every row of the target column
*/
func (t Target) EncodeColumn(c *tables.Column) (*mat.Dense, error) {
	if c.Len() == 0 {
		return nil, zorros.Errorf("no rows to encode")
	}
	m := mat.NewDense(c.Len(), t.Width(), nil)
	for i := 0; i < c.Len(); i++ {
		v, err := t.Encode(c.Text(i))
		if err != nil {
			return nil, zorros.Wrapf(err, "row %d: %v", i, err.Error())
		}
		m.SetRow(i, v)
	}
	return m, nil
}

/*
Decode returns index and probability of the predicted class for the model output
*/
func (t Target) Decode(output []float64) (int, float64) {
	if t.Variant == Binary {
		if output[0] >= 0.5 {
			return 1, output[0]
		}
		return 0, 1 - output[0]
	}
	j := fu.Indmaxd(output)
	return j, output[j]
}
