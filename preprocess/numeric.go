package preprocess

import (
	"go-ml.dev/pkg/sleepnet/tables"
	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"
	"gonum.org/v1/gonum/stat"
	"math"
	"strconv"
	"strings"
)

/*
Numeric is the fitted mean imputation and standardization of one column
*/
type Numeric struct {
	Name   string
	Impute float64 // replaces missing and non-numeric cells
	Mean   float64
	Scale  float64 // population standard deviation, 1 for constant columns
}

/*
FitNumeric computes imputation value, mean and scale of the column.
A column with no finite numeric cell can't be fitted and reported as an error.
*/
func FitNumeric(c *tables.Column) (Numeric, error) {
	present := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Float(i); finite(v, ok) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return Numeric{}, zorros.Errorf("numeric feature `%v` has no values in training rows", c.Name())
	}
	n := Numeric{Name: c.Name(), Impute: stat.Mean(present, nil)}
	x := make([]float64, c.Len())
	for i := range x {
		x[i] = n.value(c.Float(i))
	}
	n.Mean = stat.Mean(x, nil)
	n.Scale = math.Sqrt(stat.MomentAbout(2, x, n.Mean, nil))
	if n.Scale <= 10*epsilon*math.Max(1, math.Abs(n.Mean)) || math.IsNaN(n.Scale) {
		zlog.Warning("numeric feature `" + c.Name() + "` has zero variance, scale is set to 1")
		n.Scale = 1
	}
	return n, nil
}

const epsilon = 2.220446049250313e-16

// finite cells are fitted and passed through, others are imputed
func finite(v float64, ok bool) bool {
	return ok && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (n Numeric) value(v float64, ok bool) float64 {
	if !finite(v, ok) {
		return n.Impute
	}
	return v
}

/*
Transform imputes and standardizes a raw cell text
*/
func (n Numeric) Transform(text string) float64 {
	var v float64
	var ok bool
	if !tables.IsNA(text) {
		var err error
		v, err = strconv.ParseFloat(strings.TrimSpace(text), 64)
		ok = err == nil
	}
	return (n.value(v, ok) - n.Mean) / n.Scale
}
