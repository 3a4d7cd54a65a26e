package nnet

import (
	"golang.org/x/xerrors"
	"math"
)

type Loss string

const (
	CategoricalCrossentropy Loss = "categorical_crossentropy"
	BinaryCrossentropy      Loss = "binary_crossentropy"
)

// ErrDiverged is returned when a loss becomes NaN or infinite
var ErrDiverged = xerrors.New("training diverged, loss is not finite")

const clip = 1e-7

func clamp(p float64) float64 {
	return math.Min(math.Max(p, clip), 1-clip)
}

/*
Sample returns loss of one output row against the encoded label
*/
func (l Loss) Sample(output, label []float64) float64 {
	var s float64
	if l == BinaryCrossentropy {
		p := clamp(output[0])
		return -(label[0]*math.Log(p) + (1-label[0])*math.Log(1-p))
	}
	for j, y := range label {
		if y != 0 {
			s -= y * math.Log(clamp(output[j]))
		}
	}
	return s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
