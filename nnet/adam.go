package nnet

import (
	"gonum.org/v1/gonum/mat"
	"math"
)

/*
Adam is the optimizer configuration
*/
type Adam struct {
	LearningRate float64 `json:"learning_rate"`
	Beta1        float64 `json:"beta1"`
	Beta2        float64 `json:"beta2"`
	Epsilon      float64 `json:"epsilon"`
}

var DefaultAdam = Adam{LearningRate: 0.001, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-7}

type adam struct {
	Adam
	t      int
	mw, vw []*mat.Dense
	mb, vb [][]float64
}

func newAdam(cfg Adam, weights []*mat.Dense, biases [][]float64) *adam {
	o := &adam{Adam: cfg}
	for l, w := range weights {
		r, c := w.Dims()
		o.mw = append(o.mw, mat.NewDense(r, c, nil))
		o.vw = append(o.vw, mat.NewDense(r, c, nil))
		o.mb = append(o.mb, make([]float64, len(biases[l])))
		o.vb = append(o.vb, make([]float64, len(biases[l])))
	}
	return o
}

// step advances the timestep, called once per batch before layer updates
func (o *adam) step() float64 {
	o.t++
	t := float64(o.t)
	return o.LearningRate * math.Sqrt(1-math.Pow(o.Beta2, t)) / (1 - math.Pow(o.Beta1, t))
}

func (o *adam) apply(lr float64, p, g, m, v []float64) {
	for i, gi := range g {
		m[i] += (gi - m[i]) * (1 - o.Beta1)
		v[i] += (gi*gi - v[i]) * (1 - o.Beta2)
		p[i] -= lr * m[i] / (math.Sqrt(v[i]) + o.Epsilon)
	}
}

func (o *adam) update(lr float64, l int, w *mat.Dense, gw *mat.Dense, b, gb []float64) {
	o.apply(lr, w.RawMatrix().Data, gw.RawMatrix().Data, o.mw[l].RawMatrix().Data, o.vw[l].RawMatrix().Data)
	o.apply(lr, b, gb, o.mb[l], o.vb[l])
}
