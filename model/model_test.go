package model

import (
	"gonum.org/v1/gonum/mat"
	"gotest.tools/assert"
	"reflect"
	"testing"
)

type weights struct {
	value    int
	restored int
}

func (w *weights) Memorize() Snapshot { return w.value }
func (w *weights) Restore(s Snapshot) { w.restored = s.(int); w.value = w.restored }

// run feeds validation losses one per iteration until training stops
func run(t *testing.T, tr Training, losses []float64) (*Report, *weights, int) {
	m := &weights{restored: -1}
	w := tr.Workout()
	n := 0
	for ; w != nil; w = w.Next() {
		m.value = w.Iteration()
		report, done, err := w.Complete(m, Summary{Subset: TrainSubset}, Summary{Subset: ValidSubset, Loss: losses[n]}, false)
		assert.NilError(t, err)
		n++
		if done {
			return report, m, n
		}
	}
	t.Fatal("training did not stop")
	return nil, nil, 0
}

func Test_EarlyStopping(t *testing.T) {
	var lines []string
	losses := []float64{1, 0.8, 0.5, 0.6, 0.7, 0.55, 0.9, 0.4}
	report, m, n := run(t, Training{Iterations: 100, ScoreHistory: 3, Verbose: func(s string) { lines = append(lines, s) }}, losses)
	assert.Equal(t, n, 6)
	assert.Equal(t, report.TheBest, 2)
	assert.Equal(t, report.Valid.Loss, 0.5)
	assert.Equal(t, report.Score, -0.5)
	assert.Equal(t, len(report.History), 6)
	assert.Equal(t, m.restored, 2)
	assert.Equal(t, len(lines), 6)
	assert.Assert(t, report.Stopped != "")
}

func Test_IterationsBudget(t *testing.T) {
	report, m, n := run(t, Training{Iterations: 4, ScoreHistory: 10}, []float64{3, 2, 1, 1.5})
	assert.Equal(t, n, 4)
	assert.Equal(t, report.TheBest, 2)
	assert.Equal(t, m.restored, 2)
}

func Test_MetricsGoal(t *testing.T) {
	w := Training{Iterations: 10}.Workout()
	m := &weights{}
	report, done, err := w.Complete(m, Summary{}, Summary{Loss: 1}, true)
	assert.NilError(t, err)
	assert.Assert(t, done)
	assert.Equal(t, report.TheBest, 0)
	assert.Assert(t, w.Next() == nil)
	_, _, err = w.Complete(m, Summary{}, Summary{}, false)
	assert.ErrorContains(t, err, "already done")
}

func Test_Classification(t *testing.T) {
	u := Classification{Goal: 0.5}.New(3, ValidSubset)
	u.Update([]float64{0.1, 0.8, 0.1}, []float64{0, 1, 0}, 0.5)
	u.Update([]float64{0.6, 0.3, 0.1}, []float64{0, 0, 1}, 1.0)
	u.Update([]float64{0.7}, []float64{1}, 0.25)
	u.Update([]float64{0.4}, []float64{1}, 0.25)
	s, done := u.Complete()
	assert.Equal(t, s.Iteration, 3)
	assert.Equal(t, s.Count, 4)
	assert.Equal(t, s.Accuracy, 0.5)
	assert.Equal(t, s.Loss, 0.5)
	assert.Assert(t, done)
	_, done = Classification{Goal: 0.5}.New(3, TrainSubset).Complete()
	assert.Assert(t, !done)
}

func Test_DatasetSplit(t *testing.T) {
	x := mat.NewDense(10, 2, nil)
	y := mat.NewDense(10, 1, nil)
	for i := 0; i < 10; i++ {
		x.Set(i, 0, float64(i))
		y.Set(i, 0, float64(i%2))
	}
	ds := Dataset{Source: x, Label: y, Validation: 0.2}
	train, valid := ds.Split()
	assert.Equal(t, train.Len(), 8)
	assert.Equal(t, valid.Len(), 2)
	assert.Equal(t, valid.Source.At(0, 0), 8.0)
	train, valid = Dataset{Source: x, Label: y}.Split()
	assert.Equal(t, train.Len(), 10)
	assert.Equal(t, valid.Len(), 10)

	r := ds.Rows([]int{9, 0})
	assert.Equal(t, r.Len(), 2)
	assert.Equal(t, r.Source.At(0, 0), 9.0)
	assert.Equal(t, r.Label.At(0, 0), 1.0)
}

func Test_Params(t *testing.T) {
	var lr float64
	var batch int
	m := map[string]reflect.Value{"learning_rate": reflect.ValueOf(&lr), "batch_size": reflect.ValueOf(&batch)}
	p := Params{"learning_rate": 0.01, "batch_size": 64}
	assert.NilError(t, p.Apply(m))
	assert.Equal(t, lr, 0.01)
	assert.Equal(t, batch, 64)
	assert.ErrorContains(t, Params{"momentum": 1}.Apply(m), "momentum")
}
