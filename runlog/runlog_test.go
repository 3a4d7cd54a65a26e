package runlog

import (
	"go-ml.dev/pkg/sleepnet/model"
	"gotest.tools/assert"
	"path/filepath"
	"testing"
)

func Test_RunHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	l, err := Open(path)
	assert.NilError(t, err)
	defer l.Close()

	r := NewRun("categorical", "data.csv", 42)
	assert.Assert(t, r.ID != "")
	assert.Assert(t, r.Host != "")
	assert.NilError(t, l.Begin(r))

	report := &model.Report{TheBest: 1, Stopped: "no improvement for 15 iterations"}
	for i, loss := range []float64{0.9, 0.5, 0.7} {
		report.History = append(report.History, model.Iteration{
			Train: model.Summary{Loss: loss + 0.1, Accuracy: 0.5},
			Valid: model.Summary{Loss: loss, Accuracy: float64(i) / 4},
			Score: -loss,
		})
	}
	assert.NilError(t, l.Epochs(r.ID, report))
	assert.NilError(t, l.Finish(r.ID, model.Summary{Loss: 0.55, Accuracy: 0.75}))

	history, err := l.History(r.ID)
	assert.NilError(t, err)
	assert.Equal(t, len(history), 3)
	for i, it := range history {
		assert.Equal(t, it.Valid.Iteration, i)
		assert.Equal(t, it.Valid.Loss, report.History[i].Valid.Loss)
		assert.Equal(t, it.Valid.Accuracy, report.History[i].Valid.Accuracy)
		assert.Equal(t, it.Score, report.History[i].Score)
	}

	s, err := l.Get(r.ID)
	assert.NilError(t, err)
	assert.Equal(t, s.Variant, "categorical")
	assert.Equal(t, s.Seed, int64(42))
	assert.Equal(t, s.BestEpoch, 1)
	assert.Equal(t, s.Stopped, report.Stopped)
	assert.Assert(t, s.Finished)
	assert.Equal(t, s.Test.Accuracy, 0.75)
	assert.Assert(t, s.StartedAt.Equal(r.StartedAt))
}

func Test_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	l, err := Open(path)
	assert.NilError(t, err)
	r := NewRun("binary", "data.csv", 1)
	assert.NilError(t, l.Begin(r))
	assert.NilError(t, l.Close())

	l, err = Open(path)
	assert.NilError(t, err)
	defer l.Close()
	s, err := l.Get(r.ID)
	assert.NilError(t, err)
	assert.Assert(t, !s.Finished)
	assert.Equal(t, s.BestEpoch, -1)
	assert.ErrorContains(t, l.Begin(r), "failed to store run")
}

func Test_Unknown(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	assert.NilError(t, err)
	defer l.Close()
	_, err = l.Get("absent")
	assert.ErrorContains(t, err, "not found")
	assert.ErrorContains(t, l.Finish("absent", model.Summary{}), "not found")
	history, err := l.History("absent")
	assert.NilError(t, err)
	assert.Equal(t, len(history), 0)
}
