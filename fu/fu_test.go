package fu

import (
	"gotest.tools/assert"
	"path/filepath"
	"testing"
)

func Test_Indmax(t *testing.T) {
	assert.Equal(t, Indmaxd(nil), -1)
	assert.Equal(t, Indmaxd([]float64{1, 3, 3, 2}), 1)
}

func Test_Fnz(t *testing.T) {
	assert.Equal(t, Fnzi(0, 0, 3, 4), 3)
	assert.Equal(t, Fnzd(0, 0.5), 0.5)
	assert.Equal(t, Fnzs("", "x"), "x")
	assert.Equal(t, Maxi(1, 5, 2), 5)
	assert.Equal(t, Mini(4, 5, 2), 2)
}

func Test_Floats32(t *testing.T) {
	a := Float32s([]float64{1, 2, 3})
	assert.Equal(t, Mse(a, []float32{1, 2, 5}), float32(4)/3)
	assert.Equal(t, MaxAbsDiff(a, []float32{1, 1, 3}), float32(1))
}

func Test_Path(t *testing.T) {
	abs, _ := filepath.Abs("x.json")
	assert.Equal(t, Path("out", abs), abs)
	assert.Equal(t, Path("out", "x.json"), filepath.Join("out", "x.json"))
}
