package synth

import (
	"bytes"
	"go-ml.dev/pkg/sleepnet/tables"
	"gotest.tools/assert"
	"io/ioutil"
	"path/filepath"
	"testing"
)

func Test_Write(t *testing.T) {
	bf := &bytes.Buffer{}
	assert.NilError(t, Write(bf, Options{Rows: 100, Seed: 1}))
	tb, err := tables.Read(bf)
	assert.NilError(t, err)
	assert.Equal(t, tb.Len(), 100)
	assert.DeepEqual(t, tb.Names(), Header)
	counts := map[string]int{}
	c := tb.Col("Sleep Disorder")
	for i := 0; i < c.Len(); i++ {
		counts[c.Text(i)]++
	}
	assert.DeepEqual(t, counts, map[string]int{"": 58, "Sleep Apnea": 21, "Insomnia": 21})
	assert.Equal(t, c.Missing(0), true)
}

func Test_Deterministic(t *testing.T) {
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	assert.NilError(t, Write(a, Options{Rows: 30, Seed: 5, Missing: 0.1}))
	assert.NilError(t, Write(b, Options{Rows: 30, Seed: 5, Missing: 0.1}))
	assert.Equal(t, a.String(), b.String())
	c := &bytes.Buffer{}
	assert.NilError(t, Write(c, Options{Rows: 30, Seed: 6, Missing: 0.1}))
	assert.Assert(t, a.String() != c.String())
}

func Test_NoneLabel(t *testing.T) {
	bf := &bytes.Buffer{}
	assert.NilError(t, Write(bf, Options{Rows: 10, Seed: 1, NoneLabel: true}))
	tb, err := tables.Read(bf)
	assert.NilError(t, err)
	// "None" is read as missing the way pandas does
	assert.Assert(t, tb.Col("Sleep Disorder").Missing(0))
}

func Test_FileOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.csv")
	assert.NilError(t, File(path, Options{Rows: 10, Seed: 1}, false))
	assert.NilError(t, ioutil.WriteFile(path, []byte("real data\n"), 0644))
	assert.ErrorContains(t, File(path, Options{Rows: 10, Seed: 1}, false), "already exists")
	b, err := ioutil.ReadFile(path)
	assert.NilError(t, err)
	assert.Equal(t, string(b), "real data\n")

	assert.NilError(t, File(path, Options{Rows: 10, Seed: 1}, true))
	tb, err := tables.ReadCSV(path)
	assert.NilError(t, err)
	assert.Equal(t, tb.Len(), 10)
}
