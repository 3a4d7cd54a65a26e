package tables

import (
	"golang.org/x/xerrors"
	"gotest.tools/assert"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `Person ID,Gender,Age,BMI Category,Sleep Disorder
1,Male,27,Overweight,
2,Female,,Normal Weight,Insomnia
3,Male,28,Normal,NaN
4,Female,x,Obese,Sleep Apnea
`

func Test_Read(t *testing.T) {
	q, err := Read(strings.NewReader(sample))
	assert.NilError(t, err)
	assert.Equal(t, q.Len(), 4)
	assert.DeepEqual(t, q.Names(), []string{"Person ID", "Gender", "Age", "BMI Category", "Sleep Disorder"})
	assert.Assert(t, q.Col("Sleep Disorder").Missing(0))
	assert.Assert(t, q.Col("Sleep Disorder").Missing(2))
	assert.Equal(t, q.Col("Sleep Disorder").Text(1), "Insomnia")
	v, ok := q.Col("Age").Float(0)
	assert.Assert(t, ok)
	assert.Equal(t, v, 27.0)
	_, ok = q.Col("Age").Float(1)
	assert.Assert(t, !ok)
	_, ok = q.Col("Age").Float(3)
	assert.Assert(t, !ok)
}

func Test_ReadCSVMissing(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Assert(t, xerrors.Is(err, os.ErrNotExist))
	assert.ErrorContains(t, err, "absent.csv")
}

func Test_ReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.csv")
	assert.NilError(t, os.WriteFile(path, []byte("\xef\xbb\xbf"+sample), 0644))
	q, err := ReadCSV(path)
	assert.NilError(t, err)
	assert.Assert(t, q.Has("Person ID"))
}

func Test_Ragged(t *testing.T) {
	_, err := Read(strings.NewReader("a,b\n1,2\n3\n"))
	assert.Assert(t, err != nil)
	_, err = Read(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")
}

func Test_SelectFilterRows(t *testing.T) {
	q, err := Read(strings.NewReader(sample))
	assert.NilError(t, err)
	s, err := q.Select("Gender", "Sleep Disorder")
	assert.NilError(t, err)
	assert.DeepEqual(t, s.Names(), []string{"Gender", "Sleep Disorder"})
	_, err = q.Select("Gender", "Stress Level")
	assert.ErrorContains(t, err, "Stress Level")

	f := s.Filter(func(i int) bool { return s.Col("Gender").Text(i) == "Female" })
	assert.Equal(t, f.Len(), 2)
	assert.Equal(t, f.Col("Sleep Disorder").Text(1), "Sleep Apnea")

	r := s.Rows([]int{3, 0})
	assert.Equal(t, r.Col("Gender").Text(0), "Female")
	assert.Equal(t, r.Col("Gender").Text(1), "Male")
}

func Test_ColumnOps(t *testing.T) {
	q, err := Read(strings.NewReader(sample))
	assert.NilError(t, err)
	bmi := q.Col("BMI Category")
	assert.DeepEqual(t, bmi.Unique(), []string{"Overweight", "Normal Weight", "Normal", "Obese"})
	m := bmi.Map(func(s string) string {
		if s == "Normal Weight" {
			return "Normal"
		}
		return s
	})
	assert.DeepEqual(t, m.Unique(), []string{"Overweight", "Normal", "Obese"})
	d := q.Col("Sleep Disorder").Fill("None")
	assert.Equal(t, d.Text(0), "None")
	assert.Assert(t, !d.Missing(0))

	w := q.With(m.Rename("BMI"))
	assert.Assert(t, w.Has("BMI"))
	assert.Equal(t, len(w.Names()), 6)
	w = w.With(NewColumn("BMI", []string{"a", "", "c", "d"}))
	assert.Equal(t, len(w.Names()), 6)
	assert.Assert(t, w.Col("BMI").Missing(1))
}
