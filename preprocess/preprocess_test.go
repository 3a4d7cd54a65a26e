package preprocess

import (
	"fmt"
	"go-ml.dev/pkg/sleepnet/tables"
	"gotest.tools/assert"
	"math"
	"math/rand"
	"strings"
	"testing"
)

const survey = `Gender,Age,Sleep Duration,BMI Category,Blood Pressure,Sleep Disorder
Male,20,6,Normal,120/80,
Female,30,7,Normal Weight,130/85,Insomnia
Male,,8,Overweight,bad,Sleep Apnea
Female,40,,Obese,140/90,Narcolepsy
Male,50,6,,110/70,None
Female,60,7,Normal,125/82,Insomnia
`

func read(t *testing.T, s string) *tables.Table {
	q, err := tables.Read(strings.NewReader(s))
	assert.NilError(t, err)
	return q
}

var valid = []string{"None", "Sleep Apnea", "Insomnia"}

func Test_NormalizeTarget(t *testing.T) {
	q, dropped := NormalizeTarget(read(t, survey), "Sleep Disorder", valid)
	assert.Equal(t, dropped, 1)
	assert.Equal(t, q.Len(), 5)
	c := q.Col("Sleep Disorder")
	assert.Equal(t, c.Text(0), NoDisorder)
	assert.Equal(t, c.Text(3), NoDisorder)
	for i := 0; i < q.Len(); i++ {
		assert.Assert(t, c.Text(i) != "Narcolepsy")
	}
}

func Test_Synonyms(t *testing.T) {
	s := Synonyms{"BMI Category": {"Normal Weight": "Normal"}, "Absent": {"a": "b"}}
	q := s.Apply(read(t, survey))
	assert.DeepEqual(t, q.Col("BMI Category").Unique(), []string{"Normal", "Overweight", "Obese"})
}

func Test_SplitPair(t *testing.T) {
	q := SplitPair(read(t, survey), "Blood Pressure", "Systolic", "Diastolic")
	v, ok := q.Col("Systolic").Float(1)
	assert.Assert(t, ok)
	assert.Equal(t, v, 130.0)
	v, ok = q.Col("Diastolic").Float(1)
	assert.Assert(t, ok)
	assert.Equal(t, v, 85.0)
	assert.Assert(t, q.Col("Systolic").Missing(2))
	assert.Assert(t, q.Col("Diastolic").Missing(2))
}

func Test_FitNumeric(t *testing.T) {
	q := read(t, "x\n1\n2\nNA\n5\n")
	n, err := FitNumeric(q.Col("x"))
	assert.NilError(t, err)
	assert.Equal(t, n.Impute, 8.0/3)
	assert.Assert(t, math.Abs(n.Mean-8.0/3) < 1e-12)
	// imputed column 1,2,8/3,5
	exact := math.Sqrt((math.Pow(1-8.0/3, 2) + math.Pow(2-8.0/3, 2) + math.Pow(5-8.0/3, 2)) / 4)
	assert.Assert(t, math.Abs(n.Scale-exact) < 1e-12)
	assert.Assert(t, math.Abs(n.Transform("")) < 1e-12)
	assert.Assert(t, math.Abs(n.Transform(" 5 ")-(5-n.Mean)/n.Scale) < 1e-12)
	assert.Equal(t, n.Transform("oops"), n.Transform("NaN"))
}

func Test_FitNumericInfinite(t *testing.T) {
	n, err := FitNumeric(read(t, "x\n30\n40\ninf\n-Inf\n").Col("x"))
	assert.NilError(t, err)
	assert.Equal(t, n.Impute, 35.0)
	assert.Equal(t, n.Mean, 35.0)
	// imputed column 30,40,35,35
	assert.Assert(t, math.Abs(n.Scale-math.Sqrt(12.5)) < 1e-12)
	for _, s := range []string{"30", "inf", "+Inf", "1e400"} {
		v := n.Transform(s)
		assert.Assert(t, !math.IsInf(v, 0) && !math.IsNaN(v), "%v -> %v", s, v)
	}
	assert.Equal(t, n.Transform("inf"), 0.0)
	_, err = FitNumeric(read(t, "x\ninf\n-inf\n").Col("x"))
	assert.ErrorContains(t, err, "no values")
}

func Test_ZeroVariance(t *testing.T) {
	n, err := FitNumeric(read(t, "x\n7.1\n7.1\n7.1\n").Col("x"))
	assert.NilError(t, err)
	assert.Equal(t, n.Scale, 1.0)
	assert.Assert(t, math.Abs(n.Transform("8.1")-1) < 1e-9)
	_, err = FitNumeric(read(t, "x\nNA\n\nz\n").Col("x"))
	assert.ErrorContains(t, err, "no values")
}

func Test_FitCategory(t *testing.T) {
	q, err := FitCategory(read(t, "g\nb\na\nb\na\nc\n\n").Col("g"))
	assert.NilError(t, err)
	assert.DeepEqual(t, q.Vocabulary, []string{"a", "b", "c"})
	assert.Equal(t, q.MostFrequent, "a")
	dst := make([]float64, 3)
	q.Transform("c", dst)
	assert.DeepEqual(t, dst, []float64{0, 0, 1})
	q.Transform("", dst)
	assert.DeepEqual(t, dst, []float64{1, 0, 0})
	q.Transform("unseen", dst)
	assert.DeepEqual(t, dst, []float64{0, 0, 0})
	_, err = FitCategory(read(t, "g\n\n\n").Col("g"))
	assert.ErrorContains(t, err, "no values")
}

func fitted(t *testing.T) (*tables.Table, *Params) {
	q, _ := NormalizeTarget(read(t, survey), "Sleep Disorder", valid)
	q = Synonyms{"BMI Category": {"Normal Weight": "Normal"}}.Apply(q)
	target, err := FitTarget(q.Col("Sleep Disorder"), Categorical)
	assert.NilError(t, err)
	p, err := Fit(q, []string{"Age", "Sleep Duration"}, []string{"Gender", "BMI Category"}, target)
	assert.NilError(t, err)
	return q, p
}

func Test_Layout(t *testing.T) {
	_, p := fitted(t)
	assert.NilError(t, p.Validate())
	assert.Equal(t, p.Width(), 6)
	assert.DeepEqual(t, p.FeatureNamesOut, []string{
		"Age", "Sleep Duration", "Gender_Female", "Gender_Male",
		"BMI Category_Normal", "BMI Category_Overweight"})
	assert.DeepEqual(t, p.Target.Classes, []string{"Insomnia", "None", "Sleep Apnea"})
}

func Test_TransformTable(t *testing.T) {
	q, p := fitted(t)
	m, err := p.TransformTable(q)
	assert.NilError(t, err)
	r, c := m.Dims()
	assert.Equal(t, r, q.Len())
	assert.Equal(t, c, p.Width())
	for i := 0; i < q.Len(); i++ {
		row := map[string]string{}
		for _, n := range q.Names() {
			row[n] = q.Col(n).Text(i)
		}
		a := p.Transform(row)
		b := p.Transform(row)
		assert.DeepEqual(t, a, b)
		assert.DeepEqual(t, a, m.RawRowView(i))
	}
	_, err = p.TransformTable(read(t, "Age\n1\n"))
	assert.ErrorContains(t, err, "Sleep Duration")
}

func Test_FixedWidth(t *testing.T) {
	_, p := fitted(t)
	rnd := rand.New(rand.NewSource(1))
	words := []string{"", "NaN", "Male", "Female", "Other", "Normal", "12", "-3.5", "x/y"}
	for k := 0; k < 200; k++ {
		row := map[string]string{}
		for _, n := range []string{"Age", "Sleep Duration", "Gender", "BMI Category"} {
			if rnd.Intn(5) > 0 {
				row[n] = words[rnd.Intn(len(words))]
			}
		}
		v := p.Transform(row)
		assert.Equal(t, len(v), p.Width())
		for _, x := range v {
			assert.Assert(t, !math.IsNaN(x) && !math.IsInf(x, 0))
		}
	}
	v := p.Transform(map[string]string{"Gender": "Other", "BMI Category": "Normal"})
	assert.DeepEqual(t, v[2:4], []float64{0, 0})
	assert.DeepEqual(t, v[4:6], []float64{1, 0})
}

func Test_Target(t *testing.T) {
	c := read(t, "y\nNone\nInsomnia\nSleep Apnea\n").Col("y").Fill(NoDisorder)
	q, err := FitTarget(c, Categorical)
	assert.NilError(t, err)
	v, err := q.Encode("Sleep Apnea")
	assert.NilError(t, err)
	assert.DeepEqual(t, v, []float64{0, 0, 1})
	_, err = q.Encode("Narcolepsy")
	assert.ErrorContains(t, err, "Narcolepsy")
	j, pr := q.Decode([]float64{0.2, 0.7, 0.1})
	assert.Equal(t, j, 1)
	assert.Equal(t, pr, 0.7)

	b, err := FitTarget(c, Binary)
	assert.NilError(t, err)
	assert.Equal(t, b.Width(), 1)
	for label, want := range map[string]float64{"None": 0, "": 0, "Insomnia": 1, "Sleep Apnea": 1} {
		v, err := b.Encode(label)
		assert.NilError(t, err)
		assert.DeepEqual(t, v, []float64{want})
	}
	j, pr = b.Decode([]float64{0.25})
	assert.Equal(t, j, 0)
	assert.Equal(t, pr, 0.75)

	_, err = FitTarget(read(t, "y\nNone\nNone\n").Col("y"), Categorical)
	assert.ErrorContains(t, err, "at least 2")
	_, err = FitTarget(c, Variant("ternary"))
	assert.ErrorContains(t, err, "ternary")
}

func labels(counts map[string]int) []string {
	r := []string{}
	for _, c := range []string{"Insomnia", "None", "Sleep Apnea"} {
		for i := 0; i < counts[c]; i++ {
			r = append(r, c)
		}
	}
	rand.New(rand.NewSource(7)).Shuffle(len(r), func(i, j int) { r[i], r[j] = r[j], r[i] })
	return r
}

func Test_StratifiedSplit(t *testing.T) {
	counts := map[string]int{"None": 58, "Sleep Apnea": 21, "Insomnia": 21}
	y := labels(counts)
	train, test, err := StratifiedSplit(y, 0.2, 42)
	assert.NilError(t, err)
	assert.Equal(t, len(test), 20)
	assert.Equal(t, len(train), 80)
	seen := map[int]bool{}
	for _, i := range append(append([]int(nil), train...), test...) {
		assert.Assert(t, !seen[i])
		seen[i] = true
	}
	got := map[string]int{}
	for _, i := range test {
		got[y[i]]++
	}
	for c, n := range counts {
		exact := float64(n) * 0.2
		assert.Assert(t, math.Abs(float64(got[c])-exact) <= 1, fmt.Sprintf("%v: %d of %d", c, got[c], n))
	}
	train2, test2, err := StratifiedSplit(y, 0.2, 42)
	assert.NilError(t, err)
	assert.DeepEqual(t, train, train2)
	assert.DeepEqual(t, test, test2)
}

func Test_StratifiedSplitErrors(t *testing.T) {
	_, _, err := StratifiedSplit(labels(map[string]int{"None": 10, "Insomnia": 1}), 0.2, 42)
	assert.ErrorContains(t, err, "Insomnia")
	_, _, err = StratifiedSplit(labels(map[string]int{"None": 2, "Insomnia": 2, "Sleep Apnea": 2}), 0.2, 42)
	assert.ErrorContains(t, err, "can't stratify")
	_, _, err = StratifiedSplit(labels(map[string]int{"None": 10}), 1.5, 42)
	assert.ErrorContains(t, err, "test size")
}

func Test_Validate(t *testing.T) {
	_, p := fitted(t)
	q := *p
	q.Scales = []float64{1, 0}
	assert.ErrorContains(t, q.Validate(), "non-positive")
	q = *p
	q.Categories = [][]string{{"Male", "Female"}, p.Categories[1]}
	assert.ErrorContains(t, q.Validate(), "not sorted")
	q = *p
	q.FeatureNamesOut = q.FeatureNamesOut[1:]
	assert.ErrorContains(t, q.Validate(), "feature_names_out")
}
