package preprocess

import (
	"go-ml.dev/pkg/sleepnet/tables"
	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
	"sort"
)

/*
Params is the complete fitted preprocessing: numeric block first, then one-hot
blocks in categorical feature order. The JSON form is the portable record a
consumer rebuilds feature vectors from, so field order and names are part of
the artifact contract.
*/
type Params struct {
	NumericFeatures     []string   `json:"numeric_features"`
	Means               []float64  `json:"means"`
	Scales              []float64  `json:"scales"`
	ImputeMeans         []float64  `json:"impute_means"`
	CategoricalFeatures []string   `json:"categorical_features"`
	Categories          [][]string `json:"categories"`
	MostFrequent        []string   `json:"most_frequent"`
	FeatureNamesOut     []string   `json:"feature_names_out"`
	Target              Target     `json:"target"`
}

/*
Fit computes Params from the training rows
*/
func Fit(train *tables.Table, numeric, categorical []string, target Target) (*Params, error) {
	if train.Len() == 0 {
		return nil, zorros.Errorf("can't fit preprocessing on empty training set")
	}
	p := &Params{Target: target}
	for _, n := range numeric {
		if !train.Has(n) {
			return nil, zorros.Errorf("training rows do not have numeric feature `%v`", n)
		}
		q, err := FitNumeric(train.Col(n))
		if err != nil {
			return nil, zorros.Trace(err)
		}
		p.NumericFeatures = append(p.NumericFeatures, q.Name)
		p.Means = append(p.Means, q.Mean)
		p.Scales = append(p.Scales, q.Scale)
		p.ImputeMeans = append(p.ImputeMeans, q.Impute)
	}
	for _, n := range categorical {
		if !train.Has(n) {
			return nil, zorros.Errorf("training rows do not have categorical feature `%v`", n)
		}
		q, err := FitCategory(train.Col(n))
		if err != nil {
			return nil, zorros.Trace(err)
		}
		p.CategoricalFeatures = append(p.CategoricalFeatures, q.Name)
		p.Categories = append(p.Categories, q.Vocabulary)
		p.MostFrequent = append(p.MostFrequent, q.MostFrequent)
	}
	p.FeatureNamesOut = p.featureNames()
	return p, nil
}

func (p *Params) featureNames() []string {
	r := append([]string(nil), p.NumericFeatures...)
	for i, n := range p.CategoricalFeatures {
		for _, v := range p.Categories[i] {
			r = append(r, n+"_"+v)
		}
	}
	return r
}

/*
Width is the feature vector length
*/
func (p *Params) Width() int {
	w := len(p.NumericFeatures)
	for _, c := range p.Categories {
		w += len(c)
	}
	return w
}

func (p *Params) Numeric(i int) Numeric {
	return Numeric{Name: p.NumericFeatures[i], Impute: p.ImputeMeans[i], Mean: p.Means[i], Scale: p.Scales[i]}
}

func (p *Params) Category(i int) Category {
	return Category{Name: p.CategoricalFeatures[i], MostFrequent: p.MostFrequent[i], Vocabulary: p.Categories[i]}
}

/*
Validate checks a loaded record is self-consistent
*/
func (p *Params) Validate() error {
	n := len(p.NumericFeatures)
	if len(p.Means) != n || len(p.Scales) != n || len(p.ImputeMeans) != n {
		return zorros.Errorf("numeric parameters length mismatch: %d features, %d means, %d scales, %d impute means",
			n, len(p.Means), len(p.Scales), len(p.ImputeMeans))
	}
	for i, s := range p.Scales {
		if !(s > 0) {
			return zorros.Errorf("numeric feature `%v` has non-positive scale %v", p.NumericFeatures[i], s)
		}
	}
	c := len(p.CategoricalFeatures)
	if len(p.Categories) != c || len(p.MostFrequent) != c {
		return zorros.Errorf("categorical parameters length mismatch: %d features, %d vocabularies, %d most frequent",
			c, len(p.Categories), len(p.MostFrequent))
	}
	for i, v := range p.Categories {
		if !sort.StringsAreSorted(v) {
			return zorros.Errorf("vocabulary of `%v` is not sorted", p.CategoricalFeatures[i])
		}
	}
	names := p.featureNames()
	if len(names) != len(p.FeatureNamesOut) {
		return zorros.Errorf("feature_names_out has %d names, layout has %d columns", len(p.FeatureNamesOut), len(names))
	}
	for i, s := range names {
		if p.FeatureNamesOut[i] != s {
			return zorros.Errorf("feature_names_out[%d] is `%v`, layout expects `%v`", i, p.FeatureNamesOut[i], s)
		}
	}
	if p.Target.Variant != Categorical && p.Target.Variant != Binary {
		return zorros.Errorf("unknown target variant `%v`", p.Target.Variant)
	}
	return nil
}

/*
Encode writes the feature vector for a row given by cell lookup, absent cells are missing
*/
func (p *Params) Encode(cell func(name string) (string, bool), dst []float64) {
	k := 0
	for i := range p.NumericFeatures {
		s, _ := cell(p.NumericFeatures[i])
		dst[k] = p.Numeric(i).Transform(s)
		k++
	}
	for i := range p.CategoricalFeatures {
		s, _ := cell(p.CategoricalFeatures[i])
		w := len(p.Categories[i])
		p.Category(i).Transform(s, dst[k:k+w])
		k += w
	}
}

/*
Transform encodes one raw record keyed by column name
*/
func (p *Params) Transform(row map[string]string) []float64 {
	r := make([]float64, p.Width())
	p.Encode(func(name string) (string, bool) {
		s, ok := row[name]
		return s, ok
	}, r)
	return r
}

/*
TransformTable encodes every row of the table, the table must have all feature columns
*/
func (p *Params) TransformTable(t *tables.Table) (*mat.Dense, error) {
	cols := map[string]*tables.Column{}
	for _, n := range append(append([]string(nil), p.NumericFeatures...), p.CategoricalFeatures...) {
		if !t.Has(n) {
			return nil, zorros.Errorf("rows do not have feature `%v`", n)
		}
		cols[n] = t.Col(n)
	}
	if t.Len() == 0 {
		return nil, zorros.Errorf("no rows to transform")
	}
	m := mat.NewDense(t.Len(), p.Width(), nil)
	for i := 0; i < t.Len(); i++ {
		p.Encode(func(name string) (string, bool) {
			return cols[name].Text(i), true
		}, m.RawRowView(i))
	}
	return m, nil
}
