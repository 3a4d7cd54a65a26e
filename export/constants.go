package export

import (
	"encoding/json"
	"fmt"
	"go-ml.dev/pkg/sleepnet/preprocess"
	"io"
)

const (
	ConstantsHeader = "--- PREPROCESSING PARAMETERS ---"
	ConstantsFooter = "--- END PARAMETERS ---"
)

/*
Constant is one printed line of the constants block
*/
type Constant struct {
	Key   string
	Value interface{}
}

/*
Constants lists everything a consumer needs to rebuild the feature vector, in print order
*/
func Constants(p *preprocess.Params) []Constant {
	r := []Constant{
		{"variant", p.Target.Variant},
		{"classes", p.Target.Classes},
		{"numeric_features", p.NumericFeatures},
		{"means", p.Means},
		{"scales", p.Scales},
		{"impute_means", p.ImputeMeans},
		{"categorical_features", p.CategoricalFeatures},
	}
	for i, n := range p.CategoricalFeatures {
		r = append(r,
			Constant{"categories." + n, p.Categories[i]},
			Constant{"most_frequent." + n, p.MostFrequent[i]})
	}
	return append(r,
		Constant{"feature_names_out", p.FeatureNamesOut},
		Constant{"feature_count", len(p.FeatureNamesOut)})
}

/*
PrintConstants writes `key: json` lines between the header and the footer,
floats are printed in the shortest form that parses back to the same value
*/
func PrintConstants(w io.Writer, p *preprocess.Params) (err error) {
	if _, err = fmt.Fprintln(w, ConstantsHeader); err != nil {
		return
	}
	for _, c := range Constants(p) {
		b, err := json.Marshal(c.Value)
		if err != nil {
			return err
		}
		if _, err = fmt.Fprintf(w, "%s: %s\n", c.Key, b); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, ConstantsFooter)
	return
}
