package preprocess

import (
	"go-ml.dev/pkg/sleepnet/tables"
	"go-ml.dev/pkg/zorros"
	"sort"
	"strings"
)

/*
Category is the fitted most-frequent imputation and one-hot vocabulary of one column
*/
type Category struct {
	Name         string
	MostFrequent string
	Vocabulary   []string // sorted, one indicator column per entry
}

/*
FitCategory computes the most frequent value, ties broken by the smallest
label, and the sorted vocabulary of the imputed column
*/
func FitCategory(c *tables.Column) (Category, error) {
	counts := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if !c.Missing(i) {
			counts[c.Text(i)]++
		}
	}
	if len(counts) == 0 {
		return Category{}, zorros.Errorf("categorical feature `%v` has no values in training rows", c.Name())
	}
	q := Category{Name: c.Name(), Vocabulary: make([]string, 0, len(counts))}
	for v := range counts {
		q.Vocabulary = append(q.Vocabulary, v)
	}
	sort.Strings(q.Vocabulary)
	best := -1
	for _, v := range q.Vocabulary {
		if counts[v] > best {
			best = counts[v]
			q.MostFrequent = v
		}
	}
	return q, nil
}

/*
Index returns the indicator position of the raw cell, -1 for a value never seen while fitting
*/
func (q Category) Index(text string) int {
	v := strings.TrimSpace(text)
	if tables.IsNA(v) {
		v = q.MostFrequent
	}
	j := sort.SearchStrings(q.Vocabulary, v)
	if j < len(q.Vocabulary) && q.Vocabulary[j] == v {
		return j
	}
	return -1
}

/*
Transform writes the one-hot block of the raw cell into dst, unseen values leave it all-zero
*/
func (q Category) Transform(text string, dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
	if j := q.Index(text); j >= 0 {
		dst[j] = 1
	}
}
