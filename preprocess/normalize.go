/*
Package preprocess turns raw survey columns into fixed-layout numeric feature
vectors. Fitting produces an immutable Params value from the training rows
only; the same Params transforms training, test and inference rows.
*/
package preprocess

import (
	"go-ml.dev/pkg/sleepnet/tables"
	"sort"
	"strconv"
	"strings"
)

// NoDisorder is the class a missing target label stands for
const NoDisorder = "None"

/*
NormalizeTarget treats a missing target as NoDisorder and drops rows whose
label is not one of valid. It returns the filtered table and the count of
dropped rows.
*/
func NormalizeTarget(t *tables.Table, target string, valid []string) (*tables.Table, int) {
	c := t.Col(target).Fill(NoDisorder)
	q := t.With(c)
	ok := map[string]bool{}
	for _, v := range valid {
		ok[v] = true
	}
	r := q.Filter(func(i int) bool { return ok[c.Text(i)] })
	return r, t.Len() - r.Len()
}

/*
Synonyms maps column name to spelling replacements applied to that column
*/
type Synonyms map[string]map[string]string

/*
Apply merges synonym spellings into their canonical labels
*/
func (s Synonyms) Apply(t *tables.Table) *tables.Table {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if !t.Has(n) {
			continue
		}
		m := s[n]
		t = t.With(t.Col(n).Map(func(v string) string {
			if to, ok := m[v]; ok {
				return to
			}
			return v
		}))
	}
	return t
}

/*
SplitPair splits a "a/b" column into two numeric columns, parts which are not
numbers become missing
*/
func SplitPair(t *tables.Table, from, first, second string) *tables.Table {
	c := t.Col(from)
	a := make([]string, t.Len())
	b := make([]string, t.Len())
	for i := 0; i < t.Len(); i++ {
		if c.Missing(i) {
			continue
		}
		p := strings.SplitN(c.Text(i), "/", 2)
		a[i] = number(p[0])
		if len(p) > 1 {
			b[i] = number(p[1])
		}
	}
	return t.With(tables.NewColumn(first, a)).With(tables.NewColumn(second, b))
}

func number(s string) string {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return ""
	}
	return s
}
