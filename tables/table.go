/*
Package tables implements a small column-oriented table of raw text cells
loaded from delimited files. Cells keep their original text; missing cells
are tracked separately so that imputation policy stays with the encoders.
*/
package tables

import (
	"go-ml.dev/pkg/zorros"
	"strconv"
	"strings"
)

/*
NA are the tokens read as a missing cell, the same set pandas uses by default
*/
var NA = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true, "N/A": true,
	"NA": true, "NULL": true, "NaN": true, "None": true, "n/a": true, "nan": true, "null": true,
}

/*
IsNA reports whether the cell text denotes a missing value
*/
func IsNA(s string) bool {
	return NA[strings.TrimSpace(s)]
}

/*
Column is a named sequence of text cells
*/
type Column struct {
	name    string
	text    []string
	missing []bool
}

/*
Table is an ordered set of equal-length columns
*/
type Table struct {
	columns []*Column
	index   map[string]int
	length  int
}

/*
New creates table from header and row-major records
*/
func New(names []string, rows [][]string) (*Table, error) {
	t := &Table{index: map[string]int{}, length: len(rows)}
	for i, n := range names {
		n = strings.TrimSpace(n)
		if _, exists := t.index[n]; exists {
			return nil, zorros.Errorf("duplicate column `%v`", n)
		}
		c := &Column{name: n, text: make([]string, len(rows)), missing: make([]bool, len(rows))}
		for j, r := range rows {
			if len(r) != len(names) {
				return nil, zorros.Errorf("row %d has %d cells, header has %d", j+1, len(r), len(names))
			}
			c.text[j] = strings.TrimSpace(r[i])
			c.missing[j] = IsNA(r[i])
		}
		t.index[n] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

func (t *Table) Len() int {
	return t.length
}

func (t *Table) Names() []string {
	r := make([]string, len(t.columns))
	for i, c := range t.columns {
		r[i] = c.name
	}
	return r
}

/*
Has reports whether the table has column with the name
*/
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

/*
Col returns column by name or panics if there is no such column
*/
func (t *Table) Col(name string) *Column {
	i, ok := t.index[name]
	if !ok {
		panic(zorros.Panic(zorros.Errorf("table does not have column `%v`", name)))
	}
	return t.columns[i]
}

/*
Select returns a new table with only the named columns in the given order
*/
func (t *Table) Select(names ...string) (*Table, error) {
	r := &Table{index: map[string]int{}, length: t.length}
	for _, n := range names {
		i, ok := t.index[n]
		if !ok {
			return nil, zorros.Errorf("dataset does not have column `%v`", n)
		}
		if _, dup := r.index[n]; dup {
			continue
		}
		r.index[n] = len(r.columns)
		r.columns = append(r.columns, t.columns[i])
	}
	return r, nil
}

/*
Rows returns a new table containing the rows at indices in the given order
*/
func (t *Table) Rows(indices []int) *Table {
	r := &Table{index: map[string]int{}, length: len(indices)}
	for k, c := range t.columns {
		q := &Column{name: c.name, text: make([]string, len(indices)), missing: make([]bool, len(indices))}
		for j, i := range indices {
			q.text[j] = c.text[i]
			q.missing[j] = c.missing[i]
		}
		r.index[c.name] = k
		r.columns = append(r.columns, q)
	}
	return r
}

/*
Filter returns a new table with the rows f accepts
*/
func (t *Table) Filter(f func(row int) bool) *Table {
	indices := make([]int, 0, t.length)
	for i := 0; i < t.length; i++ {
		if f(i) {
			indices = append(indices, i)
		}
	}
	return t.Rows(indices)
}

/*
With returns a new table with column added or replaced by name
*/
func (t *Table) With(c *Column) *Table {
	if c.Len() != t.length {
		panic(zorros.Panic(zorros.Errorf("column `%v` length %d does not match table length %d", c.name, c.Len(), t.length)))
	}
	r := &Table{index: map[string]int{}, length: t.length}
	for _, q := range t.columns {
		if q.name == c.name {
			continue
		}
		r.index[q.name] = len(r.columns)
		r.columns = append(r.columns, q)
	}
	r.index[c.name] = len(r.columns)
	r.columns = append(r.columns, c)
	return r
}

/*
Map returns a new column with every present cell replaced by f(cell),
f returning "" makes the cell missing
*/
func (c *Column) Map(f func(string) string) *Column {
	q := &Column{name: c.name, text: make([]string, len(c.text)), missing: make([]bool, len(c.text))}
	for i, s := range c.text {
		if c.missing[i] {
			q.missing[i] = true
			continue
		}
		q.text[i] = f(s)
		q.missing[i] = IsNA(q.text[i])
	}
	return q
}

/*
Fill returns a new column with missing cells replaced by the value
*/
func (c *Column) Fill(value string) *Column {
	q := &Column{name: c.name, text: append([]string(nil), c.text...), missing: make([]bool, len(c.text))}
	for i := range q.text {
		if c.missing[i] {
			q.text[i] = value
		}
	}
	return q
}

/*
Rename returns the same cells under a new name
*/
func (c *Column) Rename(name string) *Column {
	return &Column{name: name, text: c.text, missing: c.missing}
}

/*
NewColumn creates a column from cells, NA tokens become missing
*/
func NewColumn(name string, cells []string) *Column {
	c := &Column{name: name, text: make([]string, len(cells)), missing: make([]bool, len(cells))}
	for i, s := range cells {
		c.text[i] = strings.TrimSpace(s)
		c.missing[i] = IsNA(s)
	}
	return c
}

func (c *Column) Name() string {
	return c.name
}

func (c *Column) Len() int {
	return len(c.text)
}

/*
Text returns the cell text, "" for missing cells
*/
func (c *Column) Text(i int) string {
	if c.missing[i] {
		return ""
	}
	return c.text[i]
}

func (c *Column) Missing(i int) bool {
	return c.missing[i]
}

/*
Float parses the cell, ok is false for missing or non-numeric cells
*/
func (c *Column) Float(i int) (v float64, ok bool) {
	if c.missing[i] {
		return 0, false
	}
	v, err := strconv.ParseFloat(c.text[i], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

/*
Unique returns distinct present values in order of first appearance
*/
func (c *Column) Unique() []string {
	seen := map[string]bool{}
	r := []string{}
	for i, s := range c.text {
		if c.missing[i] || seen[s] {
			continue
		}
		seen[s] = true
		r = append(r, s)
	}
	return r
}
