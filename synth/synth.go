/*
Package synth generates survey records shaped like the sleep health and
lifestyle dataset. Each disorder shifts the features in a learnable way.
*/
package synth

import (
	"encoding/csv"
	"go-ml.dev/pkg/zorros"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
)

var Header = []string{
	"Person ID", "Gender", "Age", "Occupation", "Sleep Duration", "Quality of Sleep",
	"Physical Activity Level", "Stress Level", "BMI Category", "Blood Pressure",
	"Heart Rate", "Daily Steps", "Sleep Disorder",
}

var occupations = []string{"Nurse", "Doctor", "Engineer", "Lawyer", "Teacher", "Accountant", "Salesperson"}

type profile struct {
	label               string
	share               float64
	sleep, quality      float64
	systolic, heartRate float64
	steps               float64
	bmi                 []string
}

var profiles = []profile{
	{"", 0.58, 7.6, 8, 122, 68, 7000, []string{"Normal", "Normal Weight", "Normal", "Overweight"}},
	{"Sleep Apnea", 0.21, 7.0, 6.5, 140, 76, 5500, []string{"Overweight", "Obese", "Overweight"}},
	{"Insomnia", 0.21, 6.1, 5.5, 130, 71, 5000, []string{"Overweight", "Normal", "Overweight"}},
}

/*
Options tweak the generated data
*/
type Options struct {
	Rows    int
	Seed    int64
	Missing float64 // probability of a missing feature cell
	// NoneLabel writes "None" instead of an empty cell for rows without disorder
	NoneLabel bool
}

/*
Write writes the header and the records as CSV
*/
func Write(w io.Writer, opts Options) error {
	rnd := rand.New(rand.NewSource(opts.Seed))
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return zorros.Trace(err)
	}
	for i := 0; i < opts.Rows; i++ {
		p := pick(i, opts.Rows)
		label := p.label
		if label == "" && opts.NoneLabel {
			label = "None"
		}
		gender := "Male"
		if rnd.Intn(2) == 0 {
			gender = "Female"
		}
		sys := int(p.systolic + rnd.NormFloat64()*4)
		cells := []string{
			strconv.Itoa(i + 1),
			gender,
			strconv.Itoa(27 + rnd.Intn(33)),
			occupations[rnd.Intn(len(occupations))],
			strconv.FormatFloat(round(p.sleep+rnd.NormFloat64()*0.3, 1), 'f', -1, 64),
			strconv.Itoa(int(math.Max(1, math.Min(10, math.Round(p.quality+rnd.NormFloat64()*0.7))))),
			strconv.Itoa(30 + rnd.Intn(60)),
			strconv.Itoa(3 + rnd.Intn(6)),
			p.bmi[rnd.Intn(len(p.bmi))],
			strconv.Itoa(sys) + "/" + strconv.Itoa(sys-40+rnd.Intn(6)),
			strconv.Itoa(int(p.heartRate + rnd.NormFloat64()*2)),
			strconv.Itoa(int(p.steps+rnd.NormFloat64()*600) / 100 * 100),
			label,
		}
		if opts.Missing > 0 {
			// identity and target columns stay present
			for j := 1; j < len(cells)-1; j++ {
				if rnd.Float64() < opts.Missing {
					cells[j] = ""
				}
			}
		}
		if err := cw.Write(cells); err != nil {
			return zorros.Trace(err)
		}
	}
	cw.Flush()
	return cw.Error()
}

/*
File writes the records to the file at path, an existing file is replaced
only if overwrite is set
*/
func File(path string, opts Options, overwrite bool) (err error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if os.IsExist(err) {
		return zorros.Errorf("%v already exists and is not overwritten", path)
	}
	if err != nil {
		return zorros.Wrapf(err, "failed to create %v: %v", path, err.Error())
	}
	if err = Write(f, opts); err != nil {
		f.Close()
		return
	}
	return f.Close()
}

// pick assigns profiles by share in row order so class counts are exact
func pick(i, n int) profile {
	x := (float64(i) + 0.5) / float64(n)
	for _, p := range profiles {
		if x < p.share {
			return p
		}
		x -= p.share
	}
	return profiles[len(profiles)-1]
}

func round(v float64, digits int) float64 {
	m := math.Pow(10, float64(digits))
	return math.Round(v*m) / m
}
