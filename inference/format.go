package inference

import (
	"bufio"
	"encoding/binary"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros"
	"io"
)

// Magic starts every quantized model file
const Magic = "SLQ1"

const (
	maxString  = 1 << 16
	maxWeights = 1 << 24
)

/*
Write encodes the model as little-endian binary:
magic, variant, run id, classes, layer count, then per layer
inputs, units, activation, scale, int8 weights and float32 biases
*/
func (m *Model) Write(w io.Writer) (err error) {
	if err = m.Check(""); err != nil {
		return
	}
	bw := bufio.NewWriter(w)
	e := encoder{w: bw}
	e.raw([]byte(Magic))
	e.str(m.Variant)
	e.str(m.RunID)
	e.u32(uint32(len(m.Classes)))
	for _, c := range m.Classes {
		e.str(c)
	}
	e.u32(uint32(len(m.Layers)))
	for _, l := range m.Layers {
		e.u32(uint32(l.Inputs))
		e.u32(uint32(l.Units))
		e.put(uint8(l.Activation))
		e.put(l.Scale)
		e.put(l.Weights)
		e.put(l.Bias)
	}
	if e.err != nil {
		return zorros.Wrapf(e.err, "failed to write quantized model: %v", e.err.Error())
	}
	return bw.Flush()
}

/*
Read decodes a model written by Write
*/
func Read(r io.Reader) (m *Model, err error) {
	d := decoder{r: bufio.NewReader(r)}
	magic := make([]byte, len(Magic))
	d.get(magic)
	if d.err == nil && string(magic) != Magic {
		return nil, zorros.Errorf("not a quantized model, bad magic %q", magic)
	}
	m = &Model{}
	m.Variant = d.str()
	m.RunID = d.str()
	m.Classes = make([]string, d.count())
	for i := range m.Classes {
		m.Classes[i] = d.str()
	}
	m.Layers = make([]Layer, d.count())
	for i := range m.Layers {
		l := &m.Layers[i]
		l.Inputs, l.Units = d.count(), d.count()
		var a uint8
		d.get(&a)
		l.Activation = Activation(a)
		d.get(&l.Scale)
		if d.err == nil && l.Inputs*l.Units > maxWeights {
			d.err = zorros.Errorf("layer %d has %dx%d weights, more than %d", i, l.Inputs, l.Units, maxWeights)
		}
		if d.err == nil {
			l.Weights = make([]int8, l.Inputs*l.Units)
			l.Bias = make([]float32, l.Units)
		}
		d.get(l.Weights)
		d.get(l.Bias)
	}
	if d.err != nil {
		return nil, zorros.Wrapf(d.err, "failed to read quantized model: %v", d.err.Error())
	}
	if err = m.Check(""); err != nil {
		return nil, zorros.Trace(err)
	}
	return
}

/*
Load reads the model file and checks it belongs to the variant, any variant if empty
*/
func Load(path string, variant string) (m *Model, err error) {
	f, err := iokit.File(path).Open()
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open model %v: %v", path, err.Error())
	}
	defer f.Close()
	if m, err = Read(f); err != nil {
		return
	}
	if err = m.Check(variant); err != nil {
		return nil, err
	}
	return
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) put(v interface{}) {
	if e.err == nil {
		e.err = binary.Write(e.w, binary.LittleEndian, v)
	}
}

func (e *encoder) raw(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func (e *encoder) u32(v uint32) {
	e.put(v)
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.raw([]byte(s))
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) get(v interface{}) {
	if d.err == nil {
		d.err = binary.Read(d.r, binary.LittleEndian, v)
	}
}

// count reads a length prefix and bounds it so a corrupt file can't allocate gigabytes
func (d *decoder) count() int {
	var n uint32
	d.get(&n)
	if d.err == nil && n > maxString {
		d.err = zorros.Errorf("length %d is out of range", n)
	}
	if d.err != nil {
		return 0
	}
	return int(n)
}

func (d *decoder) str() string {
	b := make([]byte, d.count())
	if len(b) > 0 {
		if _, err := io.ReadFull(d.r, b); err != nil && d.err == nil {
			d.err = err
		}
	}
	return string(b)
}
