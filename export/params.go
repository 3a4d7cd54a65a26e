package export

import (
	"encoding/json"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/sleepnet/preprocess"
	"go-ml.dev/pkg/zorros"
	"io"
)

/*
WriteParams stores the preprocessing record as indented JSON
*/
func WriteParams(output iokit.Output, p *preprocess.Params) error {
	if err := p.Validate(); err != nil {
		return zorros.Trace(err)
	}
	return Write(output, func(w io.Writer) error {
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(p)
	})
}

/*
ReadParams decodes and validates a preprocessing record
*/
func ReadParams(r io.Reader) (*preprocess.Params, error) {
	p := &preprocess.Params{}
	d := json.NewDecoder(r)
	d.DisallowUnknownFields()
	if err := d.Decode(p); err != nil {
		return nil, zorros.Wrapf(err, "failed to decode preprocessing parameters: %v", err.Error())
	}
	if err := p.Validate(); err != nil {
		return nil, zorros.Trace(err)
	}
	return p, nil
}

/*
LoadParams reads the record from file and checks its variant, any variant if empty
*/
func LoadParams(path string, variant preprocess.Variant) (*preprocess.Params, error) {
	f, err := iokit.File(path).Open()
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open preprocessing parameters %v: %v", path, err.Error())
	}
	defer f.Close()
	p, err := ReadParams(f)
	if err != nil {
		return nil, err
	}
	if variant != "" && p.Target.Variant != variant {
		return nil, zorros.Errorf("preprocessing parameters are for variant `%v`, expected `%v`", p.Target.Variant, variant)
	}
	return p, nil
}
