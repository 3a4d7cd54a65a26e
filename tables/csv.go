package tables

import (
	"encoding/csv"
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros"
	"golang.org/x/xerrors"
	"io"
	"os"
)

/*
ReadCSV loads the whole delimited file, the first row is the header.
Absent file is reported as an error wrapping os.ErrNotExist.
*/
func ReadCSV(path string) (*Table, error) {
	f, err := iokit.File(path).Open()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("dataset file %v not found: %w", path, os.ErrNotExist)
		}
		return nil, zorros.Wrapf(err, "failed to open dataset %v: %v", path, err.Error())
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to read dataset %v: %v", path, err.Error())
	}
	return t, nil
}

/*
Read loads comma-separated records from the reader, the first row is the header
*/
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, zorros.Errorf("dataset is empty, header is expected")
	}
	if err != nil {
		return nil, zorros.Trace(err)
	}
	if len(header) > 0 {
		// Excel and pandas to_csv may leave BOM at the start
		header[0] = trimBOM(header[0])
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, zorros.Trace(err)
	}
	return New(header, rows)
}

func trimBOM(s string) string {
	if len(s) >= 3 && s[0] == 0xef && s[1] == 0xbb && s[2] == 0xbf {
		return s[3:]
	}
	return s
}
