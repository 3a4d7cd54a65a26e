/*
Package export writes training artifacts: the preprocessing record, the constants
printout and the model files, all through iokit outputs.
*/
package export

import (
	"go-ml.dev/pkg/iokit"
	"io"
)

/*
Write creates the artifact, fills it by the function and commits on success,
on failure the partially written artifact is discarded
*/
func Write(output iokit.Output, fill func(io.Writer) error) (err error) {
	w, err := output.Create()
	if err != nil {
		return
	}
	defer w.End()
	if err = fill(w); err != nil {
		return
	}
	return w.Commit()
}
