package rewrite

import (
	"bytes"

	"bitbucket.org/maxhauser/jsmin"
)

// JSMin is a basic jsmin-based Transform, usable as Options.Minify.
// Kept from the teacher's jsmin.go transform, retargeted at this
// package's Transform interface.
var JSMin Transform = &jsminTransform{}

type jsminTransform struct{}

func (j *jsminTransform) Transform(content []byte) ([]byte, error) {
	out := new(bytes.Buffer)
	jsmin.Run(bytes.NewBuffer(content), out)
	return out.Bytes(), nil
}
