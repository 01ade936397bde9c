package script

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource []byte

// CheckSchema validates raw script YAML against the embedded CUE schema.
func CheckSchema(filename string, data []byte) error {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schemaValue.Err(); err != nil {
		return fmt.Errorf("compile script schema: %w", err)
	}
	def := schemaValue.LookupPath(cue.ParsePath("#Script"))

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{File: filename, Details: cueerrors.Details(err, nil)}
	}
	return nil
}

// SchemaError reports a script that does not satisfy the CUE schema.
type SchemaError struct {
	File    string
	Details string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: schema violation:\n%s", e.File, e.Details)
}
