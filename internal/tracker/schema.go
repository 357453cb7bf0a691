package tracker

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed job.schema.json
var jobSchemaJSON []byte

var jobSchema = mustCompileSchema(jobSchemaJSON)

func mustCompileSchema(raw []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile job schema: %v", err))
	}
	return s
}

// ValidateJobPayload checks a {"job": {...}} request body. Unknown fields are
// allowed; known fields must have the documented JSON types. _id may be null
// and status may be any value: both fall back to defaults on save.
func ValidateJobPayload(body []byte) error {
	res, err := jobSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &ValidationError{Msg: "invalid JSON body"}
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return &ValidationError{Msg: "invalid job: " + strings.Join(msgs, "; ")}
}
