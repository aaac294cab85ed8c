package httpapi

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// intakeSchemaJSON constrains only the request envelope. The task context
// itself is deliberately unconstrained: tolerating its drift is the
// projection engine's job, and the engine decides between degraded output
// and a 422.
const intakeSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["task_context"],
  "properties": {
    "project_id": {
      "type": "string",
      "pattern": "^[A-Za-z0-9_-]+(/[A-Za-z0-9_-]+)?$"
    },
    "task_context": {}
  }
}`

var intakeSchemaLoader = gojsonschema.NewStringLoader(intakeSchemaJSON)

// validateIntake checks the intake envelope against the schema.
func validateIntake(body map[string]any) error {
	result, err := gojsonschema.Validate(intakeSchemaLoader, gojsonschema.NewGoLoader(body))
	if err != nil {
		return fmt.Errorf("validate intake envelope: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid intake envelope: %s", strings.Join(msgs, "; "))
}
