package simulation

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// PayloadSchema reflects the JSON Schema of Payload with every definition
// inlined.
func PayloadSchema() *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	r.ExpandedStruct = true
	return r.Reflect(&Payload{})
}

// PayloadSchemaJSON renders PayloadSchema as indented JSON.
func PayloadSchemaJSON() ([]byte, error) {
	raw, err := json.MarshalIndent(PayloadSchema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("simulation: encode payload schema: %w", err)
	}
	return raw, nil
}
