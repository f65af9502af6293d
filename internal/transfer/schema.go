package transfer

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// PayloadSchema reflects the machine-readable JSON schema of the clipboard
// payload, for validation and editor tooling on the other side of the wire.
func PayloadSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{ExpandedStruct: true}
	return r.Reflect(&Payload{})
}

// PayloadSchemaJSON renders the payload schema as indented JSON.
func PayloadSchemaJSON() ([]byte, error) {
	out, err := json.MarshalIndent(PayloadSchema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("transfer: marshal schema: %w", err)
	}
	return out, nil
}
