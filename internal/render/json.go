package render

import (
	"encoding/json"
	"strings"
)

const (
	errJSONEmpty     = "JSON is empty"
	errJSONNotObject = "JSON must be an object"
)

// Validation is the outcome of ValidateJSON. Exactly one of Data and Error is set.
type Validation struct {
	Data  map[string]any
	Error string
}

// OK reports whether the payload parsed to a JSON object.
func (v Validation) OK() bool { return v.Error == "" }

// ValidateJSON parses a context payload and requires the top-level value to be
// a non-null object. Parser errors are returned with the decoder's own message.
func ValidateJSON(text string) Validation {
	if strings.TrimSpace(text) == "" {
		return Validation{Error: errJSONEmpty}
	}

	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return Validation{Error: err.Error()}
	}

	obj, ok := data.(map[string]any)
	if !ok || obj == nil {
		return Validation{Error: errJSONNotObject}
	}
	return Validation{Data: obj}
}
