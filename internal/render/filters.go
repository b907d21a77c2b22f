package render

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// The engine keeps one filter registry per process; every Renderer shares it.
var registerOnce sync.Once

func registerFilters() {
	registerOnce.Do(func() {
		if !pongo2.FilterExists("tojson") {
			if err := pongo2.RegisterFilter("tojson", filterToJSON); err != nil {
				panic("register tojson filter: " + err.Error())
			}
		}
	})
}

// filterToJSON serializes its input as 2-space indented JSON and marks the
// result safe so autoescaping leaves the quotes alone.
func filterToJSON(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	s, err := marshalIndent(in.Interface())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:tojson", OrigError: err}
	}
	return pongo2.AsSafeValue(s), nil
}

func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
