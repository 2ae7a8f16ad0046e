// Package contract describes the backend HTTP contract as JSON Schema.
package contract

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/invopop/jsonschema"

	"github.com/gm-tools/gmtools/internal/backend"
)

// Endpoint is one documented backend call.
type Endpoint struct {
	Name     string         `json:"name"`
	Method   string         `json:"method"`
	Path     string         `json:"path"`
	Request  map[string]any `json:"request,omitempty"`
	Response map[string]any `json:"response"`
}

// GenerateSchema reflects T into a JSON Schema map. Strict schemas reject
// unknown properties; requests are strict, responses are not, since the
// backend adds fields between versions.
func GenerateSchema[T any](strict bool) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  !strict,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schemaToMap(schema)
}

func schemaToMap(schema *jsonschema.Schema) (map[string]any, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return m, nil
}

// Endpoints documents every call the client makes, at the given paths.
func Endpoints(paths backend.Paths) ([]Endpoint, error) {
	type build struct {
		name, method, path string
		req, resp          func() (map[string]any, error)
	}
	builds := []build{
		{"ingest", http.MethodPost, paths.Analyze,
			func() (map[string]any, error) { return GenerateSchema[backend.IngestRequest](true) },
			func() (map[string]any, error) { return GenerateSchema[backend.IngestAck](false) }},
		{"progress", http.MethodGet, paths.Progress,
			nil,
			func() (map[string]any, error) { return GenerateSchema[backend.ProgressStatus](false) }},
		{"chat", http.MethodPost, paths.Chat,
			func() (map[string]any, error) { return GenerateSchema[backend.ChatRequest](true) },
			func() (map[string]any, error) { return GenerateSchema[backend.ChatResponse](false) }},
		{"video", http.MethodPost, paths.Video,
			func() (map[string]any, error) { return GenerateSchema[backend.VideoRequest](true) },
			func() (map[string]any, error) { return GenerateSchema[backend.VideoResponse](false) }},
	}

	out := make([]Endpoint, 0, len(builds))
	for _, b := range builds {
		ep := Endpoint{Name: b.name, Method: b.method, Path: b.path}
		if b.req != nil {
			req, err := b.req()
			if err != nil {
				return nil, fmt.Errorf("%s request schema: %w", b.name, err)
			}
			ep.Request = req
		}
		resp, err := b.resp()
		if err != nil {
			return nil, fmt.Errorf("%s response schema: %w", b.name, err)
		}
		ep.Response = resp
		out = append(out, ep)
	}
	return out, nil
}

// Document renders the full contract as indented JSON.
func Document(paths backend.Paths) ([]byte, error) {
	eps, err := Endpoints(paths)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(map[string]any{"endpoints": eps}, "", "  ")
}
