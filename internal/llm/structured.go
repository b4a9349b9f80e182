package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

// decodeStructured turns a raw model answer into the Content of a Response.
// Without a schema the text is returned as a JSON string. With one, code
// fences and any prose around the outermost JSON object are dropped, and
// the remainder must validate.
func decodeStructured(provider string, schema *Schema, raw []byte) (json.RawMessage, error) {
	if schema == nil {
		text, err := json.Marshal(string(raw))
		if err != nil {
			return nil, err
		}
		return text, nil
	}

	body := extractJSON(raw)
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, invalidResponse(provider, raw, "not JSON: %w", err)
	}

	sch, err := compileSchema(schema)
	if err != nil {
		return nil, invalidResponse(provider, raw, "schema %s: %w", schema.Name, err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, invalidResponse(provider, raw, "does not match %s: %w", schema.Name, err)
	}
	return json.RawMessage(body), nil
}

// extractJSON strips a surrounding markdown fence and leading or trailing
// chatter. Input that does not look like an object is returned trimmed.
func extractJSON(raw []byte) []byte {
	b := bytes.TrimSpace(raw)
	if bytes.HasPrefix(b, []byte("```")) {
		if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
			b = b[nl+1:]
		} else {
			b = b[3:]
		}
		b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
		b = bytes.TrimSpace(b)
	}
	start := bytes.IndexByte(b, '{')
	end := bytes.LastIndexByte(b, '}')
	if start < 0 || end < start {
		return b
	}
	return b[start : end+1]
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if s, ok := compiled[schema.Name]; ok {
		return s, nil
	}

	// The compiler wants generic JSON values, not Go maps with typed slices.
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("mem:///%s.json", schema.Name)
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	compiled[schema.Name] = s
	return s, nil
}
