package formz

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Codec decodes raw source payloads into field values.
type Codec interface {
	// Unmarshal deserializes bytes into v.
	Unmarshal(data []byte, v any) error

	// ContentType returns the MIME type for observability and debugging.
	ContentType() string
}

// JSONCodec implements Codec using encoding/json.
type JSONCodec struct{}

// Unmarshal deserializes JSON bytes into v.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string {
	return "application/json"
}

// YAMLCodec implements Codec using gopkg.in/yaml.v3.
type YAMLCodec struct{}

// Unmarshal deserializes YAML bytes into v.
func (YAMLCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// ContentType returns the YAML MIME type.
func (YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

// TextCodec passes payloads through unchanged. It decodes into *string and
// *[]byte only, which suits free-text fields fed from files or hashes.
type TextCodec struct{}

// Unmarshal copies data into v.
func (TextCodec) Unmarshal(data []byte, v any) error {
	switch dst := v.(type) {
	case *string:
		*dst = string(data)
	case *[]byte:
		*dst = append((*dst)[:0], data...)
	default:
		return fmt.Errorf("text codec cannot decode into %T", v)
	}
	return nil
}

// ContentType returns the plain text MIME type.
func (TextCodec) ContentType() string {
	return "text/plain"
}

var (
	_ Codec = JSONCodec{}
	_ Codec = YAMLCodec{}
	_ Codec = TextCodec{}
)
