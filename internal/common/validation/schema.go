package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Wire schemas for the OpenAI-compatible surface. Extra properties are
// allowed so that clients tolerant of the upstream protocol stay valid.
const (
	completionSchema = `{
  "type": "object",
  "required": ["id", "object", "created", "model", "choices", "usage"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "object": {"type": "string", "enum": ["chat.completion"]},
    "created": {"type": "integer", "minimum": 0},
    "model": {"type": "string", "minLength": 1},
    "choices": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["index", "message", "finish_reason"],
        "properties": {
          "index": {"type": "integer", "minimum": 0},
          "message": {
            "type": "object",
            "required": ["role", "content"],
            "properties": {
              "role": {"type": "string", "enum": ["assistant"]},
              "content": {"type": "string"}
            }
          },
          "finish_reason": {"type": "string", "enum": ["stop"]}
        }
      }
    },
    "usage": {
      "type": "object",
      "required": ["prompt_tokens", "completion_tokens", "total_tokens"],
      "properties": {
        "prompt_tokens": {"type": "integer", "minimum": 0},
        "completion_tokens": {"type": "integer", "minimum": 0},
        "total_tokens": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

	chunkSchema = `{
  "type": "object",
  "required": ["id", "object", "created", "model", "choices"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "object": {"type": "string", "enum": ["chat.completion.chunk"]},
    "created": {"type": "integer", "minimum": 0},
    "model": {"type": "string", "minLength": 1},
    "choices": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["index", "delta", "finish_reason"],
        "properties": {
          "index": {"type": "integer", "minimum": 0},
          "delta": {
            "type": "object",
            "properties": {
              "content": {"type": "string"}
            }
          },
          "finish_reason": {"enum": ["stop", null]}
        }
      }
    }
  }
}`

	modelListSchema = `{
  "type": "object",
  "required": ["object", "data"],
  "properties": {
    "object": {"type": "string", "enum": ["list"]},
    "data": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "object", "owned_by"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "object": {"type": "string", "enum": ["model"]},
          "created": {"type": "integer", "minimum": 0},
          "owned_by": {"type": "string"}
        }
      }
    }
  }
}`
)

var (
	completion = mustCompile("completion", completionSchema)
	chunk      = mustCompile("chunk", chunkSchema)
	modelList  = mustCompile("model list", modelListSchema)
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func mustCompile(name, schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("validation: %s schema: %v", name, err))
	}
	return s
}

// ValidateCompletion checks a non-streaming chat completion envelope.
func ValidateCompletion(doc interface{}) *ValidationResult {
	return validate(completion, doc)
}

// ValidateChunk checks a single streamed chat completion chunk.
func ValidateChunk(doc interface{}) *ValidationResult {
	return validate(chunk, doc)
}

// ValidateModelList checks the /v1/models discovery document.
func ValidateModelList(doc interface{}) *ValidationResult {
	return validate(modelList, doc)
}

// validate accepts Go values (marshalled through encoding/json) or raw JSON bytes.
func validate(schema *gojsonschema.Schema, doc interface{}) *ValidationResult {
	var loader gojsonschema.JSONLoader
	switch v := doc.(type) {
	case []byte:
		loader = gojsonschema.NewBytesLoader(v)
	case string:
		loader = gojsonschema.NewStringLoader(v)
	default:
		loader = gojsonschema.NewGoLoader(v)
	}

	result, err := schema.Validate(loader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "UNREADABLE_DOCUMENT",
			}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Err folds an invalid result into a single error, or nil when valid.
func (vr *ValidationResult) Err() error {
	if vr.Valid {
		return nil
	}
	return fmt.Errorf("wire schema violation: %s", strings.Join(vr.GetErrorMessages(), "; "))
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}
