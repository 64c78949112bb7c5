package history

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// historySchema is the shape contract for the persisted history file: a
// single array of archived chat records. Validation failures are
// treated as corruption by the caller, which reads as empty history.
const historySchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "timestamp", "title", "messages"],
		"properties": {
			"id": {"type": "string"},
			"timestamp": {"type": "string"},
			"title": {"type": "string"},
			"messages": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["role", "content"],
					"properties": {
						"role": {"type": "string", "enum": ["user", "assistant"]},
						"content": {"type": "string"}
					}
				}
			}
		}
	}
}`

func validateHistoryDocument(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(historySchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("history document does not match schema: %v", result.Errors())
	}
	return nil
}
