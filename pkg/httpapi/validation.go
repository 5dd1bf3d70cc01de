package httpapi

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// workflowDocumentSchema constrains the shape of the "workflow" field in a
// RunWorkflowRequest body, rejecting malformed documents (missing node ids,
// wrong field types) before they reach json.Unmarshal's looser decoding.
const workflowDocumentSchema = `{
	"type": "object",
	"required": ["workflow"],
	"properties": {
		"workflow": {
			"type": "object",
			"required": ["nodes"],
			"properties": {
				"nodes": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["id", "type"],
						"properties": {
							"id":     {"type": "string", "minLength": 1},
							"type":   {"type": "string", "minLength": 1},
							"config": {"type": "object"}
						}
					}
				},
				"edges": {
					"type": "array",
					"items": {
						"type": "object",
						"allOf": [
							{"anyOf": [{"required": ["fromNodeId"]}, {"required": ["from_node_id"]}]},
							{"anyOf": [{"required": ["toNodeId"]}, {"required": ["to_node_id"]}]}
						],
						"properties": {
							"fromNodeId": {"type": "string", "minLength": 1},
							"toNodeId":   {"type": "string", "minLength": 1},
							"from_node_id": {"type": "string", "minLength": 1},
							"to_node_id":   {"type": "string", "minLength": 1},
							"fromPort":   {"type": "string"},
							"toPort":     {"type": "string"}
						}
					}
				}
			}
		}
	}
}`

var workflowDocumentSchemaLoader = gojsonschema.NewStringLoader(workflowDocumentSchema)

// validateWorkflowRequest checks a raw RunWorkflowRequest body against
// workflowDocumentSchema, returning one human-readable message per
// violated field. A nil slice means the body is well-formed.
func validateWorkflowRequest(body []byte) ([]string, error) {
	documentLoader := gojsonschema.NewBytesLoader(body)
	result, err := gojsonschema.Validate(workflowDocumentSchemaLoader, documentLoader)
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return errs, nil
}
