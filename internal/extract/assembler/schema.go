package assembler

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/falkivanov/cloudcraft-express/internal/models"
)

// resultSchema is the contract the frontend consumes. An assembled result
// that fails validation is a bug in the extraction pipeline, not in the
// input, and must never be persisted.
const resultSchema = `{
	"type": "object",
	"required": ["week", "year", "location", "overallScore", "overallStatus",
	             "rank", "rankNote", "companyKPIs", "driverKPIs", "recommendedFocusAreas"],
	"properties": {
		"week": {"type": "integer", "minimum": 1, "maximum": 53},
		"year": {"type": "integer", "minimum": 2000},
		"location": {"type": "string", "minLength": 1},
		"overallScore": {"type": "number"},
		"overallStatus": {"type": "string", "enum": ["fantastic", "great", "good", "fair", "poor"]},
		"rank": {"type": "integer", "minimum": 1},
		"rankNote": {"type": "string"},
		"companyKPIs": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "value", "target", "status", "category"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"value": {"type": "number"},
					"target": {"type": "number"},
					"unit": {"type": "string"},
					"status": {"type": "string"},
					"category": {"type": "string"}
				}
			}
		},
		"driverKPIs": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["driverId", "name", "status", "metrics"],
				"properties": {
					"driverId": {"type": "string", "minLength": 1},
					"name": {"type": "string"},
					"status": {"type": "string"},
					"metrics": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["name"],
							"properties": {
								"name": {"type": "string"},
								"value": {"type": ["number", "null"]},
								"target": {"type": ["number", "null"]},
								"status": {"type": "string"}
							}
						}
					}
				}
			}
		},
		"recommendedFocusAreas": {
			"type": "array",
			"maxItems": 3,
			"items": {"type": "string"}
		}
	}
}`

var resultSchemaLoader = gojsonschema.NewStringLoader(resultSchema)

// validateResult checks the assembled result against the output contract.
func validateResult(result *models.ScorecardResult) error {
	documentLoader := gojsonschema.NewGoLoader(result)

	validation, err := gojsonschema.Validate(resultSchemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !validation.Valid() {
		details := make([]string, 0, len(validation.Errors()))
		for _, desc := range validation.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("assembled result violates output contract: %s", strings.Join(details, "; "))
	}
	return nil
}
