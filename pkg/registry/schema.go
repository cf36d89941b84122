// pkg/registry/schema.go
package registry

// FormRegistry lists the form variants a client can open.
type FormRegistry struct {
	Version     string           `json:"version"`
	LastUpdated string           `json:"lastUpdated"`
	Forms       []FormDefinition `json:"forms"`
}

// FormDefinition is one form variant: its endpoint, how replies are
// classified and its ordered fields.
type FormDefinition struct {
	ID              string            `json:"id"`
	DisplayName     string            `json:"displayName"`
	Description     string            `json:"description,omitempty"`
	Endpoint        string            `json:"endpoint"`
	Convention      string            `json:"convention"`
	MessageField    string            `json:"messageField"`
	ErrorField      string            `json:"errorField"`
	Fallback        string            `json:"fallback"`
	RequiredMessage string            `json:"requiredMessage,omitempty"`
	Fields          []FieldDefinition `json:"fields"`
}

type FieldDefinition struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Minimum  *float64 `json:"minimum,omitempty"`
	Maximum  *float64 `json:"maximum,omitempty"`
	Choices  string   `json:"choices,omitempty"`
}

// IDs of the built-in forms returned by Default.
const (
	FormPricePrediction    = "price-prediction"
	FormCropRecommendation = "crop-recommendation"
)

// Convention names accepted in FormDefinition.Convention.
const (
	ConventionBooleanFlag = "boolean_flag"
	ConventionHTTPStatus  = "http_status"
)

const documentSchema = `{
	"type": "object",
	"required": ["version", "forms"],
	"properties": {
		"version": {"type": "string", "minLength": 1},
		"lastUpdated": {"type": "string"},
		"forms": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "displayName", "endpoint", "convention", "fallback", "fields"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"displayName": {"type": "string", "minLength": 1},
					"description": {"type": "string"},
					"endpoint": {"type": "string", "pattern": "^/"},
					"convention": {"enum": ["boolean_flag", "http_status"]},
					"messageField": {"type": "string"},
					"errorField": {"type": "string"},
					"fallback": {"type": "string", "minLength": 1},
					"requiredMessage": {"type": "string"},
					"fields": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["name", "kind"],
							"properties": {
								"name": {"type": "string", "minLength": 1},
								"label": {"type": "string"},
								"kind": {"enum": ["text", "number", "integer", "choice", "boolean", "email", "secret"]},
								"required": {"type": "boolean"},
								"minimum": {"type": "number"},
								"maximum": {"type": "number"},
								"choices": {"enum": ["", "crops", "markets", "units"]}
							}
						}
					}
				}
			}
		}
	}
}`
