// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"farmers-connect/internal/common/validation"
)

// LoadRegistry reads a registry file, checks it against the document schema
// and then against the cross-field rules of Validate.
func LoadRegistry(path string) (*FormRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateDocument(documentSchema, data); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}

	var reg FormRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	return &reg, nil
}

// Validate checks rules the document schema cannot express.
func (r *FormRegistry) Validate() error {
	if len(r.Forms) == 0 {
		return fmt.Errorf("registry contains no forms")
	}

	ids := make(map[string]bool)
	for _, f := range r.Forms {
		if f.ID == "" {
			return fmt.Errorf("form missing required field: id")
		}
		if ids[f.ID] {
			return fmt.Errorf("duplicate form id: %s", f.ID)
		}
		ids[f.ID] = true

		if f.Endpoint == "" {
			return fmt.Errorf("form %s missing required field: endpoint", f.ID)
		}
		if f.Convention != ConventionBooleanFlag && f.Convention != ConventionHTTPStatus {
			return fmt.Errorf("form %s has unknown convention %q", f.ID, f.Convention)
		}
		if len(f.Fields) == 0 {
			return fmt.Errorf("form %s declares no fields", f.ID)
		}

		names := make(map[string]bool)
		for _, field := range f.Fields {
			if names[field.Name] {
				return fmt.Errorf("form %s: duplicate field %s", f.ID, field.Name)
			}
			names[field.Name] = true
			if field.Minimum != nil && field.Maximum != nil && *field.Minimum > *field.Maximum {
				return fmt.Errorf("form %s: field %s has minimum above maximum", f.ID, field.Name)
			}
			if field.Kind == "choice" && field.Choices == "" {
				return fmt.Errorf("form %s: choice field %s needs an option source", f.ID, field.Name)
			}
		}
	}
	return nil
}

// Lookup finds a form by id.
func (r *FormRegistry) Lookup(id string) (FormDefinition, bool) {
	for _, f := range r.Forms {
		if f.ID == id {
			return f, true
		}
	}
	return FormDefinition{}, false
}

// Add appends a form, rejecting duplicate ids.
func (r *FormRegistry) Add(def FormDefinition) error {
	if _, exists := r.Lookup(def.ID); exists {
		return fmt.Errorf("form with ID %s already exists", def.ID)
	}
	r.Forms = append(r.Forms, def)
	r.LastUpdated = time.Now().Format(time.RFC3339)
	return nil
}

// Update sets one top-level attribute of a form.
func (r *FormRegistry) Update(id, field, value string) error {
	for i := range r.Forms {
		if r.Forms[i].ID != id {
			continue
		}
		f := &r.Forms[i]
		switch field {
		case "displayName":
			f.DisplayName = value
		case "description":
			f.Description = value
		case "endpoint":
			f.Endpoint = value
		case "convention":
			if value != ConventionBooleanFlag && value != ConventionHTTPStatus {
				return fmt.Errorf("invalid convention: %s", value)
			}
			f.Convention = value
		case "messageField":
			f.MessageField = value
		case "errorField":
			f.ErrorField = value
		case "fallback":
			f.Fallback = value
		case "requiredMessage":
			f.RequiredMessage = value
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		r.LastUpdated = time.Now().Format(time.RFC3339)
		return nil
	}
	return fmt.Errorf("form with ID %s not found", id)
}

// Save writes the registry as indented JSON, creating the directory if needed.
func Save(reg *FormRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func bound(v float64) *float64 {
	return &v
}

// Default returns the built-in prediction and recommendation forms.
func Default() *FormRegistry {
	return &FormRegistry{
		Version:     "1.0.0",
		LastUpdated: "2024-01-01T00:00:00Z",
		Forms: []FormDefinition{
			{
				ID:           FormPricePrediction,
				DisplayName:  "Crop Price Prediction",
				Description:  "Predicts the market price of a commodity",
				Endpoint:     "/api/predict",
				Convention:   ConventionBooleanFlag,
				MessageField: "message",
				ErrorField:   "error",
				Fallback:     "Prediction failed",
				Fields: []FieldDefinition{
					{Name: "market", Label: "Market", Kind: "choice", Required: true, Choices: "markets"},
					{Name: "commodity", Label: "Commodity", Kind: "choice", Required: true, Choices: "crops"},
					{Name: "unit", Label: "Unit", Kind: "choice", Required: true, Choices: "units"},
					{Name: "quantity", Label: "Quantity", Kind: "integer", Required: true, Minimum: bound(1)},
					{Name: "year", Label: "Year", Kind: "integer", Required: true},
					{Name: "month", Label: "Month", Kind: "integer", Required: true, Minimum: bound(1), Maximum: bound(12)},
				},
			},
			{
				ID:           FormCropRecommendation,
				DisplayName:  "Crop Recommendation",
				Description:  "Recommends a crop from soil and climate readings",
				Endpoint:     "/api/recommend_crop",
				Convention:   ConventionHTTPStatus,
				MessageField: "recommendation",
				ErrorField:   "error",
				Fallback:     "Failed to get recommendation",
				Fields: []FieldDefinition{
					{Name: "Nitrogen", Label: "Nitrogen", Kind: "number", Required: true},
					{Name: "Phosphorus", Label: "Phosphorus", Kind: "number", Required: true},
					{Name: "Potassium", Label: "Potassium", Kind: "number", Required: true},
					{Name: "Temperature", Label: "Temperature", Kind: "number", Required: true},
					{Name: "Humidity", Label: "Humidity", Kind: "number", Required: true},
					{Name: "pH", Label: "pH", Kind: "number", Required: true},
					{Name: "Rainfall", Label: "Rainfall", Kind: "number", Required: true},
				},
			},
		},
	}
}
