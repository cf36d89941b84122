package form

import (
	"farmers-connect/internal/common/validation"
	"farmers-connect/pkg/registry"
)

// Variant ids of the built-in forms.
const (
	VariantPrediction     = registry.FormPricePrediction
	VariantRecommendation = registry.FormCropRecommendation
	VariantRegistration   = "registration"
)

// Kind is how a field is entered and validated.
type Kind string

const (
	KindText    Kind = "text"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindChoice  Kind = "choice"
	KindBoolean Kind = "boolean"
	KindEmail   Kind = "email"
	KindSecret  Kind = "secret"
)

// OptionSource names the reference-data list that feeds a choice field.
type OptionSource string

const (
	SourceNone    OptionSource = ""
	SourceCrops   OptionSource = "crops"
	SourceMarkets OptionSource = "markets"
	SourceUnits   OptionSource = "units"
)

// Field describes one input. Min and Max bound numeric kinds.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Min      *float64
	Max      *float64
	Choices  OptionSource
}

// Schema is the ordered field list of a form variant. It drives both state
// initialization and rendering.
type Schema struct {
	Variant string
	Title   string
	Fields  []Field
	// RequiredMessage, when set, replaces the per-field messages if any
	// required field is empty.
	RequiredMessage string
}

// Names returns the field names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Rules converts the schema into validation rules.
func (s Schema) Rules() validation.FormSchema {
	rules := validation.FormSchema{Fields: make([]validation.Field, 0, len(s.Fields))}
	for _, f := range s.Fields {
		rules.Fields = append(rules.Fields, validation.Field{
			Name: f.Name,
			Property: validation.Property{
				Type:     f.Kind.fieldType(),
				Required: f.Required,
				Minimum:  f.Min,
				Maximum:  f.Max,
			},
		})
	}
	return rules
}

func (k Kind) fieldType() validation.FieldType {
	switch k {
	case KindNumber:
		return validation.TypeNumber
	case KindInteger:
		return validation.TypeInteger
	case KindBoolean:
		return validation.TypeBoolean
	case KindEmail:
		return validation.TypeEmail
	default:
		return validation.TypeString
	}
}

// SchemaFromDefinition converts a registry entry into a form schema.
func SchemaFromDefinition(def registry.FormDefinition) Schema {
	schema := Schema{
		Variant:         def.ID,
		Title:           def.DisplayName,
		Fields:          make([]Field, 0, len(def.Fields)),
		RequiredMessage: def.RequiredMessage,
	}
	for _, f := range def.Fields {
		schema.Fields = append(schema.Fields, Field{
			Name:     f.Name,
			Label:    f.Label,
			Kind:     Kind(f.Kind),
			Required: f.Required,
			Min:      f.Minimum,
			Max:      f.Maximum,
			Choices:  OptionSource(f.Choices),
		})
	}
	return schema
}

func builtIn(variant string) Schema {
	def, ok := registry.Default().Lookup(variant)
	if !ok {
		panic("form: no built-in variant " + variant)
	}
	return SchemaFromDefinition(def)
}

// PredictionSchema is the built-in crop price prediction form. Field names
// are the keys the prediction endpoint expects.
func PredictionSchema() Schema {
	return builtIn(VariantPrediction)
}

// RecommendationSchema is the built-in crop recommendation form.
func RecommendationSchema() Schema {
	return builtIn(VariantRecommendation)
}

// RegistrationSchema is the account registration form. Only client-side
// validation is provided here; the registration call belongs to auth.
func RegistrationSchema() Schema {
	return Schema{
		Variant: VariantRegistration,
		Title:   "Register a new account",
		Fields: []Field{
			{Name: "first_name", Label: "First Name", Kind: KindText, Required: true},
			{Name: "last_name", Label: "Last Name", Kind: KindText, Required: true},
			{Name: "email", Label: "Your E-mail", Kind: KindEmail, Required: true},
			{Name: "password", Label: "Your Password", Kind: KindSecret, Required: true},
			{Name: "is_farmer", Label: "Are you a farmer?", Kind: KindBoolean},
		},
		RequiredMessage: "All fields are required",
	}
}
