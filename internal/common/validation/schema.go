package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"hospital-ops/pkg/registry"
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

// Validator holds the compiled input and metadata schemas of a registry.
type Validator struct {
	inputs   map[string]*gojsonschema.Schema
	metadata map[string]*gojsonschema.Schema
}

// NewValidator compiles every schema in reg; a schema that does not compile
// is a registry bug and fails construction.
func NewValidator(reg *registry.TemplateRegistry) (*Validator, error) {
	v := &Validator{
		inputs:   make(map[string]*gojsonschema.Schema),
		metadata: make(map[string]*gojsonschema.Schema),
	}
	for _, tmpl := range reg.Templates {
		if tmpl.InputSchema != nil {
			s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tmpl.InputSchema))
			if err != nil {
				return nil, fmt.Errorf("compile input schema %s: %w", tmpl.ID, err)
			}
			v.inputs[tmpl.ID] = s
		}
		if tmpl.MetadataSchema != nil && tmpl.NotificationType != "" {
			s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tmpl.MetadataSchema))
			if err != nil {
				return nil, fmt.Errorf("compile metadata schema %s: %w", tmpl.ID, err)
			}
			v.metadata[tmpl.NotificationType] = s
		}
	}
	return v, nil
}

// ValidateInput checks a raw JSON request body against a template's input schema.
func (v *Validator) ValidateInput(templateID string, body []byte) (*ValidationResult, error) {
	schema, ok := v.inputs[templateID]
	if !ok {
		return nil, fmt.Errorf("no input schema for template %s", templateID)
	}
	return run(schema, gojsonschema.NewBytesLoader(body))
}

// ValidateMetadata checks metadata for a notification type. Types without a
// registered schema accept any object.
func (v *Validator) ValidateMetadata(notificationType string, metadata map[string]interface{}) (*ValidationResult, error) {
	schema, ok := v.metadata[notificationType]
	if !ok || metadata == nil {
		return &ValidationResult{Valid: true}, nil
	}
	return run(schema, gojsonschema.NewGoLoader(metadata))
}

func run(schema *gojsonschema.Schema, doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		// required errors are reported against the parent object
		if prop, ok := desc.Details()["property"].(string); ok && desc.Type() == "required" {
			if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
				field = prop
			} else {
				field = field + "." + prop
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
