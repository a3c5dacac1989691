// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed templates.json
var defaultRegistry []byte

// Template IDs referenced by the API.
const (
	TemplateNotificationCreate = "notification.create"
	TemplateEmergencyAlert     = "alert.emergency"
	TemplateResourceAlert      = "alert.resource"
	TemplateAppointment        = "alert.appointment"
	TemplateAIInsight          = "alert.insight"
	TemplateResourceUpsert     = "resource.upsert"
	TemplateSettingsPatch      = "settings.patch"
)

// Default returns the registry compiled into the binary.
func Default() (*TemplateRegistry, error) {
	return Parse(defaultRegistry)
}

// LoadRegistry reads a registry file; an empty path yields Default().
func LoadRegistry(path string) (*TemplateRegistry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*TemplateRegistry, error) {
	var reg TemplateRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse template registry: %w", err)
	}
	return &reg, nil
}

// Save writes the registry back as indented JSON.
func Save(path string, reg *TemplateRegistry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Find returns the template with the given ID.
func (r *TemplateRegistry) Find(id string) (*Template, bool) {
	for i := range r.Templates {
		if r.Templates[i].ID == id {
			return &r.Templates[i], true
		}
	}
	return nil, false
}

// ForNotificationType returns the template that owns metadata for a type.
func (r *TemplateRegistry) ForNotificationType(notificationType string) (*Template, bool) {
	for i := range r.Templates {
		if r.Templates[i].NotificationType == notificationType && r.Templates[i].MetadataSchema != nil {
			return &r.Templates[i], true
		}
	}
	return nil, false
}

// RequiredTemplates lists the IDs the API cannot run without.
var RequiredTemplates = []string{
	TemplateNotificationCreate,
	TemplateEmergencyAlert,
	TemplateResourceAlert,
	TemplateAppointment,
	TemplateAIInsight,
	TemplateResourceUpsert,
	TemplateSettingsPatch,
}

// Check reports structural problems: missing or duplicate IDs, missing
// input schemas, metadata schemas without a notification type, two
// templates owning the same type's metadata, and absent required templates.
func (r *TemplateRegistry) Check() error {
	ids := make(map[string]bool, len(r.Templates))
	owners := make(map[string]string)
	for _, t := range r.Templates {
		if t.ID == "" {
			return fmt.Errorf("template missing required field: id")
		}
		if ids[t.ID] {
			return fmt.Errorf("duplicate template ID: %s", t.ID)
		}
		ids[t.ID] = true

		if t.InputSchema == nil {
			return fmt.Errorf("template %s has no inputSchema", t.ID)
		}
		if t.MetadataSchema != nil {
			if t.NotificationType == "" {
				return fmt.Errorf("template %s has a metadataSchema but no notificationType", t.ID)
			}
			if other, ok := owners[t.NotificationType]; ok {
				return fmt.Errorf("templates %s and %s both define metadata for %s", other, t.ID, t.NotificationType)
			}
			owners[t.NotificationType] = t.ID
		}
	}

	for _, id := range RequiredTemplates {
		if !ids[id] {
			return fmt.Errorf("required template missing: %s", id)
		}
	}
	return nil
}
