package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	require.NoError(t, reg.Check())

	for _, id := range RequiredTemplates {
		tmpl, ok := reg.Find(id)
		require.True(t, ok, id)
		assert.NotNil(t, tmpl.InputSchema)
	}

	tmpl, ok := reg.ForNotificationType("emergency")
	require.True(t, ok)
	assert.Equal(t, TemplateEmergencyAlert, tmpl.ID)

	_, ok = reg.ForNotificationType("system")
	assert.False(t, ok)
}

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "templates.json")
	reg.Version = "9.9.9"
	require.NoError(t, Save(path, reg))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", loaded.Version)
	assert.Len(t, loaded.Templates, len(reg.Templates))

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Parse([]byte("{"))
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	schema := map[string]interface{}{"type": "object"}
	base := func() *TemplateRegistry {
		reg, err := Default()
		require.NoError(t, err)
		return reg
	}

	tests := []struct {
		name    string
		mutate  func(r *TemplateRegistry)
		wantErr string
	}{
		{"duplicate id", func(r *TemplateRegistry) { r.Templates = append(r.Templates, r.Templates[0]) }, "duplicate template ID"},
		{"empty id", func(r *TemplateRegistry) { r.Templates = append(r.Templates, Template{InputSchema: schema}) }, "missing required field"},
		{"no input schema", func(r *TemplateRegistry) { r.Templates[0].InputSchema = nil }, "no inputSchema"},
		{"metadata without type", func(r *TemplateRegistry) {
			r.Templates = append(r.Templates, Template{ID: "x", InputSchema: schema, MetadataSchema: schema})
		}, "no notificationType"},
		{"two metadata owners", func(r *TemplateRegistry) {
			r.Templates = append(r.Templates, Template{ID: "x", NotificationType: "emergency", InputSchema: schema, MetadataSchema: schema})
		}, "both define metadata"},
		{"required missing", func(r *TemplateRegistry) { r.Templates = r.Templates[1:] }, "required template missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := base()
			tt.mutate(reg)
			err := reg.Check()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
