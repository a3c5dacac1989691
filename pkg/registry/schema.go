// pkg/registry/schema.go
package registry

// TemplateRegistry describes every request shape the API accepts and the
// metadata each notification type may carry.
type TemplateRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Templates   []Template `json:"templates"`
}

// Template is one registry entry. NotificationType is set for templates
// that produce a notification of a fixed type; MetadataSchema then
// constrains that type's metadata.
type Template struct {
	ID               string                 `json:"id"`
	DisplayName      string                 `json:"displayName"`
	Description      string                 `json:"description"`
	Version          string                 `json:"version"`
	NotificationType string                 `json:"notificationType,omitempty"`
	Category         string                 `json:"category,omitempty"`
	InputSchema      map[string]interface{} `json:"inputSchema"`
	MetadataSchema   map[string]interface{} `json:"metadataSchema,omitempty"`
	Tags             []string               `json:"tags"`
}
