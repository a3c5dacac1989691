// internal/models/resource.go
package models

type ResourceStatus string

const (
	StatusAvailable  ResourceStatus = "Available"
	StatusInProgress ResourceStatus = "In Progress"
	StatusUrgent     ResourceStatus = "Urgent"
	StatusUnknown    ResourceStatus = "Unknown"
)

type ResourcePriority string

const (
	ResourcePriorityLow    ResourcePriority = "low"
	ResourcePriorityMedium ResourcePriority = "medium"
	ResourcePriorityHigh   ResourcePriority = "high"
	ResourcePriorityUrgent ResourcePriority = "urgent"
)

// ResourceItem is one inventory row, unique per (Hospital, Resource).
// Status, Progress, Total and Priority are derived by the merge and are
// never set directly by callers.
type ResourceItem struct {
	ID          string           `json:"id"`
	Hospital    string           `json:"hospital"`
	Resource    string           `json:"resource"`
	Status      ResourceStatus   `json:"status"`
	Progress    int              `json:"progress"`
	Total       string           `json:"total"`
	Available   int              `json:"available"`
	Capacity    int              `json:"capacity"`
	CreatedDate string           `json:"createdDate"`
	DueDate     string           `json:"dueDate"`
	Priority    ResourcePriority `json:"priority"`
	Note        string           `json:"note,omitempty"`
}

// ResourceUpdate is a supply (Quantity >= 0) or a request (Quantity < 0).
type ResourceUpdate struct {
	Hospital     string `json:"hospital"`
	ResourceType string `json:"resourceType"`
	Quantity     int    `json:"quantity"`
	Note         string `json:"note,omitempty"`
}

// IsRequest reports whether the update records a need rather than supply.
func (u ResourceUpdate) IsRequest() bool {
	return u.Quantity < 0
}
