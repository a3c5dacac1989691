package resource

import "strings"

var labels = map[string]string{
	"icu":         "ICU Beds",
	"ventilators": "Ventilators",
	"oxygen":      "Oxygen Supply",
	"blood":       "Blood Units",
	"ppe":         "PPE Kits",
	"medications": "Medications",
	"beds":        "General Beds",
	"staff":       "Medical Staff",
	"ambulances":  "Ambulances",
}

// Label returns the display label for a resource type. Unknown types are
// their own label.
func Label(resourceType string) string {
	if l, ok := labels[strings.ToLower(strings.TrimSpace(resourceType))]; ok {
		return l
	}
	return resourceType
}
