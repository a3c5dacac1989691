package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hospital-ops/internal/models"
)

// EmergencyAlert is the structured input of CreateEmergencyAlert.
type EmergencyAlert struct {
	Hospital    string `json:"hospital"`
	AlertType   string `json:"alertType"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Contact     string `json:"contact,omitempty"`
}

type ResourceAlert struct {
	Hospital  string `json:"hospital"`
	Resource  string `json:"resource"`
	Available int    `json:"available"`
	Capacity  int    `json:"capacity"`
	Status    string `json:"status,omitempty"`
}

// ResourceRequest announces a need; Quantity is the requested amount.
type ResourceRequest struct {
	Hospital     string `json:"hospital"`
	ResourceType string `json:"resourceType"`
	Quantity     int    `json:"quantity"`
	Urgency      string `json:"urgency,omitempty"`
	Note         string `json:"note,omitempty"`
}

type AppointmentReminder struct {
	PatientName     string    `json:"patientName"`
	Doctor          string    `json:"doctor"`
	Department      string    `json:"department,omitempty"`
	AppointmentTime time.Time `json:"appointmentTime"`
	Location        string    `json:"location,omitempty"`
}

type AIInsight struct {
	Title      string  `json:"title"`
	Insight    string  `json:"insight"`
	Confidence float64 `json:"confidence,omitempty"`
	Source     string  `json:"source,omitempty"`
	ActionURL  string  `json:"actionUrl,omitempty"`
}

// PriorityFromSeverity maps a free-text severity onto a priority,
// case-insensitively. Anything unrecognised is treated as critical.
func PriorityFromSeverity(severity string) models.Priority {
	if p, ok := models.ParsePriority(severity); ok {
		return p
	}
	return models.PriorityCritical
}

func (s *Service) CreateEmergencyAlert(ctx context.Context, a EmergencyAlert) models.Notification {
	lines := []string{
		"Hospital: " + a.Hospital,
		"Alert Type: " + a.AlertType,
		"Severity: " + a.Severity,
	}
	if a.Location != "" {
		lines = append(lines, "Location: "+a.Location)
	}
	if a.Contact != "" {
		lines = append(lines, "Contact: "+a.Contact)
	}
	lines = append(lines, "", a.Description)

	metadata := map[string]interface{}{
		"hospital":  a.Hospital,
		"alertType": a.AlertType,
		"severity":  a.Severity,
	}
	if a.Location != "" {
		metadata["location"] = a.Location
	}
	if a.Contact != "" {
		metadata["contact"] = a.Contact
	}

	return s.Create(ctx, models.NotificationDraft{
		Type:             models.TypeEmergency,
		Title:            "Emergency Alert: " + a.AlertType,
		Message:          strings.Join(lines, "\n"),
		Priority:         PriorityFromSeverity(a.Severity),
		Category:         models.CategoryEmergency,
		DeliveryChannels: []models.Channel{models.ChannelInApp, models.ChannelPush, models.ChannelEmail, models.ChannelSMS},
		Metadata:         metadata,
		ActionURL:        "/emergency",
	})
}

func (s *Service) CreateResourceAlert(ctx context.Context, a ResourceAlert) models.Notification {
	lines := []string{
		"Hospital: " + a.Hospital,
		"Resource: " + a.Resource,
		fmt.Sprintf("Available: %d/%d", a.Available, a.Capacity),
	}
	metadata := map[string]interface{}{
		"hospital":  a.Hospital,
		"resource":  a.Resource,
		"available": a.Available,
		"capacity":  a.Capacity,
	}
	if a.Status != "" {
		lines = append(lines, "Status: "+a.Status)
		metadata["status"] = a.Status
	}

	return s.Create(ctx, models.NotificationDraft{
		Type:             models.TypeResourceUpdate,
		Title:            "Resource Update: " + a.Resource,
		Message:          strings.Join(lines, "\n"),
		Priority:         models.PriorityHigh,
		Category:         models.CategoryResource,
		DeliveryChannels: []models.Channel{models.ChannelInApp, models.ChannelPush},
		Metadata:         metadata,
		ActionURL:        "/resources",
	})
}

func (s *Service) CreateResourceRequest(ctx context.Context, r ResourceRequest) models.Notification {
	urgency := r.Urgency
	if urgency == "" {
		urgency = string(models.PriorityCritical)
	}
	lines := []string{
		"Hospital: " + r.Hospital,
		"Resource: " + r.ResourceType,
		fmt.Sprintf("Quantity Needed: %d", r.Quantity),
		"Urgency: " + urgency,
	}
	metadata := map[string]interface{}{
		"hospital":     r.Hospital,
		"resourceType": r.ResourceType,
		"quantity":     r.Quantity,
		"urgency":      urgency,
	}
	if r.Note != "" {
		lines = append(lines, "", r.Note)
		metadata["note"] = r.Note
	}

	return s.Create(ctx, models.NotificationDraft{
		Type:             models.TypeResourceRequest,
		Title:            "Resource Request: " + r.ResourceType,
		Message:          strings.Join(lines, "\n"),
		Priority:         PriorityFromSeverity(urgency),
		Category:         models.CategoryResource,
		DeliveryChannels: []models.Channel{models.ChannelInApp, models.ChannelPush, models.ChannelEmail},
		Metadata:         metadata,
		ActionURL:        "/resources",
	})
}

// CreateAppointmentReminder expires the reminder at the appointment time.
func (s *Service) CreateAppointmentReminder(ctx context.Context, a AppointmentReminder) models.Notification {
	lines := []string{
		"Patient: " + a.PatientName,
		"Doctor: " + a.Doctor,
	}
	if a.Department != "" {
		lines = append(lines, "Department: "+a.Department)
	}
	lines = append(lines, "Time: "+a.AppointmentTime.Format("Mon Jan 2 2006 15:04"))
	if a.Location != "" {
		lines = append(lines, "Location: "+a.Location)
	}

	metadata := map[string]interface{}{
		"patientName":     a.PatientName,
		"doctor":          a.Doctor,
		"appointmentTime": a.AppointmentTime.Format(time.RFC3339),
	}
	if a.Department != "" {
		metadata["department"] = a.Department
	}
	if a.Location != "" {
		metadata["location"] = a.Location
	}

	expires := a.AppointmentTime
	return s.Create(ctx, models.NotificationDraft{
		Type:             models.TypeAppointment,
		Title:            "Appointment Reminder: " + a.PatientName,
		Message:          strings.Join(lines, "\n"),
		Priority:         models.PriorityMedium,
		Category:         models.CategoryAppointment,
		DeliveryChannels: []models.Channel{models.ChannelInApp, models.ChannelEmail},
		ExpiresAt:        &expires,
		Metadata:         metadata,
		ActionURL:        "/appointments",
	})
}

func (s *Service) CreateAIInsight(ctx context.Context, in AIInsight) models.Notification {
	message := in.Insight
	metadata := map[string]interface{}{}
	if in.Confidence > 0 {
		message += fmt.Sprintf("\n\nConfidence: %.0f%%", in.Confidence*100)
		metadata["confidence"] = in.Confidence
	}
	if in.Source != "" {
		message += "\nSource: " + in.Source
		metadata["source"] = in.Source
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	return s.Create(ctx, models.NotificationDraft{
		Type:             models.TypeAIInsight,
		Title:            in.Title,
		Message:          message,
		Priority:         models.PriorityMedium,
		Category:         models.CategoryAIInsight,
		DeliveryChannels: []models.Channel{models.ChannelInApp},
		Metadata:         metadata,
		ActionURL:        in.ActionURL,
	})
}
