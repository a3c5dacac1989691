package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "hospital-ops/internal/common/errors"
	"hospital-ops/internal/common/logger"
	"hospital-ops/internal/common/validation"
	"hospital-ops/internal/models"
	"hospital-ops/internal/services/notification"
	"hospital-ops/internal/services/resource"
	"hospital-ops/pkg/registry"
)

type Handler struct {
	notifications *notification.Service
	resources     *resource.Service
	validator     *validation.Validator
	retentionDays int
	logger        logger.Logger
}

func NewHandler(notifications *notification.Service, resources *resource.Service, validator *validation.Validator, retentionDays int, log logger.Logger) *Handler {
	return &Handler{
		notifications: notifications,
		resources:     resources,
		validator:     validator,
		retentionDays: retentionDays,
		logger:        logger.ForComponent(log, "api"),
	}
}

type notificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, notificationList{
		Notifications: h.notifications.Notifications(),
		UnreadCount:   h.notifications.UnreadCount(),
	})
}

func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var draft models.NotificationDraft
	if err := h.decode(r, registry.TemplateNotificationCreate, &draft); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.validator.ValidateMetadata(string(draft.Type), draft.Metadata)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !result.Valid {
		h.writeError(w, r, apperrors.NewValidationError("metadata does not match type "+string(draft.Type), result.GetErrorMessages()))
		return
	}

	n := h.notifications.Create(r.Context(), draft)
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.notifications.MarkAsRead(r.Context(), id) {
		h.writeError(w, r, apperrors.NewNotFoundError("notification", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	h.notifications.MarkAllAsRead(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// ClearOldNotifications takes an optional ?days=N, defaulting to the
// configured retention.
func (h *Handler) ClearOldNotifications(w http.ResponseWriter, r *http.Request) {
	days := h.retentionDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, r, apperrors.NewValidationError("days must be a non-negative integer", nil))
			return
		}
		days = n
	}

	removed := h.notifications.ClearOldNotifications(r.Context(), days)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *Handler) CreateEmergencyAlert(w http.ResponseWriter, r *http.Request) {
	var in notification.EmergencyAlert
	if err := h.decode(r, registry.TemplateEmergencyAlert, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.notifications.CreateEmergencyAlert(r.Context(), in))
}

func (h *Handler) CreateResourceAlert(w http.ResponseWriter, r *http.Request) {
	var in notification.ResourceAlert
	if err := h.decode(r, registry.TemplateResourceAlert, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.notifications.CreateResourceAlert(r.Context(), in))
}

func (h *Handler) CreateAppointmentReminder(w http.ResponseWriter, r *http.Request) {
	var in notification.AppointmentReminder
	if err := h.decode(r, registry.TemplateAppointment, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.notifications.CreateAppointmentReminder(r.Context(), in))
}

func (h *Handler) CreateAIInsight(w http.ResponseWriter, r *http.Request) {
	var in notification.AIInsight
	if err := h.decode(r, registry.TemplateAIInsight, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.notifications.CreateAIInsight(r.Context(), in))
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.notifications.Settings())
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := h.decode(r, registry.TemplateSettingsPatch, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.notifications.UpdateSettings(r.Context(), patch))
}

func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"resources": h.resources.Resources()})
}

type resourceUpsertRequest struct {
	models.ResourceUpdate
	Urgency string `json:"urgency,omitempty"`
}

type resourceUpsertResponse struct {
	Resource     models.ResourceItem `json:"resource"`
	Notification models.Notification `json:"notification"`
}

// AddOrUpdateResource merges the update into the inventory and announces
// it: a request as a resource request, supply as a resource update.
func (h *Handler) AddOrUpdateResource(w http.ResponseWriter, r *http.Request) {
	var req resourceUpsertRequest
	if err := h.decode(r, registry.TemplateResourceUpsert, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	item := h.resources.AddOrUpdate(ctx, req.ResourceUpdate)

	var n models.Notification
	if req.IsRequest() {
		n = h.notifications.CreateResourceRequest(ctx, notification.ResourceRequest{
			Hospital:     item.Hospital,
			ResourceType: item.Resource,
			Quantity:     -req.Quantity,
			Urgency:      req.Urgency,
			Note:         req.Note,
		})
	} else {
		n = h.notifications.CreateResourceAlert(ctx, notification.ResourceAlert{
			Hospital:  item.Hospital,
			Resource:  item.Resource,
			Available: item.Available,
			Capacity:  item.Capacity,
			Status:    string(item.Status),
		})
	}

	writeJSON(w, http.StatusOK, resourceUpsertResponse{Resource: item, Notification: n})
}
