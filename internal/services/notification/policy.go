package notification

import (
	"time"

	"hospital-ops/internal/models"
)

// ShouldSend decides whether n is fanned out to its delivery channels.
// Urgent and critical notifications and anything in the emergency
// category bypass every filter.
func ShouldSend(n models.Notification, s models.NotificationSettings, now time.Time) bool {
	if n.Priority.AtLeast(models.PriorityUrgent) {
		return true
	}
	if n.Category == models.CategoryEmergency {
		return true
	}
	if !s.Categories[n.Category] || !s.Priorities[n.Priority] {
		return false
	}
	return !InQuietHours(s.QuietHours, now)
}

// InQuietHours reports whether now falls inside the window. Times are
// compared as HH:MM strings; start > end wraps midnight.
func InQuietHours(q models.QuietHours, now time.Time) bool {
	if !q.Enabled {
		return false
	}
	current := inZone(now, q.Timezone).Format("15:04")
	if q.Start > q.End {
		return current >= q.Start || current <= q.End
	}
	return current >= q.Start && current <= q.End
}

// inZone converts now to the named IANA zone. "Local", an empty name and
// an unknown name all use now's own location.
func inZone(now time.Time, name string) time.Time {
	if name == "" || name == "Local" {
		return now
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return now
	}
	return now.In(loc)
}

// EnabledChannels returns the channels of n that settings allow, in
// the notification's own order.
func EnabledChannels(n models.Notification, s models.NotificationSettings) []models.Channel {
	out := make([]models.Channel, 0, len(n.DeliveryChannels))
	for _, ch := range n.DeliveryChannels {
		if s.Channels[ch] {
			out = append(out, ch)
		}
	}
	return out
}
