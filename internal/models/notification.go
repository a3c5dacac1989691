// internal/models/notification.go
package models

import (
	"strings"
	"time"
)

type NotificationType string

const (
	TypeEmergency       NotificationType = "emergency"
	TypeResourceUpdate  NotificationType = "resource_update"
	TypeResourceRequest NotificationType = "resource_request"
	TypeAppointment     NotificationType = "appointment"
	TypeAIInsight       NotificationType = "ai_insight"
	TypeSystem          NotificationType = "system"
)

type Category string

const (
	CategoryEmergency   Category = "emergency"
	CategoryResource    Category = "resource"
	CategoryAppointment Category = "appointment"
	CategoryAIInsight   Category = "ai_insight"
	CategorySystem      Category = "system"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{CategoryEmergency, CategoryResource, CategoryAppointment, CategoryAIInsight, CategorySystem}

type Channel string

const (
	ChannelInApp Channel = "in-app"
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

var AllChannels = []Channel{ChannelInApp, ChannelPush, ChannelEmail, ChannelSMS}

// Priority is ordered: low < medium < high < urgent < critical.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityUrgent   Priority = "urgent"
	PriorityCritical Priority = "critical"
)

var AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PriorityCritical}

// Rank returns the position of p in the priority order, or -1 if unknown.
func (p Priority) Rank() int {
	for i, known := range AllPriorities {
		if p == known {
			return i
		}
	}
	return -1
}

// AtLeast reports whether p ranks at or above other.
func (p Priority) AtLeast(other Priority) bool {
	return p.Rank() >= other.Rank() && p.Rank() >= 0
}

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Rank() >= 0
}

// Notification is a single entry in the in-app notification log.
type Notification struct {
	ID               string                 `json:"id"`
	Type             NotificationType       `json:"type"`
	Title            string                 `json:"title"`
	Message          string                 `json:"message"`
	IsRead           bool                   `json:"isRead"`
	Priority         Priority               `json:"priority"`
	Category         Category               `json:"category"`
	DeliveryChannels []Channel              `json:"deliveryChannels"`
	Timestamp        time.Time              `json:"timestamp"`
	ExpiresAt        *time.Time             `json:"expiresAt,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	ActionURL        string                 `json:"actionUrl,omitempty"`
}

// HasChannel reports whether c is in the notification's delivery set.
func (n Notification) HasChannel(c Channel) bool {
	for _, ch := range n.DeliveryChannels {
		if ch == c {
			return true
		}
	}
	return false
}

// Expired reports whether ExpiresAt is set and strictly before now.
func (n Notification) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && n.ExpiresAt.Before(now)
}

// NotificationDraft is everything a caller supplies; ID, Timestamp and
// IsRead are assigned on creation.
type NotificationDraft struct {
	Type             NotificationType       `json:"type"`
	Title            string                 `json:"title"`
	Message          string                 `json:"message"`
	Priority         Priority               `json:"priority"`
	Category         Category               `json:"category"`
	DeliveryChannels []Channel              `json:"deliveryChannels"`
	ExpiresAt        *time.Time             `json:"expiresAt,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	ActionURL        string                 `json:"actionUrl,omitempty"`
}

// QuietHours is a wall-clock window in HH:MM; Start > End wraps midnight.
type QuietHours struct {
	Enabled  bool   `json:"enabled"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}

type DigestFrequency string

const (
	DigestImmediate DigestFrequency = "immediate"
	DigestHourly    DigestFrequency = "hourly"
	DigestDaily     DigestFrequency = "daily"
	DigestWeekly    DigestFrequency = "weekly"
)

type EmailDigest struct {
	Enabled   bool            `json:"enabled"`
	Frequency DigestFrequency `json:"frequency"`
}

// NotificationSettings is the single per-instance delivery policy record.
type NotificationSettings struct {
	Channels    map[Channel]bool  `json:"channels"`
	Categories  map[Category]bool `json:"categories"`
	Priorities  map[Priority]bool `json:"priorities"`
	QuietHours  QuietHours        `json:"quietHours"`
	EmailDigest EmailDigest       `json:"emailDigest"`
}

// DefaultNotificationSettings enables in-app and push, every category and
// every priority, with quiet hours off.
func DefaultNotificationSettings() NotificationSettings {
	s := NotificationSettings{
		Channels: map[Channel]bool{
			ChannelInApp: true,
			ChannelPush:  true,
			ChannelEmail: false,
			ChannelSMS:   false,
		},
		Categories: make(map[Category]bool, len(AllCategories)),
		Priorities: make(map[Priority]bool, len(AllPriorities)),
		QuietHours: QuietHours{
			Enabled:  false,
			Start:    "22:00",
			End:      "07:00",
			Timezone: "Local",
		},
		EmailDigest: EmailDigest{
			Enabled:   false,
			Frequency: DigestDaily,
		},
	}
	for _, c := range AllCategories {
		s.Categories[c] = true
	}
	for _, p := range AllPriorities {
		s.Priorities[p] = true
	}
	return s
}

// Clone returns a copy whose maps can be mutated independently.
func (s NotificationSettings) Clone() NotificationSettings {
	out := s
	out.Channels = make(map[Channel]bool, len(s.Channels))
	for k, v := range s.Channels {
		out.Channels[k] = v
	}
	out.Categories = make(map[Category]bool, len(s.Categories))
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	out.Priorities = make(map[Priority]bool, len(s.Priorities))
	for k, v := range s.Priorities {
		out.Priorities[k] = v
	}
	return out
}

// SettingsPatch is a partial settings update. Present top-level fields
// replace the stored value wholesale; absent ones are left alone.
type SettingsPatch struct {
	Channels    map[Channel]bool  `json:"channels,omitempty"`
	Categories  map[Category]bool `json:"categories,omitempty"`
	Priorities  map[Priority]bool `json:"priorities,omitempty"`
	QuietHours  *QuietHours       `json:"quietHours,omitempty"`
	EmailDigest *EmailDigest      `json:"emailDigest,omitempty"`
}

// Apply shallow-merges the patch into s and returns the result.
func (p SettingsPatch) Apply(s NotificationSettings) NotificationSettings {
	out := s.Clone()
	if p.Channels != nil {
		out.Channels = p.Channels
	}
	if p.Categories != nil {
		out.Categories = p.Categories
	}
	if p.Priorities != nil {
		out.Priorities = p.Priorities
	}
	if p.QuietHours != nil {
		out.QuietHours = *p.QuietHours
	}
	if p.EmailDigest != nil {
		out.EmailDigest = *p.EmailDigest
	}
	return out.Clone()
}
