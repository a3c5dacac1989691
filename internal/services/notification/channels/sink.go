// internal/services/notification/channels/sink.go
package channels

import (
	"context"
	"fmt"
	"strings"

	"hospital-ops/internal/models"
)

// Sink delivers a notification over one channel. Send may block on
// network I/O and must honour ctx.
type Sink interface {
	Channel() models.Channel
	Send(ctx context.Context, n models.Notification) error
}

// Set maps each channel to its sink.
type Set map[models.Channel]Sink

// NewSet indexes sinks by their channel; a later sink replaces an earlier
// one for the same channel.
func NewSet(sinks ...Sink) Set {
	s := make(Set, len(sinks))
	for _, sink := range sinks {
		s[sink.Channel()] = sink
	}
	return s
}

func subject(n models.Notification) string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(n.Priority)), n.Title)
}

func body(n models.Notification) string {
	var b strings.Builder
	b.WriteString(n.Message)
	if n.ActionURL != "" {
		b.WriteString("\n\n")
		b.WriteString(n.ActionURL)
	}
	return b.String()
}

// smsBody keeps the text inside a single 160 character segment.
func smsBody(n models.Notification) string {
	text := subject(n) + ": " + strings.Join(strings.Fields(n.Message), " ")
	runes := []rune(text)
	if len(runes) <= 160 {
		return text
	}
	return string(runes[:157]) + "..."
}
