package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriority_AtLeast(t *testing.T) {
	tests := []struct {
		p     Priority
		other Priority
		want  bool
	}{
		{PriorityCritical, PriorityUrgent, true},
		{PriorityUrgent, PriorityUrgent, true},
		{PriorityHigh, PriorityUrgent, false},
		{PriorityLow, PriorityLow, true},
		{Priority("severe"), PriorityLow, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.p)+">="+string(tt.other), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.AtLeast(tt.other))
		})
	}
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority("  URGENT ")
	assert.True(t, ok)
	assert.Equal(t, PriorityUrgent, p)

	_, ok = ParsePriority("severe")
	assert.False(t, ok)
}
