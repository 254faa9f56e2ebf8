package application

import (
	"strings"

	"coldcall-sim/backend/internal/features/conversation/domain"
)

// Speaker returns the label a role carries in a rendered transcript.
func Speaker(role domain.Role) string {
	if role == domain.RoleAgent {
		return "Agent"
	}
	return "Home-owner"
}

// RenderTranscript writes one "Speaker: content" line per turn, in order.
func RenderTranscript(turns []domain.Turn) string {
	var b strings.Builder
	for _, turn := range turns {
		b.WriteString(Speaker(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}
