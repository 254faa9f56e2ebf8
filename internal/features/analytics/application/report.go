package application

import (
	"strings"

	"coldcall-sim/backend/internal/features/analytics/domain"
)

// FormatReport renders analytics as Markdown sections in field order.
func FormatReport(a *domain.CallAnalytics) string {
	if a == nil {
		return ""
	}
	success := "No"
	if a.Successful {
		success = "Yes"
	}

	var b strings.Builder
	b.WriteString("## Conversation Analytics:\n\n")
	section(&b, "Was the Agent successful in setting up an appointment?", "**"+success+"**")
	section(&b, "Understanding of Customer Needs:", a.UnderstandingOfCustomerNeeds)
	section(&b, "Proficiency in Real Estate Concepts:", a.ProficiencyInRealEstateConcepts)
	section(&b, "Negotiation Skills:", a.NegotiationSkills)

	bullets := make([]string, 0, len(a.Suggestions))
	for _, s := range a.Suggestions {
		bullets = append(bullets, "- "+s)
	}
	section(&b, "Recommendations and Suggestions to improve:", strings.Join(bullets, "\n"))
	section(&b, "Key Shift in the Conversation:", a.KeyShift)
	return b.String()
}

func section(b *strings.Builder, title, body string) {
	b.WriteString("#### ")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n\n")
}
