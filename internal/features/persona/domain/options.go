package domain

// PersonaOptions are the choices offered by the persona form. Any non-empty
// value is accepted; these are just the presets.
type PersonaOptions struct {
	Natures      []string `json:"natures"`
	Descriptions []string `json:"descriptions"`
	Difficulties []string `json:"difficulties"`
	PriceTiers   []string `json:"price_tiers"`
}

var natures = []string{
	"Friendly and Welcoming",
	"Demanding or Perfectionist",
	"Reserved or Private",
	"Assertive or Business-Oriented",
	"Anxious or Nervous",
}

var descriptions = []string{
	"Approaches the sale with empathy, ensuring a positive experience for all parties involved.",
	"Takes a cautious approach to negotiations, seeking additional information and assurances.",
	"Is highly motivated and responsive, eager to engage in negotiations and excited about the process.",
	"May need more time for decision-making, seeking guidance and support during negotiations.",
	"Has a relaxed approach, not rushing negotiations or being overly proactive.",
	"Is meticulous, ensuring all transaction details are well-defined and met.",
	"Prioritizes trust and confidentiality, sharing property information selectively.",
	"Has strong emotional ties to the property, influencing the negotiation process.",
	"Is confident with clear, non-negotiable terms, expecting an efficient process.",
	"Is reluctant to engage in negotiations and may be unresponsive, causing delays in the process and frustrating potential buyers and agents.",
}

var difficulties = []string{"Easy", "Moderate", "Tough"}

var priceTiers = []string{"Cheap", "Below Average", "Average", "Above Average", "Exorbitant"}

// Options returns a fresh copy of the presets.
func Options() PersonaOptions {
	return PersonaOptions{
		Natures:      append([]string(nil), natures...),
		Descriptions: append([]string(nil), descriptions...),
		Difficulties: append([]string(nil), difficulties...),
		PriceTiers:   append([]string(nil), priceTiers...),
	}
}
