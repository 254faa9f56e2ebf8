package domain

import "fmt"

// CallAnalytics is the structured evaluation of a finished call. The description
// tags are sent to the model as the schema of the analyze_call function.
type CallAnalytics struct {
	Successful                      bool     `json:"successful" description:"Whether the agent was successful in setting up an appointment or not"`
	UnderstandingOfCustomerNeeds    string   `json:"understanding_of_customer_needs" description:"A brief evaluation of the agent in gauging and addressing the individual needs, preferences, and concerns of the client."`
	ProficiencyInRealEstateConcepts string   `json:"proficiency_in_real_estate_concepts" description:"A brief evaluation of how proficient the agent is and how much expertise and understanding of real-estate specific terminologies and concepts the agent has."`
	NegotiationSkills               string   `json:"negotiation_skills" description:"A brief evaluation of how much skill the agent holds in discussing terms and agreements to reach a mutually beneficial outcome, often involving compromise and diplomacy."`
	Suggestions                     []string `json:"suggestions" description:"Recommendations and suggestions for the agent to improve further in future calls like this"`
	KeyShift                        string   `json:"key_shift" description:"Very short description of what the key shift during the conversation was that led to the conclusion"`
}

// ParseError reports a structured reply that does not match CallAnalytics.
type ParseError struct {
	Field  string // empty when the payload as a whole is unusable
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid analytics reply: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid analytics reply: %s", e.Reason)
}
