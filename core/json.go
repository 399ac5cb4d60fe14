package core

import "encoding/json"

// MarshalJSON serializes the match with the derived analytics fields so
// cross-process consumers never have to reimplement the resolution rules.
func (m *ConceptMatch) MarshalJSON() ([]byte, error) {
	type alias ConceptMatch
	out := struct {
		*alias
		AnalyticsID *ConceptID `json:"analytics_concept_id"`
		Usable      bool       `json:"usable_for_analytics"`
	}{alias: (*alias)(m)}

	if id, ok := m.AnalyticsID(); ok {
		out.AnalyticsID = &id
		out.Usable = true
	}
	return json.Marshal(out)
}
