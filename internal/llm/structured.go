package llm

import (
	"encoding/json"
	"fmt"
)

// Link is one reference entry inside a structured answer.
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// StructuredAnswer is the sectioned answer layout the structured prompt
// mandates. Field names are wire-stable; the frontend keys off them.
type StructuredAnswer struct {
	VulnerabilityIntroduction string `json:"vulnerability_introduction"`
	VulnerabilityPrinciple    string `json:"vulnerability_principle"`
	ClassicCases              string `json:"classic_cases"`
	PreventiveMeasures        string `json:"preventive_measures"`
	PracticeRange             string `json:"practice_range"`
	RelevantLinks             []Link `json:"relevant_links"`
}

// ParseStructuredAnswer decodes a structured answer from model output,
// tolerating code fences and surrounding prose.
func ParseStructuredAnswer(response string) (*StructuredAnswer, error) {
	answer, err := ExtractJSONAs[StructuredAnswer](response)
	if err != nil {
		return nil, fmt.Errorf("parse structured answer: %w", err)
	}
	return &answer, nil
}

// HasStructuredMarkers reports whether the text carries a structured
// answer. Used to classify messages persisted without a mode tag: the
// text must decode to a JSON object holding both the introduction and
// cases sections.
func HasStructuredMarkers(text string) bool {
	fields, err := ExtractJSONAs[map[string]json.RawMessage](text)
	if err != nil {
		return false
	}

	_, hasIntro := fields["vulnerability_introduction"]
	_, hasCases := fields["classic_cases"]
	return hasIntro && hasCases
}
