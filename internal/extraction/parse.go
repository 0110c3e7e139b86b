package extraction

import (
	"encoding/json"
	"regexp"
)

// Fact is one detail mined from a user message.
type Fact struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Models wrap JSON in prose or code fences more often than not, so grab the
// first bracketed block instead of parsing the raw response.
var jsonArrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)

// ParseFacts pulls the fact array out of a model response. Malformed output
// yields an empty slice, never an error: extraction is best-effort.
func ParseFacts(response string) []Fact {
	jsonStr := response
	if match := jsonArrayPattern.FindString(response); match != "" {
		jsonStr = match
	}

	var raw []Fact
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil
	}

	facts := make([]Fact, 0, len(raw))
	for _, f := range raw {
		if f.Type != "" && f.Content != "" {
			facts = append(facts, f)
		}
	}
	return facts
}
