package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFacts_PlainArray(t *testing.T) {
	facts := ParseFacts(`[{"type":"job","content":"works as a nurse"},{"type":"hobby","content":"climbs on weekends"}]`)
	assert.Equal(t, []Fact{
		{Type: "job", Content: "works as a nurse"},
		{Type: "hobby", Content: "climbs on weekends"},
	}, facts)
}

func TestParseFacts_ArrayInsideProse(t *testing.T) {
	response := "Sure! Here are the details I found:\n```json\n[{\"type\":\"name\",\"content\":\"goes by Sam\"}]\n```\nLet me know if you need more."
	facts := ParseFacts(response)
	assert.Equal(t, []Fact{{Type: "name", Content: "goes by Sam"}}, facts)
}

func TestParseFacts_EmptyArray(t *testing.T) {
	assert.Empty(t, ParseFacts("[]"))
}

func TestParseFacts_MalformedJSON(t *testing.T) {
	assert.Empty(t, ParseFacts("I could not find anything memorable."))
	assert.Empty(t, ParseFacts(`[{"type":"job","content":`))
	assert.Empty(t, ParseFacts(""))
}

func TestParseFacts_DropsIncompleteEntries(t *testing.T) {
	facts := ParseFacts(`[{"type":"job"},{"content":"no type"},{"type":"goal","content":"run a marathon"}]`)
	assert.Equal(t, []Fact{{Type: "goal", Content: "run a marathon"}}, facts)
}
