package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mindtype-app/mindtype-server/internal/companion"
	"github.com/mindtype-app/mindtype-server/internal/memory"
	"github.com/mindtype-app/mindtype-server/internal/mood"
)

func testAgent() companion.Agent {
	return companion.Agent{
		Type:      "INTJ",
		Name:      "Vera",
		Gender:    "female",
		Ambition:  "build a research lab of her own",
		Desires:   []string{"finish her thesis", "find a decent espresso"},
		Backstory: "Grew up in a small coastal town.",
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{4, "night"},
		{5, "morning"},
		{11, "morning"},
		{12, "afternoon"},
		{16, "afternoon"},
		{17, "evening"},
		{20, "evening"},
		{21, "night"},
		{0, "night"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeOfDay(tt.hour), "hour %d", tt.hour)
	}
}

func TestTrustDescription(t *testing.T) {
	assert.Contains(t, TrustDescription(1), "just met this person")
	assert.Contains(t, TrustDescription(5), "trust this person deeply")
	assert.Contains(t, TrustDescription(6), "profound soul bond")
	assert.Contains(t, TrustDescription(12), "profound soul bond")
	// Out-of-range levels read as a first meeting.
	assert.Contains(t, TrustDescription(0), "just met this person")
}

func TestMoodDescription(t *testing.T) {
	assert.Contains(t, MoodDescription(mood.StateIrritated), "annoyed")
	assert.Contains(t, MoodDescription(mood.StateNeutral), "balanced")
	assert.Contains(t, MoodDescription(mood.StatePleased), "good mood")
	assert.Contains(t, MoodDescription(mood.StateDelighted), "really enjoying")
}

func TestSolo_IncludesPersonaAndContext(t *testing.T) {
	got := Solo(SoloInput{
		Agent:          testAgent(),
		TrustLevel:     3,
		MoodValue:      40,
		RecentActivity: "reading a paper",
		Now:            time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC),
	})

	assert.True(t, strings.HasPrefix(got, "You are Vera."))
	assert.Contains(t, got, "Your background: Grew up in a small coastal town.")
	assert.Contains(t, got, "Long-term goal: build a research lab of her own")
	assert.Contains(t, got, "finish her thesis; find a decent espresso")
	assert.Contains(t, got, "It's morning. You were reading a paper before checking your phone.")
	assert.Contains(t, got, "You're in a good mood.")
	assert.Contains(t, got, "You know this person decently well now.")
}

func TestSolo_OmitsEmptySections(t *testing.T) {
	agent := testAgent()
	agent.Backstory = ""
	got := Solo(SoloInput{
		Agent:          agent,
		TrustLevel:     1,
		RecentActivity: "relaxing at home",
		Now:            time.Date(2024, 1, 17, 22, 0, 0, 0, time.UTC),
	})

	assert.NotContains(t, got, "Your background:")
	assert.NotContains(t, got, "Things you know about them:")
	assert.NotContains(t, got, "Recent emotional moments")
	assert.Contains(t, got, "It's night.")
}

func TestSolo_RendersMemories(t *testing.T) {
	got := Solo(SoloInput{
		Agent:          testAgent(),
		TrustLevel:     2,
		RecentActivity: "cooking",
		Facts: []memory.FactMemory{
			{MemoryContent: "works as a nurse"},
			{MemoryContent: "has a dog named Biscuit"},
		},
		Emotional: []memory.EmotionalMemory{
			{Content: "you remembered my birthday", Impact: mood.ImpactPositive},
			{Content: "called me boring", Impact: mood.ImpactNegative},
		},
		Now: time.Date(2024, 1, 17, 14, 0, 0, 0, time.UTC),
	})

	assert.Contains(t, got, "Things you know about them:\n- works as a nurse\n- has a dog named Biscuit")
	assert.Contains(t, got, "- Good memory: you remembered my birthday")
	assert.Contains(t, got, "- Bad memory: called me boring")
}

func TestGroup_ListsOthersAndPeerTurns(t *testing.T) {
	vera := testAgent()
	milo := companion.Agent{Type: "ENFP", Name: "Milo", Ambition: "start a band", Desires: []string{"jam more"}}
	ida := companion.Agent{Type: "ISTP", Name: "Ida", Ambition: "restore a motorcycle", Desires: []string{"garage time"}}

	got := Group(GroupInput{
		Agents:         []companion.Agent{vera, milo, ida},
		Current:        milo,
		TrustLevel:     4,
		RecentActivity: "tuning a guitar",
		Facts:          []memory.FactMemory{{MemoryContent: "plays piano"}},
		PeerTurns:      []PeerTurn{{Name: "Vera", Content: "That plan has holes."}},
		Now:            time.Date(2024, 1, 17, 18, 0, 0, 0, time.UTC),
	})

	assert.True(t, strings.HasPrefix(got, "You are Milo. You're in a group chat with Vera, Ida and the user."))
	assert.Contains(t, got, "WHAT OTHERS JUST SAID:\nVera: \"That plan has holes.\"")
	assert.Contains(t, got, "You know about them: plays piano")
	assert.Contains(t, got, "This person is a friend.")
	assert.Contains(t, got, "It's evening. You were tuning a guitar before this.")
}

func TestGroup_NoPeerTurnsOmitsSection(t *testing.T) {
	vera := testAgent()
	milo := companion.Agent{Type: "ENFP", Name: "Milo", Ambition: "start a band", Desires: []string{"jam more"}}

	got := Group(GroupInput{
		Agents:         []companion.Agent{vera, milo},
		Current:        vera,
		TrustLevel:     1,
		RecentActivity: "reading",
		Now:            time.Date(2024, 1, 17, 18, 0, 0, 0, time.UTC),
	})

	assert.NotContains(t, got, "WHAT OTHERS JUST SAID")
}
