package companion

import "math/rand"

// Agent is a chat persona as supplied by the client. The server holds no
// companion rows of its own; the 16 MBTI personas live in the app bundle and
// arrive fully described on every chat request.
type Agent struct {
	Type       string   `json:"type" validate:"required,min=3,max=4"`
	Gender     string   `json:"gender" validate:"required"`
	Name       string   `json:"name" validate:"required"`
	Role       string   `json:"role"`
	Ambition   string   `json:"ambition"`
	Desires    []string `json:"desires"`
	Activities []string `json:"activities"`
	Backstory  string   `json:"backstory,omitempty"`
}

// RandomActivity picks one of the agent's recent activities for prompt
// flavor, or a fallback when the client sent none.
func (a Agent) RandomActivity() string {
	if len(a.Activities) == 0 {
		return "relaxing at home"
	}
	return a.Activities[rand.Intn(len(a.Activities))]
}
