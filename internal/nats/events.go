package nats

import "time"

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// Stream names.
const (
	StreamTasks = "MINDTYPE_TASKS"
)

// Subject constants.
const (
	SubjectExtractMemories = "mindtype.tasks.extract"
)

// ExtractionTask asks a worker to mine one user message for durable facts.
type ExtractionTask struct {
	DeviceID      string    `json:"device_id"`
	CompanionType string    `json:"companion_type"`
	Message       string    `json:"message"`
	ReceivedAt    time.Time `json:"received_at"`
}
