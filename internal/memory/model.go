package memory

import (
	"time"

	"github.com/google/uuid"

	"github.com/mindtype-app/mindtype-server/internal/mood"
)

// EmotionalMemory is an immutable record of a message that landed hard enough
// to be remembered (intensity >= 2).
type EmotionalMemory struct {
	ID            uuid.UUID   `json:"id"`
	DeviceID      string      `json:"device_id"`
	CompanionType string      `json:"companion_type"`
	Content       string      `json:"content"`
	Impact        mood.Impact `json:"impact"`
	Intensity     int         `json:"intensity"` // 1-5
	CreatedAt     time.Time   `json:"created_at"`
}

// FactMemory is a durable detail about the user, produced by best-effort
// LLM extraction.
type FactMemory struct {
	ID            uuid.UUID `json:"id"`
	DeviceID      string    `json:"device_id"`
	CompanionType string    `json:"companion_type"`
	MemoryType    string    `json:"memory_type"` // free-form category: name, job, hobby, ...
	MemoryContent string    `json:"memory_content"`
	CreatedAt     time.Time `json:"created_at"`
}

// TranscriptEntry is a single turn in the 1:1 conversation transcript.
type TranscriptEntry struct {
	Role          string    `json:"role"` // "user" or "assistant"
	Content       string    `json:"content"`
	CompanionType string    `json:"companion_type,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
