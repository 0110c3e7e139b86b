// Package extraction mines user messages for durable personal details.
// It runs off the chat request path: failures are logged and counted but
// never surface to the user.
package extraction

import (
	"context"
	"log/slog"

	"github.com/mindtype-app/mindtype-server/internal/llm"
	"github.com/mindtype-app/mindtype-server/internal/memory"
	"github.com/mindtype-app/mindtype-server/internal/metrics"
	"github.com/mindtype-app/mindtype-server/internal/prompt"
)

// Extractor asks the model for memorable details and stores what it finds.
type Extractor struct {
	completer llm.Completer
	memories  *memory.Service
	logger    *slog.Logger
}

func NewExtractor(completer llm.Completer, memories *memory.Service, logger *slog.Logger) *Extractor {
	return &Extractor{completer: completer, memories: memories, logger: logger}
}

// Extract runs one extraction round for a user message.
func (e *Extractor) Extract(ctx context.Context, deviceID, companionType, message string) error {
	response, err := e.completer.Complete(ctx, "extraction", []llm.Message{
		{Role: "system", Content: prompt.ExtractionSystem},
		{Role: "user", Content: message},
	}, llm.ExtractionMaxTokens)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("error").Inc()
		return err
	}

	facts := ParseFacts(response)
	if len(facts) == 0 {
		metrics.ExtractionsTotal.WithLabelValues("empty").Inc()
		return nil
	}

	for _, f := range facts {
		err := e.memories.StoreFact(ctx, &memory.FactMemory{
			DeviceID:      deviceID,
			CompanionType: companionType,
			MemoryType:    f.Type,
			MemoryContent: f.Content,
		})
		if err != nil {
			metrics.ExtractionsTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	metrics.ExtractionsTotal.WithLabelValues("stored").Inc()
	e.logger.Debug("stored extracted facts",
		"device_id", deviceID,
		"companion_type", companionType,
		"count", len(facts),
	)
	return nil
}
