package extraction

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	inats "github.com/mindtype-app/mindtype-server/internal/nats"
)

// Consumer drains the extraction task stream and runs the extractor on each
// message. Blocks until the context is cancelled.
type Consumer struct {
	extractor   *Extractor
	consumerMgr *inats.ConsumerManager
	logger      *slog.Logger
}

func NewConsumer(extractor *Extractor, consumerMgr *inats.ConsumerManager, logger *slog.Logger) *Consumer {
	return &Consumer{
		extractor:   extractor,
		consumerMgr: consumerMgr,
		logger:      logger,
	}
}

// Start begins the consume loop. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.consumerMgr.EnsureConsumer(ctx, inats.StreamTasks, "memory-extractor", inats.SubjectExtractMemories)
	if err != nil {
		return err
	}

	c.logger.Info("extraction consumer started", "consumer", "memory-extractor")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Debug("extraction consumer: fetching tasks", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleTask(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) handleTask(ctx context.Context, msg jetstream.Msg) {
	var task inats.ExtractionTask
	if err := json.Unmarshal(msg.Data(), &task); err != nil {
		c.logger.Error("extraction consumer: unmarshaling task", "error", err)
		_ = msg.Nak()
		return
	}

	if err := c.extractor.Extract(ctx, task.DeviceID, task.CompanionType, task.Message); err != nil {
		// Extraction is best-effort; ack anyway so a poisoned message
		// cannot wedge the work queue.
		c.logger.Error("extraction consumer: extracting memories",
			"device_id", task.DeviceID, "error", err)
	}

	_ = msg.Ack()
}
