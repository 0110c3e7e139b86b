package extraction

import (
	"context"
	"log/slog"
	"time"

	inats "github.com/mindtype-app/mindtype-server/internal/nats"
)

// Dispatcher hands an extraction task off the request path.
type Dispatcher interface {
	Dispatch(ctx context.Context, task inats.ExtractionTask)
}

// NATSDispatcher enqueues tasks on JetStream for the consumer loop.
type NATSDispatcher struct {
	publisher *inats.Publisher
	logger    *slog.Logger
}

func NewNATSDispatcher(publisher *inats.Publisher, logger *slog.Logger) *NATSDispatcher {
	return &NATSDispatcher{publisher: publisher, logger: logger}
}

func (d *NATSDispatcher) Dispatch(ctx context.Context, task inats.ExtractionTask) {
	if err := d.publisher.PublishExtractionTask(ctx, task); err != nil {
		d.logger.Error("publishing extraction task", "device_id", task.DeviceID, "error", err)
	}
}

// GoDispatcher runs extraction in a goroutine when no queue is configured.
// A fresh context detaches the work from the request lifetime.
type GoDispatcher struct {
	extractor *Extractor
	logger    *slog.Logger
	timeout   time.Duration
}

func NewGoDispatcher(extractor *Extractor, logger *slog.Logger, timeout time.Duration) *GoDispatcher {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &GoDispatcher{extractor: extractor, logger: logger, timeout: timeout}
}

func (d *GoDispatcher) Dispatch(_ context.Context, task inats.ExtractionTask) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("extraction panicked", "device_id", task.DeviceID, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.extractor.Extract(ctx, task.DeviceID, task.CompanionType, task.Message); err != nil {
			d.logger.Error("extracting memories", "device_id", task.DeviceID, "error", err)
		}
	}()
}
