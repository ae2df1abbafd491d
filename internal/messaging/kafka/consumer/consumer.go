package consumer

import (
	"context"
	"encoding/json"
	"time"

	"crewtask/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// SnapshotRecorder is the slice of the performance service the consumer
// needs; anything that can upsert a weekly completion snapshot fits.
type SnapshotRecorder interface {
	RecordCompletion(ctx context.Context, userID string, occurredAt time.Time) error
}

func NewTaskLifecycleReader(broker, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          events.TaskLifecycleTopic,
		GroupID:        groupID,
		CommitInterval: time.Second,
		StartOffset:    kafkago.FirstOffset,
	})
}

// ConsumeTaskLifecycle keeps weekly performance snapshots in step with
// completions. Snapshot upserts are idempotent per (user, week, year), so a
// redelivered message is harmless.
func ConsumeTaskLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	recorder SnapshotRecorder,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.task_lifecycle")
	log.Info("task lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("task lifecycle consumer stopped")
				return
			}
			log.Error("fetch task lifecycle message failed", zap.Error(err))
			continue
		}

		if eventType(msg) != events.EventAssignmentCompleted {
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		var event events.AssignmentCompletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode assignment_completed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := recorder.RecordCompletion(ctx, event.UserID, event.OccurredAt); err != nil {
			log.Error("record completion snapshot failed",
				zap.String("assignment_id", event.AssignmentID),
				zap.String("user_id", event.UserID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit task lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("completion snapshot recorded",
			zap.String("assignment_id", event.AssignmentID),
			zap.String("user_id", event.UserID),
		)
	}
}

func eventType(msg kafkago.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}
