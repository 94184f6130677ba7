package consumer

import (
	"context"
	"encoding/json"

	"go-courier/internal/bootstrap"
	"go-courier/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeDriverLifecycle feeds driver registration and removal events into
// the audit trail.
func ConsumeDriverLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.driver_lifecycle")
	log.Info("driver lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("driver lifecycle consumer stopped")
				return
			}
			log.Error("fetch driver lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.DriverLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode driver lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		audit.Log(ctx, bootstrap.AuditLog{
			Action:  event.EventType,
			Message: "driver lifecycle change",
			Meta: map[string]any{
				"driver_id":   event.DriverID,
				"admin_id":    event.AdminID,
				"driver_name": event.DriverName,
				"occurred_at": event.OccurredAt,
			},
		})

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit driver lifecycle message failed", zap.Error(err))
		}
	}
}
