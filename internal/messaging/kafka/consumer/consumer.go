package consumer

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"go-payway/internal/bootstrap"
	"go-payway/internal/events"
	"go-payway/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs. Offsets are
// committed explicitly so a crash replays the uncommitted tail.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ConsumeEmployeeLifecycle writes one audit entry per employee lifecycle event
// until ctx is done. Undecodable messages are committed and skipped.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	auditLogger bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			log.Error("fetch employee lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.EmployeeLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil || event.EventType == "" {
			log.Error("decode employee lifecycle event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		auditLogger.Log(contextutil.WithRequestID(ctx, event.RequestID), auditEntry(event))

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("employee lifecycle event audited",
			zap.String("event_type", event.EventType),
			zap.Uint("employee_id", event.EmployeeID),
		)
	}
}

func auditEntry(event events.EmployeeLifecycleEvent) bootstrap.AuditLog {
	meta := map[string]any{
		"employee_id": event.EmployeeID,
		"occurred_at": event.OccurredAt,
	}
	if event.EmployeeNo != "" {
		meta["employee_no"] = event.EmployeeNo
	}

	return bootstrap.AuditLog{
		Action:  strings.ToUpper(event.EventType),
		Message: "employee " + strconv.FormatUint(uint64(event.EmployeeID), 10) + " " + strings.TrimPrefix(event.EventType, "employee_"),
		Meta:    meta,
	}
}
