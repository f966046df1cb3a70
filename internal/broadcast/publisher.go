package broadcast

import (
	"context"
	"encoding/json"

	"go-timeclock/internal/events"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	AttendanceUpdateChannel   = "attendance_update"
	IdleApprovalUpdateChannel = "idle_approval_update"
)

// Publisher fans live updates out to UI observers over redis pub/sub.
// Delivery is best-effort: a failed publish is logged and dropped, the
// durable record of the change lives in the store and the outbox.
type Publisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewPublisher(rdb *redis.Client, logger ...*zap.Logger) *Publisher {
	l := zap.L().Named("broadcast.publisher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("broadcast.publisher")
	}
	return &Publisher{rdb: rdb, logger: l}
}

func (p *Publisher) AttendanceUpdate(ctx context.Context, event events.AttendanceUpdateEvent) {
	p.publish(ctx, AttendanceUpdateChannel, event)
}

func (p *Publisher) IdleApprovalUpdate(ctx context.Context, event events.IdleApprovalUpdateEvent) {
	p.publish(ctx, IdleApprovalUpdateChannel, event)
}

func (p *Publisher) publish(ctx context.Context, channel string, event interface{}) {
	if p.rdb == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal broadcast event failed",
			zap.String("channel", channel),
			zap.Error(err),
		)
		return
	}

	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		p.logger.Warn("broadcast publish failed",
			zap.String("channel", channel),
			zap.Error(err),
		)
	}
}
