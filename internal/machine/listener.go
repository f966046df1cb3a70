package machine

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReconnectBackoff is the fixed delay between reconnect attempts after
// the device connection drops. Retries are unbounded; a dead terminal
// must never take the process down with it.
const ReconnectBackoff = 30 * time.Second

// Listener keeps a live subscription to the device open and feeds every
// punch through the event adapter.
type Listener struct {
	client  Client
	service Service
	backoff time.Duration
	logger  *zap.Logger
}

func NewListener(client Client, service Service, logger ...*zap.Logger) *Listener {
	l := zap.L().Named("machine.listener")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("machine.listener")
	}
	return &Listener{client: client, service: service, backoff: ReconnectBackoff, logger: l}
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.listenOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("device connection lost, reconnecting",
				zap.Error(err),
				zap.Duration("backoff", l.backoff),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.backoff):
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context) error {
	punches, errCh, err := l.client.Subscribe(ctx)
	if err != nil {
		return err
	}

	l.logger.Info("device subscription established")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case p, ok := <-punches:
			if !ok {
				return <-errCh
			}
			l.service.ProcessEvent(ctx, p.MachineUserID, p.RecordTime)
		}
	}
}
