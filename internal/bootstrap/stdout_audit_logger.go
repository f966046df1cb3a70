package bootstrap

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// StdoutAuditLogger writes audit entries through the process logger. The
// timeclock runs as one service per site, so the hostname is enough to tell
// deployments apart once logs are aggregated.
type StdoutAuditLogger struct {
	host string
}

func NewStdoutAuditLogger() *StdoutAuditLogger {
	host, _ := os.Hostname()
	return &StdoutAuditLogger{host: host}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	zap.L().Named("audit").Info("audit event",
		zap.String("host", l.host),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
