package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-timeclock/internal/attendance"
	"go-timeclock/internal/broadcast"
	"go-timeclock/internal/config"
	"go-timeclock/internal/employee"
	"go-timeclock/internal/machine"
	"go-timeclock/internal/messaging/kafka"
	"go-timeclock/internal/requirement"
	"go-timeclock/internal/shared/clock"
	"go-timeclock/internal/shared/connection"
	"go-timeclock/internal/task"
	"go-timeclock/internal/workcalendar"

	"go.uber.org/zap"
)

// RunSyncer keeps the biometric device feed flowing into attendance.
// With real-time sync enabled it holds a live subscription; otherwise
// it polls the device log on a fixed interval. The mode and device
// address come from the active calendar settings and are re-read on
// every reconnect and tick, so a settings change takes effect without a
// restart.
func RunSyncer(cfg *config.Config) error {
	logger := zap.L().Named("app.syncer")

	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.Database.Host,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.Port,
		cfg.Database.SSLMode,
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, 5)
	if err != nil {
		return err
	}

	clk := clock.New()

	attendanceRepo := attendance.NewRepository(sqlDB)
	employeeRepo := employee.NewRepository(sqlDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	requirementRepo := requirement.NewRepository(gormDB)
	taskRepo := task.NewRepository(gormDB)
	calendarRepo := workcalendar.NewRepository(gormDB)

	publisher := broadcast.NewPublisher(redisClient)
	calendarService := workcalendar.NewService(gormDB, calendarRepo, redisClient)
	requirementService := requirement.NewService(gormDB, requirementRepo)
	taskService := task.NewService(gormDB, taskRepo, clk)
	attendanceService := attendance.NewService(
		sqlDB,
		attendanceRepo,
		requirementService,
		taskService,
		outboxRepo,
		publisher,
		clk,
	)
	employeeService := employee.NewService(sqlDB, employeeRepo, outboxRepo, redisClient)
	machineService := machine.NewService(attendanceService, employeeService, clk)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runSyncLoop(ctx, cfg, machineService, calendarService, clk, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("syncer shutting down")
	cancel()

	return nil
}

func runSyncLoop(
	ctx context.Context,
	cfg *config.Config,
	machineService machine.Service,
	calendarService workcalendar.Service,
	clk clock.Clock,
	logger *zap.Logger,
) {
	for {
		settings, err := calendarService.SettingsAsOf(ctx, clk.Now())
		if err != nil || settings.MachineHost == "" {
			if err != nil {
				logger.Error("load calendar settings failed", zap.Error(err))
			} else {
				logger.Warn("no biometric device configured, waiting")
			}
			if !sleepCtx(ctx, machine.ReconnectBackoff) {
				return
			}
			continue
		}

		client := machine.NewTCPClient(settings.MachineHost, settings.MachinePort)

		if settings.RealTimeSync {
			listener := machine.NewListener(client, machineService, logger)
			if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("device listener exited", zap.Error(err))
			}
			if ctx.Err() != nil {
				return
			}
			continue
		}

		if err := machineService.SyncAttendance(ctx, client); err != nil {
			logger.Warn("periodic device sync failed", zap.Error(err))
		}
		if !sleepCtx(ctx, cfg.Syncer.PollInterval) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
