package app

import (
	"database/sql"

	"go-timeclock/internal/attendance"
	"go-timeclock/internal/broadcast"
	"go-timeclock/internal/employee"
	"go-timeclock/internal/idletime"
	"go-timeclock/internal/leave"
	"go-timeclock/internal/machine"
	"go-timeclock/internal/messaging/kafka"
	"go-timeclock/internal/middleware"
	"go-timeclock/internal/report"
	"go-timeclock/internal/requirement"
	"go-timeclock/internal/shared/clock"
	"go-timeclock/internal/task"
	"go-timeclock/internal/workcalendar"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	clk := clock.New()

	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(db)
	employeeRepo := employee.NewRepository(db)
	idleRepo := idletime.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	requirementRepo := requirement.NewRepository(gormDB)
	taskRepo := task.NewRepository(gormDB)
	calendarRepo := workcalendar.NewRepository(gormDB)

	// --- Services ---
	publisher := broadcast.NewPublisher(rdb)
	calendarService := workcalendar.NewService(gormDB, calendarRepo, rdb)
	requirementService := requirement.NewService(gormDB, requirementRepo)
	taskService := task.NewService(gormDB, taskRepo, clk)
	attendanceService := attendance.NewService(
		db,
		attendanceRepo,
		requirementService,
		taskService,
		outboxRepo,
		publisher,
		clk,
	)
	employeeService := employee.NewService(db, employeeRepo, outboxRepo, rdb)
	idleService := idletime.NewService(gormDB, idleRepo, attendanceService, publisher, clk)
	leaveService := leave.NewService(gormDB, leaveRepo, attendanceService, calendarService, clk)
	machineService := machine.NewService(attendanceService, employeeService, clk)
	reportService := report.NewService(attendanceRepo, calendarService, clk)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService)
	employeeHandler := employee.NewHandler(employeeService)
	idleHandler := idletime.NewHandler(idleService)
	leaveHandler := leave.NewHandler(leaveService)
	machineHandler := machine.NewHandler(machineService, calendarService, nil)
	reportHandler := report.NewHandler(reportService)
	requirementHandler := requirement.NewHandler(requirementService)
	taskHandler := task.NewHandler(taskService)
	calendarHandler := workcalendar.NewHandler(calendarService)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler)
		employee.RegisterRoutes(api, employeeHandler)
		idletime.RegisterRoutes(api, idleHandler)
		leave.RegisterRoutes(api, leaveHandler)
		machine.RegisterRoutes(api, machineHandler)
		report.RegisterRoutes(api, reportHandler)
		requirement.RegisterRoutes(api, requirementHandler)
		task.RegisterRoutes(api, taskHandler)
		workcalendar.RegisterRoutes(api, calendarHandler)
	}

	return nil
}
