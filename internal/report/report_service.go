package report

import (
	"context"
	"time"

	"go-timeclock/internal/attendance"
	attendanceerrors "go-timeclock/internal/attendance/errors"
	"go-timeclock/internal/shared/clock"
	"go-timeclock/internal/workcalendar"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is read-only: it derives rollups and percentages from stored
// records and never writes back. Only today's record is ever
// live-adjusted; historical rollups sum stored durations verbatim.
type Service interface {
	RangeSummary(ctx context.Context, employeeID string, from, to time.Time) (RangeSummaryResponse, error)
	DailyOverview(ctx context.Context, day time.Time) (DailyOverviewResponse, error)
}

type service struct {
	records  attendance.Repository
	calendar workcalendar.Service
	clk      clock.Clock
	logger   *zap.Logger
}

func NewService(records attendance.Repository, calendar workcalendar.Service, clk clock.Clock, logger ...*zap.Logger) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &service{records: records, calendar: calendar, clk: clk, logger: l}
}

func (s *service) RangeSummary(ctx context.Context, employeeID string, from, to time.Time) (RangeSummaryResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return RangeSummaryResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	from = attendance.DayOf(from)
	to = attendance.DayOf(to)

	records, err := s.records.FindRange(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("range summary read failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return RangeSummaryResponse{}, err
	}

	resp := RangeSummaryResponse{
		EmployeeID: employeeID,
		From:       from.Format("2006-01-02"),
		To:         to.Format("2006-01-02"),
	}

	byDay := make(map[string]*attendance.Record, len(records))
	for i := range records {
		rec := &records[i]
		byDay[attendance.DayOf(rec.RecordDate).Format("2006-01-02")] = rec

		switch rec.Status {
		case attendance.StatusLeave:
			resp.LeaveDays++
		default:
			resp.TotalWorkSeconds += rec.WorkSeconds
			resp.TotalBreakSeconds += rec.BreakSeconds
		}
		if rec.HoursShortage != nil {
			resp.TotalShortageHours += *rec.HoursShortage
		}
		if rec.CumulativeShortage != nil {
			resp.CumulativeShortage = *rec.CumulativeShortage
		}
	}

	// Working days walk the range day-by-day, skipping weekly offs and
	// holidays under the calendar version effective for each date. Leave
	// days count as present for the percentage.
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		working, err := s.calendar.IsWorkingDay(ctx, day)
		if err != nil {
			return RangeSummaryResponse{}, err
		}
		if !working {
			continue
		}
		resp.WorkingDays++

		if rec, ok := byDay[day.Format("2006-01-02")]; ok && rec.Status != attendance.StatusNone {
			resp.DaysPresent++
		}
	}

	if resp.WorkingDays > 0 {
		resp.AttendancePercentage = float64(resp.DaysPresent) / float64(resp.WorkingDays) * 100
	}
	return resp, nil
}

func (s *service) DailyOverview(ctx context.Context, day time.Time) (DailyOverviewResponse, error) {
	day = attendance.DayOf(day)

	records, err := s.records.FindAllByDate(ctx, day)
	if err != nil {
		s.logger.Error("daily overview read failed", zap.Time("date", day), zap.Error(err))
		return DailyOverviewResponse{}, err
	}

	now := s.clk.Now()
	isToday := attendance.DayOf(now).Equal(day)

	resp := DailyOverviewResponse{
		Date:    day.Format("2006-01-02"),
		Records: make([]DayRecordResponse, 0, len(records)),
	}
	for i := range records {
		rec := &records[i]

		workSeconds, breakSeconds := rec.WorkSeconds, rec.BreakSeconds
		if isToday {
			workSeconds, breakSeconds = attendance.LiveTotals(rec, now)
		}

		entry := DayRecordResponse{
			EmployeeID:   rec.EmployeeID.String(),
			RecordDate:   attendance.DayOf(rec.RecordDate).Format("2006-01-02"),
			Status:       string(rec.Status),
			WorkSeconds:  workSeconds,
			BreakSeconds: breakSeconds,
		}
		if rec.FirstCheckIn != nil {
			v := rec.FirstCheckIn.Format(time.RFC3339)
			entry.FirstCheckIn = &v
		}
		if rec.LastCheckOut != nil {
			v := rec.LastCheckOut.Format(time.RFC3339)
			entry.LastCheckOut = &v
		}
		resp.Records = append(resp.Records, entry)
	}
	return resp, nil
}
