package report

type RangeSummaryResponse struct {
	EmployeeID           string  `json:"employee_id"`
	From                 string  `json:"from"`
	To                   string  `json:"to"`
	TotalWorkSeconds     int64   `json:"total_work_seconds"`
	TotalBreakSeconds    int64   `json:"total_break_seconds"`
	WorkingDays          int     `json:"working_days"`
	DaysPresent          int     `json:"days_present"`
	LeaveDays            int     `json:"leave_days"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	TotalShortageHours   float64 `json:"total_shortage_hours"`
	CumulativeShortage   float64 `json:"cumulative_shortage"`
}

type DayRecordResponse struct {
	EmployeeID   string  `json:"employee_id"`
	RecordDate   string  `json:"record_date"`
	Status       string  `json:"status"`
	WorkSeconds  int64   `json:"work_seconds"`
	BreakSeconds int64   `json:"break_seconds"`
	FirstCheckIn *string `json:"first_check_in,omitempty"`
	LastCheckOut *string `json:"last_check_out,omitempty"`
}

type DailyOverviewResponse struct {
	Date    string              `json:"date"`
	Records []DayRecordResponse `json:"records"`
}
