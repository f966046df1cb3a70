package attendance

type RecordResponse struct {
	ID                 string   `json:"id"`
	EmployeeID         string   `json:"employee_id"`
	RecordDate         string   `json:"record_date"`
	Status             string   `json:"status"`
	FirstCheckIn       *string  `json:"first_check_in,omitempty"`
	LastCheckOut       *string  `json:"last_check_out,omitempty"`
	WorkSeconds        int64    `json:"work_seconds"`
	BreakSeconds       int64    `json:"break_seconds"`
	LastStatusChange   *string  `json:"last_status_change,omitempty"`
	RequiredHours      float64  `json:"required_hours"`
	HoursShortage      *float64 `json:"hours_shortage,omitempty"`
	CumulativeShortage *float64 `json:"cumulative_shortage,omitempty"`
}

type LiveStatusResponse struct {
	Status string `json:"status"`
}

type LiveElapsedResponse struct {
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

type DailyStatsResponse struct {
	WorkSeconds           int64   `json:"work_seconds"`
	BreakSeconds          int64   `json:"break_seconds"`
	RemainingBreakSeconds int64   `json:"remaining_break_seconds"`
	RequiredSeconds       int64   `json:"required_seconds"`
	CumulativeShortage    float64 `json:"cumulative_shortage"`
}
