package task

type StartTimerRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	TaskName   string `json:"task_name" binding:"required"`
}

type TimerResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	TaskName     string  `json:"task_name"`
	StartedAt    string  `json:"started_at"`
	StoppedAt    *string `json:"stopped_at,omitempty"`
	TotalSeconds int64   `json:"total_seconds"`
}
