package idletime

type CreateIdleRequestRequest struct {
	EmployeeID  string `json:"employee_id" binding:"required,uuid"`
	RequestDate string `json:"request_date" binding:"required,datetime=2006-01-02"`
	IdleSeconds int64  `json:"idle_seconds" binding:"required,gt=0"`
	Reason      string `json:"reason"`
}

type IdleRequestResponse struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	RequestDate string `json:"request_date"`
	IdleSeconds int64  `json:"idle_seconds"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status"`
}
