package requirement

type CreateRequirementRequest struct {
	EmployeeID    string  `json:"employee_id" binding:"required,uuid"`
	DailyHours    float64 `json:"daily_hours" binding:"required"`
	EffectiveFrom string  `json:"effective_from" binding:"required"`
}

type RequirementResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	DailyHours    float64 `json:"daily_hours"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
}
