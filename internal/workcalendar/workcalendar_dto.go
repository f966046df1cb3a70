package workcalendar

type UpdateSettingsRequest struct {
	WeeklyOffDays []int  `json:"weekly_off_days" binding:"required"`
	MachineHost   string `json:"machine_host"`
	MachinePort   int    `json:"machine_port"`
	RealTimeSync  bool   `json:"real_time_sync"`
	EffectiveFrom string `json:"effective_from" binding:"required"`
}

type SettingsResponse struct {
	ID            string  `json:"id"`
	WeeklyOffDays []int   `json:"weekly_off_days"`
	MachineHost   string  `json:"machine_host"`
	MachinePort   int     `json:"machine_port"`
	RealTimeSync  bool    `json:"real_time_sync"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
}

type CreateHolidayRequest struct {
	Name string `json:"name" binding:"required"`
	Date string `json:"date" binding:"required"`
}

type HolidayResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Date          string `json:"date"`
	EffectiveFrom string `json:"effective_from"`
}
