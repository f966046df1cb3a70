package employee

type CreateEmployeeRequest struct {
	FullName      string `json:"full_name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	MachineUserID string `json:"machine_user_id" binding:"required"`
}

type EmployeeResponse struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	MachineUserID string `json:"machine_user_id"`
	Active        bool   `json:"active"`
}
