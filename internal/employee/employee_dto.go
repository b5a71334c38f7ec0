package employee

type CreateEmployeeRequest struct {
	FullName           string  `json:"full_name" binding:"required"`
	Email              string  `json:"email" binding:"required,email"`
	Designation        string  `json:"designation"`
	AvatarURL          string  `json:"avatar_url"`
	Role               string  `json:"role" binding:"omitempty,oneof=Admin HR Manager Employee"`
	TeamID             *string `json:"team_id"`
	ReportingManagerID *string `json:"reporting_manager_id" binding:"omitempty,uuid"`
}

type EmployeeResponse struct {
	ID                 string  `json:"id"`
	TenantID           string  `json:"tenant_id"`
	FullName           string  `json:"full_name"`
	Email              string  `json:"email"`
	Designation        string  `json:"designation"`
	AvatarURL          string  `json:"avatar_url"`
	Role               string  `json:"role"`
	TeamID             *string `json:"team_id,omitempty"`
	ReportingManagerID *string `json:"reporting_manager_id,omitempty"`
	Status             string  `json:"status"`
}
