package leave

type ApplyLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required,oneof=ANNUAL SICK CASUAL MATERNITY PATERNITY LOSS_OF_PAY"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`

	IsEmergency          bool     `json:"is_emergency"`
	EmergencyReportedVia string   `json:"emergency_reported_via"`
	EmergencyReportedAt  *string  `json:"emergency_reported_at"`
	Attachments          []string `json:"attachments"`
}

type UpdateLeaveStatusRequest struct {
	Status          string  `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	RejectionReason *string `json:"rejection_reason"`
}

type LeaveResponse struct {
	ID              string   `json:"id"`
	TenantID        string   `json:"tenant_id"`
	EmployeeID      string   `json:"employee_id"`
	LeaveType       string   `json:"leave_type"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	DaysCount       int      `json:"days_count"`
	Reason          string   `json:"reason"`
	IsLossOfPay     bool     `json:"is_loss_of_pay"`
	Status          string   `json:"status"`
	ApproverID      *string  `json:"approver_id,omitempty"`
	ApprovedAt      *string  `json:"approved_at,omitempty"`
	RejectionReason *string  `json:"rejection_reason,omitempty"`
	IsEmergency     bool     `json:"is_emergency,omitempty"`
	ReportedVia     string   `json:"reported_via,omitempty"`
	ReportedAt      *string  `json:"reported_at,omitempty"`
	Attachments     []string `json:"attachments,omitempty"`
}

// PendingApprovalResponse joins the request with the minimal requester
// display fields an approver's inbox shows.
type PendingApprovalResponse struct {
	LeaveResponse
	RequesterName        string `json:"requester_name"`
	RequesterAvatarURL   string `json:"requester_avatar_url"`
	RequesterDesignation string `json:"requester_designation"`
}

type BalanceResponse struct {
	EmployeeID  string `json:"employee_id"`
	Year        int    `json:"year"`
	Annual      int    `json:"annual"`
	Sick        int    `json:"sick"`
	Casual      int    `json:"casual"`
	Maternity   int    `json:"maternity"`
	Paternity   int    `json:"paternity"`
	LossOfPay   int    `json:"loss_of_pay"`
	CarriedOver int    `json:"carried_over"`
}
