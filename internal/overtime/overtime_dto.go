package overtime

type CreateOvertimeRequest struct {
	EmployeeID     string  `json:"employee_id" binding:"required,uuid"`
	ApproverID     *string `json:"approver_id" binding:"omitempty,uuid"`
	OvertimeTypeID string  `json:"overtime_type_id" binding:"required,uuid"`
	WorkDate       string  `json:"work_date" binding:"required"`
	RequestedHours string  `json:"requested_hours" binding:"required"`
	Reason         string  `json:"reason"`
}

type UpdateOvertimeRequest struct {
	OvertimeTypeID *string `json:"overtime_type_id" binding:"omitempty,uuid"`
	WorkDate       *string `json:"work_date"`
	RequestedHours *string `json:"requested_hours"`
	Reason         *string `json:"reason"`
}

type ApproveOvertimeRequest struct {
	ApprovedHours *string `json:"approved_hours"`
}

type RejectOvertimeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type OvertimeResponse struct {
	ID             string  `json:"id"`
	RequestNumber  string  `json:"request_number"`
	EmployeeID     string  `json:"employee_id"`
	ApproverID     *string `json:"approver_id,omitempty"`
	OvertimeTypeID string  `json:"overtime_type_id"`
	WorkDate       string  `json:"work_date"`
	RequestedHours string  `json:"requested_hours"`
	ApprovedHours  string  `json:"approved_hours"`
	Reason         string  `json:"reason"`
	Status         string  `json:"status"`
	DecidedAt      *string `json:"decided_at,omitempty"`
}
