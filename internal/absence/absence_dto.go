package absence

type CreateAbsenceRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required,uuid"`
	ApproverID *string `json:"approver_id" binding:"omitempty,uuid"`
	Kind       string  `json:"kind" binding:"required,oneof=VACATION PERMISSION"`
	StartDate  string  `json:"start_date" binding:"required"`
	EndDate    string  `json:"end_date" binding:"required"`
	Paid       *bool   `json:"paid"`
	BalanceID  *string `json:"balance_id" binding:"omitempty,uuid"`
	Reason     string  `json:"reason"`
}

type RejectAbsenceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type AbsenceResponse struct {
	ID            string  `json:"id"`
	RequestNumber string  `json:"request_number"`
	EmployeeID    string  `json:"employee_id"`
	ApproverID    *string `json:"approver_id,omitempty"`
	Kind          string  `json:"kind"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Status        string  `json:"status"`
	Reason        string  `json:"reason"`

	Paid      *bool   `json:"paid,omitempty"`
	BalanceID *string `json:"balance_id,omitempty"`

	TotalDays  int    `json:"total_days"`
	TotalHours string `json:"total_hours"`

	ChargeableDates []string `json:"chargeable_dates,omitempty"`
	RestDates       []string `json:"rest_dates,omitempty"`
	HolidayDates    []string `json:"holiday_dates,omitempty"`

	CreatedBy string  `json:"created_by"`
	DecidedAt *string `json:"decided_at,omitempty"`
}
