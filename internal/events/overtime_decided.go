package events

import "time"

const (
	OvertimeRequestedTopic = "hr.overtime.request.v1"
	OvertimeDecidedTopic   = "hr.overtime.decision.v1"
)

type OvertimeRequestedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id"`
	EmployeeID     string    `json:"employee_id"`
	ApproverID     string    `json:"approver_id,omitempty"`
	WorkDate       string    `json:"work_date"`
	RequestedHours string    `json:"requested_hours"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type OvertimeDecidedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id"`
	EmployeeID     string    `json:"employee_id"`
	ApproverID     string    `json:"approver_id,omitempty"`
	Status         string    `json:"status"`
	WorkDate       string    `json:"work_date"`
	RequestedHours string    `json:"requested_hours"`
	ApprovedHours  string    `json:"approved_hours"`
	OccurredAt     time.Time `json:"occurred_at"`
}
