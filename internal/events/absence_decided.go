package events

import "time"

const (
	AbsenceRequestedTopic = "hr.absence.request.v1"
	AbsenceDecidedTopic   = "hr.absence.decision.v1"
)

// AbsenceRequestedEvent notifies the assigned approver that a new
// request is waiting for a decision.
type AbsenceRequestedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	EmployeeID string    `json:"employee_id"`
	ApproverID string    `json:"approver_id,omitempty"`
	Kind       string    `json:"kind"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	TotalDays  int       `json:"total_days"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AbsenceDecidedEvent notifies the requester of an approval or
// rejection. Delivery is best effort and never rolls the decision back.
type AbsenceDecidedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	EmployeeID string    `json:"employee_id"`
	ApproverID string    `json:"approver_id,omitempty"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	TotalDays  int       `json:"total_days"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
