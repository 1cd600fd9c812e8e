package absence

import (
	"time"

	"go-workforce/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	KindVacation   = "VACATION"
	KindPermission = "PERMISSION"

	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Request is a vacation or permission absence request. Status moves
// Pending -> Approved or Pending -> Rejected exactly once; terminal
// states are never re-entered.
type Request struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestNumber string     `gorm:"type:varchar(20);uniqueIndex"`
	EmployeeID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_absence_requests_employee_dates"`
	ApproverID    *uuid.UUID `gorm:"type:uuid"`

	Kind      string    `gorm:"type:varchar(20);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_absence_requests_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_absence_requests_employee_dates"`
	Reason    string    `gorm:"type:text"`

	Status string `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_absence_requests_status"`

	// Vacation: the balance debited on approval.
	BalanceID *uuid.UUID `gorm:"type:uuid"`
	// Permission: paid or unpaid time off.
	Paid *bool `gorm:"type:boolean"`

	// Chargeable totals computed from the active schedule at creation
	// and recomputed at approval.
	TotalDays  int             `gorm:"type:int;not null;default:0"`
	TotalHours decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DecidedAt *time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Request) TableName() string {
	return "absence_requests"
}

// Channel maps the request kind onto its ledger occupancy channel.
func (r *Request) Channel() ledger.Channel {
	if r.Kind == KindVacation {
		return ledger.ChannelVacation
	}
	return ledger.ChannelPermission
}

// SicknessRecord is a read-only conflict source: sickness is registered
// by the attendance flow, never through this engine.
type SicknessRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_sickness_records_employee_dates"`
	StartDate  time.Time `gorm:"type:date;not null;index:idx_sickness_records_employee_dates"`
	EndDate    time.Time `gorm:"type:date;not null;index:idx_sickness_records_employee_dates"`
	Notes      *string   `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SicknessRecord) TableName() string {
	return "sickness_records"
}
