package overtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// DailyHourCeiling is the hard legal maximum of ordinary plus extra
// hours on a single work date.
var DailyHourCeiling = decimal.NewFromInt(12)

type OvertimeType struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string          `gorm:"type:varchar(100);not null"`
	Multiplier decimal.Decimal `gorm:"type:numeric(4,2);not null;default:1.5"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (OvertimeType) TableName() string {
	return "overtime_types"
}

type Request struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestNumber  string     `gorm:"type:varchar(20);uniqueIndex"`
	EmployeeID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ApproverID     *uuid.UUID `gorm:"type:uuid"`
	OvertimeTypeID uuid.UUID  `gorm:"type:uuid;not null"`

	WorkDate       time.Time       `gorm:"type:date;not null;index"`
	RequestedHours decimal.Decimal `gorm:"type:numeric(4,2);not null"`
	ApprovedHours  decimal.Decimal `gorm:"type:numeric(4,2);not null;default:0"`
	Reason         string          `gorm:"type:text"`

	Status    string     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DecidedAt *time.Time `gorm:"type:timestamptz"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Request) TableName() string {
	return "overtime_requests"
}
