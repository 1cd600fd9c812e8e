package schedule

import (
	"strings"
	"time"

	"go-workforce/internal/calendar"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ContractStatusActive   = "ACTIVE"
	ContractStatusInactive = "INACTIVE"

	TemplateStatusActive     = "ACTIVE"
	TemplateStatusSuperseded = "SUPERSEDED"
)

// Contract is an employee's employment agreement. At most one contract
// should be ACTIVE per employee; the resolver tie-breaks on start date
// when the data violates that.
type Contract struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_contracts_employee_status"`

	Status    string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_contracts_employee_status"`
	StartDate time.Time       `gorm:"type:date;not null"`
	EndDate   *time.Time      `gorm:"type:date"`
	// Ordinary working hours per scheduled day for this contract's jornada.
	DailyHours decimal.Decimal `gorm:"type:numeric(4,2);not null;default:8"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Contract) TableName() string {
	return "contracts"
}

// WorkScheduleTemplate is the weekly working/rest partition for one
// contract generation. Superseded templates are historical only.
type WorkScheduleTemplate struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index:idx_schedule_templates_contract"`

	Status      string `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_schedule_templates_contract"`
	WorkingDays string `gorm:"type:varchar(120);not null"`
	RestDays    string `gorm:"type:varchar(120);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (WorkScheduleTemplate) TableName() string {
	return "work_schedule_templates"
}

// WorkingSet parses the comma separated working weekday symbols.
func (t *WorkScheduleTemplate) WorkingSet() map[calendar.Weekday]bool {
	return parseWeekdaySet(t.WorkingDays)
}

// RestSet parses the comma separated rest weekday symbols.
func (t *WorkScheduleTemplate) RestSet() map[calendar.Weekday]bool {
	return parseWeekdaySet(t.RestDays)
}

func parseWeekdaySet(csv string) map[calendar.Weekday]bool {
	set := make(map[calendar.Weekday]bool, 7)
	for _, raw := range strings.Split(csv, ",") {
		sym := strings.ToUpper(strings.TrimSpace(raw))
		if sym == "" {
			continue
		}
		set[calendar.Weekday(sym)] = true
	}
	return set
}

// Holiday is a global public holiday. Not per-employee.
type Holiday struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	HolidayDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_holidays_date"`
	Label       string    `gorm:"type:varchar(120);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Holiday) TableName() string {
	return "holidays"
}
