package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance is the vacation entitlement ledger head for one employee:
// days earned to date against days taken to date. The invariant
// taken <= earned must hold after any committed transition.
type Balance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_balances_employee"`

	EarnedDays decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`
	TakenDays  decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Balance) TableName() string {
	return "vacation_balances"
}

// AvailableDays is earned minus taken.
func (b *Balance) AvailableDays() decimal.Decimal {
	return b.EarnedDays.Sub(b.TakenDays)
}
