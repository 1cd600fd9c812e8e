package ledger

import (
	"net/http"
	"time"

	"go-workforce/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel is one of the mutually exclusive absence claims on a calendar
// day. A day may be owned by at most one of sickness, vacation and
// permission at a time.
type Channel string

const (
	ChannelSickness   Channel = "SICKNESS"
	ChannelVacation   Channel = "VACATION"
	ChannelPermission Channel = "PERMISSION"
)

// ErrLedgerConflict means a date's occupancy channel is already owned by
// a different request. Writing over another request's claim is never
// allowed; under the employee lock this only happens when an approval is
// retried against a changed request.
var ErrLedgerConflict = apperror.New(
	apperror.CodeConflict,
	"calendar day already claimed by another request",
	http.StatusConflict,
)

// DailyEntry is the per-employee-per-date occupancy and hours record.
type DailyEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_entries_employee_date"`
	EntryDate  time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_entries_employee_date"`

	SicknessRequestID   *uuid.UUID `gorm:"type:uuid"`
	VacationRequestID   *uuid.UUID `gorm:"type:uuid"`
	PermissionRequestID *uuid.UUID `gorm:"type:uuid"`

	WorkedHours decimal.Decimal `gorm:"type:numeric(4,2);not null;default:0"`
	ExtraHours  decimal.Decimal `gorm:"type:numeric(4,2);not null;default:0"`
	NightHours  decimal.Decimal `gorm:"type:numeric(4,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DailyEntry) TableName() string {
	return "daily_ledger_entries"
}

// Owner returns the request currently holding the channel, if any.
func (e *DailyEntry) Owner(ch Channel) *uuid.UUID {
	switch ch {
	case ChannelSickness:
		return e.SicknessRequestID
	case ChannelVacation:
		return e.VacationRequestID
	case ChannelPermission:
		return e.PermissionRequestID
	}
	return nil
}

// Occupied reports whether any absence channel owns this date.
func (e *DailyEntry) Occupied() bool {
	return e.SicknessRequestID != nil || e.VacationRequestID != nil || e.PermissionRequestID != nil
}

// OccupiedByOther reports whether a channel on this date is owned by a
// request other than the given one.
func (e *DailyEntry) OccupiedByOther(requestID uuid.UUID) (Channel, bool) {
	for _, ch := range []Channel{ChannelSickness, ChannelVacation, ChannelPermission} {
		if owner := e.Owner(ch); owner != nil && *owner != requestID {
			return ch, true
		}
	}
	return "", false
}

// Claim assigns the channel to the request. Claiming a channel the same
// request already owns is a no-op so approval retries stay idempotent;
// any other existing owner is a conflict, never an overwrite.
func (e *DailyEntry) Claim(ch Channel, requestID uuid.UUID) error {
	if _, taken := e.OccupiedByOther(requestID); taken {
		return ErrLedgerConflict
	}

	switch ch {
	case ChannelSickness:
		e.SicknessRequestID = &requestID
	case ChannelVacation:
		e.VacationRequestID = &requestID
	case ChannelPermission:
		e.PermissionRequestID = &requestID
	}
	return nil
}
