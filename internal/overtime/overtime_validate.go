package overtime

import (
	overtimeerrors "go-workforce/internal/overtime/errors"

	"github.com/shopspring/decimal"
)

// ValidateHours enforces the daily ceiling for a single work date:
// requested extra hours must be positive and, added to the contract's
// ordinary hours, must not pass DailyHourCeiling.
func ValidateHours(ordinaryHours, requestedHours decimal.Decimal) error {
	if requestedHours.LessThanOrEqual(decimal.Zero) {
		return overtimeerrors.ErrInvalidHours
	}
	if ordinaryHours.Add(requestedHours).GreaterThan(DailyHourCeiling) {
		return overtimeerrors.HourCeilingExceeded(
			ordinaryHours.String(),
			requestedHours.String(),
			DailyHourCeiling.String(),
		)
	}
	return nil
}
