package balance

import (
	balanceerrors "go-workforce/internal/balance/errors"

	"github.com/shopspring/decimal"
)

// AuthorizeDebit is the pure overdraw check: it mutates nothing and
// returns ErrInsufficientBalance with the available/required detail when
// the debit would push taken past earned.
func AuthorizeDebit(b *Balance, requiredDays decimal.Decimal) error {
	available := b.AvailableDays()
	if requiredDays.GreaterThan(available) {
		return balanceerrors.InsufficientBalance(available, requiredDays)
	}
	return nil
}

// CommitDebit books the debit. The caller must have passed AuthorizeDebit
// inside the same transaction boundary; serialization comes from the
// per-employee lock, not from a re-check here.
func CommitDebit(b *Balance, days decimal.Decimal) {
	b.TakenDays = b.TakenDays.Add(days)
}
