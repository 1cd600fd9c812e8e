package balance_test

import (
	"errors"
	"testing"

	"go-workforce/internal/balance"
	balanceerrors "go-workforce/internal/balance/errors"
	"go-workforce/internal/shared/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAuthorizeDebit(t *testing.T) {
	t.Run("success exact available", func(t *testing.T) {
		b := &balance.Balance{
			EarnedDays: decimal.NewFromInt(10),
			TakenDays:  decimal.NewFromInt(5),
		}

		err := balance.AuthorizeDebit(b, decimal.NewFromInt(5))

		assert.NoError(t, err)
		// pure check, tidak ada mutasi
		assert.True(t, b.TakenDays.Equal(decimal.NewFromInt(5)))
	})

	t.Run("negative overdraw reports available and required", func(t *testing.T) {
		b := &balance.Balance{
			EarnedDays: decimal.NewFromInt(3),
			TakenDays:  decimal.Zero,
		}

		err := balance.AuthorizeDebit(b, decimal.NewFromInt(5))

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		detail, ok := appErr.Details.(balanceerrors.InsufficientBalanceDetail)
		assert.True(t, ok)
		assert.True(t, detail.Available.Equal(decimal.NewFromInt(3)))
		assert.True(t, detail.Required.Equal(decimal.NewFromInt(5)))
	})
}

func TestCommitDebit(t *testing.T) {
	b := &balance.Balance{
		EarnedDays: decimal.NewFromInt(10),
		TakenDays:  decimal.NewFromInt(2),
	}

	assert.NoError(t, balance.AuthorizeDebit(b, decimal.NewFromInt(5)))
	balance.CommitDebit(b, decimal.NewFromInt(5))

	assert.True(t, b.TakenDays.Equal(decimal.NewFromInt(7)))
	assert.True(t, b.AvailableDays().Equal(decimal.NewFromInt(3)))
	assert.True(t, b.TakenDays.LessThanOrEqual(b.EarnedDays))
}
