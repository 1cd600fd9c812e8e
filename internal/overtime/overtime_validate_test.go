package overtime_test

import (
	"errors"
	"testing"

	"go-workforce/internal/overtime"
	overtimeerrors "go-workforce/internal/overtime/errors"
	"go-workforce/internal/shared/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateHours(t *testing.T) {
	t.Run("success within ceiling", func(t *testing.T) {
		err := overtime.ValidateHours(decimal.NewFromInt(8), decimal.NewFromInt(4))
		assert.NoError(t, err)
	})

	t.Run("success exactly at ceiling", func(t *testing.T) {
		err := overtime.ValidateHours(decimal.NewFromInt(10), decimal.NewFromInt(2))
		assert.NoError(t, err)
	})

	t.Run("negative zero requested hours", func(t *testing.T) {
		err := overtime.ValidateHours(decimal.NewFromInt(8), decimal.Zero)
		assert.ErrorIs(t, err, overtimeerrors.ErrInvalidHours)
	})

	t.Run("negative requested hours below zero", func(t *testing.T) {
		err := overtime.ValidateHours(decimal.NewFromInt(8), decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, overtimeerrors.ErrInvalidHours)
	})

	t.Run("negative ten ordinary plus three requested passes twelve", func(t *testing.T) {
		err := overtime.ValidateHours(decimal.NewFromInt(10), decimal.NewFromInt(3))

		assert.ErrorIs(t, err, overtimeerrors.ErrHourCeilingExceeded)
		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		detail, ok := appErr.Details.(overtimeerrors.HourCeilingDetail)
		assert.True(t, ok)
		assert.Equal(t, "10", detail.OrdinaryHours)
		assert.Equal(t, "3", detail.RequestedHours)
		assert.Equal(t, "12", detail.Ceiling)
	})

	t.Run("success fractional hours", func(t *testing.T) {
		err := overtime.ValidateHours(
			decimal.RequireFromString("7.5"),
			decimal.RequireFromString("4.5"),
		)
		assert.NoError(t, err)
	})
}
