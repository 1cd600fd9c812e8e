package balanceerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"

	"github.com/shopspring/decimal"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"vacation balance not found",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInvalidState,
		"insufficient vacation balance",
		http.StatusUnprocessableEntity,
	)
)

type InsufficientBalanceDetail struct {
	Available decimal.Decimal `json:"available"`
	Required  decimal.Decimal `json:"required"`
}

// InsufficientBalance attaches the available/required shortfall so the
// caller can show exactly how far the request overdraws.
func InsufficientBalance(available, required decimal.Decimal) *apperror.AppError {
	return ErrInsufficientBalance.WithDetails(InsufficientBalanceDetail{
		Available: available,
		Required:  required,
	})
}
