package absenceerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidApproverID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid approver id",
		http.StatusBadRequest,
	)
	ErrInvalidBalanceID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid balance id",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"absence request not found",
		http.StatusNotFound,
	)
	ErrRequestNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"absence request is not pending",
		http.StatusBadRequest,
	)
	ErrNotAuthorizedApprover = apperror.New(
		apperror.CodeForbidden,
		"actor is not the assigned approver for this request",
		http.StatusForbidden,
	)
	ErrDateConflict = apperror.New(
		apperror.CodeConflict,
		"requested period overlaps existing commitments",
		http.StatusConflict,
	)
)

// DateConflict carries every blocking overlap, never just the first, so
// the caller can report all conflicting days at once.
func DateConflict(conflicts any) *apperror.AppError {
	return ErrDateConflict.WithDetails(conflicts)
}
