package overtimeerrors

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
	ErrInvalidOvertimeTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid overtime type id",
		http.StatusBadRequest,
	)
	ErrOvertimeTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"overtime type not found",
		http.StatusNotFound,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"overtime request not found",
		http.StatusNotFound,
	)
	ErrRequestNotEditable = apperror.New(
		apperror.CodeInvalidState,
		"overtime request is not pending",
		http.StatusBadRequest,
	)
	ErrNotAuthorizedApprover = apperror.New(
		apperror.CodeForbidden,
		"actor is not the assigned approver for this request",
		http.StatusForbidden,
	)
	ErrDuplicateRequest = apperror.New(
		apperror.CodeConflict,
		"a pending overtime request already exists for this date",
		http.StatusConflict,
	)
	ErrInvalidHours = apperror.New(
		apperror.CodeInvalidInput,
		"requested hours must be greater than zero",
		http.StatusBadRequest,
	)
	ErrHourCeilingExceeded = apperror.New(
		apperror.CodeUnprocessable,
		"ordinary plus requested hours exceed the daily ceiling",
		http.StatusUnprocessableEntity,
	)
	ErrApprovedHoursExceedRequested = apperror.New(
		apperror.CodeInvalidInput,
		"approved hours may not exceed requested hours",
		http.StatusBadRequest,
	)
)

type HourCeilingDetail struct {
	OrdinaryHours  string `json:"ordinary_hours"`
	RequestedHours string `json:"requested_hours"`
	Ceiling        string `json:"ceiling"`
}

func HourCeilingExceeded(ordinary, requested, ceiling string) *apperror.AppError {
	return ErrHourCeilingExceeded.WithDetails(HourCeilingDetail{
		OrdinaryHours:  ordinary,
		RequestedHours: requested,
		Ceiling:        ceiling,
	})
}
