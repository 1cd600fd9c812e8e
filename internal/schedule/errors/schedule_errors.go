package scheduleerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrNoActiveContract = apperror.New(
		apperror.CodeNotFound,
		"employee has no active contract",
		http.StatusNotFound,
	)
	ErrNoActiveSchedule = apperror.New(
		apperror.CodeNotFound,
		"active contract has no active work schedule template",
		http.StatusNotFound,
	)
)
