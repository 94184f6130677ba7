package attendanceerrors

import (
	"net/http"

	"go-courier/internal/shared/apperror"
)

var (
	ErrAlreadyMarked = apperror.New(
		apperror.CodeConflict,
		"attendance already marked for this shift today",
		http.StatusConflict,
	)

	ErrInvalidShift = apperror.New(
		apperror.CodeInvalidInput,
		"shift must be MORNING or EVENING",
		http.StatusBadRequest,
	)

	ErrShiftNotAllowed = apperror.New(
		apperror.CodeInvalidState,
		"driver is not scheduled for this shift",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date range, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)

	ErrInvalidDriverID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid driver id",
		http.StatusBadRequest,
	)
)
